// Package commands implements the fintrack command line.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/services"
)

// Opener provides the ledger for one command invocation and a func that
// releases it.
type Opener func(ctx context.Context) (*services.Ledger, func() error, error)

type app struct {
	open   Opener
	ledger *services.Ledger
	close  func() error

	plain bool
	style string
	width int
}

// NewRootCommand creates the root CLI command backed by the configured store.
func NewRootCommand() *cobra.Command {
	return newRootCommand(openFromEnv)
}

func newRootCommand(open Opener) *cobra.Command {
	a := &app{open: open}

	rootCmd := &cobra.Command{
		Use:   "fintrack",
		Short: "Track personal spending from the terminal",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ledger, closeFn, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			a.ledger, a.close = ledger, closeFn
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.close == nil {
				return nil
			}
			err := a.close()
			a.close = nil
			return err
		},
	}

	rootCmd.PersistentFlags().BoolVar(&a.plain, "plain", false, "print raw markdown instead of styled output")
	rootCmd.PersistentFlags().StringVar(&a.style, "style", report.StyleAuto, "terminal style (auto, dark, light, notty)")
	rootCmd.PersistentFlags().IntVar(&a.width, "width", report.DefaultWidth, "word wrap width for styled output")

	rootCmd.AddCommand(
		newAddCommand(a),
		newListCommand(a),
		newEditCommand(a),
		newDeleteCommand(a),
		newSummaryCommand(a),
		newExportCommand(a),
		newImportCommand(a),
		newConvertCommand(a),
		newBudgetCommand(a),
		newSettingsCommand(a),
	)
	return rootCmd
}

// openFromEnv loads .env and the environment, then opens the configured
// backend. CLI logs go to stderr and default to warnings only.
func openFromEnv(ctx context.Context) (*services.Ledger, func() error, error) {
	cli.LoadEnvFile()
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logger := cli.SetupLogger(level, applog.ComponentCLI, os.Stderr)

	cfg, err := cli.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.DataBackend == config.BackendMemory {
		logger.Warn("DATA_BACKEND=memory keeps nothing between commands; set DATA_BACKEND=sqlite to persist")
	}

	res, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cli.NewLedger(cfg, res), res.Close, nil
}

// render prints markdown, styled unless --plain was given.
func (a *app) render(w io.Writer, markdown string) error {
	if a.plain {
		_, err := io.WriteString(w, markdown)
		return err
	}
	out, err := report.Terminal(markdown, a.style, a.width)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
