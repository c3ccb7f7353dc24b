package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/impexp"
	"fintrack/internal/report"
)

func newSummaryCommand(a *app) *cobra.Command {
	var (
		anchor string
		asJSON bool
		asHTML bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals, the daily trend, categories and the budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var on core.Date
			if anchor != "" {
				d, err := core.ParseDate(anchor)
				if err != nil {
					return err
				}
				on = d
			}

			d, err := a.ledger.Dashboard(cmd.Context(), on)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), d)
			}

			md, err := report.Summary(d)
			if err != nil {
				return err
			}
			if asHTML {
				html, err := report.HTML(md)
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), html)
				return err
			}
			return a.render(cmd.OutOrStdout(), md)
		},
	}

	cmd.Flags().StringVar(&anchor, "anchor", "", "last day of the trend window as YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&asHTML, "html", false, "print HTML")
	cmd.MarkFlagsMutuallyExclusive("json", "html")

	return cmd
}

func newExportCommand(a *app) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every transaction as CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			switch strings.ToLower(format) {
			case "csv":
				return a.ledger.ExportCSV(cmd.Context(), w)
			case "json":
				return a.ledger.ExportJSON(cmd.Context(), w)
			default:
				return fmt.Errorf("unknown export format %q (use csv or json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or json")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "file to write, - for stdout")

	return cmd
}

func newImportCommand(a *app) *cobra.Command {
	var mode, path string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load transactions from a JSON export; - reads stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := impexp.ParseMode(mode)
			if err != nil {
				return err
			}

			var data []byte
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}

			res, err := a.ledger.Import(cmd.Context(), data, impexp.Options{Mode: m, Path: path})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d transactions (%s); collection now holds %d\n",
				res.Imported, res.Mode, res.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(impexp.Replace), "replace or merge")
	cmd.Flags().StringVar(&path, "path", "", `JSONPath of the transaction array, e.g. "$.transactions"`)

	return cmd
}

func newConvertCommand(a *app) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "convert <amount>",
		Short: "Convert an amount between configured currencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("amount must be a number: %q", args[0])
			}
			if from == "" || to == "" {
				s, err := a.ledger.Settings(cmd.Context())
				if err != nil {
					return err
				}
				if from == "" {
					from = s.BaseCurrency
				}
				if to == "" {
					to = s.BaseCurrency
				}
			}

			conv, err := a.ledger.Convert(cmd.Context(), amount, from, to)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", conv.Amount, conv.From, conv.Formatted)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "source currency (default base)")
	cmd.Flags().StringVar(&to, "to", "", "target currency (default base)")

	return cmd
}
