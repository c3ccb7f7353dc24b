package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

func newBudgetCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Show or change the spending limit",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show spending against the limit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := a.ledger.Budget(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.BudgetLine(status))
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <amount>",
		Short: "Set a positive limit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := a.ledger.SetBudget(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Budget limit set to %s\n", limit.Fixed())
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the limit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ledger.ClearBudget(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Budget limit cleared")
			return nil
		},
	}

	cmd.AddCommand(show, set, clearCmd)
	return cmd
}

func newSettingsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the base currency and exchange rates",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the base currency and rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.ledger.Settings(cmd.Context())
			if err != nil {
				return err
			}
			return printSettings(cmd.OutOrStdout(), s)
		},
	}

	setRate := &cobra.Command{
		Use:   "set-rate <code> <rate>",
		Short: "Set units of <code> per one base unit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("rate must be a number: %q", args[1])
			}
			s, err := a.ledger.SetRate(cmd.Context(), args[0], rate)
			if err != nil {
				return err
			}
			return printSettings(cmd.OutOrStdout(), s)
		},
	}

	setBase := &cobra.Command{
		Use:   "set-base <code>",
		Short: "Change the base currency; rates are kept as they are",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.ledger.SetBase(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printSettings(cmd.OutOrStdout(), s)
		},
	}

	cmd.AddCommand(show, setRate, setBase)
	return cmd
}

func printSettings(w io.Writer, s core.Settings) error {
	if _, err := fmt.Fprintf(w, "Base currency: %s\n", s.BaseCurrency); err != nil {
		return err
	}
	for _, code := range s.Currencies()[1:] {
		if _, err := fmt.Fprintf(w, "  1 %s = %s %s\n", s.BaseCurrency, strconv.FormatFloat(s.Rates[code], 'f', -1, 64), code); err != nil {
			return err
		}
	}
	return nil
}
