package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/report"
	"fintrack/internal/search"
	"fintrack/internal/services"
	"fintrack/internal/validate"
)

func newAddCommand(a *app) *cobra.Command {
	var raw validate.Raw

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if raw.Date == "" {
				raw.Date = a.ledger.Today().String()
			}
			t, err := a.ledger.Create(cmd.Context(), raw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s %s (%s) on %s\n",
				t.ID, t.Description, t.Amount.Fixed(), t.Category, t.Date)
			return nil
		},
	}

	cmd.Flags().StringVarP(&raw.Description, "description", "d", "", "what the money was spent on (required)")
	cmd.Flags().StringVarP(&raw.Amount, "amount", "a", "", "amount with at most two decimals (required)")
	cmd.Flags().StringVarP(&raw.Category, "category", "c", "", "category made of letters, spaces and hyphens (required)")
	cmd.Flags().StringVar(&raw.Date, "date", "", "date as YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func newListCommand(a *app) *cobra.Command {
	var (
		q                             services.Query
		description, from, to, amount string
		category                      string
		asJSON                        bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := search.ParseFilters(description, from, to, amount, category)
			if err != nil {
				return err
			}
			q.Filters = filters

			res, err := a.ledger.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			md, err := report.Transactions(res)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), md)
		},
	}

	cmd.Flags().StringVarP(&q.Search, "search", "s", "", "regular expression matched against description, category and amount")
	cmd.Flags().BoolVar(&q.CaseSensitive, "case-sensitive", false, "match the search pattern case-sensitively")
	cmd.Flags().StringVar(&q.Tag, "tag", "", "keyword view: beverage or cents")
	cmd.Flags().StringVar(&description, "description", "", "description contains this text")
	cmd.Flags().StringVar(&from, "from", "", "on or after YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "on or before YYYY-MM-DD")
	cmd.Flags().StringVar(&amount, "amount", "", "exact amount")
	cmd.Flags().StringVar(&category, "category", "", "exact category")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func newEditCommand(a *app) *cobra.Command {
	var description, amount, category, date string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch validate.RawPatch
			flags := cmd.Flags()
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("amount") {
				patch.Amount = &amount
			}
			if flags.Changed("category") {
				patch.Category = &category
			}
			if flags.Changed("date") {
				patch.Date = &date
			}
			if patch == (validate.RawPatch{}) {
				return fmt.Errorf("nothing to change: pass at least one of --description, --amount, --category, --date")
			}

			t, err := a.ledger.Edit(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s %s (%s) on %s\n",
				t.ID, t.Description, t.Amount.Fixed(), t.Category, t.Date)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "new amount")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category")
	cmd.Flags().StringVar(&date, "date", "", "new date as YYYY-MM-DD")

	return cmd
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := a.ledger.Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "No transaction %s\n", args[0])
			}
			return nil
		},
	}
}
