package commands

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cardview-dev/cardview/internal/export"
	"github.com/cardview-dev/cardview/internal/filter"
	"github.com/cardview-dev/cardview/internal/source"
	"github.com/cardview-dev/cardview/internal/txtable"
)

func newTransactionsCommand(opts *globalOptions) *cobra.Command {
	txCmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Search, filter and page through transactions",
	}
	txCmd.AddCommand(newTransactionsListCommand(opts))
	txCmd.AddCommand(newTransactionsExportCommand(opts))
	return txCmd
}

// viewFlags are the filter and page flags shared by list and export.
type viewFlags struct {
	criteria filter.Criteria
	page     int
}

func (f *viewFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.criteria.Search, "search", "s", "", "match cardholder or status, case-insensitive")
	fl.StringVar(&f.criteria.Status, "status", "", "exact status: Succeeded, Pending, Canceled, Failed, Refunded or Disputed")
	fl.StringVar(&f.criteria.MinAmount, "min", "", "minimum amount, inclusive")
	fl.StringVar(&f.criteria.MaxAmount, "max", "", "maximum amount, inclusive")
	fl.StringVar(&f.criteria.StartDate, "start", "", "earliest created date (YYYY-MM-DD)")
	fl.StringVar(&f.criteria.EndDate, "end", "", "latest created date (YYYY-MM-DD)")
	fl.IntVarP(&f.page, "page", "p", 1, "page number")
}

// load fetches the transactions and returns the requested page. A failed
// fetch is logged and yields an empty page.
func (f *viewFlags) load(cmd *cobra.Command, opts *globalOptions) (filter.Page, error) {
	cfg, logger, err := opts.setup(cmd.ErrOrStderr())
	if err != nil {
		return filter.Page{}, err
	}

	client := newClient(cfg, logger)
	txns := source.NewResource(logger, source.EndpointTransactions, client.Transactions).Load(cmd.Context())

	state := filter.NewStateFrom(f.criteria, f.page)
	return state.View(txns), nil
}

func newTransactionsListCommand(opts *globalOptions) *cobra.Command {
	flags := &viewFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of matching transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.load(cmd, opts)
			if err != nil {
				return err
			}
			if err := txtable.New(p).WriteText(cmd.OutOrStdout()); err != nil {
				return err
			}
			if p.TotalPages > 1 {
				fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d\n", p.Number, p.TotalPages)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newTransactionsExportCommand(opts *globalOptions) *cobra.Command {
	flags := &viewFlags{}
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write one page of matching transactions to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := export.DefaultRegistry().Get(format)
			if err != nil {
				return err
			}

			p, err := flags.load(cmd, opts)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := e.Export(&buf, p); err != nil {
				return err
			}

			if output == "" {
				output = export.Filename(e)
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transactions to %s\n", len(p.Items), output)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", export.DefaultFormat, "png, csv or pdf")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default transactions.<format>)")
	return cmd
}
