package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/facturo/facturo/internal/rates"
)

func newRatesCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Currency exchange reference rates",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the stored reference rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.openDatabase(true)
			if err != nil {
				return err
			}
			defer db.Close()

			all, err := rates.New(db).List()
			if err != nil {
				return err
			}
			if len(all) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No rates stored")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CURRENCY\tRATE\tDATE")
			for _, r := range all {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Code, r.Rate.String(), r.Date.Format("2006-01-02"))
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(list)
	return cmd
}
