package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/facturo/facturo/internal/config"
)

func newInitCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database and apply schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.openDatabase(false)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(); err != nil {
				return err
			}

			path, _ := config.DatabasePath(opts.dbPath)
			fmt.Fprintf(cmd.OutOrStdout(), "Database ready at %s\n", path)
			return nil
		},
	}
}
