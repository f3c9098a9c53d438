// Package commands builds the facturo CLI command tree. Commands resolve
// a manager, run exactly one operation, print the result, and exit;
// errors surface through RunE so the process exits non-zero on any
// failure.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/facturo/facturo/internal/buildinfo"
	"github.com/facturo/facturo/internal/config"
	"github.com/facturo/facturo/internal/database"
	"github.com/facturo/facturo/internal/logging"
)

type rootOptions struct {
	dbPath    string
	logFile   string
	verbosity int
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "facturo",
		Short:   "Local record management for Romanian invoicing",
		Long:    `Facturo stores company, client, and bank account records for Romanian invoicing in a local SQLite database.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv()
			logFile := opts.logFile
			if logFile == "" {
				if path, err := config.DatabasePath(opts.dbPath); err == nil {
					logFile = logging.FilePathForDB(path)
				}
			}
			logging.Setup(opts.verbosity, logFile)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.dbPath, "db", "d", "",
		fmt.Sprintf("database file path (default ~/.facturo/facturo.db, or set %s)", config.EnvDBPath))
	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "log file path (default alongside the database)")

	rootCmd.AddCommand(newInitCommand(opts))
	rootCmd.AddCommand(newCompanyCommand(opts))
	rootCmd.AddCommand(newClientCommand(opts))
	rootCmd.AddCommand(newRatesCommand(opts))

	return rootCmd
}

// openDatabase opens the resolved database file. Apart from init, every
// command requires the file to exist already so a typo in --db fails fast
// instead of silently creating an empty database.
func (o *rootOptions) openDatabase(requireExists bool) (*database.DB, error) {
	path, err := config.DatabasePath(o.dbPath)
	if err != nil {
		return nil, err
	}
	if requireExists {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("database %s does not exist (run \"facturo init\" first): %w", path, err)
		}
	}
	return database.New(path)
}
