package cli

import (
	"github.com/spf13/cobra"

	"github.com/s1natex/todos-api-GO/internal/config"
)

// Version is stamped at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

type app struct {
	configFile string
	addr       string
	driver     string
	dsn        string
	dbPath     string
	logLevel   string

	cfg *config.Config
}

func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "todos",
		Short: "HTTP CRUD service for todo items",
		Long: `todos serves a small JSON API over a single "todos" table.

Running it without a subcommand is the same as "todos serve".`,
		Version:           Version,
		SilenceUsage:      true,
		PersistentPreRunE: a.loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: todos.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.addr, "addr", "", "listen address, e.g. :3020")
	rootCmd.PersistentFlags().StringVar(&a.driver, "db-driver", "", "database driver: sqlite or postgres")
	rootCmd.PersistentFlags().StringVar(&a.dsn, "db-dsn", "", "database connection string")
	rootCmd.PersistentFlags().StringVar(&a.dbPath, "db-path", "", "sqlite database file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newMigrateCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func (a *app) loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Server.Addr = a.addr
	}
	if flags.Changed("db-driver") {
		cfg.Database.Driver = a.driver
	}
	if flags.Changed("db-dsn") {
		cfg.Database.DSN = a.dsn
	}
	if flags.Changed("db-path") {
		cfg.Database.Path = a.dbPath
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	return nil
}
