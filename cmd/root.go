package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathstep/internal/config"
	"github.com/abhisek/mathstep/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "mathstep",
	Short: "Step-by-step math tutor",
	Long: "MathStep is a bilingual (Thai/English) math tutor. Type a word problem or point it at a photo,\n" +
		"read the analysis, then reveal the worked solution one step at a time.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (overrides MATHSTEP_CONFIG)")
	pf.String("db", "", "Event store: SQLite path or postgres:// URL (overrides database.dsn)")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-file", "", "Log file (the TUI defaults to mathstep.log in the data directory)")

	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// loadConfig reads the config file and environment, then applies the
// persistent flags on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.Database.DSN = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-file"); v != "" {
		cfg.Log.File = v
	}
	return cfg, nil
}

// resolveDSN returns the event store location: --db, then database.dsn,
// then the default path under the data directory.
func resolveDSN(cfg config.Config) (string, error) {
	dsn := cfg.Database.DSN
	if dsn == "" {
		return store.DefaultDBPath()
	}
	if !store.IsPostgresDSN(dsn) {
		return dsn, store.EnsureDir(dsn)
	}
	return dsn, nil
}

func openStore(cfg config.Config) (*store.Store, error) {
	dsn, err := resolveDSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}
