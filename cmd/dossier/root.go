// dossier is the investigation CLI: investigate runs a full fan-out over a
// fragment set, status inspects stored investigations, retry re-runs one
// agent, verify moves a finding's review status, and serve exposes the
// orchestrator over MCP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dossier/internal/config"
	"dossier/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	dbPath     string
	logLevel   string
}

// cfg is loaded once in the persistent pre-run and shared by all commands.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "dossier",
	Short: "OSINT investigation orchestrator",
	Long: "Dossier fans identity fragments out across lookup agents, merges and\n" +
		"scores what comes back, and stores one reviewable finding per agent.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load(rootFlags.configPath)
		if err != nil {
			return err
		}
		if rootFlags.dbPath != "" {
			cfg.DBPath = rootFlags.dbPath
		}
		if rootFlags.logLevel != "" {
			cfg.LogLevel = rootFlags.logLevel
		}
		logging.Init(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", "", "Config file path (default "+config.DefaultPath+")")
	pf.StringVar(&rootFlags.dbPath, "db", "", "SQLite DB path (overrides config)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(investigateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(retryCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
