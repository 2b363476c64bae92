package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/gapper/internal/common"
)

var (
	// Command-line flags
	configFiles []string
	serverPort  int
	serverHost  string

	// Global state
	config *common.Config
	logger arbor.ILogger
)

var rootCmd = &cobra.Command{
	Use:           "gapper",
	Short:         "Gap scanner: normalizes screener exports and news into a scored watchlist",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVarP(&configFiles, "config", "c", nil, "Configuration file path (repeatable, later files override earlier ones)")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (overrides config)")
	serveCmd.Flags().StringVar(&serverHost, "host", "", "Server host (overrides config)")

	rootCmd.AddCommand(pollCmd, serveCmd, versionCmd)
}

// loadConfig runs the startup sequence: config (defaults -> files -> .env ->
// env), then the logger.
func loadConfig() error {
	if len(configFiles) == 0 {
		if _, err := os.Stat("gapper.toml"); err == nil {
			configFiles = append(configFiles, "gapper.toml")
		} else if _, err := os.Stat("deployments/local/gapper.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/gapper.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		return err
	}

	logger = common.InitLogger(config)
	logger.Debug().
		Strs("config_files", configFiles).
		Str("cache_backend", config.Cache.Backend).
		Str("bars_provider", config.Bars.Provider).
		Str("confidence_provider", config.Confidence.Provider).
		Str("log_level", config.Logging.Level).
		Msg("Resolved configuration (sanitized)")
	return nil
}

func main() {
	common.InstallCrashHandler("")
	defer common.RecoverWithCrashFile()

	if err := rootCmd.Execute(); err != nil {
		l := logger
		if l == nil {
			l = arbor.NewLogger()
		}
		l.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
