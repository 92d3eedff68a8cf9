package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tarotvision-server-go/internal/domain/embedding"
	"tarotvision-server-go/internal/platform/config"
	"tarotvision-server-go/internal/platform/logging"
)

var (
	configPath string
	logLevel   string

	globalConfig *config.Config
	globalLogger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tarot-eval",
	Short: "Offline tooling for the tarot vision matcher",
	Long: `tarot-eval builds card prototype libraries and runs the offline
evaluation loop: score a labeled corpus, refresh the human review
queue, and check the release gate.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		loader := config.NewLoader()
		if configPath != "" {
			loader = loader.WithPath(configPath)
		}
		result, err := loader.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		globalConfig = result.Config
		globalLogger = logging.NewConsole(logLevel)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if globalLogger != nil {
			globalLogger.Close()
			globalLogger = nil
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the server config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

// newEngine builds the embedding engine subcommands share.
func newEngine() (embedding.Engine, error) {
	engine, err := embedding.NewClipService(globalConfig.Vision.Model, globalLogger)
	if err != nil {
		return nil, fmt.Errorf("init embedding engine: %w", err)
	}
	return engine, nil
}
