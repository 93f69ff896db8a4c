package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kisanmitra/internal/gateway/app"
	"kisanmitra/internal/gateway/config"
	"kisanmitra/internal/logging"
)

// cli holds the persistent flags and the logger shared by subcommands.
type cli struct {
	configFile string
	logLevel   string
	provider   string
	dev        bool

	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zap.NewNop()}
	root := &cobra.Command{
		Use:   "kisanmitra",
		Short: "KisanMitra farmer assistant flows",
		Long: `KisanMitra serves the farmer assistant flows (diagnosis, market prices,
weather, yield, carbon credits, schemes, the assistant and the composite
insight flows) over Connect and a websocket, or runs them one at a time.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := c.logLevel
			if level == "" {
				level = os.Getenv("LOG_LEVEL")
			}
			logger, err := logging.New(level, c.dev)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = c.logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "YAML config file (overrides KISAN_CONFIG)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&c.provider, "provider", "", "model provider: gemini or fake")
	root.PersistentFlags().BoolVar(&c.dev, "dev", false, "human readable development logs")

	root.AddCommand(
		newServeCmd(c),
		newRunCmd(c),
		newFlowsCmd(),
		newQuoteCmd(),
	)
	return root
}

func (c *cli) loadConfig(port string) (*config.Config, error) {
	cfg, err := config.Load(config.Overrides{
		ConfigFile: c.configFile,
		Port:       port,
		Provider:   c.provider,
		LogLevel:   c.logLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func (c *cli) newApp(ctx context.Context, port string) (*app.App, error) {
	cfg, err := c.loadConfig(port)
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg, c.logger, app.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize app: %w", err)
	}
	return a, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
