package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/flowstate/internal"
	pkgconfig "github.com/starford/flowstate/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadOptional(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found {
		slog.Warn("config file not found, using defaults", slog.String("path", configPath))
	}

	if url := cmd.String("dashboard-url"); url != "" {
		cfg.Dashboard.URL = url
		if err := cfg.Dashboard.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --dashboard-url: %w", err)
		}
	}
	return cfg, nil
}

func action(run func(context.Context, ...internal.Option) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		opts := []internal.Option{
			internal.WithConfig(cfg),
		}

		if err := run(ctx, opts...); err != nil {
			return fmt.Errorf("app run error: %w", err)
		}

		return nil
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "flowstate",
		Usage: "Correlate music and video consumption with coding output and answer questions about it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "dashboard-url",
				Usage:   "Production dashboard URL (overrides dashboard.url)",
				Sources: cli.EnvVars("FLOWSTATE_DASHBOARD_URL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the artifact, query API and live events over HTTP",
				Action: action(internal.Run),
			},
			{
				Name:   "mcp",
				Usage:  "Serve the query tools over MCP on stdin/stdout",
				Action: action(internal.RunMCP),
			},
			{
				Name:   "build",
				Usage:  "Import the input CSVs and write a fresh correlation artifact",
				Action: action(internal.RunBuild),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
