package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"ivision/config"
	app "ivision/internal/application"
	"ivision/internal/container"
	"ivision/internal/infrastructure/imageio"
	"ivision/internal/infrastructure/storage"
)

// globalOptions флаги, общие для всех подкоманд
type globalOptions struct {
	debug         bool
	configPath    string
	backend       string
	maxSide       int
	minConfidence float64
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:          "ivision",
		Short:        "Text detection, OCR, classification and object detection",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&opts.debug, "debug", "d", false, "enable debug logging")
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	flags.StringVarP(&opts.backend, "backend", "b", "", fmt.Sprintf("vision backend %v", container.Backends()))
	flags.IntVar(&opts.maxSide, "max-side", 0, "downscale images whose longer side exceeds this many pixels")
	flags.Float64Var(&opts.minConfidence, "min-confidence", 0, "drop results below this confidence")

	root.AddCommand(
		newOCRCmd(opts),
		newTextCmd(opts),
		newClassifyCmd(opts),
		newObjectsCmd(opts),
		newAnnotateCmd(opts),
		newBotCmd(opts),
	)

	return root
}

// loadConfig читает конфигурацию и применяет явно заданные флаги.
func loadConfig(cmd *cobra.Command, opts *globalOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = opts.backend
	}
	if flags.Changed("max-side") {
		cfg.MaxSide = opts.maxSide
	}
	if flags.Changed("min-confidence") {
		cfg.MinConfidence = opts.minConfidence
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildContainer собирает сервисы приложения для выбранного движка.
func buildContainer(ctx context.Context, cfg *config.Config) (*container.Container, error) {
	backend, err := container.NewBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	slog.Debug("backend selected", "backend", backend.Name())

	return container.New(
		storage.NewMemoryUserRepository(),
		backend,
		imageio.NewLoader(cfg.MaxSide),
		app.AnalysisConfig{MinConfidence: cfg.MinConfidence},
		slog.Default(),
	), nil
}
