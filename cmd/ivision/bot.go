package main

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	telegram "ivision/internal/api"
)

func newBotCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if cfg.TelegramToken == "" {
				return errors.New("TELEGRAM_TOKEN is required")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Собираем сервисы приложения
			services, err := buildContainer(ctx, cfg)
			if err != nil {
				return err
			}
			defer services.Close()

			// Создаём бота
			bot, err := telegram.NewBot(cfg.TelegramToken, services.UserService, services.AnalysisService, ocrDefaults(cfg), slog.Default())
			if err != nil {
				return err
			}

			slog.Info("bot is running", "backend", services.AnalysisService.Backend().Name())
			return bot.Run(ctx)
		},
	}
}
