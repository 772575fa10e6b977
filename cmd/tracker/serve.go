package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"price-tracker/internal/api"
	"price-tracker/internal/bot"
	"price-tracker/internal/monitor"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the periodic price sweeps",
		Long: `Run the HTTP API and sweep every active alert on CHECK_INTERVAL.
When TELEGRAM_BOT_TOKEN is set, drops are sent to Telegram and the bot
accepts commands. Stops on SIGINT or SIGTERM after the running sweep ends.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			a, err := newApp(cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var notifier monitor.Notifier
			telegram, err := bot.Init(cfg.TelegramBotToken, log)
			switch {
			case errors.Is(err, bot.ErrNoToken):
				log.Info("telegram disabled; price drops will only be logged")
			case err != nil:
				return err
			default:
				notifier = bot.NewNotifier(telegram, cfg.TelegramChatID, log)
			}

			mon := a.newMonitor(cfg, log, notifier)
			if telegram != nil {
				go bot.NewHandler(telegram, a.alerts, mon, cfg.TelegramChatID, log).Run(ctx, telegram)
			}

			if err := mon.Start(ctx); err != nil {
				return err
			}
			defer mon.Stop()

			gin.SetMode(gin.ReleaseMode)
			srv := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           api.NewRouter(api.NewHandler(a.alerts, mon, log), a.registry),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
				log.Info("shutdown requested")
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn("http server shutdown", zap.Error(err))
			}
			log.Info("waiting for running sweep to finish")
			return nil
		},
	}
}
