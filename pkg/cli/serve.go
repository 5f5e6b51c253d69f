package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/herald/pkg/cli/config"
	controller "github.com/m-mizutani/herald/pkg/controller/http"
	"github.com/m-mizutani/herald/pkg/infra/discord"
	"github.com/m-mizutani/herald/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg  config.Server
		githubCfg  config.GitHub
		discordCfg config.Discord
	)

	flags := append(serverCfg.Flags(), githubCfg.Flags()...)
	flags = append(flags, discordCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start an HTTP server receiving GitHub release webhooks",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if err := discordCfg.Validate(); err != nil {
				return err
			}

			client, err := discord.NewClient(discordCfg.WebhookURL)
			if err != nil {
				return err
			}

			notifier, err := usecase.NewNotifier(client, discordCfg.MessageOptions(), discordCfg.RetryPolicy())
			if err != nil {
				return err
			}

			logger.Info("Starting herald server",
				slog.String("addr", serverCfg.Addr),
				slog.Any("config", &discordCfg),
			)

			server, err := controller.NewServer(
				ctx,
				notifier,
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(githubCfg.WebhookSecret),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
