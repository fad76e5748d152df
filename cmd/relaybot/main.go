package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"relaybot/internal/channel"
	"relaybot/internal/config"
	"relaybot/internal/metrics"
	"relaybot/internal/provider"
	"relaybot/internal/relay"
	"relaybot/internal/server"
)

var (
	version = "0.1.0"
	logger  *slog.Logger
	envFile string // overridable via --env-file flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "relaybot",
		Short: "relaybot: WhatsApp to Claude webhook relay",
		Long:  "relaybot relays inbound Evolution API webhook messages to Claude and sends the reply back to the originating chat.",
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", "", "path to .env file (default: ./.env)")

	root.AddCommand(serveCmd())
	root.AddCommand(doctorCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook relay server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, replies, err := loadAll()
			if err != nil {
				return err
			}

			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: parseLevel(cfg.LogLevel),
			}))

			collector := metrics.NewCollector()
			completer := provider.NewClaude(cfg.Claude, replies.SystemPrompt, logger.With("component", "claude"))
			sender := channel.NewSender(cfg.Evolution, logger.With("component", "evolution"))

			controller := relay.NewController(relay.ControllerConfig{
				Completer: completer,
				Sender:    sender,
				Replies:   replies,
				Observer: relay.MultiObserver{
					relay.NewSlogObserver(logger.With("component", "relay")),
					relay.NewMetricsObserver(collector),
				},
				Logger: logger.With("component", "relay"),
			})

			srv := server.New(server.Config{
				Config:     cfg,
				Controller: controller,
				Completer:  completer,
				Sender:     sender,
				Collector:  collector,
				Logger:     logger.With("component", "server"),
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the relaybot version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("relaybot v%s\n", version)
		},
	}
}

// loadAll loads .env, the environment config, and the reply texts.
func loadAll() (*config.Config, config.Replies, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, config.Replies{}, fmt.Errorf("cannot load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, config.Replies{}, err
	}

	replies, err := config.LoadReplies(cfg.RepliesFile)
	if err != nil {
		return nil, config.Replies{}, err
	}

	return cfg, replies, nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
