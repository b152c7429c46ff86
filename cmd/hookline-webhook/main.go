package main

import (
	"context"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9090

func main() {
	command := &cli.Command{
		Name:                  "hookline-webhook",
		Usage:                 "Receive sync-completion webhooks and relay them to the background worker",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the webhook server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (postgres:// or file://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "worker-url",
				Usage:   "Background worker endpoint; when unset, relays return a diagnostic instead of forwarding",
				Sources: cli.EnvVars("SYNC_BACKGROUND_WORKER_URL"),
			},
			&cli.DurationFlag{
				Name:    "worker-timeout",
				Usage:   "Timeout for a single background worker call",
				Value:   30 * time.Second,
				Sources: cli.EnvVars("SYNC_BACKGROUND_WORKER_TIMEOUT"),
			},
			&cli.StringFlag{
				Name:    "signing-key",
				Usage:   "PEM-encoded RSA private key for credential minting",
				Sources: cli.EnvVars("SIGNING_KEY"),
			},
			&cli.StringFlag{
				Name:    "signing-key-file",
				Usage:   "Path to a PEM-encoded RSA private key; takes precedence over --signing-key",
				Sources: cli.EnvVars("SIGNING_KEY_FILE"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, gochannel); empty disables lifecycle events",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma-separated Kafka broker list for the event bus",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the duplicate-delivery probe; empty disables it",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "retention-schedule",
				Usage:   "Cron schedule for activity retention sweeps; empty disables retention",
				Sources: cli.EnvVars("RETENTION_SCHEDULE"),
			},
			&cli.DurationFlag{
				Name:    "retention-max-age",
				Usage:   "Maximum age of activity records kept by the retention sweeper",
				Value:   90 * 24 * time.Hour,
				Sources: cli.EnvVars("RETENTION_MAX_AGE"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing (OTLP/HTTP exporter)",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
