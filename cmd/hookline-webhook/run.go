package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hooklinehq/hookline/pkg/cmd"
	"github.com/hooklinehq/hookline/pkg/credentials"
	"github.com/hooklinehq/hookline/pkg/dedup"
	"github.com/hooklinehq/hookline/pkg/eventbus"
	"github.com/hooklinehq/hookline/pkg/log"
	"github.com/hooklinehq/hookline/pkg/otelhelper"
	"github.com/hooklinehq/hookline/pkg/relay"
	"github.com/hooklinehq/hookline/pkg/retention"
	"github.com/hooklinehq/hookline/pkg/services"
	"github.com/hooklinehq/hookline/pkg/worker"
)

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	logger := log.WithModule("webhook")
	logger.InfoContext(ctx, "Initializing Hookline sync relay")

	if command.Bool("tracing") {
		tracerProvider, err := otelhelper.NewTracerProvider(ctx, "hookline-webhook")
		if err != nil {
			return err
		}

		defer func() {
			if err := tracerProvider.Shutdown(ctx); err != nil {
				logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
			}
		}()
	}

	persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return err
	}

	defer func() {
		if err := persistence.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	var bus eventbus.EventBus

	if busType := command.String("event-bus"); busType != "" {
		bus, err = cmd.NewEventBus(busType, command.String("kafka-brokers"), logger)
		if err != nil {
			return err
		}

		defer func() {
			if err := bus.Close(); err != nil {
				logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
			}
		}()
	}

	var probe *dedup.Probe

	if redisURL := command.String("redis-url"); redisURL != "" {
		probe, err = dedup.NewProbe(redisURL, dedup.DefaultTTL, logger)
		if err != nil {
			return err
		}

		defer func() {
			if err := probe.Close(); err != nil {
				logger.ErrorContext(ctx, "Failed to close dedup probe", "error", err)
			}
		}()
	}

	signingKey, err := loadSigningKey(command)
	if err != nil {
		return err
	}

	if len(signingKey) == 0 {
		// Tolerated at startup: minting fails per request until the key is set.
		logger.WarnContext(ctx, "No signing key configured; relays requiring credentials will fail")
	}

	minter := credentials.NewMinter(signingKey, credentials.DefaultTTL)
	workerClient := worker.NewClient(command.String("worker-url"), command.Duration("worker-timeout"), logger)

	if !workerClient.Configured() {
		logger.WarnContext(ctx, "Sync background worker URL is not set; events will not be forwarded")
	}

	syncRelay := relay.NewRelay(persistence, minter, workerClient, logger)

	var busPublisher eventbus.EventPublisher
	if bus != nil {
		busPublisher = bus
	}

	var deliveryProbe services.DeliveryProbe
	if probe != nil {
		deliveryProbe = probe
	}

	webhookService := services.NewWebhook(persistence, syncRelay, busPublisher, deliveryProbe, logger)
	triggerService := services.NewTriggers(persistence, logger)

	if schedule := command.String("retention-schedule"); schedule != "" {
		sweeper, err := retention.NewSweeper(persistence, schedule, command.Duration("retention-max-age"), logger)
		if err != nil {
			return err
		}

		sweeper.Start()
		defer sweeper.Stop()
	}

	api := NewAPI(logger, webhookService, triggerService)

	err = api.Start(command.Int("port"))
	if err != nil {
		logger.ErrorContext(ctx, "Failed to start webhook server", "error", err)
	}

	return err
}

func loadSigningKey(command *cli.Command) ([]byte, error) {
	if keyFile := command.String("signing-key-file"); keyFile != "" {
		return os.ReadFile(keyFile)
	}

	if key := command.String("signing-key"); key != "" {
		return []byte(key), nil
	}

	return nil, nil
}
