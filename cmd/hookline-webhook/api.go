// Package main provides the Hookline sync webhook relay server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/hooklinehq/hookline/pkg/services"
	"github.com/hooklinehq/hookline/pkg/web"
)

type API struct {
	logger         *slog.Logger
	webhookService *services.Webhook
	triggerService *services.Triggers
	validate       *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	webhookService *services.Webhook,
	triggerService *services.Triggers,
) *API {
	return &API{
		logger:         logger,
		webhookService: webhookService,
		triggerService: triggerService,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() (*fiber.App, error) {
	handlers, err := web.NewAPIHandlers(a.webhookService, a.triggerService, a.validate, a.logger)
	if err != nil {
		return nil, err
	}

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Hookline Sync Relay")
	})

	app.Post("/webhook", handlers.PostWebhook)

	t := app.Group("/triggers")
	t.Post("/", handlers.CreateTrigger)
	t.Get("/", handlers.GetTriggers)
	t.Delete("/:id", handlers.DeleteTrigger)

	app.Get("/activities", handlers.GetActivities)
	app.Get("/health", handlers.HealthCheck)

	return app, nil
}

func (a *API) Start(port int) error {
	app, err := a.App()
	if err != nil {
		return err
	}

	return app.Listen(":" + strconv.Itoa(port))
}
