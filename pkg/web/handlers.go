package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/xeipuuv/gojsonschema"

	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/relay"
	"github.com/hooklinehq/hookline/pkg/services"
)

type APIHandlers struct {
	webhookService *services.Webhook
	triggerService *services.Triggers
	validator      *validator.Validate
	webhookSchema  *gojsonschema.Schema
	logger         *slog.Logger
}

func NewAPIHandlers(
	webhookService *services.Webhook,
	triggerService *services.Triggers,
	validate *validator.Validate,
	logger *slog.Logger,
) (*APIHandlers, error) {
	schema, err := compileSyncWebhookSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile webhook schema: %w", err)
	}

	return &APIHandlers{
		webhookService: webhookService,
		triggerService: triggerService,
		validator:      validate,
		webhookSchema:  schema,
		logger:         logger.With("module", "web"),
	}, nil
}

// PostWebhook receives a sync-completion event from the integration
// platform. Malformed input fails before any side effect; valid events are
// logged as activity and relayed. Forwarded calls return the worker's
// response verbatim, terminal-without-forward outcomes return a diagnostic.
func (h *APIHandlers) PostWebhook(c fiber.Ctx) error {
	body := c.Body()

	if err := validateAgainstSchema(h.webhookSchema, body); err != nil {
		h.logger.Warn("Rejected malformed sync event", "error", err)

		return badRequest(c, err.Error())
	}

	var req SyncWebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.Warn("Rejected undecodable sync event", "error", err)

		return badRequest(c, "invalid JSON in request body: "+err.Error())
	}

	result, err := h.webhookService.ProcessSyncEvent(c.Context(), req.ToSyncEvent())
	if err != nil {
		return handlePipelineError(c, err)
	}

	if result.Outcome == relay.OutcomeForwarded {
		return c.JSON(result.WorkerResponse)
	}

	return c.JSON(MessageResponse{Message: result.Message})
}

// CreateTrigger stores a sync trigger configuration.
func (h *APIHandlers) CreateTrigger(c fiber.Ctx) error {
	var req CreateTriggerRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	trigger, err := h.triggerService.CreateTrigger(c.Context(), &models.SyncTrigger{
		UserID: req.UserID,
		Source: req.Source,
		Target: req.Target,
	})
	if err != nil {
		return handlePipelineError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(trigger)
}

// GetTriggers lists the triggers configured by a user.
func (h *APIHandlers) GetTriggers(c fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return badRequest(c, "user_id query parameter is required")
	}

	triggers, err := h.triggerService.ListTriggers(c.Context(), userID)
	if err != nil {
		return handlePipelineError(c, err)
	}

	if triggers == nil {
		triggers = []*models.SyncTrigger{}
	}

	return c.JSON(triggers)
}

// DeleteTrigger removes a trigger by id.
func (h *APIHandlers) DeleteTrigger(c fiber.Ctx) error {
	id := c.Params("id")

	if err := h.triggerService.DeleteTrigger(c.Context(), id); err != nil {
		return handlePipelineError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetActivities lists a user's recent activity records, newest first.
func (h *APIHandlers) GetActivities(c fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return badRequest(c, "user_id query parameter is required")
	}

	limit := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			return badRequest(c, "invalid limit parameter")
		}

		limit = parsed
	}

	activities, err := h.webhookService.RecentActivities(c.Context(), userID, limit)
	if err != nil {
		return handlePipelineError(c, err)
	}

	if activities == nil {
		activities = []*models.Activity{}
	}

	return c.JSON(activities)
}

// HealthCheck reports service liveness.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
