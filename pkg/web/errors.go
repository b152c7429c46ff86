package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/hooklinehq/hookline/pkg/credentials"
	"github.com/hooklinehq/hookline/pkg/persistence"
	"github.com/hooklinehq/hookline/pkg/services"
	"github.com/hooklinehq/hookline/pkg/worker"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("malformed_event").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, errType string, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType(errType).
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

func badGateway(c fiber.Ctx, errType string, err error) error {
	problem := problems.NewStatusProblem(502).
		WithInstance(c.Path()).
		WithType(errType).
		WithError(err)

	return c.Status(fiber.StatusBadGateway).JSON(problem)
}

// handlePipelineError maps the relay error taxonomy onto status codes:
// signing and persistence faults are this service's own failures (500),
// worker faults are upstream failures (502), validation is 400.
func handlePipelineError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		return badRequest(c, err.Error())

	case persistence.IsSyncTriggerNotFound(err):
		return notFound(c, "sync trigger not found")

	case credentials.IsSigningError(err):
		return internalError(c, "signing_error", err)

	case worker.IsTransportError(err):
		return badGateway(c, "relay_transport_error", err)

	case worker.IsResponseError(err):
		return badGateway(c, "relay_response_error", err)

	case persistence.IsStoreError(err):
		return internalError(c, "persistence_error", err)

	default:
		return internalError(c, "internal_error", err)
	}
}
