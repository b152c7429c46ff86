// Package relay resolves sync triggers, mints the scoped credential and
// forwards the trigger payload to the background worker.
package relay

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hooklinehq/hookline/pkg/credentials"
	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/otelhelper"
	"github.com/hooklinehq/hookline/pkg/worker"
)

// Outcome names the terminal state of one relay dispatch.
type Outcome string

const (
	// OutcomeForwarded means the trigger payload reached the worker.
	OutcomeForwarded Outcome = "forwarded"
	// OutcomeNoTrigger means no trigger is configured for the pair. This is
	// a legitimate terminal state, not a failure.
	OutcomeNoTrigger Outcome = "no_trigger"
	// OutcomeWorkerUnconfigured means no worker endpoint is set. The caller
	// gets a diagnostic so operators can spot the misconfiguration.
	OutcomeWorkerUnconfigured Outcome = "worker_unconfigured"
)

// Result is what a successful dispatch returns. WorkerResponse is only set
// for OutcomeForwarded and carries the worker's response unmodified.
type Result struct {
	Outcome        Outcome
	Message        string
	Triggers       int
	WorkerResponse map[string]any
}

// TriggerResolver is the slice of persistence the relay needs.
type TriggerResolver interface {
	SyncTriggersByUserAndSource(ctx context.Context, userID, source string) ([]*models.SyncTrigger, error)
}

// Relay is a transparent pipeline: resolve -> mint -> forward. It never
// interprets the worker's business response.
type Relay struct {
	resolver TriggerResolver
	minter   *credentials.Minter
	worker   *worker.Client
	logger   *slog.Logger
	tracer   trace.Tracer
}

func NewRelay(resolver TriggerResolver, minter *credentials.Minter, workerClient *worker.Client, logger *slog.Logger) *Relay {
	return &Relay{
		resolver: resolver,
		minter:   minter,
		worker:   workerClient,
		logger:   logger.With("module", "relay"),
		tracer:   otel.Tracer("hookline/relay"),
	}
}

// Dispatch runs the relay pipeline for one sync event. The returned error is
// one of: a persistence StoreError from trigger resolution, a
// credentials.SigningError, or a worker Transport/ResponseError.
func (r *Relay) Dispatch(ctx context.Context, userID, source string) (*Result, error) {
	ctx, span := otelhelper.StartSpan(ctx, r.tracer, "relay.dispatch",
		attribute.String(otelhelper.UserIDKey, userID),
		attribute.String(otelhelper.SourceKey, source),
	)
	defer span.End()

	triggers, err := r.resolveTriggers(ctx, userID, source)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if len(triggers) == 0 {
		r.logger.Info("No trigger configured for source", "user_id", userID, "source", source)
		span.SetAttributes(attribute.String(otelhelper.OutcomeKey, string(OutcomeNoTrigger)))

		return &Result{
			Outcome: OutcomeNoTrigger,
			Message: fmt.Sprintf("could not find trigger by this source: %s", source),
		}, nil
	}

	token, err := r.mintCredential(ctx, userID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if !r.worker.Configured() {
		r.logger.Warn("Sync background worker endpoint is not set",
			"user_id", userID, "source", source, "triggers", len(triggers))
		span.SetAttributes(attribute.String(otelhelper.OutcomeKey, string(OutcomeWorkerUnconfigured)))

		return &Result{
			Outcome:  OutcomeWorkerUnconfigured,
			Message:  "no sync background worker",
			Triggers: len(triggers),
		}, nil
	}

	response, err := r.forward(ctx, token, triggers)
	if err != nil {
		otelhelper.SetError(span, err)
		r.logger.Error("Failed to forward triggers to worker",
			"user_id", userID, "source", source, "triggers", len(triggers), "error", err)

		return nil, err
	}

	r.logger.Info("Sync forwarded to worker",
		"user_id", userID, "source", source, "triggers", len(triggers))
	span.SetAttributes(
		attribute.String(otelhelper.OutcomeKey, string(OutcomeForwarded)),
		attribute.Int(otelhelper.TriggersKey, len(triggers)),
	)

	return &Result{
		Outcome:        OutcomeForwarded,
		Triggers:       len(triggers),
		WorkerResponse: response,
	}, nil
}

func (r *Relay) resolveTriggers(ctx context.Context, userID, source string) ([]*models.SyncTrigger, error) {
	ctx, span := otelhelper.StartSpan(ctx, r.tracer, "relay.resolve")
	defer span.End()

	triggers, err := r.resolver.SyncTriggersByUserAndSource(ctx, userID, source)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to resolve sync triggers: %w", err)
	}

	return triggers, nil
}

func (r *Relay) mintCredential(ctx context.Context, userID string) (string, error) {
	_, span := otelhelper.StartSpan(ctx, r.tracer, "relay.mint")
	defer span.End()

	token, err := r.minter.Mint(userID)
	if err != nil {
		otelhelper.SetError(span, err)

		return "", err
	}

	return token, nil
}

func (r *Relay) forward(ctx context.Context, token string, triggers []*models.SyncTrigger) (map[string]any, error) {
	ctx, span := otelhelper.StartSpan(ctx, r.tracer, "relay.forward",
		attribute.Int(otelhelper.TriggersKey, len(triggers)))
	defer span.End()

	return r.worker.Notify(ctx, token, triggers)
}
