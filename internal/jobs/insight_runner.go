package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	appmetrics "github.com/FACorreiaa/go-trip-optimizer/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-optimizer/internal/api/insights"
	"github.com/FACorreiaa/go-trip-optimizer/internal/types"
)

const (
	defaultJobTimeout = 45 * time.Second

	// persistTimeout bounds the final save separately from the job
	// deadline; a job that spent its whole budget on generation must
	// still be able to resolve the processing flag.
	persistTimeout = 5 * time.Second
)

// Store is the narrow persistence view the runner needs: load the record
// back and write the finished insight into it.
type Store interface {
	GetItinerary(ctx context.Context, id uuid.UUID) (*types.Itinerary, error)
	SaveItinerary(ctx context.Context, itinerary *types.Itinerary) error
}

// InsightRunner decouples insight generation from the request/response
// cycle. Jobs are fire-and-forget goroutines with their own deadline;
// concurrent duplicates for one itinerary id are collapsed through
// singleflight, and across invocations the last writer wins.
type InsightRunner struct {
	logger       *slog.Logger
	store        Store
	orchestrator insights.Orchestrator
	jobTimeout   time.Duration
	metrics      *appmetrics.AppMetrics

	group singleflight.Group
	wg    sync.WaitGroup
}

func NewInsightRunner(store Store, orchestrator insights.Orchestrator, jobTimeout time.Duration, m *appmetrics.AppMetrics, logger *slog.Logger) *InsightRunner {
	if jobTimeout <= 0 {
		jobTimeout = defaultJobTimeout
	}
	return &InsightRunner{
		logger:       logger,
		store:        store,
		orchestrator: orchestrator,
		jobTimeout:   jobTimeout,
		metrics:      m,
	}
}

// RunAsync dispatches the insight job for an itinerary and returns
// immediately. The caller never observes the job directly; completion is
// visible only through the persisted record.
func (r *InsightRunner) RunAsync(itineraryID uuid.UUID, snapshot types.InsightSnapshot) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		_, _, _ = r.group.Do(itineraryID.String(), func() (interface{}, error) {
			r.run(itineraryID, snapshot)
			return nil, nil
		})
	}()
}

// Wait blocks until all in-flight jobs have finished. Called during
// graceful shutdown.
func (r *InsightRunner) Wait() {
	r.wg.Wait()
}

func (r *InsightRunner) run(itineraryID uuid.UUID, snapshot types.InsightSnapshot) {
	// The job outlives the originating request, so it gets a fresh
	// context bounded by its own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), r.jobTimeout)
	defer cancel()

	ctx, span := otel.Tracer("InsightRunner").Start(ctx, "InsightJob", trace.WithAttributes(
		attribute.String("itinerary.id", itineraryID.String()),
		attribute.Int("stops.count", snapshot.StopCount),
	))
	defer span.End()

	startTime := time.Now()
	if r.metrics != nil {
		r.metrics.InsightJobsTotal.Add(ctx, 1)
		defer func() {
			r.metrics.InsightDurationSeconds.Record(ctx, time.Since(startTime).Seconds())
		}()
	}

	result := r.generate(ctx, snapshot)
	if result == nil {
		// Model chain exhausted or panicked; the user still gets an
		// insight, just the deterministic one.
		result = insights.Synthesize(snapshot)
		if r.metrics != nil {
			r.metrics.InsightFallbacksTotal.Add(ctx, 1)
		}
		span.AddEvent("fallback synthesizer used")
		r.logger.InfoContext(ctx, "Insight produced by fallback synthesizer",
			slog.String("itinerary_id", itineraryID.String()))
	}

	persistCtx, persistCancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer persistCancel()

	if err := r.persist(persistCtx, itineraryID, result); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			// Itinerary deleted while the job was running.
			r.logger.InfoContext(ctx, "Itinerary disappeared before insight could be persisted",
				slog.String("itinerary_id", itineraryID.String()))
			span.SetStatus(codes.Ok, "Itinerary deleted concurrently")
			return
		}
		r.logger.ErrorContext(ctx, "Failed to persist insight result",
			slog.String("itinerary_id", itineraryID.String()),
			slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Persist failed")
		return
	}

	span.SetStatus(codes.Ok, "Insight job complete")
}

// generate walks the model chain and returns nil on any failure,
// including a panic inside the orchestrator, so the caller always falls
// through to the synthesizer.
func (r *InsightRunner) generate(ctx context.Context, snapshot types.InsightSnapshot) (result *types.InsightResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.ErrorContext(ctx, "Insight generation panicked", slog.Any("panic", rec))
			result = nil
		}
	}()

	result, err := r.orchestrator.Generate(ctx, snapshot)
	if err != nil {
		r.logger.WarnContext(ctx, "Insight generation failed, will use fallback", slog.Any("error", err))
		return nil
	}
	return result
}

// persist writes the result back and flips the processing flag off. A
// job that never resolves the flag is a defect, so this runs no matter
// how generation went.
func (r *InsightRunner) persist(ctx context.Context, itineraryID uuid.UUID, result *types.InsightResult) error {
	itinerary, err := r.store.GetItinerary(ctx, itineraryID)
	if err != nil {
		return err
	}

	itinerary.AIInsights = result
	itinerary.AIProcessing = false

	return r.store.SaveItinerary(ctx, itinerary)
}
