package itinerary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	appmetrics "github.com/FACorreiaa/go-trip-optimizer/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-optimizer/internal/api/routing"
	"github.com/FACorreiaa/go-trip-optimizer/internal/api/schedule"
	"github.com/FACorreiaa/go-trip-optimizer/internal/types"
)

// InsightDispatcher starts the background insight job for an itinerary.
// Fire-and-forget: the caller never awaits completion.
type InsightDispatcher interface {
	RunAsync(itineraryID uuid.UUID, snapshot types.InsightSnapshot)
}

var _ Service = (*ServiceImpl)(nil)

// Service defines the business logic contract for itinerary operations.
type Service interface {
	CreateItinerary(ctx context.Context, req types.CreateItineraryRequest) (*types.Itinerary, error)
	GetItinerary(ctx context.Context, id uuid.UUID) (*types.Itinerary, error)
	AddStop(ctx context.Context, id uuid.UUID, stop types.Stop) (*types.Itinerary, error)
	RemoveStop(ctx context.Context, id, stopID uuid.UUID) (*types.Itinerary, error)
	ReorderStops(ctx context.Context, id uuid.UUID, orderedStopIDs []uuid.UUID) (*types.Itinerary, error)
	Optimize(ctx context.Context, id uuid.UUID) (*types.OptimizeResult, error)
}

type ServiceImpl struct {
	logger        *slog.Logger
	repo          Repository
	routingClient routing.Client
	dispatcher    InsightDispatcher
	metrics       *appmetrics.AppMetrics
}

func NewServiceImpl(repo Repository, routingClient routing.Client, dispatcher InsightDispatcher, m *appmetrics.AppMetrics, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:        logger,
		repo:          repo,
		routingClient: routingClient,
		dispatcher:    dispatcher,
		metrics:       m,
	}
}

func (s *ServiceImpl) CreateItinerary(ctx context.Context, req types.CreateItineraryRequest) (*types.Itinerary, error) {
	now := time.Now().UTC()
	itinerary := &types.Itinerary{
		ID:          uuid.New(),
		Name:        req.Name,
		AreaName:    req.AreaName,
		Stops:       []types.Stop{},
		Preferences: req.Preferences,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if itinerary.Preferences.Pace == "" {
		itinerary.Preferences.Pace = types.PaceModerate
	}
	if itinerary.Preferences.DayPart == "" {
		itinerary.Preferences.DayPart = types.DayPartAnytime
	}

	if err := s.repo.CreateItinerary(ctx, itinerary); err != nil {
		s.logger.ErrorContext(ctx, "Failed to create itinerary", slog.Any("error", err))
		return nil, err
	}
	return itinerary, nil
}

func (s *ServiceImpl) GetItinerary(ctx context.Context, id uuid.UUID) (*types.Itinerary, error) {
	itinerary, err := s.repo.GetItinerary(ctx, id)
	if err != nil {
		return nil, err
	}
	return itinerary, nil
}

func (s *ServiceImpl) AddStop(ctx context.Context, id uuid.UUID, stop types.Stop) (*types.Itinerary, error) {
	return s.mutateStops(ctx, id, func(itinerary *types.Itinerary) error {
		if stop.ID == uuid.Nil {
			stop.ID = uuid.New()
		}
		itinerary.Stops = append(itinerary.Stops, stop)
		return nil
	})
}

func (s *ServiceImpl) RemoveStop(ctx context.Context, id, stopID uuid.UUID) (*types.Itinerary, error) {
	return s.mutateStops(ctx, id, func(itinerary *types.Itinerary) error {
		kept := itinerary.Stops[:0]
		found := false
		for _, stop := range itinerary.Stops {
			if stop.ID == stopID {
				found = true
				continue
			}
			kept = append(kept, stop)
		}
		if !found {
			return fmt.Errorf("stop %s: %w", stopID, types.ErrNotFound)
		}
		itinerary.Stops = kept
		return nil
	})
}

func (s *ServiceImpl) ReorderStops(ctx context.Context, id uuid.UUID, orderedStopIDs []uuid.UUID) (*types.Itinerary, error) {
	return s.mutateStops(ctx, id, func(itinerary *types.Itinerary) error {
		if len(orderedStopIDs) != len(itinerary.Stops) {
			return fmt.Errorf("reorder must list all %d stops, got %d", len(itinerary.Stops), len(orderedStopIDs))
		}
		byID := make(map[uuid.UUID]types.Stop, len(itinerary.Stops))
		for _, stop := range itinerary.Stops {
			byID[stop.ID] = stop
		}
		reordered := make([]types.Stop, 0, len(orderedStopIDs))
		for _, stopID := range orderedStopIDs {
			stop, ok := byID[stopID]
			if !ok {
				return fmt.Errorf("stop %s: %w", stopID, types.ErrNotFound)
			}
			reordered = append(reordered, stop)
		}
		itinerary.Stops = reordered
		return nil
	})
}

// mutateStops applies a stop mutation and clears any stale optimization
// output; every add/remove/reorder invalidates the computed route.
func (s *ServiceImpl) mutateStops(ctx context.Context, id uuid.UUID, mutate func(*types.Itinerary) error) (*types.Itinerary, error) {
	itinerary, err := s.repo.GetItinerary(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(itinerary); err != nil {
		return nil, err
	}
	itinerary.InvalidateOptimization()
	if err := s.repo.SaveItinerary(ctx, itinerary); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save mutated itinerary", slog.Any("error", err))
		return nil, err
	}
	return itinerary, nil
}

// Optimize runs the synchronous phase of the pipeline: route the located
// stops, stamp the timeline, persist with the processing flag set, then
// dispatch the background insight job and return immediately.
func (s *ServiceImpl) Optimize(ctx context.Context, id uuid.UUID) (*types.OptimizeResult, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Optimize", trace.WithAttributes(
		attribute.String("itinerary.id", id.String()),
	))
	defer span.End()

	itinerary, err := s.repo.GetItinerary(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	located, skipped := schedule.SplitLocated(itinerary.Stops)
	span.SetAttributes(
		attribute.Int("stops.located", len(located)),
		attribute.Int("stops.skipped", len(skipped)),
	)
	if len(located) < 2 {
		span.SetStatus(codes.Error, "Insufficient located stops")
		return nil, types.ErrInsufficientPoints
	}

	points := make([]types.Coordinate, 0, len(located))
	for _, stop := range located {
		points = append(points, types.Coordinate{Lat: *stop.Latitude, Lng: *stop.Longitude})
	}

	routingStart := time.Now()
	plan, err := s.routingClient.Route(ctx, points)
	if s.metrics != nil {
		s.metrics.RoutingDurationSeconds.Record(ctx, time.Since(routingStart).Seconds())
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.RoutingErrorsTotal.Add(ctx, 1)
		}
		s.logger.ErrorContext(ctx, "Routing failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Routing failed")
		return nil, err
	}

	scheduled, err := schedule.BuildTimeline(located, plan.Legs, itinerary.Preferences.DayPart, itinerary.Preferences.Pace)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Timeline construction failed")
		return nil, fmt.Errorf("failed to build timeline: %w", err)
	}

	// Merge schedule fields back by stop id; unlocated stops keep their
	// position but stay unscheduled.
	scheduledByID := make(map[uuid.UUID]types.Stop, len(scheduled))
	for _, stop := range scheduled {
		scheduledByID[stop.ID] = stop
	}
	for i, stop := range itinerary.Stops {
		if updated, ok := scheduledByID[stop.ID]; ok {
			itinerary.Stops[i] = updated
		}
	}

	itinerary.RoutePlan = plan
	itinerary.IsOptimized = true
	itinerary.AIProcessing = true
	itinerary.AIInsights = nil

	if err := s.repo.SaveItinerary(ctx, itinerary); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to persist optimized itinerary")
		return nil, err
	}

	// RoutePlan is persisted before the background job starts; the job
	// only reads the snapshot handed to it here.
	s.dispatcher.RunAsync(itinerary.ID, buildSnapshot(itinerary, plan))

	if s.metrics != nil {
		s.metrics.OptimizeRequestsTotal.Add(ctx, 1)
	}
	skippedNames := make([]string, 0, len(skipped))
	for _, stop := range skipped {
		skippedNames = append(skippedNames, stop.Name)
	}

	s.logger.InfoContext(ctx, "Itinerary optimized",
		slog.String("itinerary_id", itinerary.ID.String()),
		slog.Float64("distance_km", plan.TotalDistanceKm),
		slog.Int("duration_min", plan.TotalDurationMin),
		slog.Int("skipped_stops", len(skippedNames)))
	span.SetStatus(codes.Ok, "Itinerary optimized")

	return &types.OptimizeResult{
		Itinerary:    itinerary,
		SkippedStops: skippedNames,
	}, nil
}

func buildSnapshot(itinerary *types.Itinerary, plan *types.RoutePlan) types.InsightSnapshot {
	var stopNames []string
	vibeSet := make(map[string]struct{})
	var vibes []string
	for _, stop := range itinerary.Stops {
		if !stop.Located() {
			continue
		}
		stopNames = append(stopNames, stop.Name)
		for _, vibe := range stop.Vibes {
			if _, seen := vibeSet[vibe]; !seen {
				vibeSet[vibe] = struct{}{}
				vibes = append(vibes, vibe)
			}
		}
	}

	return types.InsightSnapshot{
		AreaName:         itinerary.AreaName,
		StopNames:        stopNames,
		StopCount:        len(stopNames),
		Vibes:            vibes,
		DayPart:          itinerary.Preferences.DayPart,
		Language:         itinerary.Preferences.Language,
		TotalDistanceKm:  plan.TotalDistanceKm,
		TotalDurationMin: plan.TotalDurationMin,
	}
}
