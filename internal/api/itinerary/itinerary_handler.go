package itinerary

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-optimizer/internal/api"
	"github.com/FACorreiaa/go-trip-optimizer/internal/types"
)

type HandlerImpl struct {
	itineraryService Service
	logger           *slog.Logger
}

func NewHandlerImpl(itineraryService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		itineraryService: itineraryService,
		logger:           logger,
	}
}

// getItineraryResponse is the client-facing poll contract: route totals,
// scheduled items, the processing flag and the insights (or null).
type getItineraryResponse struct {
	ID             uuid.UUID            `json:"id"`
	Name           string               `json:"name"`
	AreaName       string               `json:"area_name,omitempty"`
	RoutePolyline  string               `json:"route_polyline,omitempty"`
	TotalDistance  float64              `json:"total_distance_km"`
	TotalDuration  int                  `json:"total_duration_min"`
	IsOptimized    bool                 `json:"is_optimized"`
	Items          []types.Stop         `json:"items"`
	AIProcessing   bool                 `json:"ai_processing"`
	AIInsights     *types.InsightResult `json:"ai_insights"`
}

func toGetResponse(itinerary *types.Itinerary) getItineraryResponse {
	resp := getItineraryResponse{
		ID:           itinerary.ID,
		Name:         itinerary.Name,
		AreaName:     itinerary.AreaName,
		IsOptimized:  itinerary.IsOptimized,
		Items:        itinerary.Stops,
		AIProcessing: itinerary.AIProcessing,
		AIInsights:   itinerary.AIInsights,
	}
	if itinerary.RoutePlan != nil {
		resp.RoutePolyline = itinerary.RoutePlan.Geometry
		resp.TotalDistance = itinerary.RoutePlan.TotalDistanceKm
		resp.TotalDuration = itinerary.RoutePlan.TotalDurationMin
	}
	return resp
}

// CreateItinerary creates an empty draft itinerary.
func (h *HandlerImpl) CreateItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "CreateItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreateItinerary"))

	var req types.CreateItineraryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Itinerary name is required")
		return
	}

	itinerary, err := h.itineraryService.CreateItinerary(ctx, req)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create itinerary", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create itinerary")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, itinerary)
}

// GetItinerary returns the itinerary in the poll-contract shape. Clients
// re-fetch until ai_processing is false.
func (h *HandlerImpl) GetItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GetItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries/{itineraryID}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetItinerary"))

	id, err := uuid.Parse(chi.URLParam(r, "itineraryID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID format")
		return
	}

	itinerary, err := h.itineraryService.GetItinerary(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")
			return
		}
		l.ErrorContext(ctx, "Failed to get itinerary", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to get itinerary")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, toGetResponse(itinerary))
}

// AddStop appends a stop; any prior optimization output is invalidated.
func (h *HandlerImpl) AddStop(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "AddStop", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries/{itineraryID}/stops"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "AddStop"))

	id, err := uuid.Parse(chi.URLParam(r, "itineraryID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID format")
		return
	}

	var req types.AddStopRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Stop name is required")
		return
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Latitude and longitude must be provided together")
		return
	}

	stop := types.Stop{
		Name:               req.Name,
		Address:            req.Address,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		Category:           req.Category,
		Vibes:              req.Vibes,
		PlannedDurationMin: req.PlannedDurationMin,
	}

	itinerary, err := h.itineraryService.AddStop(ctx, id, stop)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")
			return
		}
		l.ErrorContext(ctx, "Failed to add stop", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to add stop")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, itinerary)
}

// RemoveStop deletes a stop from the itinerary.
func (h *HandlerImpl) RemoveStop(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "RemoveStop", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries/{itineraryID}/stops/{stopID}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "RemoveStop"))

	id, err := uuid.Parse(chi.URLParam(r, "itineraryID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID format")
		return
	}
	stopID, err := uuid.Parse(chi.URLParam(r, "stopID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid stop ID format")
		return
	}

	itinerary, err := h.itineraryService.RemoveStop(ctx, id, stopID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary or stop not found")
			return
		}
		l.ErrorContext(ctx, "Failed to remove stop", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to remove stop")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, itinerary)
}

// ReorderStops replaces the visiting order with the submitted one.
func (h *HandlerImpl) ReorderStops(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "ReorderStops", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries/{itineraryID}/stops/reorder"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ReorderStops"))

	id, err := uuid.Parse(chi.URLParam(r, "itineraryID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID format")
		return
	}

	var req types.ReorderStopsRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	itinerary, err := h.itineraryService.ReorderStops(ctx, id, req.StopIDs)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary or stop not found")
			return
		}
		l.ErrorContext(ctx, "Failed to reorder stops", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, itinerary)
}

// Optimize runs routing and timeline construction synchronously, then
// kicks off the background insight job and returns right away.
func (h *HandlerImpl) Optimize(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "Optimize", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries/{itineraryID}/optimize"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Optimize"))

	id, err := uuid.Parse(chi.URLParam(r, "itineraryID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID format")
		return
	}

	result, err := h.itineraryService.Optimize(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")
		case errors.Is(err, types.ErrInsufficientPoints):
			api.ErrorResponse(w, r, http.StatusBadRequest, "At least two located stops are required to optimize")
		case errors.Is(err, types.ErrNoRouteFound):
			api.ErrorResponse(w, r, http.StatusUnprocessableEntity, "No route found for the given stops")
		case errors.Is(err, types.ErrProviderUnavailable):
			api.ErrorResponse(w, r, http.StatusServiceUnavailable, "Routing provider is unavailable, try again later")
		default:
			l.ErrorContext(ctx, "Failed to optimize itinerary", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to optimize itinerary")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, result)
}
