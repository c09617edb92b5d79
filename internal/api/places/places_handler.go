package places

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-optimizer/internal/api"
)

type HandlerImpl struct {
	placesService Service
	logger        *slog.Logger
}

func NewHandlerImpl(placesService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		placesService: placesService,
		logger:        logger,
	}
}

func (h *HandlerImpl) SearchSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlacesHandler").Start(r.Context(), "SearchSuggestions", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/places/suggest"),
	))
	defer span.End()

	query := r.URL.Query().Get("q")
	suggestions, err := h.placesService.SearchSuggestions(ctx, query)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to fetch place suggestions", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusBadGateway, "places provider unavailable")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, suggestions)
}
