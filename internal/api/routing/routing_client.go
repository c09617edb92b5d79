package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-optimizer/internal/types"
)

// Ensure implementation satisfies the interface
var _ Client = (*ClientImpl)(nil)

// Client is the routing-provider contract the optimization pipeline
// depends on. The first point is the origin, the last the destination,
// everything in between a waypoint, in the order given.
type Client interface {
	Route(ctx context.Context, points []types.Coordinate) (*types.RoutePlan, error)
}

// Options configures the provider adapter.
type Options struct {
	BaseURL      string
	Profile      string // vehicle mode, e.g. "driving"
	Roundtrip    bool
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// ClientImpl talks to an OSRM-compatible trip endpoint.
type ClientImpl struct {
	logger     *slog.Logger
	httpClient *http.Client
	opts       Options
}

func NewClientImpl(opts Options, logger *slog.Logger) *ClientImpl {
	if opts.Profile == "" {
		opts.Profile = "driving"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 500 * time.Millisecond
	}
	return &ClientImpl{
		logger:     logger,
		httpClient: &http.Client{Timeout: opts.Timeout},
		opts:       opts,
	}
}

// tripResponse mirrors the provider's wire format: distances in meters,
// durations in seconds, geometry as an opaque encoded polyline.
type tripResponse struct {
	Code  string `json:"code"`
	Trips []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry string  `json:"geometry"`
		Legs     []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"legs"`
	} `json:"trips"`
}

func (c *ClientImpl) Route(ctx context.Context, points []types.Coordinate) (*types.RoutePlan, error) {
	ctx, span := otel.Tracer("RoutingClient").Start(ctx, "Route", trace.WithAttributes(
		attribute.Int("points.count", len(points)),
		attribute.String("profile", c.opts.Profile),
	))
	defer span.End()

	if len(points) < 2 {
		span.SetStatus(codes.Error, "Insufficient points")
		return nil, types.ErrInsufficientPoints
	}

	reqURL := c.buildTripURL(points)

	var lastErr error
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				span.RecordError(ctx.Err())
				return nil, fmt.Errorf("%w: %v", types.ErrProviderUnavailable, ctx.Err())
			case <-time.After(c.opts.RetryBackoff):
			}
		}

		plan, retryable, err := c.doRequest(ctx, reqURL)
		if err == nil {
			span.SetAttributes(
				attribute.Float64("route.distance_km", plan.TotalDistanceKm),
				attribute.Int("route.duration_min", plan.TotalDurationMin),
				attribute.Int("route.legs", len(plan.Legs)),
			)
			span.SetStatus(codes.Ok, "Route computed")
			return plan, nil
		}
		if !retryable {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Routing failed")
			return nil, err
		}
		lastErr = err
		c.logger.WarnContext(ctx, "Routing provider rate-limited, retrying",
			slog.Int("attempt", attempt+1),
			slog.Int("max_retries", c.opts.MaxRetries),
			slog.Any("error", err))
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "Provider unavailable after retries")
	return nil, fmt.Errorf("%w: %v", types.ErrProviderUnavailable, lastErr)
}

// doRequest performs one provider round trip. The bool result reports
// whether the failure is worth retrying (rate limiting only).
func (c *ClientImpl) doRequest(ctx context.Context, reqURL string) (*types.RoutePlan, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build routing request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", types.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, fmt.Errorf("provider rate-limited (status %d)", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("%w: unexpected status %d", types.ErrProviderUnavailable, resp.StatusCode)
	}

	var body tripResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, false, fmt.Errorf("failed to decode routing response: %w", err)
	}

	if len(body.Trips) == 0 {
		return nil, false, types.ErrNoRouteFound
	}

	trip := body.Trips[0]
	plan := &types.RoutePlan{
		TotalDistanceKm:  roundKm(trip.Distance),
		TotalDurationMin: roundMinutes(trip.Duration),
		Geometry:         trip.Geometry,
		Legs:             make([]types.RouteLeg, 0, len(trip.Legs)),
	}
	for _, leg := range trip.Legs {
		plan.Legs = append(plan.Legs, types.RouteLeg{
			DistanceKm:  roundKm(leg.Distance),
			DurationMin: roundMinutes(leg.Duration),
		})
	}
	return plan, false, nil
}

func (c *ClientImpl) buildTripURL(points []types.Coordinate) string {
	coords := make([]string, 0, len(points))
	for _, p := range points {
		// Provider expects lon,lat ordering.
		coords = append(coords, fmt.Sprintf("%f,%f", p.Lng, p.Lat))
	}

	query := url.Values{}
	query.Set("roundtrip", fmt.Sprintf("%t", c.opts.Roundtrip))
	query.Set("source", "first")
	query.Set("destination", "last")
	query.Set("overview", "full")
	query.Set("geometries", "polyline")

	return fmt.Sprintf("%s/trip/v1/%s/%s?%s",
		strings.TrimSuffix(c.opts.BaseURL, "/"),
		c.opts.Profile,
		strings.Join(coords, ";"),
		query.Encode())
}

// roundKm converts meters to kilometers with 2-decimal rounding.
func roundKm(meters float64) float64 {
	return math.Round(meters/10) / 100
}

// roundMinutes converts seconds to whole minutes.
func roundMinutes(seconds float64) int {
	return int(math.Round(seconds / 60))
}
