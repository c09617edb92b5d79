package places

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	appmetrics "github.com/FACorreiaa/go-trip-optimizer/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-optimizer/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the POI-discovery contract: autocomplete suggestions for a
// free-text query, served through a TTL read-through cache.
type Service interface {
	SearchSuggestions(ctx context.Context, query string) ([]types.PlaceSuggestion, error)
}

// ServiceImpl wraps an external places API. Empty and rate-limited
// responses are cached as legitimate negative results so a struggling
// provider is not hit repeatedly for the same query.
type ServiceImpl struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	cache      *cache.Cache
	metrics    *appmetrics.AppMetrics
}

func NewServiceImpl(baseURL string, timeout, cacheTTL time.Duration, m *appmetrics.AppMetrics, logger *slog.Logger) *ServiceImpl {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Minute
	}
	return &ServiceImpl{
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		cache:      cache.New(cacheTTL, cacheTTL/2),
		metrics:    m,
	}
}

type suggestionsResponse struct {
	Suggestions []types.PlaceSuggestion `json:"suggestions"`
}

func (s *ServiceImpl) SearchSuggestions(ctx context.Context, query string) ([]types.PlaceSuggestion, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "SearchSuggestions")
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return []types.PlaceSuggestion{}, nil
	}

	key := "suggest:" + strings.ToLower(query)
	if entry, found := s.cache.Get(key); found {
		if s.metrics != nil {
			s.metrics.ProviderCacheHitsTotal.Add(ctx, 1)
		}
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return entry.([]types.PlaceSuggestion), nil
	}

	suggestions, err := s.fetch(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Places lookup failed")
		return nil, err
	}

	s.cache.SetDefault(key, suggestions)
	span.SetAttributes(attribute.Int("suggestions.count", len(suggestions)))
	span.SetStatus(codes.Ok, "Suggestions fetched")
	return suggestions, nil
}

func (s *ServiceImpl) fetch(ctx context.Context, query string) ([]types.PlaceSuggestion, error) {
	reqURL := fmt.Sprintf("%s/v1/autocomplete?%s", s.baseURL, url.Values{"q": {query}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build places request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()

	// A rate-limited provider yields an empty, cacheable result rather
	// than an error; the cache TTL throttles the retry storm.
	if resp.StatusCode == http.StatusTooManyRequests {
		s.logger.WarnContext(ctx, "Places provider rate-limited, caching empty result")
		return []types.PlaceSuggestion{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places provider returned status %d", resp.StatusCode)
	}

	var body suggestionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode places response: %w", err)
	}
	if body.Suggestions == nil {
		body.Suggestions = []types.PlaceSuggestion{}
	}
	return body.Suggestions, nil
}
