package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	appmetrics "github.com/FACorreiaa/go-trip-optimizer/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-optimizer/internal/types"
)

var _ Client = (*CachedClient)(nil)

// cachedFailure wraps a provider outcome worth remembering. Rate-limited
// and empty responses are cached as negative results so repeated requests
// for the same stop set do not hammer an already struggling provider.
type cachedFailure struct {
	err error
}

// CachedClient is a TTL read-through decorator around a routing Client.
// It is safe for concurrent use from multiple simultaneous requests.
type CachedClient struct {
	logger  *slog.Logger
	inner   Client
	cache   *cache.Cache
	metrics *appmetrics.AppMetrics
}

func NewCachedClient(inner Client, ttl time.Duration, m *appmetrics.AppMetrics, logger *slog.Logger) *CachedClient {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedClient{
		logger:  logger,
		inner:   inner,
		cache:   cache.New(ttl, ttl/2),
		metrics: m,
	}
}

func (c *CachedClient) Route(ctx context.Context, points []types.Coordinate) (*types.RoutePlan, error) {
	if len(points) < 2 {
		// Rejected inputs are never cached.
		return nil, types.ErrInsufficientPoints
	}

	key := routeCacheKey(points)
	if entry, found := c.cache.Get(key); found {
		if c.metrics != nil {
			c.metrics.ProviderCacheHitsTotal.Add(ctx, 1)
		}
		c.logger.DebugContext(ctx, "Routing cache hit", slog.String("key", key))
		switch v := entry.(type) {
		case *types.RoutePlan:
			return v, nil
		case cachedFailure:
			return nil, v.err
		}
	}

	plan, err := c.inner.Route(ctx, points)
	if err != nil {
		if errors.Is(err, types.ErrNoRouteFound) || errors.Is(err, types.ErrProviderUnavailable) {
			c.cache.SetDefault(key, cachedFailure{err: err})
		}
		return nil, err
	}

	c.cache.SetDefault(key, plan)
	return plan, nil
}

func routeCacheKey(points []types.Coordinate) string {
	key := "route"
	for _, p := range points {
		key += fmt.Sprintf(":%.6f,%.6f", p.Lat, p.Lng)
	}
	return key
}
