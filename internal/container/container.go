package container

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-trip-optimizer/app/db"
	appmetrics "github.com/FACorreiaa/go-trip-optimizer/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-optimizer/config"
	"github.com/FACorreiaa/go-trip-optimizer/internal/api/insights"
	"github.com/FACorreiaa/go-trip-optimizer/internal/api/itinerary"
	"github.com/FACorreiaa/go-trip-optimizer/internal/api/places"
	"github.com/FACorreiaa/go-trip-optimizer/internal/api/routing"
	"github.com/FACorreiaa/go-trip-optimizer/internal/jobs"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	Pool             *pgxpool.Pool
	InsightRunner    *jobs.InsightRunner
	ItineraryHandler *itinerary.HandlerImpl
	PlacesHandler    *places.HandlerImpl
}

// NewContainer initializes and returns a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	appmetrics.InitAppMetrics()
	metrics := appmetrics.Get()

	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	itineraryRepo := itinerary.NewPostgresRepository(pool, logger)

	routingClient := routing.NewClientImpl(routing.Options{
		BaseURL:      cfg.Routing.BaseURL,
		Profile:      cfg.Routing.Profile,
		Roundtrip:    cfg.Routing.Roundtrip,
		Timeout:      cfg.Routing.Timeout,
		MaxRetries:   cfg.Routing.MaxRetries,
		RetryBackoff: cfg.Routing.RetryBackoff,
	}, logger)
	cachedRouting := routing.NewCachedClient(routingClient, cfg.Routing.CacheTTL, metrics, logger)

	generator, err := insights.NewAIClient(ctx)
	if err != nil {
		logger.Error("Failed to initialize AI client", slog.Any("error", err))
		return nil, err
	}
	orchestrator := insights.NewOrchestratorImpl(generator, cfg.Insights.Models, cfg.Insights.CallTimeout, logger)

	insightRunner := jobs.NewInsightRunner(itineraryRepo, orchestrator, cfg.Insights.JobTimeout, metrics, logger)

	itineraryService := itinerary.NewServiceImpl(itineraryRepo, cachedRouting, insightRunner, metrics, logger)
	itineraryHandler := itinerary.NewHandlerImpl(itineraryService, logger)

	placesService := places.NewServiceImpl(cfg.Places.BaseURL, cfg.Places.Timeout, cfg.Places.CacheTTL, metrics, logger)
	placesHandler := places.NewHandlerImpl(placesService, logger)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		Pool:             pool,
		InsightRunner:    insightRunner,
		ItineraryHandler: itineraryHandler,
		PlacesHandler:    placesHandler,
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// RunMigrations runs database migrations
func (c *Container) RunMigrations(connectionURL string) error {
	return database.RunMigrations(connectionURL, c.Logger)
}
