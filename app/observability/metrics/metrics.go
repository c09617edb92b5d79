package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	OptimizeRequestsTotal   metric.Int64Counter
	RoutingDurationSeconds  metric.Float64Histogram
	RoutingErrorsTotal      metric.Int64Counter
	InsightJobsTotal        metric.Int64Counter
	InsightFallbacksTotal   metric.Int64Counter
	InsightDurationSeconds  metric.Float64Histogram
	ProviderCacheHitsTotal  metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("TripOptimizer")
		var err error
		m := &AppMetrics{}

		m.OptimizeRequestsTotal, err = meter.Int64Counter(
			"optimize_requests_total",
			metric.WithDescription("Total number of itinerary optimize requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create optimize_requests_total: %v", err)
		}

		m.RoutingDurationSeconds, err = meter.Float64Histogram(
			"routing_request_duration_seconds",
			metric.WithDescription("Duration of routing provider calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create routing_request_duration_seconds: %v", err)
		}

		m.RoutingErrorsTotal, err = meter.Int64Counter(
			"routing_errors_total",
			metric.WithDescription("Total number of routing provider errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create routing_errors_total: %v", err)
		}

		m.InsightJobsTotal, err = meter.Int64Counter(
			"insight_jobs_total",
			metric.WithDescription("Total number of background insight jobs run"),
			metric.WithUnit("{job}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create insight_jobs_total: %v", err)
		}

		m.InsightFallbacksTotal, err = meter.Int64Counter(
			"insight_fallbacks_total",
			metric.WithDescription("Total number of insight jobs resolved by the offline fallback"),
			metric.WithUnit("{job}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create insight_fallbacks_total: %v", err)
		}

		m.InsightDurationSeconds, err = meter.Float64Histogram(
			"insight_job_duration_seconds",
			metric.WithDescription("Duration of background insight jobs in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create insight_job_duration_seconds: %v", err)
		}

		m.ProviderCacheHitsTotal, err = meter.Int64Counter(
			"provider_cache_hits_total",
			metric.WithDescription("Total number of routing/places cache hits"),
			metric.WithUnit("{hit}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create provider_cache_hits_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
