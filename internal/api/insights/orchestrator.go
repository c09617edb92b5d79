package insights

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-optimizer/internal/types"
)

const defaultCallTimeout = 12 * time.Second

var _ Orchestrator = (*OrchestratorImpl)(nil)

// Orchestrator defines the insight-generation contract. Generate builds
// the prompt from itinerary state and route metrics and walks the model
// chain until one model yields an acceptable summary+tips reply.
type Orchestrator interface {
	Generate(ctx context.Context, snapshot types.InsightSnapshot) (*types.InsightResult, error)
}

// OrchestratorImpl races each model call against a fixed per-call
// deadline; a timeout counts the same as a model-side failure and
// advances to the next model in the chain.
type OrchestratorImpl struct {
	logger      *slog.Logger
	generator   Generator
	models      []string // primary first, then fallbacks
	callTimeout time.Duration
}

func NewOrchestratorImpl(generator Generator, models []string, callTimeout time.Duration, logger *slog.Logger) *OrchestratorImpl {
	if len(models) == 0 {
		models = []string{"gemini-2.0-flash", "gemini-1.5-flash"}
	}
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &OrchestratorImpl{
		logger:      logger,
		generator:   generator,
		models:      models,
		callTimeout: callTimeout,
	}
}

func (o *OrchestratorImpl) Generate(ctx context.Context, snapshot types.InsightSnapshot) (*types.InsightResult, error) {
	ctx, span := otel.Tracer("InsightOrchestrator").Start(ctx, "Generate", trace.WithAttributes(
		attribute.Int("stops.count", snapshot.StopCount),
		attribute.String("day_part", string(snapshot.DayPart)),
		attribute.Int("models.count", len(o.models)),
	))
	defer span.End()

	prompt := getInsightPrompt(snapshot)
	span.SetAttributes(attribute.Int("prompt.length", len(prompt)))

	for _, model := range o.models {
		startTime := time.Now()
		result, err := o.tryModel(ctx, model, prompt)
		latencyMs := int(time.Since(startTime).Milliseconds())
		if err != nil {
			o.logger.WarnContext(ctx, "Model rejected, advancing in chain",
				slog.String("model", model),
				slog.Int("latency_ms", latencyMs),
				slog.Any("error", err))
			span.AddEvent("model rejected", trace.WithAttributes(
				attribute.String("model", model),
			))
			continue
		}

		o.logger.InfoContext(ctx, "Insight generated",
			slog.String("model", model),
			slog.Int("latency_ms", latencyMs),
			slog.Int("tips.count", len(result.Tips)))
		span.SetAttributes(
			attribute.String("model.used", model),
			attribute.Int("response.latency_ms", latencyMs),
		)
		span.SetStatus(codes.Ok, "Insight generated")
		return result, nil
	}

	span.SetStatus(codes.Error, "Model chain exhausted")
	return nil, types.ErrAllModelsFailed
}

// tryModel races a single model call against the per-call deadline and
// validates whatever came back.
func (o *OrchestratorImpl) tryModel(ctx context.Context, model, prompt string) (*types.InsightResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	type generated struct {
		txt string
		err error
	}
	resultCh := make(chan generated, 1)
	go func() {
		txt, err := o.generator.GenerateText(callCtx, model, prompt)
		resultCh <- generated{txt: txt, err: err}
	}()

	select {
	case <-callCtx.Done():
		return nil, fmt.Errorf("model %s timed out: %w", model, callCtx.Err())
	case res := <-resultCh:
		if res.err != nil {
			return nil, fmt.Errorf("model %s failed: %w", model, res.err)
		}
		result, err := parseInsight(res.txt)
		if err != nil {
			return nil, fmt.Errorf("model %s returned unusable output: %w", model, err)
		}
		return result, nil
	}
}
