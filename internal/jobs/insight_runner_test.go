package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-optimizer/internal/api/itinerary"
	"github.com/FACorreiaa/go-trip-optimizer/internal/types"
)

// MockOrchestrator is a mock implementation of the insights Orchestrator interface
type MockOrchestrator struct {
	mock.Mock
}

func (m *MockOrchestrator) Generate(ctx context.Context, snapshot types.InsightSnapshot) (*types.InsightResult, error) {
	args := m.Called(ctx, snapshot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.InsightResult), args.Error(1)
}

// panickingOrchestrator blows up on every call.
type panickingOrchestrator struct{}

func (panickingOrchestrator) Generate(ctx context.Context, snapshot types.InsightSnapshot) (*types.InsightResult, error) {
	panic("model client exploded")
}

func seedItinerary(t *testing.T, store *itinerary.MemoryRepository) *types.Itinerary {
	t.Helper()
	it := &types.Itinerary{
		ID:           uuid.New(),
		Name:         "Evening in Alfama",
		AreaName:     "Lisbon",
		AIProcessing: true,
	}
	require.NoError(t, store.CreateItinerary(context.Background(), it))
	return it
}

var jobSnapshot = types.InsightSnapshot{
	AreaName:         "Lisbon",
	StopCount:        3,
	DayPart:          types.DayPartEvening,
	TotalDistanceKm:  4.2,
	TotalDurationMin: 70,
}

func TestInsightRunner(t *testing.T) {
	t.Run("successful generation is persisted and the flag flipped", func(t *testing.T) {
		store := itinerary.NewMemoryRepository()
		it := seedItinerary(t, store)
		orch := new(MockOrchestrator)
		orch.On("Generate", mock.Anything, jobSnapshot).
			Return(&types.InsightResult{Summary: "Nice evening.", Tips: []string{"tip"}}, nil)

		runner := NewInsightRunner(store, orch, time.Second, nil, slog.Default())
		runner.RunAsync(it.ID, jobSnapshot)
		runner.Wait()

		saved, err := store.GetItinerary(context.Background(), it.ID)
		require.NoError(t, err)
		assert.False(t, saved.AIProcessing)
		require.NotNil(t, saved.AIInsights)
		assert.Equal(t, "Nice evening.", saved.AIInsights.Summary)
	})

	t.Run("exhausted model chain persists the synthesized fallback", func(t *testing.T) {
		store := itinerary.NewMemoryRepository()
		it := seedItinerary(t, store)
		orch := new(MockOrchestrator)
		orch.On("Generate", mock.Anything, mock.Anything).Return(nil, types.ErrAllModelsFailed)

		runner := NewInsightRunner(store, orch, time.Second, nil, slog.Default())
		runner.RunAsync(it.ID, jobSnapshot)
		runner.Wait()

		saved, err := store.GetItinerary(context.Background(), it.ID)
		require.NoError(t, err)
		assert.False(t, saved.AIProcessing, "processing flag must always resolve")
		require.NotNil(t, saved.AIInsights, "fallback insight is never nil")
		assert.NotEmpty(t, saved.AIInsights.Summary)
		assert.NotEmpty(t, saved.AIInsights.Tips)
	})

	t.Run("a panicking orchestrator still resolves the job", func(t *testing.T) {
		store := itinerary.NewMemoryRepository()
		it := seedItinerary(t, store)

		runner := NewInsightRunner(store, panickingOrchestrator{}, time.Second, nil, slog.Default())
		runner.RunAsync(it.ID, jobSnapshot)
		runner.Wait()

		saved, err := store.GetItinerary(context.Background(), it.ID)
		require.NoError(t, err)
		assert.False(t, saved.AIProcessing)
		assert.NotNil(t, saved.AIInsights)
	})

	t.Run("itinerary deleted mid-flight exits cleanly", func(t *testing.T) {
		store := itinerary.NewMemoryRepository()
		it := seedItinerary(t, store)
		orch := new(MockOrchestrator)
		orch.On("Generate", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				store.DeleteItinerary(context.Background(), it.ID)
			}).
			Return(&types.InsightResult{Summary: "Too late.", Tips: []string{}}, nil)

		runner := NewInsightRunner(store, orch, time.Second, nil, slog.Default())
		runner.RunAsync(it.ID, jobSnapshot)
		runner.Wait()

		_, err := store.GetItinerary(context.Background(), it.ID)
		assert.ErrorIs(t, err, types.ErrNotFound, "job must not resurrect a deleted itinerary")
	})

	t.Run("a job that burns its whole deadline still resolves the flag", func(t *testing.T) {
		store := &deadlineStore{MemoryRepository: itinerary.NewMemoryRepository()}
		it := seedItinerary(t, store.MemoryRepository)

		runner := NewInsightRunner(store, exhaustingOrchestrator{}, 20*time.Millisecond, nil, slog.Default())
		runner.RunAsync(it.ID, jobSnapshot)
		runner.Wait()

		saved, err := store.GetItinerary(context.Background(), it.ID)
		require.NoError(t, err)
		assert.False(t, saved.AIProcessing, "the save must outlive the job deadline")
		assert.NotNil(t, saved.AIInsights)
	})

	t.Run("persist errors other than not-found are logged and dropped", func(t *testing.T) {
		store := &failingSaveStore{MemoryRepository: itinerary.NewMemoryRepository()}
		it := seedItinerary(t, store.MemoryRepository)
		orch := new(MockOrchestrator)
		orch.On("Generate", mock.Anything, mock.Anything).
			Return(&types.InsightResult{Summary: "x", Tips: []string{}}, nil)

		runner := NewInsightRunner(store, orch, time.Second, nil, slog.Default())
		runner.RunAsync(it.ID, jobSnapshot)
		runner.Wait()
	})
}

type failingSaveStore struct {
	*itinerary.MemoryRepository
}

func (s *failingSaveStore) SaveItinerary(ctx context.Context, it *types.Itinerary) error {
	return errors.New("connection reset")
}

// exhaustingOrchestrator holds the job context until its deadline, then
// fails, leaving no budget for anything still bound to that context.
type exhaustingOrchestrator struct{}

func (exhaustingOrchestrator) Generate(ctx context.Context, snapshot types.InsightSnapshot) (*types.InsightResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// deadlineStore refuses work on an expired context, the way a real
// database driver would.
type deadlineStore struct {
	*itinerary.MemoryRepository
}

func (s *deadlineStore) GetItinerary(ctx context.Context, id uuid.UUID) (*types.Itinerary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.MemoryRepository.GetItinerary(ctx, id)
}

func (s *deadlineStore) SaveItinerary(ctx context.Context, it *types.Itinerary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryRepository.SaveItinerary(ctx, it)
}
