package itinerary

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-optimizer/internal/types"
)

func newMockRepo(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return NewPostgresRepository(mockPool, slog.Default()), mockPool
}

func TestPostgresRepository(t *testing.T) {
	itinerary := &types.Itinerary{
		ID:        uuid.New(),
		Name:      "Porto weekend",
		AreaName:  "Porto",
		Stops:     []types.Stop{},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	t.Run("create inserts the document", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.ExpectExec("INSERT INTO itineraries").
			WithArgs(itinerary.ID, pgxmock.AnyArg(), false, itinerary.CreatedAt, itinerary.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.CreateItinerary(context.Background(), itinerary)
		require.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("get round-trips the document", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		document, err := json.Marshal(itinerary)
		require.NoError(t, err)
		mockPool.ExpectQuery("SELECT document FROM itineraries").
			WithArgs(itinerary.ID).
			WillReturnRows(pgxmock.NewRows([]string{"document"}).AddRow(document))

		loaded, err := repo.GetItinerary(context.Background(), itinerary.ID)
		require.NoError(t, err)
		assert.Equal(t, itinerary.ID, loaded.ID)
		assert.Equal(t, "Porto weekend", loaded.Name)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("get maps missing rows to not found", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.ExpectQuery("SELECT document FROM itineraries").
			WithArgs(itinerary.ID).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetItinerary(context.Background(), itinerary.ID)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("save updates the document and processing flag", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		updated := *itinerary
		updated.AIProcessing = true
		mockPool.ExpectExec("UPDATE itineraries").
			WithArgs(updated.ID, pgxmock.AnyArg(), true, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.SaveItinerary(context.Background(), &updated)
		require.NoError(t, err)
		assert.False(t, updated.UpdatedAt.IsZero())
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("save on a deleted itinerary reports not found", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.ExpectExec("UPDATE itineraries").
			WithArgs(itinerary.ID, pgxmock.AnyArg(), false, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.SaveItinerary(context.Background(), itinerary)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}
