package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/go-trip-optimizer/internal/types"
)

// Repository is the only persistence contract the optimization pipeline
// requires: load a document by id, save it back.
type Repository interface {
	CreateItinerary(ctx context.Context, itinerary *types.Itinerary) error
	GetItinerary(ctx context.Context, id uuid.UUID) (*types.Itinerary, error)
	SaveItinerary(ctx context.Context, itinerary *types.Itinerary) error
}

// PgxPool abstracts the pgx pool so the repository can run against
// pgxmock in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Repository = (*PostgresRepository)(nil)

// PostgresRepository stores each itinerary as a JSONB document. The
// processing flag is mirrored into its own column so operators can query
// stuck jobs without unpacking documents.
type PostgresRepository struct {
	logger *slog.Logger
	pool   PgxPool
}

func NewPostgresRepository(pool PgxPool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pool:   pool,
	}
}

func (r *PostgresRepository) CreateItinerary(ctx context.Context, itinerary *types.Itinerary) error {
	document, err := json.Marshal(itinerary)
	if err != nil {
		return fmt.Errorf("failed to marshal itinerary: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO itineraries (id, document, ai_processing, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		itinerary.ID, document, itinerary.AIProcessing, itinerary.CreatedAt, itinerary.UpdatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert itinerary", slog.Any("error", err))
		return fmt.Errorf("failed to insert itinerary: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetItinerary(ctx context.Context, id uuid.UUID) (*types.Itinerary, error) {
	var document []byte
	err := r.pool.QueryRow(ctx,
		`SELECT document FROM itineraries WHERE id = $1`, id).Scan(&document)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to load itinerary", slog.Any("error", err))
		return nil, fmt.Errorf("failed to load itinerary: %w", err)
	}

	var itinerary types.Itinerary
	if err := json.Unmarshal(document, &itinerary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal itinerary document: %w", err)
	}
	return &itinerary, nil
}

func (r *PostgresRepository) SaveItinerary(ctx context.Context, itinerary *types.Itinerary) error {
	itinerary.UpdatedAt = time.Now().UTC()
	document, err := json.Marshal(itinerary)
	if err != nil {
		return fmt.Errorf("failed to marshal itinerary: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE itineraries
		 SET document = $2, ai_processing = $3, updated_at = $4
		 WHERE id = $1`,
		itinerary.ID, document, itinerary.AIProcessing, itinerary.UpdatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to save itinerary", slog.Any("error", err))
		return fmt.Errorf("failed to save itinerary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
