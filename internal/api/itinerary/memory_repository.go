package itinerary

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-trip-optimizer/internal/types"
)

var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository keeps itineraries in process memory. Used by tests
// and local development without a database.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[uuid.UUID][]byte)}
}

func (r *MemoryRepository) CreateItinerary(_ context.Context, itinerary *types.Itinerary) error {
	document, err := json.Marshal(itinerary)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[itinerary.ID] = document
	return nil
}

func (r *MemoryRepository) GetItinerary(_ context.Context, id uuid.UUID) (*types.Itinerary, error) {
	r.mu.RLock()
	document, ok := r.items[id]
	r.mu.RUnlock()
	if !ok {
		return nil, types.ErrNotFound
	}
	var itinerary types.Itinerary
	if err := json.Unmarshal(document, &itinerary); err != nil {
		return nil, err
	}
	return &itinerary, nil
}

func (r *MemoryRepository) SaveItinerary(_ context.Context, itinerary *types.Itinerary) error {
	itinerary.UpdatedAt = time.Now().UTC()
	document, err := json.Marshal(itinerary)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[itinerary.ID]; !ok {
		return types.ErrNotFound
	}
	r.items[itinerary.ID] = document
	return nil
}

// DeleteItinerary removes an itinerary. Used by tests simulating a
// concurrent delete racing a background job.
func (r *MemoryRepository) DeleteItinerary(_ context.Context, id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
}
