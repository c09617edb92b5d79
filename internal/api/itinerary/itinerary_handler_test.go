package itinerary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-optimizer/internal/types"
)

// MockService is a mock implementation of the Service interface
type MockService struct {
	mock.Mock
}

func (m *MockService) CreateItinerary(ctx context.Context, req types.CreateItineraryRequest) (*types.Itinerary, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Itinerary), args.Error(1)
}

func (m *MockService) GetItinerary(ctx context.Context, id uuid.UUID) (*types.Itinerary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Itinerary), args.Error(1)
}

func (m *MockService) AddStop(ctx context.Context, id uuid.UUID, stop types.Stop) (*types.Itinerary, error) {
	args := m.Called(ctx, id, stop)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Itinerary), args.Error(1)
}

func (m *MockService) RemoveStop(ctx context.Context, id, stopID uuid.UUID) (*types.Itinerary, error) {
	args := m.Called(ctx, id, stopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Itinerary), args.Error(1)
}

func (m *MockService) ReorderStops(ctx context.Context, id uuid.UUID, orderedStopIDs []uuid.UUID) (*types.Itinerary, error) {
	args := m.Called(ctx, id, orderedStopIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Itinerary), args.Error(1)
}

func (m *MockService) Optimize(ctx context.Context, id uuid.UUID) (*types.OptimizeResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.OptimizeResult), args.Error(1)
}

func newTestRouter(service Service) chi.Router {
	handler := NewHandlerImpl(service, slog.Default())
	r := chi.NewRouter()
	r.Post("/itineraries", handler.CreateItinerary)
	r.Get("/itineraries/{itineraryID}", handler.GetItinerary)
	r.Post("/itineraries/{itineraryID}/stops", handler.AddStop)
	r.Post("/itineraries/{itineraryID}/optimize", handler.Optimize)
	return r
}

func TestCreateItineraryHandler(t *testing.T) {
	t.Run("creates and returns 201", func(t *testing.T) {
		service := new(MockService)
		service.On("CreateItinerary", mock.Anything, mock.Anything).
			Return(&types.Itinerary{ID: uuid.New(), Name: "Weekend"}, nil)

		body := bytes.NewBufferString(`{"name": "Weekend"}`)
		req := httptest.NewRequest(http.MethodPost, "/itineraries", body)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("missing name is a 400", func(t *testing.T) {
		service := new(MockService)
		body := bytes.NewBufferString(`{}`)
		req := httptest.NewRequest(http.MethodPost, "/itineraries", body)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		service.AssertNotCalled(t, "CreateItinerary", mock.Anything, mock.Anything)
	})
}

func TestGetItineraryHandler(t *testing.T) {
	t.Run("poll contract exposes the processing flag", func(t *testing.T) {
		id := uuid.New()
		service := new(MockService)
		service.On("GetItinerary", mock.Anything, id).Return(&types.Itinerary{
			ID:           id,
			Name:         "Weekend",
			AIProcessing: true,
			RoutePlan:    &types.RoutePlan{Geometry: "poly", TotalDistanceKm: 4.1, TotalDurationMin: 12},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/itineraries/"+id.String(), nil)
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["ai_processing"])
		assert.Nil(t, resp["ai_insights"])
		assert.Equal(t, "poly", resp["route_polyline"])
	})

	t.Run("unknown id is a 404", func(t *testing.T) {
		id := uuid.New()
		service := new(MockService)
		service.On("GetItinerary", mock.Anything, id).Return(nil, types.ErrNotFound)

		req := httptest.NewRequest(http.MethodGet, "/itineraries/"+id.String(), nil)
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id is a 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/itineraries/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		newTestRouter(new(MockService)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAddStopHandler(t *testing.T) {
	t.Run("half a coordinate is rejected", func(t *testing.T) {
		id := uuid.New()
		service := new(MockService)

		body := bytes.NewBufferString(`{"name": "Castelo", "latitude": 38.7}`)
		req := httptest.NewRequest(http.MethodPost, "/itineraries/"+id.String()+"/stops", body)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		service.AssertNotCalled(t, "AddStop", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unlocated stop is accepted", func(t *testing.T) {
		id := uuid.New()
		service := new(MockService)
		service.On("AddStop", mock.Anything, id, mock.MatchedBy(func(s types.Stop) bool {
			return s.Name == "Mystery Cafe" && s.Latitude == nil
		})).Return(&types.Itinerary{ID: id}, nil)

		body := bytes.NewBufferString(`{"name": "Mystery Cafe"}`)
		req := httptest.NewRequest(http.MethodPost, "/itineraries/"+id.String()+"/stops", body)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		service.AssertExpectations(t)
	})
}

func TestOptimizeHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"not found", types.ErrNotFound, http.StatusNotFound},
		{"insufficient points", types.ErrInsufficientPoints, http.StatusBadRequest},
		{"no route", types.ErrNoRouteFound, http.StatusUnprocessableEntity},
		{"provider unavailable", types.ErrProviderUnavailable, http.StatusServiceUnavailable},
		{"wrapped provider error", fmt.Errorf("wrapped: %w", types.ErrProviderUnavailable), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			service := new(MockService)
			service.On("Optimize", mock.Anything, id).Return(nil, tt.serviceErr)

			req := httptest.NewRequest(http.MethodPost, "/itineraries/"+id.String()+"/optimize", nil)
			rec := httptest.NewRecorder()
			newTestRouter(service).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
