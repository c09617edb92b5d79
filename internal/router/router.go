package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/go-trip-optimizer/internal/api/itinerary"
	"github.com/FACorreiaa/go-trip-optimizer/internal/api/places"
)

// Config carries the handlers the router mounts.
type Config struct {
	ItineraryHandler *itinerary.HandlerImpl
	PlacesHandler    *places.HandlerImpl
}

// SetupRouter initializes the main application router. Server-wide
// middleware (logger, requestID, recoverer) are applied before mounting
// this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/itineraries", func(r chi.Router) {
			r.Post("/", cfg.ItineraryHandler.CreateItinerary)
			r.Route("/{itineraryID}", func(r chi.Router) {
				r.Get("/", cfg.ItineraryHandler.GetItinerary)
				r.Post("/stops", cfg.ItineraryHandler.AddStop)
				r.Delete("/stops/{stopID}", cfg.ItineraryHandler.RemoveStop)
				r.Put("/stops/reorder", cfg.ItineraryHandler.ReorderStops)
				r.Post("/optimize", cfg.ItineraryHandler.Optimize)
			})
		})

		r.Get("/places/suggest", cfg.PlacesHandler.SearchSuggestions)
	})

	return r
}
