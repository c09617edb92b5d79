package types

import "github.com/google/uuid"

type CreateItineraryRequest struct {
	Name        string      `json:"name"`
	AreaName    string      `json:"area_name,omitempty"`
	Preferences Preferences `json:"preferences"`
}

type AddStopRequest struct {
	Name               string   `json:"name"`
	Address            string   `json:"address,omitempty"`
	Latitude           *float64 `json:"latitude,omitempty"`
	Longitude          *float64 `json:"longitude,omitempty"`
	Category           string   `json:"category,omitempty"`
	Vibes              []string `json:"vibes,omitempty"`
	PlannedDurationMin int      `json:"planned_duration_min,omitempty"`
}

type ReorderStopsRequest struct {
	StopIDs []uuid.UUID `json:"stop_ids"`
}

// OptimizeResult is what the synchronous optimize call returns: the
// persisted itinerary (with AIProcessing true) plus the names of stops
// that had no coordinates and were left unscheduled.
type OptimizeResult struct {
	Itinerary    *Itinerary `json:"itinerary"`
	SkippedStops []string   `json:"skipped_stops,omitempty"`
}
