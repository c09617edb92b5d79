package types

import (
	"time"

	"github.com/google/uuid"
)

// Pace controls how long a visitor is expected to linger at each stop.
type Pace string

const (
	PaceLight    Pace = "light"
	PaceModerate Pace = "moderate"
	PaceIntense  Pace = "intense"
)

// DayPart is the named day-window preference for an itinerary.
type DayPart string

const (
	DayPartMorning   DayPart = "morning"
	DayPartAfternoon DayPart = "afternoon"
	DayPartEvening   DayPart = "evening"
	DayPartNight     DayPart = "night"
	DayPartSunset    DayPart = "sunset"
	DayPartAnytime   DayPart = "anytime"
)

// TimeSlot is the coarse time-of-day label stamped onto a scheduled stop.
type TimeSlot string

const (
	TimeSlotMorning   TimeSlot = "morning"
	TimeSlotAfternoon TimeSlot = "afternoon"
	TimeSlotEvening   TimeSlot = "evening"
	TimeSlotNight     TimeSlot = "night"
)

// TravelSegment describes the leg between a stop and the previous one.
type TravelSegment struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin int     `json:"duration_min"`
	Mode        string  `json:"mode"`
}

// Stop is one point of interest in the itinerary's visiting order.
// Latitude/Longitude are nil until the stop is located; stops referencing
// a bundled product instead of a single place never get coordinates.
type Stop struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Category  string    `json:"category,omitempty"`
	Vibes     []string  `json:"vibes,omitempty"`

	// Schedule fields, populated by the timeline builder.
	PlannedDurationMin int            `json:"planned_duration_min,omitempty"`
	StartTime          string         `json:"start_time,omitempty"` // "HH:MM"
	EndTime            string         `json:"end_time,omitempty"`   // "HH:MM"
	TimeSlot           TimeSlot       `json:"time_slot,omitempty"`
	TravelFromPrevious *TravelSegment `json:"travel_from_previous,omitempty"`
}

// Located reports whether the stop carries a usable coordinate pair.
func (s *Stop) Located() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// RouteLeg is the distance/duration pair for one travel segment.
type RouteLeg struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin int     `json:"duration_min"`
}

// RoutePlan is the routed result for an ordered set of located stops.
// Legs always holds one entry fewer than the number of routed stops.
type RoutePlan struct {
	TotalDistanceKm  float64    `json:"total_distance_km"`
	TotalDurationMin int        `json:"total_duration_min"`
	Geometry         string     `json:"geometry"` // opaque encoded polyline
	Legs             []RouteLeg `json:"legs"`
}

// InsightResult is the generated natural-language summary and tips pair.
// Summary and Tips are persisted together or not at all.
type InsightResult struct {
	Summary string   `json:"summary"`
	Tips    []string `json:"tips"`
}

// Preferences is the itinerary's preference block.
type Preferences struct {
	Pace       Pace    `json:"pace"`
	DayPart    DayPart `json:"day_part"`
	BudgetTier string  `json:"budget_tier,omitempty"`
	Language   string  `json:"language,omitempty"`
}

// Itinerary is the aggregate root the optimization pipeline operates on.
type Itinerary struct {
	ID           uuid.UUID      `json:"id"`
	Name         string         `json:"name"`
	AreaName     string         `json:"area_name,omitempty"`
	Stops        []Stop         `json:"stops"`
	Preferences  Preferences    `json:"preferences"`
	RoutePlan    *RoutePlan     `json:"route_plan,omitempty"`
	IsOptimized  bool           `json:"is_optimized"`
	AIInsights   *InsightResult `json:"ai_insights,omitempty"`
	AIProcessing bool           `json:"ai_processing"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// InvalidateOptimization clears routing and insight output after any
// stop mutation; a changed stop list makes both stale.
func (it *Itinerary) InvalidateOptimization() {
	it.IsOptimized = false
	it.RoutePlan = nil
	it.AIInsights = nil
	it.AIProcessing = false
	for i := range it.Stops {
		it.Stops[i].StartTime = ""
		it.Stops[i].EndTime = ""
		it.Stops[i].TimeSlot = ""
		it.Stops[i].TravelFromPrevious = nil
	}
}

// Coordinate is an ordered (lat, lng) pair handed to the routing client.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// InsightSnapshot is the read-only view of an itinerary the insight
// pipeline consumes. It carries everything the prompt and the fallback
// templates need, so neither ever touches the persistence layer.
type InsightSnapshot struct {
	AreaName  string
	StopNames []string
	StopCount int
	Vibes     []string
	DayPart   DayPart
	Language  string

	TotalDistanceKm  float64
	TotalDurationMin int
}

// PlaceSuggestion is a single autocomplete candidate from the places
// provider, carrying just enough to seed a Stop.
type PlaceSuggestion struct {
	Name      string   `json:"name"`
	Address   string   `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Category  string   `json:"category,omitempty"`
}
