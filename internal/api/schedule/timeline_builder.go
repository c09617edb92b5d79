package schedule

import (
	"fmt"

	"github.com/FACorreiaa/go-trip-optimizer/internal/types"
)

// walkingThresholdMin is the fixed travel-mode boundary: legs shorter
// than this are labelled "walking", everything else "driving".
const walkingThresholdMin = 5

// DayWindow is a clock window expressed in minutes since midnight.
type DayWindow struct {
	StartMin int
	EndMin   int
}

// dayPartWindows maps the day-part preference to its default window.
// Only the start bound seeds the schedule; the end bound is not
// enforced, so a long day may run past its nominal window.
var dayPartWindows = map[types.DayPart]DayWindow{
	types.DayPartMorning:   {StartMin: 7*60 + 30, EndMin: 11*60 + 30},
	types.DayPartAfternoon: {StartMin: 12*60 + 30, EndMin: 17 * 60},
	types.DayPartEvening:   {StartMin: 17*60 + 30, EndMin: 21*60 + 30},
	types.DayPartNight:     {StartMin: 20 * 60, EndMin: 23*60 + 59},
	types.DayPartSunset:    {StartMin: 17 * 60, EndMin: 20 * 60},
}

// fullDayWindow is the fallback for "anytime" and unrecognized values.
var fullDayWindow = DayWindow{StartMin: 9 * 60, EndMin: 21 * 60}

// ResolveDayWindow returns the clock window for a day-part preference.
func ResolveDayWindow(dayPart types.DayPart) DayWindow {
	if w, ok := dayPartWindows[dayPart]; ok {
		return w
	}
	return fullDayWindow
}

// BuildTimeline stamps start/end times, dwell durations, time-of-day
// labels and travel segments onto an ordered list of located stops.
// legs must hold exactly len(stops)-1 entries. The function is pure:
// it returns a new slice and never mutates its input, so identical
// inputs always yield identical output.
func BuildTimeline(stops []types.Stop, legs []types.RouteLeg, dayPart types.DayPart, pace types.Pace) ([]types.Stop, error) {
	if len(stops) == 0 {
		return []types.Stop{}, nil
	}
	if len(legs) != len(stops)-1 {
		return nil, fmt.Errorf("expected %d legs for %d stops, got %d", len(stops)-1, len(stops), len(legs))
	}

	out := make([]types.Stop, len(stops))
	copy(out, stops)

	cursor := ResolveDayWindow(dayPart).StartMin

	for i := range out {
		if i > 0 {
			leg := legs[i-1]
			cursor += leg.DurationMin
			mode := "driving"
			if leg.DurationMin < walkingThresholdMin {
				mode = "walking"
			}
			out[i].TravelFromPrevious = &types.TravelSegment{
				DistanceKm:  leg.DistanceKm,
				DurationMin: leg.DurationMin,
				Mode:        mode,
			}
		}

		dwell := out[i].PlannedDurationMin
		if dwell <= 0 {
			dwell = EstimateVisitDuration(out[i].Category, pace)
		}

		out[i].StartTime = formatClock(cursor)
		out[i].EndTime = formatClock(cursor + dwell)
		out[i].PlannedDurationMin = dwell
		out[i].TimeSlot = classifyTimeSlot(cursor)

		cursor += dwell
	}

	return out, nil
}

// classifyTimeSlot labels a minutes-since-midnight clock value with the
// fixed boundaries 12:00 / 17:00 / 21:00.
func classifyTimeSlot(minuteOfDay int) types.TimeSlot {
	clock := minuteOfDay % (24 * 60)
	switch {
	case clock < 12*60:
		return types.TimeSlotMorning
	case clock < 17*60:
		return types.TimeSlotAfternoon
	case clock < 21*60:
		return types.TimeSlotEvening
	default:
		return types.TimeSlotNight
	}
}

// formatClock renders minutes since midnight as "HH:MM". Values past
// midnight wrap within the day for display.
func formatClock(minuteOfDay int) string {
	clock := minuteOfDay % (24 * 60)
	return fmt.Sprintf("%02d:%02d", clock/60, clock%60)
}

// SplitLocated partitions stops into routable ones (carrying a valid
// coordinate) and skipped ones, preserving visiting order.
func SplitLocated(stops []types.Stop) (located []types.Stop, skipped []types.Stop) {
	for _, s := range stops {
		if s.Located() {
			located = append(located, s)
		} else {
			skipped = append(skipped, s)
		}
	}
	return located, skipped
}
