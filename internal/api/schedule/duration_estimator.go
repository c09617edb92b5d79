package schedule

import (
	"strings"

	"github.com/FACorreiaa/go-trip-optimizer/internal/types"
)

// visitMinutes is the fixed {light, moderate, intense} dwell table, in
// minutes. Intense pacing packs more stops into the day, so each stop
// gets less time.
type visitMinutes [3]int

var categoryVisitMinutes = map[string]visitMinutes{
	"museum":     {120, 90, 60},
	"gallery":    {90, 60, 45},
	"historical": {60, 45, 30},
	"landmark":   {45, 30, 20},
	"park":       {90, 60, 40},
	"garden":     {60, 45, 30},
	"restaurant": {105, 90, 60},
	"cafe":       {45, 30, 20},
	"bar":        {90, 60, 45},
	"shopping":   {90, 60, 40},
	"market":     {60, 45, 30},
	"viewpoint":  {30, 20, 15},
	"beach":      {150, 120, 90},
}

var defaultVisitMinutes = visitMinutes{75, 60, 45}

// EstimateVisitDuration maps a stop category and a pacing preference to
// an expected dwell time in minutes. Deterministic lookup, no I/O; a stop
// already carrying an explicit positive duration never reaches here.
func EstimateVisitDuration(category string, pace types.Pace) int {
	triple, ok := categoryVisitMinutes[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		triple = defaultVisitMinutes
	}
	switch pace {
	case types.PaceLight:
		return triple[0]
	case types.PaceIntense:
		return triple[2]
	default:
		return triple[1]
	}
}
