package insights

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-trip-optimizer/internal/types"
)

// Sentence templates keyed by day-part. %d stops, %s area, %.1f km,
// %d hours.
var fallbackSummaryTemplates = map[types.DayPart]string{
	types.DayPartMorning:   "An early start with %d stops around %s, covering about %.1f km over roughly %d hour(s) of travel.",
	types.DayPartAfternoon: "A relaxed afternoon route with %d stops around %s, about %.1f km and roughly %d hour(s) on the road.",
	types.DayPartEvening:   "An evening outing with %d stops around %s, spanning about %.1f km and roughly %d hour(s) of travel.",
	types.DayPartNight:     "A night route through %d stops around %s, about %.1f km with roughly %d hour(s) of travel.",
	types.DayPartSunset:    "A golden-hour trip with %d stops around %s, covering about %.1f km over roughly %d hour(s).",
}

const fallbackSummaryDefault = "A trip with %d stops around %s, covering about %.1f km over roughly %d hour(s) of travel."

var fallbackVibeTips = map[string][]string{
	"foodie":    {"Book popular restaurants ahead, especially on weekends.", "Ask locals for their favorite spot, menus by the door rarely tell the whole story."},
	"culture":   {"Many museums offer discounted late-afternoon entry.", "Check for free guided tours at the main sights."},
	"nature":    {"Bring water and sun protection for outdoor stretches.", "Trails and parks are quietest right after opening."},
	"nightlife": {"Confirm closing times, they shift between weekdays and weekends.", "Keep a taxi app handy for the trip back."},
	"family":    {"Plan a backup indoor stop in case of rain.", "Space out the walking-heavy stops with breaks."},
	"romantic":  {"Reserve a table with a view for the last stop of the day.", "Sunset timing changes through the year, double-check it."},
}

var fallbackDayPartTips = map[types.DayPart][]string{
	types.DayPartMorning:   {"Start early to beat the crowds at the first stop.", "Grab breakfast before the first visit, options thin out mid-route."},
	types.DayPartAfternoon: {"Expect heavier traffic between 17:00 and 19:00.", "Some attractions close earlier than you'd expect, verify last entry times."},
	types.DayPartEvening:   {"Carry a light jacket, evenings cool down fast.", "Book dinner ahead, evening slots fill quickly."},
	types.DayPartNight:     {"Check which venues stay open past midnight.", "Plan your return transport before heading out."},
	types.DayPartSunset:    {"Arrive at viewpoints 30 minutes before sunset for the best light.", "Golden hour is short, keep the schedule tight around it."},
}

const maxVibeTipsPerVibe = 2
const maxDayPartTips = 2

// Synthesize deterministically derives a summary and tips from itinerary
// statistics alone. It never fails and performs no I/O, which makes it
// the terminal fallback whenever the model chain is exhausted.
func Synthesize(snapshot types.InsightSnapshot) *types.InsightResult {
	area := snapshot.AreaName
	if area == "" {
		area = "your chosen area"
	}

	hours := snapshot.TotalDurationMin / 60
	if hours < 1 {
		hours = 1
	}

	template, ok := fallbackSummaryTemplates[snapshot.DayPart]
	if !ok {
		template = fallbackSummaryDefault
	}
	summary := fmt.Sprintf(template, snapshot.StopCount, area, snapshot.TotalDistanceKm, hours)

	tips := []string{
		fmt.Sprintf("Plan for about %d hour(s) on the road in total.", hours),
		"Double-check opening hours before you set off.",
		"Check live traffic before each leg, estimates drift through the day.",
	}

	for _, vibe := range snapshot.Vibes {
		vibeTips, ok := fallbackVibeTips[strings.ToLower(strings.TrimSpace(vibe))]
		if !ok {
			continue
		}
		for i, tip := range vibeTips {
			if i == maxVibeTipsPerVibe {
				break
			}
			tips = append(tips, tip)
		}
	}

	if dayPartTips, ok := fallbackDayPartTips[snapshot.DayPart]; ok {
		for i, tip := range dayPartTips {
			if i == maxDayPartTips {
				break
			}
			tips = append(tips, tip)
		}
	}

	tips = append(tips, "Enjoy the trip, and leave room for the unplanned.")

	if len(tips) > maxTipCount {
		tips = tips[:maxTipCount]
	}

	return &types.InsightResult{Summary: summary, Tips: tips}
}
