package insights

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-trip-optimizer/internal/types"
)

// promptStopLimit caps how many stop names are embedded in the prompt.
const promptStopLimit = 5

func getInsightPrompt(snapshot types.InsightSnapshot) string {
	area := snapshot.AreaName
	if area == "" {
		area = "the selected area"
	}
	language := snapshot.Language
	if language == "" {
		language = "en"
	}
	dayPart := string(snapshot.DayPart)
	if dayPart == "" {
		dayPart = string(types.DayPartAnytime)
	}

	stopNames := snapshot.StopNames
	if len(stopNames) > promptStopLimit {
		stopNames = stopNames[:promptStopLimit]
	}

	prompt := fmt.Sprintf(`You are a local travel guide. A visitor planned a trip in %s:
    - %d stops, including: %s
    - Total driving distance: %.1f km
    - Total driving time: %d minutes
    - Preferred time of day: %s

    Write a short, warm summary of this trip and a list of practical tips for the visitor.

    Reply in language "%s".
    Format the response in JSON with the following structure, and nothing else:
    {
        "summary": "One or two sentences describing the trip",
        "tips": ["short practical tip", "another tip"]
    }`,
		area,
		snapshot.StopCount,
		strings.Join(stopNames, ", "),
		snapshot.TotalDistanceKm,
		snapshot.TotalDurationMin,
		dayPart,
		language,
	)

	return prompt
}
