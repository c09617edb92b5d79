package insights

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-optimizer/internal/types"
)

func TestSynthesize(t *testing.T) {
	t.Run("never returns an empty result", func(t *testing.T) {
		result := Synthesize(types.InsightSnapshot{})
		require.NotNil(t, result)
		assert.NotEmpty(t, result.Summary)
		assert.NotEmpty(t, result.Tips)
	})

	t.Run("summary reflects the itinerary statistics", func(t *testing.T) {
		result := Synthesize(types.InsightSnapshot{
			AreaName:         "Porto",
			StopCount:        4,
			DayPart:          types.DayPartMorning,
			TotalDistanceKm:  11.5,
			TotalDurationMin: 130,
		})
		assert.Contains(t, result.Summary, "4 stops")
		assert.Contains(t, result.Summary, "Porto")
		assert.Contains(t, result.Summary, "11.5")
		assert.Contains(t, result.Summary, "2 hour(s)")
	})

	t.Run("missing area gets a generic placeholder", func(t *testing.T) {
		result := Synthesize(types.InsightSnapshot{StopCount: 2})
		assert.Contains(t, result.Summary, "your chosen area")
	})

	t.Run("short trips round up to one hour", func(t *testing.T) {
		result := Synthesize(types.InsightSnapshot{TotalDurationMin: 25})
		assert.Contains(t, result.Summary, "1 hour(s)")
	})

	t.Run("known vibes contribute tips", func(t *testing.T) {
		base := Synthesize(types.InsightSnapshot{DayPart: types.DayPartEvening})
		withVibe := Synthesize(types.InsightSnapshot{
			DayPart: types.DayPartEvening,
			Vibes:   []string{"Foodie"},
		})
		assert.Greater(t, len(withVibe.Tips), len(base.Tips))
	})

	t.Run("unknown vibes are ignored", func(t *testing.T) {
		base := Synthesize(types.InsightSnapshot{})
		withVibe := Synthesize(types.InsightSnapshot{Vibes: []string{"extreme-ironing"}})
		assert.Equal(t, len(base.Tips), len(withVibe.Tips))
	})

	t.Run("tip count never exceeds the cap", func(t *testing.T) {
		result := Synthesize(types.InsightSnapshot{
			DayPart: types.DayPartNight,
			Vibes:   []string{"foodie", "culture", "nature", "nightlife", "family", "romantic"},
		})
		assert.LessOrEqual(t, len(result.Tips), maxTipCount)
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		snapshot := types.InsightSnapshot{
			AreaName:         "Faro",
			StopCount:        3,
			Vibes:            []string{"nature"},
			DayPart:          types.DayPartSunset,
			TotalDistanceKm:  8.2,
			TotalDurationMin: 75,
		}
		assert.Equal(t, Synthesize(snapshot), Synthesize(snapshot))
	})

	t.Run("every day part has a usable template", func(t *testing.T) {
		dayParts := []types.DayPart{
			types.DayPartMorning, types.DayPartAfternoon, types.DayPartEvening,
			types.DayPartNight, types.DayPartSunset, types.DayPartAnytime,
		}
		for _, dp := range dayParts {
			t.Run(string(dp), func(t *testing.T) {
				result := Synthesize(types.InsightSnapshot{StopCount: 2, DayPart: dp})
				assert.NotContains(t, result.Summary, "%", fmt.Sprintf("unformatted template for %s", dp))
				assert.NotEmpty(t, result.Tips)
			})
		}
	})
}
