package insights

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/FACorreiaa/go-trip-optimizer/internal/types"
)

// Size bounds the persisted insight never exceeds, no matter what the
// model returned.
const (
	maxSummaryLength = 600
	maxTipLength     = 160
	maxTipCount      = 8
)

func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	// Remove markdown code block markers
	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	if strings.HasSuffix(response, "```") {
		response = strings.TrimSuffix(response, "```")
	}
	response = strings.TrimSpace(response)

	// Extract the JSON object from a response that might contain
	// explanatory text around it.
	firstBrace := strings.Index(response, "{")
	if firstBrace == -1 {
		return response
	}
	lastBrace := strings.LastIndex(response, "}")
	if lastBrace == -1 || lastBrace <= firstBrace {
		return response
	}
	return strings.TrimSpace(response[firstBrace : lastBrace+1])
}

// parseInsight validates a raw model reply against the summary+tips
// schema and normalizes it to the persisted size bounds.
func parseInsight(raw string) (*types.InsightResult, error) {
	cleanTxt := cleanJSONResponse(raw)

	var insightData struct {
		Summary string   `json:"summary"`
		Tips    []string `json:"tips"`
	}
	if err := json.Unmarshal([]byte(cleanTxt), &insightData); err != nil {
		return nil, fmt.Errorf("failed to parse insight JSON: %w", err)
	}

	insightData.Summary = strings.TrimSpace(insightData.Summary)
	if insightData.Summary == "" {
		return nil, fmt.Errorf("insight JSON has an empty summary")
	}
	if insightData.Tips == nil {
		return nil, fmt.Errorf("insight JSON is missing the tips array")
	}

	return normalizeInsight(insightData.Summary, insightData.Tips), nil
}

func normalizeInsight(summary string, tips []string) *types.InsightResult {
	summary = truncate(summary, maxSummaryLength)

	normalized := make([]string, 0, len(tips))
	for _, tip := range tips {
		tip = strings.TrimSpace(tip)
		if tip == "" {
			continue
		}
		normalized = append(normalized, truncate(tip, maxTipLength))
		if len(normalized) == maxTipCount {
			break
		}
	}

	return &types.InsightResult{Summary: summary, Tips: normalized}
}

// truncate cuts s to at most limit bytes without splitting a rune;
// replies come back in the itinerary's working language, so a byte cap
// can land mid-character.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
