package llm

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rotisserie/eris"
)

// ParseExtraction decodes a model response into an Extraction. Models
// sometimes wrap the JSON in code fences or prose, or emit slightly
// malformed JSON (trailing commas, single quotes); this strips the
// wrapping, then falls back to jsonrepair before giving up.
func ParseExtraction(raw string) (*Extraction, error) {
	body := extractJSONObject(raw)
	if body == "" {
		return nil, eris.New("llm: response contains no JSON object")
	}

	var ex Extraction
	if err := json.Unmarshal([]byte(body), &ex); err == nil {
		return &ex, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(body)
	if repairErr != nil {
		return nil, eris.Wrap(repairErr, "llm: repair response JSON")
	}
	if err := json.Unmarshal([]byte(repaired), &ex); err != nil {
		return nil, eris.Wrap(err, "llm: decode response JSON")
	}
	return &ex, nil
}

// extractJSONObject strips markdown fences and returns the outermost
// {...} span, or "" when none exists.
func extractJSONObject(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
