package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var (
	trailingCommaBrace   = regexp.MustCompile(`,\s*}`)
	trailingCommaBracket = regexp.MustCompile(`,\s*]`)
)

// StripCodeFences removes markdown code fences that models wrap JSON
// responses in ("```json ... ```" or bare "```").
func StripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	return text
}

// RepairJSON attempts to repair malformed JSON. Strategies, in order:
// 1. Parse as-is
// 2. Remove trailing commas
// 3. Use the jsonrepair library as a sophisticated fallback
// It returns the (possibly) repaired JSON and whether any repair was
// applied.
func RepairJSON(raw string) (string, bool, error) {
	var probe interface{}

	// First, try to parse as-is
	if json.Unmarshal([]byte(raw), &probe) == nil {
		return raw, false, nil
	}

	repaired := trailingCommaBrace.ReplaceAllString(raw, "}")
	repaired = trailingCommaBracket.ReplaceAllString(repaired, "]")
	if json.Unmarshal([]byte(repaired), &probe) == nil {
		return repaired, true, nil
	}

	libraryRepaired, err := jsonrepair.JSONRepair(repaired)
	if err != nil {
		return repaired, true, err
	}
	if unmarshalErr := json.Unmarshal([]byte(libraryRepaired), &probe); unmarshalErr != nil {
		return libraryRepaired, true, unmarshalErr
	}

	return libraryRepaired, true, nil
}
