package conversation

import "strings"

// displayNames maps raw agent kinds to the human-readable names shown in
// the task list and used as keys in ResultsByAgent. Both sides of the
// join use this single table, so a task always finds its result under
// the same key.
var displayNames = map[string]string{
	"flowchart":    "Flowchart Agent",
	"email":        "Email Agent",
	"call":         "Call Agent",
	"research":     "Research Agent",
	"image":        "Image Agent",
	"summary":      "Summary Agent",
	"brainstorm":   "Brainstorm Agent",
	"document":     "Document Agent",
	"case_study":   "Case Study Agent",
	"plotting":     "Plotting Agent",
	"checklist":    "Checklist Agent",
	"calendar":     "Calendar Agent",
	"daily_digest": "Daily Digest Agent",
	"whatsapp":     "WhatsApp Agent",
	"presentation": "Presentation Agent",
	"general":      "Assistant",
}

// DisplayName resolves a raw agent kind to its stable display name.
// Unknown kinds fall back to a title-cased "<Kind> Agent".
func DisplayName(kind string) string {
	if name, ok := displayNames[kind]; ok {
		return name
	}
	return titleCase(kind) + " Agent"
}

// titleCase capitalizes each underscore- or space-separated word.
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == ' ' || r == '-'
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
