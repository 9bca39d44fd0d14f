package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	cases := []struct {
		kind string
		want string
	}{
		{"research", "Research Agent"},
		{"flowchart", "Flowchart Agent"},
		{"case_study", "Case Study Agent"},
		{"daily_digest", "Daily Digest Agent"},
		{"whatsapp", "WhatsApp Agent"},
		{"general", "Assistant"},
		// Unknown kinds fall back to title-cased "<Kind> Agent".
		{"quantum_forecast", "Quantum Forecast Agent"},
		{"road-trip", "Road Trip Agent"},
		{"mystery", "Mystery Agent"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, DisplayName(tc.kind), "kind %q", tc.kind)
	}
}

func TestDisplayNameIsStable(t *testing.T) {
	// The same table serves both the task list and the result join, so
	// repeated lookups must agree.
	for kind := range displayNames {
		assert.Equal(t, DisplayName(kind), DisplayName(kind))
	}
}
