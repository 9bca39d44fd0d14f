package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alienx/bianca/internal/llm"
	"github.com/alienx/bianca/internal/store"
	"github.com/alienx/bianca/internal/stream"
)

// DailyDigestAgent summarizes a user's open checklist items and
// upcoming calendar events into a short daily briefing. The digest job
// sends its output over WhatsApp each morning.
type DailyDigestAgent struct {
	client    *llm.Client
	checklist *store.ChecklistRepo
	calendar  *store.CalendarRepo
	now       func() time.Time
}

func NewDailyDigestAgent(client *llm.Client, checklist *store.ChecklistRepo, calendar *store.CalendarRepo) *DailyDigestAgent {
	return &DailyDigestAgent{client: client, checklist: checklist, calendar: calendar, now: time.Now}
}

func (a *DailyDigestAgent) Kind() string { return "daily_digest" }

func (a *DailyDigestAgent) Run(ctx context.Context, req Request) (*stream.ResultData, error) {
	if req.Username == "" {
		return nil, fmt.Errorf("daily digest agent requires a signed-in user")
	}

	items, err := a.checklist.ListItems(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("daily digest agent failed: %w", err)
	}

	from := a.now()
	events, err := a.calendar.ListEvents(ctx, req.Username, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("daily digest agent failed: %w", err)
	}

	var facts strings.Builder
	facts.WriteString("OPEN TODOS:\n")
	openCount := 0
	for _, item := range items {
		if item.Done {
			continue
		}
		openCount++
		facts.WriteString("- " + item.Text + "\n")
	}
	if openCount == 0 {
		facts.WriteString("(none)\n")
	}
	facts.WriteString("TODAY'S EVENTS:\n")
	for _, ev := range events {
		fmt.Fprintf(&facts, "- %s at %s\n", ev.Title, ev.StartsAt.Format("15:04"))
	}
	if len(events) == 0 {
		facts.WriteString("(none)\n")
	}

	prompt := fmt.Sprintf(`Write a short, friendly daily briefing from the facts below. Two or three sentences plus a compact list. Do not invent items.

%s`, facts.String())

	text, err := a.client.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("daily digest agent failed: %w", err)
	}

	return stream.TextResult(a.Kind(), text), nil
}
