package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/alienx/bianca/internal/llm"
	"github.com/alienx/bianca/internal/store"
	"github.com/alienx/bianca/internal/stream"
)

// calendarIntent is the structured interpretation of a calendar task.
type calendarIntent struct {
	Action   string `json:"action"` // create, list, delete
	Title    string `json:"title"`
	Date     string `json:"date"` // YYYY-MM-DD
	Time     string `json:"time"` // HH:MM, 24h
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

// CalendarAgent manages a user's schedule from natural-language
// instructions.
type CalendarAgent struct {
	client *llm.Client
	repo   *store.CalendarRepo
	now    func() time.Time
}

func NewCalendarAgent(client *llm.Client, repo *store.CalendarRepo) *CalendarAgent {
	return &CalendarAgent{client: client, repo: repo, now: time.Now}
}

func (a *CalendarAgent) Kind() string { return "calendar" }

func (a *CalendarAgent) Run(ctx context.Context, req Request) (*stream.ResultData, error) {
	if req.Username == "" {
		return nil, fmt.Errorf("calendar agent requires a signed-in user")
	}

	intent, err := a.parseIntent(ctx, req.Task)
	if err != nil {
		return nil, fmt.Errorf("calendar agent failed: %w", err)
	}

	result, err := a.execute(ctx, req.Username, intent)
	if err != nil {
		return nil, fmt.Errorf("calendar agent failed: %w", err)
	}

	return &stream.ResultData{Kind: a.Kind(), Calendar: result}, nil
}

func (a *CalendarAgent) parseIntent(ctx context.Context, task string) (*calendarIntent, error) {
	prompt := fmt.Sprintf(`Interpret the following calendar instruction. Today is %s.

INSTRUCTION: %s

OUTPUT FORMAT (JSON):
{"action": "create|list|delete", "title": "event title", "date": "YYYY-MM-DD", "time": "HH:MM", "location": "", "notes": ""}

Resolve relative dates ("tomorrow", "next Friday") to absolute dates. Leave fields empty when not given.
Return ONLY valid JSON.`, a.now().Format("2006-01-02"), task)

	var intent calendarIntent
	if err := a.client.GenerateJSON(ctx, prompt, &intent); err != nil {
		return nil, err
	}
	if intent.Action == "" {
		return nil, fmt.Errorf("could not determine calendar action")
	}
	return &intent, nil
}

func (a *CalendarAgent) execute(ctx context.Context, username string, intent *calendarIntent) (*stream.CalendarResult, error) {
	switch intent.Action {
	case "create":
		startsAt, err := parseEventTime(intent.Date, intent.Time)
		if err != nil {
			return nil, err
		}

		ev := &store.CalendarEvent{
			Username: username,
			Title:    intent.Title,
			StartsAt: startsAt,
			Location: intent.Location,
			Notes:    intent.Notes,
		}
		if _, err := a.repo.CreateEvent(ctx, ev); err != nil {
			return nil, err
		}

		return &stream.CalendarResult{
			Message: fmt.Sprintf("Scheduled %q on %s.", ev.Title, ev.StartsAt.Format("Mon, 2 Jan 2006 at 15:04")),
			EventPreview: &stream.CalendarEvent{
				Title:    ev.Title,
				Date:     ev.StartsAt.Format("2006-01-02"),
				Time:     ev.StartsAt.Format("15:04"),
				Location: ev.Location,
				Notes:    ev.Notes,
			},
		}, nil

	case "list":
		from := a.now()
		to := from.AddDate(0, 0, 30)
		events, err := a.repo.ListEvents(ctx, username, from, to)
		if err != nil {
			return nil, err
		}

		details := make([]string, 0, len(events))
		for _, ev := range events {
			details = append(details, fmt.Sprintf("%s: %s", ev.StartsAt.Format("Mon, 2 Jan 15:04"), ev.Title))
		}
		return &stream.CalendarResult{
			Message: fmt.Sprintf("You have %d upcoming event(s).", len(events)),
			Details: details,
		}, nil

	case "delete":
		if err := a.repo.DeleteEvent(ctx, username, intent.Title); err != nil {
			return nil, err
		}
		return &stream.CalendarResult{
			Message: fmt.Sprintf("Deleted event %q.", intent.Title),
		}, nil

	default:
		return nil, fmt.Errorf("unsupported calendar action %q", intent.Action)
	}
}

// parseEventTime combines the date and optional time fields. Events
// without a time default to 09:00.
func parseEventTime(date, clock string) (time.Time, error) {
	if date == "" {
		return time.Time{}, fmt.Errorf("event date is required")
	}
	if clock == "" {
		clock = "09:00"
	}

	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse event time %q %q: %w", date, clock, err)
	}
	return t, nil
}
