package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/alienx/bianca/internal/llm"
	"github.com/alienx/bianca/internal/stream"
)

var phonePattern = regexp.MustCompile(`\+?[\d\s\-()]{10,}`)

// CallAgent prepares an outbound phone call. It needs an explicit
// phone number in the task; with one, it drafts the opening line and
// talking points the voice pipeline reads from when the call connects.
type CallAgent struct {
	client *llm.Client
}

func NewCallAgent(client *llm.Client) *CallAgent {
	return &CallAgent{client: client}
}

func (a *CallAgent) Kind() string { return "call" }

func (a *CallAgent) Run(ctx context.Context, req Request) (*stream.ResultData, error) {
	match := phonePattern.FindString(req.Task)
	if match == "" {
		return stream.TextResult(a.Kind(),
			"No phone number detected in the request. Include one like +919876543210."), nil
	}
	number := cleanPhoneMatch(match)

	prompt := fmt.Sprintf(`Prepare a phone call for the following request. Write a short opening line and 3-5 talking points in markdown.

REQUEST: %s

The call goes to %s. Keep the tone natural and spoken, not written.`, req.Task, number)

	script, err := a.client.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("call agent failed: %w", err)
	}

	return stream.TextResult(a.Kind(),
		fmt.Sprintf("Call prepared for %s.\n\n%s", number, script)), nil
}

func cleanPhoneMatch(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, s)
}
