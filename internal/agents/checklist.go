package agents

import (
	"context"
	"fmt"

	"github.com/alienx/bianca/internal/llm"
	"github.com/alienx/bianca/internal/store"
	"github.com/alienx/bianca/internal/stream"
)

// checklistIntent is the structured interpretation of a checklist task.
type checklistIntent struct {
	Action string   `json:"action"` // add, complete, reopen, pin, unpin, delete, list
	Items  []string `json:"items"`
}

// ChecklistAgent manages a user's todos from natural-language
// instructions.
type ChecklistAgent struct {
	client *llm.Client
	repo   *store.ChecklistRepo
}

func NewChecklistAgent(client *llm.Client, repo *store.ChecklistRepo) *ChecklistAgent {
	return &ChecklistAgent{client: client, repo: repo}
}

func (a *ChecklistAgent) Kind() string { return "checklist" }

func (a *ChecklistAgent) Run(ctx context.Context, req Request) (*stream.ResultData, error) {
	if req.Username == "" {
		return nil, fmt.Errorf("checklist agent requires a signed-in user")
	}

	intent, err := a.parseIntent(ctx, req.Task)
	if err != nil {
		return nil, fmt.Errorf("checklist agent failed: %w", err)
	}

	result, err := a.execute(ctx, req.Username, intent)
	if err != nil {
		return nil, fmt.Errorf("checklist agent failed: %w", err)
	}

	return &stream.ResultData{Kind: a.Kind(), Checklist: result}, nil
}

func (a *ChecklistAgent) parseIntent(ctx context.Context, task string) (*checklistIntent, error) {
	prompt := fmt.Sprintf(`Interpret the following checklist instruction.

INSTRUCTION: %s

OUTPUT FORMAT (JSON):
{"action": "add|complete|reopen|pin|unpin|delete|list", "items": ["item text", "..."]}

"items" holds the todo texts the instruction refers to; leave it empty for "list".
Return ONLY valid JSON.`, task)

	var intent checklistIntent
	if err := a.client.GenerateJSON(ctx, prompt, &intent); err != nil {
		return nil, err
	}
	if intent.Action == "" {
		return nil, fmt.Errorf("could not determine checklist action")
	}
	return &intent, nil
}

func (a *ChecklistAgent) execute(ctx context.Context, username string, intent *checklistIntent) (*stream.ChecklistResult, error) {
	switch intent.Action {
	case "add":
		details := make([]string, 0, len(intent.Items))
		for _, text := range intent.Items {
			item, err := a.repo.AddItem(ctx, username, text)
			if err != nil {
				return nil, err
			}
			details = append(details, item.Text)
		}
		return &stream.ChecklistResult{
			Message: fmt.Sprintf("Added %d item(s) to your checklist.", len(details)),
			Details: details,
		}, nil

	case "complete", "reopen":
		done := intent.Action == "complete"
		details := make([]string, 0, len(intent.Items))
		for _, text := range intent.Items {
			item, err := a.repo.MarkDone(ctx, username, text, done)
			if err != nil {
				return nil, err
			}
			details = append(details, item.Text)
		}
		verb := "Reopened"
		if done {
			verb = "Completed"
		}
		return &stream.ChecklistResult{
			Message: fmt.Sprintf("%s %d item(s).", verb, len(details)),
			Details: details,
		}, nil

	case "pin", "unpin":
		pinned := intent.Action == "pin"
		details := make([]string, 0, len(intent.Items))
		for _, text := range intent.Items {
			item, err := a.repo.PinItem(ctx, username, text, pinned)
			if err != nil {
				return nil, err
			}
			details = append(details, item.Text)
		}
		return &stream.ChecklistResult{
			Message: fmt.Sprintf("Updated %d item(s).", len(details)),
			Details: details,
		}, nil

	case "delete":
		for _, text := range intent.Items {
			if err := a.repo.DeleteItem(ctx, username, text); err != nil {
				return nil, err
			}
		}
		return &stream.ChecklistResult{
			Message: fmt.Sprintf("Deleted %d item(s).", len(intent.Items)),
			Details: intent.Items,
		}, nil

	case "list":
		items, err := a.repo.ListItems(ctx, username)
		if err != nil {
			return nil, err
		}
		details := make([]string, 0, len(items))
		for _, item := range items {
			marker := "[ ]"
			if item.Done {
				marker = "[x]"
			}
			details = append(details, fmt.Sprintf("%s %s", marker, item.Text))
		}
		return &stream.ChecklistResult{
			Message: fmt.Sprintf("You have %d item(s) on your checklist.", len(items)),
			Details: details,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported checklist action %q", intent.Action)
	}
}
