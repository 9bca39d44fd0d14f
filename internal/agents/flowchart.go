package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/alienx/bianca/internal/llm"
	"github.com/alienx/bianca/internal/stream"
)

// FlowchartAgent produces Mermaid diagram source for process maps and
// workflows.
type FlowchartAgent struct {
	client *llm.Client
}

func NewFlowchartAgent(client *llm.Client) *FlowchartAgent {
	return &FlowchartAgent{client: client}
}

func (a *FlowchartAgent) Kind() string { return "flowchart" }

func (a *FlowchartAgent) Run(ctx context.Context, req Request) (*stream.ResultData, error) {
	prompt := fmt.Sprintf(`Create a Mermaid flowchart for the following request. Use "flowchart TD" syntax with short, readable node labels.

REQUEST: %s

Return ONLY the Mermaid source, no markdown fences, no explanation.`, req.Task)

	raw, err := a.client.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("flowchart agent failed: %w", err)
	}

	mermaid := llm.StripCodeFences(raw)
	// Models sometimes label the fence "mermaid" instead of "json".
	mermaid = strings.TrimSpace(strings.TrimPrefix(mermaid, "mermaid"))
	if mermaid == "" {
		return nil, fmt.Errorf("flowchart agent returned no diagram")
	}

	return &stream.ResultData{
		Kind: a.Kind(),
		Flowchart: &stream.FlowchartResult{
			Flowchart: mermaid,
			Title:     flowchartTitle(req.Task, mermaid),
		},
	}, nil
}

var nodeLabelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\w+\[([^\]]+)\]`),
	regexp.MustCompile(`\w+\{([^\}]+)\}`),
	regexp.MustCompile(`\w+\(([^\)]+)\)`),
}

var taskPrefixes = []string{
	"create a flowchart",
	"make a flowchart",
	"generate a flowchart",
	"draw a flowchart",
	"create flowchart",
	"create a diagram",
	"make a diagram",
	"draw a diagram",
	"illustrate",
	"show",
	"visualize",
}

// flowchartTitle derives a short display title, preferring the first
// meaningful node label in the diagram and falling back to the cleaned
// task description.
func flowchartTitle(task, mermaid string) string {
	var firstLabel string
	for _, re := range nodeLabelPatterns {
		for _, match := range re.FindAllStringSubmatch(mermaid, -1) {
			label := strings.TrimSpace(match[1])
			lower := strings.ToLower(label)
			// Skip generic labels like "Start" and "End".
			if len(label) > 3 && lower != "start" && lower != "end" && lower != "begin" && lower != "finish" {
				firstLabel = label
				break
			}
		}
		if firstLabel != "" {
			break
		}
	}

	if len(firstLabel) > 5 {
		return truncateTitle(firstLabel, 40)
	}

	cleaned := strings.TrimSpace(task)
	lowerCleaned := strings.ToLower(cleaned)
	for _, prefix := range taskPrefixes {
		if strings.HasPrefix(lowerCleaned, prefix) {
			cleaned = strings.TrimSpace(cleaned[len(prefix):])
			for _, connective := range []string{"of ", "for ", "about "} {
				if strings.HasPrefix(strings.ToLower(cleaned), connective) {
					cleaned = strings.TrimSpace(cleaned[len(connective):])
					break
				}
			}
			break
		}
	}

	if cleaned == "" {
		return "Flowchart Diagram"
	}
	cleaned = strings.ToUpper(cleaned[:1]) + cleaned[1:]
	return truncateTitle(cleaned, 35)
}

func truncateTitle(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return strings.TrimSpace(s[:maxLen]) + "..."
}
