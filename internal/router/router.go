// Package router decomposes a user prompt into agent tasks. The actual
// decision is delegated to an LLM; when no model is available or the
// model's answer cannot be parsed, the prompt falls back to a single
// research task so the pipeline always has something to execute.
package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/alienx/bianca/internal/llm"
	"github.com/alienx/bianca/internal/stream"
)

// routingPrompt instructs the model to pick agents for a request. The
// output contract is the JSON plan decoded below.
const routingPrompt = `You are Bianca, an intelligent AI assistant. You are a task router with full decision-making power. Think about the user's request and determine the best agent(s) to handle it.

AVAILABLE AGENTS:
1. flowchart - Creates diagrams, flowcharts, process maps, visual workflows.
2. email - Drafts emails, replies, composes messages.
3. call - Makes phone calls. Use ONLY when a phone number is present or there is an explicit "call" command with a number.
4. research - Researches topics, finds information, explains concepts.
5. image - Generates images, visuals, graphics.
6. summary - Condenses uploaded files into summaries.
7. brainstorm - Generates ideas, wireframes, creative prompts.
8. document - Drafts reports, proposals, blog posts, essays.
9. case_study - Creates comprehensive case studies.
10. plotting - Creates charts (bar, pie, line) from data. Preserve chart type names exactly as the user requests.
11. checklist - Manages todos/checklists.
12. calendar - Manages events and schedules.
13. daily_digest - Analyzes data files to extract metrics and trends.
14. whatsapp - Sends messages via WhatsApp. Extract recipient and message content. Can be combined with other agents.
15. presentation - Creates slide presentations.
16. general - Greetings, questions about capabilities, unclear requests.

USER REQUEST:
"%s"

DECISION RULES:
- Think about what the user is trying to accomplish, not just keywords.
- Multiple distinct tasks get multiple agents.
- If unclear, use "general".

OUTPUT FORMAT (JSON):
{"reasoning": "why you chose these agents", "tasks": [{"agent": "agent_name", "task": "detailed task description", "priority": 1}]}

Priority: 1 = highest, execute first.

Return ONLY valid JSON. NO markdown, NO code blocks.`

// plan is the JSON shape the routing model returns.
type plan struct {
	Reasoning string        `json:"reasoning"`
	Tasks     []stream.Task `json:"tasks"`
}

// Planner routes prompts to agent tasks.
type Planner struct {
	client *llm.Client
}

// New creates a Planner. A nil client means every prompt falls back to
// the research agent.
func New(client *llm.Client) *Planner {
	return &Planner{client: client}
}

// Route decomposes a prompt into planned tasks. It never fails: routing
// errors degrade to a single research task carrying the raw prompt.
func (p *Planner) Route(ctx context.Context, prompt string) []stream.Task {
	if p.client == nil {
		return fallbackTasks(prompt)
	}

	var result plan
	if err := p.client.GenerateJSON(ctx, fmt.Sprintf(routingPrompt, prompt), &result); err != nil {
		log.Warn().Err(err).Msg("task routing failed, falling back to research agent")
		return fallbackTasks(prompt)
	}

	tasks := sanitizeTasks(result.Tasks)
	if len(tasks) == 0 {
		log.Warn().Str("reasoning", result.Reasoning).Msg("router returned no usable tasks, falling back to research agent")
		return fallbackTasks(prompt)
	}

	log.Debug().Int("task_count", len(tasks)).Str("reasoning", result.Reasoning).Msg("routed prompt to agents")
	return tasks
}

// sanitizeTasks drops entries the model produced without an agent or a
// task description.
func sanitizeTasks(tasks []stream.Task) []stream.Task {
	out := make([]stream.Task, 0, len(tasks))
	for _, t := range tasks {
		t.Agent = strings.TrimSpace(strings.ToLower(t.Agent))
		t.Task = strings.TrimSpace(t.Task)
		if t.Agent == "" || t.Task == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

func fallbackTasks(prompt string) []stream.Task {
	return []stream.Task{{Agent: "research", Task: prompt, Priority: 1}}
}
