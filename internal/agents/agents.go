// Package agents implements the worker agents a routed task can be
// dispatched to. Each agent produces a typed result payload; a failing
// agent reports an error for its own slot without affecting the rest of
// the pipeline.
package agents

import (
	"context"
	"fmt"

	"github.com/alienx/bianca/internal/stream"
)

// Request is the input handed to an agent for one task.
type Request struct {
	// Task is the routed task description for this agent.
	Task string
	// Prompt is the user's original full prompt.
	Prompt string
	// Username identifies the requesting user for agents that touch
	// per-user state (checklist, calendar).
	Username string
}

// Agent executes one kind of task.
type Agent interface {
	// Kind returns the raw agent kind this agent handles.
	Kind() string
	// Run executes the task and returns its result payload.
	Run(ctx context.Context, req Request) (*stream.ResultData, error)
}

// Registry holds the available agents keyed by kind.
type Registry struct {
	agents map[string]Agent
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]Agent)}
}

// Register adds an agent. The last registration for a kind wins.
func (r *Registry) Register(a Agent) {
	r.agents[a.Kind()] = a
}

// Get returns the agent for a kind.
func (r *Registry) Get(kind string) (Agent, error) {
	a, ok := r.agents[kind]
	if !ok {
		return nil, fmt.Errorf("no agent registered for kind %q", kind)
	}
	return a, nil
}

// Kinds returns the registered agent kinds.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.agents))
	for k := range r.agents {
		kinds = append(kinds, k)
	}
	return kinds
}
