package conversation

import (
	"time"

	"github.com/google/uuid"

	"github.com/alienx/bianca/internal/stream"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Task is one planned unit of work inside a TaskSet. The slice of tasks
// is fixed once received and its order is display order.
type Task struct {
	AgentKind   string
	Description string
}

// AgentResult is the recorded outcome for one agent: either a payload or
// an error marker. Absence of a key in ResultsByAgent means the agent is
// still pending, not that it failed.
type AgentResult struct {
	Data  *stream.ResultData
	Error string
}

// Failed reports whether this result is an error marker.
func (r *AgentResult) Failed() bool {
	return r != nil && r.Error != ""
}

// TaskSet holds the planned tasks of one assistant message and the
// results merged in so far, keyed by agent display name. ResultsByAgent
// only grows during a session; no event removes a recorded result.
type TaskSet struct {
	Tasks          []Task
	ResultsByAgent map[string]*AgentResult
}

// ResultFor looks up the result slot for a task. This is the lookup
// contract the UI renders from: a nil result means still running, an
// error marker means failed, a payload means done.
func (ts *TaskSet) ResultFor(t Task) *AgentResult {
	return ts.ResultsByAgent[DisplayName(t.AgentKind)]
}

// Message is a single entry in the conversation.
type Message struct {
	ID           string
	Role         Role
	Content      string
	TaskSet      *TaskSet
	IsProcessing bool
	IsPlanning   bool
	CreatedAt    time.Time
}

func newMessage(role Role, content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}
