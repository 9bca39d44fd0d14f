package conversation

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/alienx/bianca/internal/stream"
)

// User-visible labels for the lifecycle states of an assistant message.
const (
	planningContent    = "Planning your tasks..."
	processingContent  = "Working on your tasks..."
	completeContent    = "Here are your results:"
	failedContent      = "Something went wrong while processing your request."
	unreachableContent = "I couldn't reach the agent service. Please try again."
)

// State is the conversation owned by one chat session. All mutation
// goes through the reducer methods below; the internal mutex makes the
// state safe to share between the stream-pumping goroutine and whatever
// renders it.
type State struct {
	mu       sync.Mutex
	messages []*Message
}

// NewState returns an empty conversation.
func NewState() *State {
	return &State{}
}

// Messages returns a snapshot of the conversation in order. The returned
// slice is a copy; the message pointers are shared, so readers must not
// mutate them.
func (s *State) Messages() []*Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// AppendUser appends the user's prompt optimistically, before the
// request is sent.
func (s *State) AppendUser(content string) *Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := newMessage(RoleUser, content)
	s.messages = append(s.messages, m)
	return m
}

// AppendPlanning appends the transient placeholder shown between prompt
// submission and the first tasks event. Any previous placeholder is
// removed first, so at most one exists at a time.
func (s *State) AppendPlanning() *Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removePlanningLocked()
	m := newMessage(RoleAssistant, planningContent)
	m.IsPlanning = true
	s.messages = append(s.messages, m)
	return m
}

// Apply merges one stream event into the conversation. It is the only
// path through which streamed events mutate state, and events must be
// applied one at a time in arrival order.
func (s *State) Apply(ev *stream.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case stream.EventTasks:
		s.applyTasksLocked(ev)
	case stream.EventProcessing:
		// Progress notice only; the task list already renders pending state.
	case stream.EventResult:
		s.applyResultLocked(ev)
	case stream.EventComplete:
		s.finishLocked(completeContent)
	case stream.EventError:
		s.failLocked(ev.Error)
	default:
		log.Warn().Str("type", string(ev.Type)).Msg("ignoring stream event of unknown type")
	}
}

// FinishStream records the end of the underlying connection. Stream-end
// without a complete event has the same effect as complete; if a
// terminal event already fired this is a no-op. A stream that died
// before ever announcing tasks resolves the planning placeholder into a
// connectivity error instead.
func (s *State) FinishStream() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasPlanningLocked() {
		s.removePlanningLocked()
		s.messages = append(s.messages, newMessage(RoleAssistant, unreachableContent))
		return
	}
	s.finishLocked(completeContent)
}

func (s *State) applyTasksLocked(ev *stream.Event) {
	s.removePlanningLocked()

	tasks := make([]Task, 0, len(ev.Tasks))
	for _, t := range ev.Tasks {
		tasks = append(tasks, Task{AgentKind: t.Agent, Description: t.Task})
	}

	m := newMessage(RoleAssistant, processingContent)
	m.IsProcessing = true
	m.TaskSet = &TaskSet{
		Tasks:          tasks,
		ResultsByAgent: make(map[string]*AgentResult),
	}
	s.messages = append(s.messages, m)
}

func (s *State) applyResultLocked(ev *stream.Event) {
	target := s.openTargetLocked()
	if target == nil || target.TaskSet == nil {
		log.Warn().Str("agent", ev.Agent).Msg("dropping result event with no open streaming target")
		return
	}

	result := &AgentResult{Data: ev.Data}
	if ev.Data == nil {
		result.Error = ev.Error
	}

	// Last write wins for duplicate agents; recorded results for other
	// agents are never touched.
	target.TaskSet.ResultsByAgent[DisplayName(ev.Agent)] = result
}

func (s *State) finishLocked(content string) {
	target := s.openTargetLocked()
	if target == nil {
		return
	}
	target.IsProcessing = false
	target.Content = content
}

// failLocked handles a top-level error event: the whole open message
// fails, but results already merged stay visible.
func (s *State) failLocked(errMsg string) {
	if s.hasPlanningLocked() {
		s.removePlanningLocked()
		m := newMessage(RoleAssistant, failedContent)
		s.messages = append(s.messages, m)
		log.Error().Str("error", errMsg).Msg("stream failed before tasks were announced")
		return
	}

	target := s.openTargetLocked()
	if target == nil {
		return
	}
	target.IsProcessing = false
	target.Content = failedContent
	log.Error().Str("error", errMsg).Msg("stream reported top-level error")
}

// openTargetLocked returns the most recent assistant message still
// processing: the single open streaming target all result events apply to.
func (s *State) openTargetLocked() *Message {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == RoleAssistant && s.messages[i].IsProcessing {
			return s.messages[i]
		}
	}
	return nil
}

func (s *State) hasPlanningLocked() bool {
	for _, m := range s.messages {
		if m.IsPlanning {
			return true
		}
	}
	return false
}

func (s *State) removePlanningLocked() {
	kept := s.messages[:0]
	for _, m := range s.messages {
		if !m.IsPlanning {
			kept = append(kept, m)
		}
	}
	s.messages = kept
}
