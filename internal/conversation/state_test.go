package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alienx/bianca/internal/stream"
)

func tasksEvent(tasks ...stream.Task) *stream.Event {
	return &stream.Event{Type: stream.EventTasks, Tasks: tasks}
}

func resultEvent(agent string, data *stream.ResultData) *stream.Event {
	return &stream.Event{Type: stream.EventResult, Agent: agent, Data: data}
}

func resultErrorEvent(agent, errMsg string) *stream.Event {
	return &stream.Event{Type: stream.EventResult, Agent: agent, Error: errMsg}
}

// lastAssistant returns the newest assistant message.
func lastAssistant(t *testing.T, s *State) *Message {
	t.Helper()
	msgs := s.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleAssistant {
			return msgs[i]
		}
	}
	t.Fatal("no assistant message in conversation")
	return nil
}

func TestAppendPlanning(t *testing.T) {
	t.Run("placeholder follows the user message", func(t *testing.T) {
		s := NewState()
		s.AppendUser("plan my week")
		s.AppendPlanning()

		msgs := s.Messages()
		require.Len(t, msgs, 2)
		assert.Equal(t, RoleUser, msgs[0].Role)
		assert.Equal(t, RoleAssistant, msgs[1].Role)
		assert.True(t, msgs[1].IsPlanning)
	})

	t.Run("at most one placeholder exists", func(t *testing.T) {
		s := NewState()
		s.AppendUser("first")
		s.AppendPlanning()
		s.AppendUser("second")
		s.AppendPlanning()

		planning := 0
		for _, m := range s.Messages() {
			if m.IsPlanning {
				planning++
			}
		}
		assert.Equal(t, 1, planning)
	})
}

func TestApplyTasks(t *testing.T) {
	s := NewState()
	s.AppendUser("research X and draft an email")
	s.AppendPlanning()

	s.Apply(tasksEvent(
		stream.Task{Agent: "research", Task: "research X"},
		stream.Task{Agent: "email", Task: "draft an email"},
	))

	msgs := s.Messages()
	require.Len(t, msgs, 2, "placeholder must be replaced, not kept")

	m := msgs[1]
	assert.False(t, m.IsPlanning)
	assert.True(t, m.IsProcessing)
	require.NotNil(t, m.TaskSet)
	require.Len(t, m.TaskSet.Tasks, 2)
	assert.Equal(t, "research", m.TaskSet.Tasks[0].AgentKind)
	assert.Equal(t, "draft an email", m.TaskSet.Tasks[1].Description)
	assert.Empty(t, m.TaskSet.ResultsByAgent)
}

func TestApplyResult(t *testing.T) {
	newStreaming := func(t *testing.T, kinds ...string) (*State, *Message) {
		t.Helper()
		s := NewState()
		s.AppendUser("prompt")
		s.AppendPlanning()
		tasks := make([]stream.Task, len(kinds))
		for i, k := range kinds {
			tasks[i] = stream.Task{Agent: k, Task: "do " + k}
		}
		s.Apply(tasksEvent(tasks...))
		return s, lastAssistant(t, s)
	}

	t.Run("results land under the task's display name", func(t *testing.T) {
		s, m := newStreaming(t, "research", "email")

		s.Apply(resultEvent("research", &stream.ResultData{Kind: "research", Research: &stream.ResearchResult{Result: "found it"}}))

		result := m.TaskSet.ResultFor(m.TaskSet.Tasks[0])
		require.NotNil(t, result)
		assert.False(t, result.Failed())
		assert.Equal(t, "found it", result.Data.Research.Result)

		assert.Nil(t, m.TaskSet.ResultFor(m.TaskSet.Tasks[1]), "email still pending")
	})

	t.Run("a later duplicate overwrites only its own slot", func(t *testing.T) {
		s, m := newStreaming(t, "research", "email")

		s.Apply(resultEvent("email", stream.TextResult("email", "draft one")))
		s.Apply(resultEvent("research", stream.TextResult("research", "first")))
		s.Apply(resultEvent("research", stream.TextResult("research", "second")))

		assert.Equal(t, "second", m.TaskSet.ResultFor(m.TaskSet.Tasks[0]).Data.Text)
		assert.Equal(t, "draft one", m.TaskSet.ResultFor(m.TaskSet.Tasks[1]).Data.Text)
	})

	t.Run("result without data records an error marker", func(t *testing.T) {
		s, m := newStreaming(t, "flowchart")

		s.Apply(resultErrorEvent("flowchart", "diagram generation failed"))

		result := m.TaskSet.ResultFor(m.TaskSet.Tasks[0])
		require.NotNil(t, result)
		assert.True(t, result.Failed())
		assert.Equal(t, "diagram generation failed", result.Error)
	})

	t.Run("a failed slot can still be overwritten by success", func(t *testing.T) {
		s, m := newStreaming(t, "research")

		s.Apply(resultErrorEvent("research", "timed out"))
		s.Apply(resultEvent("research", stream.TextResult("research", "recovered")))

		result := m.TaskSet.ResultFor(m.TaskSet.Tasks[0])
		assert.False(t, result.Failed())
		assert.Equal(t, "recovered", result.Data.Text)
	})

	t.Run("result with no open target is dropped", func(t *testing.T) {
		s := NewState()
		s.AppendUser("prompt")
		s.Apply(resultEvent("research", stream.TextResult("research", "orphan")))
		assert.Len(t, s.Messages(), 1)
	})

	t.Run("unknown agent kinds get a derived display name", func(t *testing.T) {
		s, m := newStreaming(t, "quantum_forecast")

		s.Apply(resultEvent("quantum_forecast", stream.TextResult("quantum_forecast", "42")))

		result := m.TaskSet.ResultFor(m.TaskSet.Tasks[0])
		require.NotNil(t, result, "task and result must join on the same derived name")
		assert.Equal(t, "42", result.Data.Text)
	})
}

func TestComplete(t *testing.T) {
	t.Run("complete finalizes the streaming message", func(t *testing.T) {
		s := NewState()
		s.AppendUser("prompt")
		s.AppendPlanning()
		s.Apply(tasksEvent(stream.Task{Agent: "general", Task: "answer"}))
		s.Apply(resultEvent("general", stream.TextResult("general", "hello")))
		s.Apply(&stream.Event{Type: stream.EventComplete})

		m := lastAssistant(t, s)
		assert.False(t, m.IsProcessing)
		assert.Equal(t, "Here are your results:", m.Content)
		assert.Equal(t, "hello", m.TaskSet.ResultFor(m.TaskSet.Tasks[0]).Data.Text)
	})

	t.Run("duplicate terminal events are no-ops", func(t *testing.T) {
		s := NewState()
		s.AppendUser("prompt")
		s.AppendPlanning()
		s.Apply(tasksEvent(stream.Task{Agent: "general", Task: "answer"}))
		s.Apply(&stream.Event{Type: stream.EventComplete})

		before := len(s.Messages())
		s.Apply(&stream.Event{Type: stream.EventComplete})
		s.FinishStream()

		msgs := s.Messages()
		assert.Len(t, msgs, before)
		assert.Equal(t, "Here are your results:", lastAssistant(t, s).Content)
	})
}

func TestStreamError(t *testing.T) {
	t.Run("error before tasks replaces the placeholder", func(t *testing.T) {
		s := NewState()
		s.AppendUser("prompt")
		s.AppendPlanning()
		s.Apply(&stream.Event{Type: stream.EventError, Error: "no prompt provided"})

		msgs := s.Messages()
		require.Len(t, msgs, 2)
		m := msgs[1]
		assert.False(t, m.IsPlanning)
		assert.Equal(t, "Something went wrong while processing your request.", m.Content)
	})

	t.Run("error mid-stream keeps merged results visible", func(t *testing.T) {
		s := NewState()
		s.AppendUser("prompt")
		s.AppendPlanning()
		s.Apply(tasksEvent(
			stream.Task{Agent: "research", Task: "look up"},
			stream.Task{Agent: "email", Task: "draft"},
		))
		s.Apply(resultEvent("research", stream.TextResult("research", "partial")))
		s.Apply(&stream.Event{Type: stream.EventError, Error: "backend crashed"})

		m := lastAssistant(t, s)
		assert.False(t, m.IsProcessing)
		assert.Equal(t, "Something went wrong while processing your request.", m.Content)
		assert.Equal(t, "partial", m.TaskSet.ResultFor(m.TaskSet.Tasks[0]).Data.Text)
		assert.Nil(t, m.TaskSet.ResultFor(m.TaskSet.Tasks[1]))
	})
}

func TestFinishStream(t *testing.T) {
	t.Run("connection drop mid-stream finalizes like complete", func(t *testing.T) {
		s := NewState()
		s.AppendUser("prompt")
		s.AppendPlanning()
		s.Apply(tasksEvent(stream.Task{Agent: "research", Task: "look up"}))
		s.Apply(resultEvent("research", stream.TextResult("research", "done")))
		s.FinishStream()

		m := lastAssistant(t, s)
		assert.False(t, m.IsProcessing)
		assert.Equal(t, "Here are your results:", m.Content)
		assert.Equal(t, "done", m.TaskSet.ResultFor(m.TaskSet.Tasks[0]).Data.Text)
	})

	t.Run("drop after tasks but before any result leaves empty slots", func(t *testing.T) {
		s := NewState()
		s.AppendUser("prompt")
		s.AppendPlanning()
		s.Apply(tasksEvent(
			stream.Task{Agent: "research", Task: "a"},
			stream.Task{Agent: "email", Task: "b"},
			stream.Task{Agent: "flowchart", Task: "c"},
		))
		s.FinishStream()

		m := lastAssistant(t, s)
		assert.False(t, m.IsProcessing)
		assert.Len(t, m.TaskSet.Tasks, 3)
		assert.Empty(t, m.TaskSet.ResultsByAgent)
	})

	t.Run("connection failure before any event yields a connectivity message", func(t *testing.T) {
		s := NewState()
		s.AppendUser("prompt")
		s.AppendPlanning()
		s.FinishStream()

		msgs := s.Messages()
		require.Len(t, msgs, 2)
		m := msgs[1]
		assert.False(t, m.IsPlanning)
		assert.False(t, m.IsProcessing)
		assert.Equal(t, "I couldn't reach the agent service. Please try again.", m.Content)
	})
}

// Full sessions exercised end to end, event order exactly as a server
// would emit them.
func TestSessionScenarios(t *testing.T) {
	t.Run("two task research and flowchart session", func(t *testing.T) {
		s := NewState()
		s.AppendUser("research solar panels and draw the install flow")
		s.AppendPlanning()

		s.Apply(tasksEvent(
			stream.Task{Agent: "research", Task: "research solar panels"},
			stream.Task{Agent: "flowchart", Task: "draw the install flow"},
		))
		s.Apply(&stream.Event{Type: stream.EventProcessing, Agent: "research", Index: 0})
		s.Apply(resultEvent("research", &stream.ResultData{Kind: "research", Research: &stream.ResearchResult{Result: "panels compared"}}))
		s.Apply(&stream.Event{Type: stream.EventProcessing, Agent: "flowchart", Index: 1})
		s.Apply(resultEvent("flowchart", &stream.ResultData{Kind: "flowchart", Flowchart: &stream.FlowchartResult{Flowchart: "graph TD;A-->B", Title: "Install Flow"}}))
		s.Apply(&stream.Event{Type: stream.EventComplete})
		s.FinishStream()

		msgs := s.Messages()
		require.Len(t, msgs, 2)
		m := msgs[1]
		assert.Equal(t, "Here are your results:", m.Content)
		require.Len(t, m.TaskSet.Tasks, 2)
		assert.Equal(t, "panels compared", m.TaskSet.ResultFor(m.TaskSet.Tasks[0]).Data.Research.Result)
		assert.Equal(t, "Install Flow", m.TaskSet.ResultFor(m.TaskSet.Tasks[1]).Data.Flowchart.Title)
	})

	t.Run("one agent fails while the other succeeds", func(t *testing.T) {
		s := NewState()
		s.AppendUser("prompt")
		s.AppendPlanning()

		s.Apply(tasksEvent(
			stream.Task{Agent: "email", Task: "draft"},
			stream.Task{Agent: "image", Task: "illustrate"},
		))
		s.Apply(resultEvent("email", &stream.ResultData{Kind: "email", Email: &stream.EmailResult{To: "a@b.c", Subject: "Hi", Body: "text", Status: "drafted"}}))
		s.Apply(resultErrorEvent("image", "image backend unavailable"))
		s.Apply(&stream.Event{Type: stream.EventComplete})

		m := lastAssistant(t, s)
		assert.Equal(t, "Here are your results:", m.Content)
		assert.False(t, m.TaskSet.ResultFor(m.TaskSet.Tasks[0]).Failed())
		assert.True(t, m.TaskSet.ResultFor(m.TaskSet.Tasks[1]).Failed())
	})

	t.Run("consecutive prompts each get their own task set", func(t *testing.T) {
		s := NewState()

		s.AppendUser("first")
		s.AppendPlanning()
		s.Apply(tasksEvent(stream.Task{Agent: "general", Task: "answer first"}))
		s.Apply(resultEvent("general", stream.TextResult("general", "one")))
		s.Apply(&stream.Event{Type: stream.EventComplete})
		s.FinishStream()

		s.AppendUser("second")
		s.AppendPlanning()
		s.Apply(tasksEvent(stream.Task{Agent: "general", Task: "answer second"}))
		s.Apply(resultEvent("general", stream.TextResult("general", "two")))
		s.Apply(&stream.Event{Type: stream.EventComplete})
		s.FinishStream()

		msgs := s.Messages()
		require.Len(t, msgs, 4)
		first, second := msgs[1], msgs[3]
		assert.Equal(t, "one", first.TaskSet.ResultFor(first.TaskSet.Tasks[0]).Data.Text)
		assert.Equal(t, "two", second.TaskSet.ResultFor(second.TaskSet.Tasks[0]).Data.Text)
	})

	t.Run("late results only touch the open message", func(t *testing.T) {
		s := NewState()

		s.AppendUser("first")
		s.AppendPlanning()
		s.Apply(tasksEvent(stream.Task{Agent: "research", Task: "one"}))
		s.Apply(resultEvent("research", stream.TextResult("research", "first answer")))
		s.Apply(&stream.Event{Type: stream.EventComplete})

		s.AppendUser("second")
		s.AppendPlanning()
		s.Apply(tasksEvent(stream.Task{Agent: "research", Task: "two"}))
		s.Apply(resultEvent("research", stream.TextResult("research", "second answer")))

		msgs := s.Messages()
		first, second := msgs[1], msgs[3]
		assert.Equal(t, "first answer", first.TaskSet.ResultFor(first.TaskSet.Tasks[0]).Data.Text)
		assert.Equal(t, "second answer", second.TaskSet.ResultFor(second.TaskSet.Tasks[0]).Data.Text)
	})
}
