package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/alienx/bianca/internal/agents"
	"github.com/alienx/bianca/internal/logging"
	"github.com/alienx/bianca/internal/router"
	"github.com/alienx/bianca/internal/stream"
)

// StreamHandler handles POST /api/process-stream: it plans the tasks
// for a prompt, runs each agent in order, and streams typed events
// back to the client.
type StreamHandler struct {
	planner  *router.Planner
	registry *agents.Registry

	// sink persists every emitted event; nil disables persistence.
	sink EventSink
}

// NewStreamHandler creates a stream handler.
func NewStreamHandler(planner *router.Planner, registry *agents.Registry, sink EventSink) *StreamHandler {
	return &StreamHandler{
		planner:  planner,
		registry: registry,
		sink:     sink,
	}
}

type processStreamRequest struct {
	Prompt         string `json:"prompt"`
	User           string `json:"user"`
	ConversationID string `json:"conversationId"`
}

// ProcessStream handles the streaming request. The response is always
// 200 with an event stream; request problems surface as a single
// error record so clients have one parsing path.
func (h *StreamHandler) ProcessStream(c echo.Context) error {
	var req processStreamRequest
	if err := c.Bind(&req); err != nil {
		req = processStreamRequest{}
	}

	w := c.Response()
	stream.PrepareResponse(w)
	sw := stream.NewWriter(w)

	if req.Prompt == "" {
		// Bare error record, the pre-session shape legacy clients expect.
		return sw.Send(&stream.Event{Error: "No prompt provided"})
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.New().String()
	}

	sessionLogger, err := logging.StartSessionLogging(conversationID)
	if err != nil {
		log.Warn().Err(err).Msg("session logging disabled for this request")
	}
	defer sessionLogger.Close()
	sessionLogger.LogPrompt(req.Prompt, req.User)

	ctx := c.Request().Context()
	emit := func(ev *stream.Event) error {
		sessionLogger.LogEvent(ev)
		recordEvent(ctx, h.sink, conversationID, ev)
		return sw.Send(ev)
	}

	tasks := h.planner.Route(ctx, req.Prompt)
	if err := emit(&stream.Event{Type: stream.EventTasks, Tasks: tasks}); err != nil {
		return err
	}

	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			// Client went away, nothing left to stream to.
			return nil
		}

		if err := emit(&stream.Event{Type: stream.EventProcessing, Agent: task.Agent, Index: i}); err != nil {
			return err
		}

		data, runErr := h.runAgent(ctx, task, req.Prompt, req.User)
		ev := &stream.Event{Type: stream.EventResult, Agent: task.Agent, Index: i}
		if runErr != nil {
			// One agent failing must not take down the rest of the plan.
			log.Warn().Err(runErr).Str("agent", task.Agent).Msg("agent task failed")
			sessionLogger.LogError(task.Agent, runErr)
			ev.Error = runErr.Error()
		} else {
			ev.Data = data
		}
		if err := emit(ev); err != nil {
			return err
		}
	}

	return emit(&stream.Event{Type: stream.EventComplete})
}

// runAgent executes a single task, converting agent panics into errors
// so the stream always reaches its terminal event.
func (h *StreamHandler) runAgent(ctx context.Context, task stream.Task, prompt, user string) (data *stream.ResultData, err error) {
	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = fmt.Errorf("agent %s panicked: %v", task.Agent, r)
		}
	}()

	agent, err := h.registry.Get(task.Agent)
	if err != nil {
		return nil, err
	}

	return agent.Run(ctx, agents.Request{
		Task:     task.Task,
		Prompt:   prompt,
		Username: user,
	})
}

// TestConnection handles GET /api/test.
func (h *StreamHandler) TestConnection(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Agent service is running",
	})
}
