package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alienx/bianca/internal/agents"
	"github.com/alienx/bianca/internal/api/auth"
	"github.com/alienx/bianca/internal/router"
	"github.com/alienx/bianca/internal/stream"
)

// fakeAgent returns a fixed payload or error for its kind.
type fakeAgent struct {
	kind string
	text string
	err  error
	// lastReq records the request the agent saw.
	lastReq agents.Request
}

func (a *fakeAgent) Kind() string { return a.kind }

func (a *fakeAgent) Run(ctx context.Context, req agents.Request) (*stream.ResultData, error) {
	a.lastReq = req
	if a.err != nil {
		return nil, a.err
	}
	return stream.TextResult(a.kind, a.text), nil
}

type panicAgent struct{}

func (panicAgent) Kind() string { return "research" }
func (panicAgent) Run(ctx context.Context, req agents.Request) (*stream.ResultData, error) {
	panic("agent blew up")
}

// memorySink collects recorded events in memory.
type memorySink struct {
	mu     sync.Mutex
	events []*stream.Event
}

func (s *memorySink) RecordEvent(ctx context.Context, conversationID string, ev *stream.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func newTestServer(t *testing.T, registry *agents.Registry, sink EventSink) *httptest.Server {
	t.Helper()
	server := NewServer(Options{
		Planner: router.New(nil), // every prompt routes to a research task
		Agents:  registry,
	})
	if sink != nil {
		handler := NewStreamHandler(router.New(nil), registry, sink)
		server.Echo().POST("/api/process-stream", handler.ProcessStream)
	}
	srv := httptest.NewServer(server.Echo())
	t.Cleanup(srv.Close)
	return srv
}

func postStream(t *testing.T, url, body string) []*stream.Event {
	t.Helper()
	resp, err := http.Post(url+"/api/process-stream", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	dec := stream.NewDecoder(resp.Body)
	var events []*stream.Event
	for {
		ev, err := dec.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return events
		}
		require.NoError(t, err)
		events = append(events, ev)
	}
}

func TestProcessStream(t *testing.T) {
	t.Run("streams tasks, results, and complete", func(t *testing.T) {
		agent := &fakeAgent{kind: "research", text: "findings"}
		registry := agents.NewRegistry()
		registry.Register(agent)
		srv := newTestServer(t, registry, nil)

		events := postStream(t, srv.URL, `{"prompt": "look this up", "user": "alice"}`)
		require.Len(t, events, 4)

		assert.Equal(t, stream.EventTasks, events[0].Type)
		require.Len(t, events[0].Tasks, 1)
		assert.Equal(t, "research", events[0].Tasks[0].Agent)

		assert.Equal(t, stream.EventProcessing, events[1].Type)
		assert.Equal(t, "research", events[1].Agent)

		assert.Equal(t, stream.EventResult, events[2].Type)
		require.NotNil(t, events[2].Data)
		assert.Equal(t, "findings", events[2].Data.Text)

		assert.Equal(t, stream.EventComplete, events[3].Type)

		assert.Equal(t, "look this up", agent.lastReq.Prompt)
		assert.Equal(t, "alice", agent.lastReq.Username)
	})

	t.Run("missing prompt yields a single error record", func(t *testing.T) {
		registry := agents.NewRegistry()
		srv := newTestServer(t, registry, nil)

		events := postStream(t, srv.URL, `{}`)
		require.Len(t, events, 1)
		assert.Equal(t, stream.EventError, events[0].Type)
		assert.Equal(t, "No prompt provided", events[0].Error)
	})

	t.Run("missing prompt is a bare error record on the wire", func(t *testing.T) {
		registry := agents.NewRegistry()
		srv := newTestServer(t, registry, nil)

		resp, err := http.Post(srv.URL+"/api/process-stream", "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "data: {\"error\":\"No prompt provided\"}\n\n", string(body))
	})

	t.Run("agent failure becomes a result error, not a dead stream", func(t *testing.T) {
		registry := agents.NewRegistry()
		registry.Register(&fakeAgent{kind: "research", err: errors.New("backend down")})
		srv := newTestServer(t, registry, nil)

		events := postStream(t, srv.URL, `{"prompt": "look this up"}`)
		require.Len(t, events, 4)
		assert.Equal(t, stream.EventResult, events[2].Type)
		assert.Nil(t, events[2].Data)
		assert.Contains(t, events[2].Error, "backend down")
		assert.Equal(t, stream.EventComplete, events[3].Type)
	})

	t.Run("unregistered agent kind fails its slot only", func(t *testing.T) {
		registry := agents.NewRegistry()
		srv := newTestServer(t, registry, nil)

		events := postStream(t, srv.URL, `{"prompt": "look this up"}`)
		require.Len(t, events, 4)
		assert.Equal(t, stream.EventResult, events[2].Type)
		assert.Contains(t, events[2].Error, "no agent registered")
		assert.Equal(t, stream.EventComplete, events[3].Type)
	})

	t.Run("agent panic is contained", func(t *testing.T) {
		registry := agents.NewRegistry()
		registry.Register(panicAgent{})
		srv := newTestServer(t, registry, nil)

		events := postStream(t, srv.URL, `{"prompt": "look this up"}`)
		require.Len(t, events, 4)
		assert.Contains(t, events[2].Error, "panicked")
		assert.Equal(t, stream.EventComplete, events[3].Type)
	})

	t.Run("every emitted event reaches the sink", func(t *testing.T) {
		registry := agents.NewRegistry()
		registry.Register(&fakeAgent{kind: "research", text: "findings"})
		sink := &memorySink{}
		srv := newTestServer(t, registry, sink)

		events := postStream(t, srv.URL, `{"prompt": "look this up"}`)

		sink.mu.Lock()
		defer sink.mu.Unlock()
		require.Len(t, sink.events, len(events))
		for i, ev := range events {
			assert.Equal(t, ev.Type, sink.events[i].Type)
		}
	})
}

func TestAuthMiddleware(t *testing.T) {
	registry := agents.NewRegistry()
	registry.Register(&fakeAgent{kind: "research", text: "findings"})

	const secret = "test-secret"
	server := NewServer(Options{
		Planner:    router.New(nil),
		Agents:     registry,
		AuthSecret: secret,
	})
	srv := httptest.NewServer(server.Echo())
	t.Cleanup(srv.Close)

	t.Run("health stays open", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/health")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("api requires a token", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/process-stream", "application/json", strings.NewReader(`{"prompt":"x"}`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("a valid token passes", func(t *testing.T) {
		token, err := auth.NewTokenService(secret).IssueToken("alice")
		require.NoError(t, err)

		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/test", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("a token signed with another secret is rejected", func(t *testing.T) {
		token, err := auth.NewTokenService("other-secret").IssueToken("alice")
		require.NoError(t, err)

		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/test", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
