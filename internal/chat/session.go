package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/alienx/bianca/internal/conversation"
	"github.com/alienx/bianca/internal/logging"
	"github.com/alienx/bianca/internal/stream"
)

// ErrStreamActive is returned by Submit while a previous stream is
// still being consumed.
var ErrStreamActive = errors.New("a stream is already active for this session")

// Session drives a conversation against the agent service. It owns
// the optimistic message updates around each submit: the user message
// and planning placeholder go in before the network call, then events
// are applied to the conversation state one at a time as they arrive.
type Session struct {
	client *Client
	state  *conversation.State
	logger *logging.SessionLogger

	// idleTimeout force-closes the stream when no event arrives for
	// this long. Zero disables the watchdog.
	idleTimeout time.Duration

	mu     sync.Mutex
	active bool
}

// NewSession creates a session over the given client and conversation
// state. logger may be nil.
func NewSession(client *Client, state *conversation.State, logger *logging.SessionLogger, idleTimeout time.Duration) *Session {
	return &Session{
		client:      client,
		state:       state,
		logger:      logger,
		idleTimeout: idleTimeout,
	}
}

// State returns the conversation state the session applies events to.
func (s *Session) State() *conversation.State { return s.state }

// Submit sends a prompt and consumes the whole response stream,
// applying each event to the conversation state. It blocks until the
// stream ends. Only one submit may be in flight at a time.
func (s *Session) Submit(ctx context.Context, prompt, user string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}

	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return ErrStreamActive
	}
	s.active = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.active = false
		s.mu.Unlock()
	}()

	s.state.AppendUser(prompt)
	s.state.AppendPlanning()
	s.logger.LogPrompt(prompt, user)

	dec, closer, err := s.client.Submit(ctx, prompt, user)
	if err != nil {
		// The service was never reached, so no terminal event will
		// arrive. FinishStream swaps the placeholder for the
		// connectivity-error message.
		s.logger.LogError("submit", err)
		s.state.FinishStream()
		return err
	}

	s.pump(ctx, dec, closer)
	return nil
}

// pump applies events until the stream ends, guarding each read with
// the idle watchdog.
func (s *Session) pump(ctx context.Context, dec *stream.Decoder, closer io.Closer) {
	defer closer.Close()
	defer s.state.FinishStream()

	var watchdog *time.Timer
	if s.idleTimeout > 0 {
		// Closing the body unblocks the decoder's pending read.
		watchdog = time.AfterFunc(s.idleTimeout, func() {
			log.Warn().Dur("idle_timeout", s.idleTimeout).Msg("stream idle timeout, closing")
			closer.Close()
		})
		defer watchdog.Stop()
	}

	for {
		ev, err := dec.Next(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
				log.Warn().Err(err).Msg("stream read failed")
			}
			return
		}
		if watchdog != nil {
			watchdog.Reset(s.idleTimeout)
		}

		s.logger.LogEvent(ev)
		s.state.Apply(ev)

		if ev.Type == stream.EventComplete || ev.Type == stream.EventError {
			return
		}
	}
}
