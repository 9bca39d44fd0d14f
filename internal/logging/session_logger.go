package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/alienx/bianca/internal/stream"
)

// SessionLogger manages the log file for a single prompt-processing
// session. Every stream event emitted to the client is also recorded
// here so a session can be reconstructed after the fact.
type SessionLogger struct {
	sessionID string
	logFile   *os.File
	mutex     sync.Mutex
	startTime time.Time
}

// StartSessionLogging initializes logging for a new session.
func StartSessionLogging(sessionID string) (*SessionLogger, error) {
	timestamp := time.Now().Format("20060102_150405")
	logFileName := fmt.Sprintf("session_%s_%s.log", sessionID, timestamp)
	logPath := filepath.Join("chat_logs", logFileName)

	// Ensure directory exists
	if err := os.MkdirAll("chat_logs", 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logFile, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := &SessionLogger{
		sessionID: sessionID,
		logFile:   logFile,
		startTime: time.Now(),
	}

	logger.writeHeader()

	return logger, nil
}

// Log writes a message to the session log.
func (l *SessionLogger) Log(format string, args ...interface{}) {
	if l == nil {
		return
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	timestamp := time.Now().Format("15:04:05.000")
	elapsed := time.Since(l.startTime)
	logMessage := fmt.Sprintf(format, args...)

	message := fmt.Sprintf("[%s] [+%v] %s\n", timestamp, elapsed.Round(time.Millisecond), logMessage)
	l.logFile.WriteString(message)
	l.logFile.Sync()
}

// LogSection writes a section header to the log.
func (l *SessionLogger) LogSection(title string) {
	if l == nil {
		return
	}

	separator := strings.Repeat("=", 80)
	l.Log("%s", separator)
	l.Log("= %s", title)
	l.Log("%s", separator)
}

// LogPrompt records the incoming prompt and user identity.
func (l *SessionLogger) LogPrompt(prompt, user string) {
	if l == nil {
		return
	}

	l.LogSection("PROMPT")
	l.Log("User: %s", user)
	l.Log("Prompt length: %d characters", len(prompt))
	l.logFile.WriteString(prompt + "\n")
}

// LogEvent records one stream event in human-readable form.
func (l *SessionLogger) LogEvent(ev *stream.Event) {
	if l == nil || ev == nil {
		return
	}

	switch ev.Type {
	case stream.EventTasks:
		kinds := make([]string, 0, len(ev.Tasks))
		for _, t := range ev.Tasks {
			kinds = append(kinds, t.Agent)
		}
		l.Log("TASKS: %d planned (%s)", len(ev.Tasks), strings.Join(kinds, ", "))
	case stream.EventProcessing:
		l.Log("PROCESSING: %s (task %d)", ev.Agent, ev.Index)
	case stream.EventResult:
		if ev.Error != "" {
			l.Log("RESULT: %s (task %d) FAILED: %s", ev.Agent, ev.Index, ev.Error)
		} else {
			l.Log("RESULT: %s (task %d) ok", ev.Agent, ev.Index)
		}
	case stream.EventComplete:
		l.Log("COMPLETE")
	case stream.EventError:
		l.Log("STREAM ERROR: %s", ev.Error)
	}
}

// LogError logs an error.
func (l *SessionLogger) LogError(context string, err error) {
	if l == nil {
		return
	}

	l.Log("ERROR in %s: %v", context, err)
	log.Error().Err(err).Str("session_id", l.sessionID).Str("context", context).Msg("session error")
}

// Close finalizes the log file.
func (l *SessionLogger) Close() {
	if l == nil {
		return
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.logFile != nil {
		timestamp := time.Now().Format("15:04:05.000")
		elapsed := time.Since(l.startTime)
		finalMessage := fmt.Sprintf("[%s] [+%v] Session completed. Total duration: %v\n",
			timestamp, elapsed.Round(time.Millisecond), elapsed.Round(time.Millisecond))
		l.logFile.WriteString(finalMessage)
		l.logFile.Sync()

		l.logFile.Close()
		l.logFile = nil
	}
}

func (l *SessionLogger) writeHeader() {
	header := fmt.Sprintf(`BIANCA SESSION LOG
Session ID: %s
Start Time: %s
Log Format: [HH:MM:SS.mmm] [+duration] message

`, l.sessionID, l.startTime.Format("2006-01-02 15:04:05"))

	l.logFile.WriteString(header)
	l.logFile.Sync()
}
