// Package events records probe transcripts. Every message a Claude Code
// session streams back is normalized into a TranscriptEvent and appended to
// a JSONL file for later inspection.
package events

import (
	"time"
)

// EventType identifies the category of a transcript event.
type EventType string

const (
	// EventInit is the session init message.
	EventInit EventType = "init"
	// EventText is plain text output from the agent.
	EventText EventType = "text"
	// EventThinking is the agent's reasoning content.
	EventThinking EventType = "thinking"
	// EventToolUse is when the agent invokes a tool.
	EventToolUse EventType = "tool_use"
	// EventToolResult is the result returned from a tool invocation.
	EventToolResult EventType = "tool_result"
	// EventResult closes a session.
	EventResult EventType = "result"
	// EventError is a query or assertion failure.
	EventError EventType = "error"
)

// TranscriptEvent is one line of a probe transcript.
type TranscriptEvent struct {
	Timestamp time.Time `json:"timestamp"`

	// RunID groups every scenario of one probe run.
	RunID string `json:"run_id"`

	// Scenario and Step locate the prompt that produced the event.
	Scenario string `json:"scenario"`
	Step     int    `json:"step"`

	// SessionID is the Claude Code session identifier.
	SessionID string `json:"session_id,omitempty"`

	Type      EventType `json:"type"`
	Summary   string    `json:"summary,omitempty"`
	Content   string    `json:"content,omitempty"`
	ToolName  string    `json:"tool_name,omitempty"`
	ToolInput string    `json:"tool_input,omitempty"`
}

// ValidEventTypes returns all valid event type values.
func ValidEventTypes() []EventType {
	return []EventType{
		EventInit,
		EventText,
		EventThinking,
		EventToolUse,
		EventToolResult,
		EventResult,
		EventError,
	}
}

// IsValidEventType checks if the given string is a valid event type.
func IsValidEventType(s string) bool {
	for _, t := range ValidEventTypes() {
		if string(t) == s {
			return true
		}
	}
	return false
}
