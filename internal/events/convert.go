package events

import (
	"strings"
	"time"

	"github.com/andywolf/handoff/internal/agent/claudecode"
)

// ConvertParams holds parameters for event conversion.
type ConvertParams struct {
	RunID     string
	Scenario  string
	Step      int
	Timestamp time.Time // defaults to time.Now() if zero
}

// FromMessage converts one Claude Code message into transcript events. A
// message with several content blocks yields one event per block.
func FromMessage(msg claudecode.Message, params ConvertParams) []TranscriptEvent {
	ts := params.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	base := TranscriptEvent{
		Timestamp: ts,
		RunID:     params.RunID,
		Scenario:  params.Scenario,
		Step:      params.Step,
	}

	switch m := msg.(type) {
	case *claudecode.SystemMessage:
		if m.Subtype != claudecode.SubtypeInit {
			return nil
		}
		e := base
		e.SessionID = m.SessionID
		e.Type = EventInit
		e.Summary = "Session " + m.SessionID
		e.Content = strings.Join(m.SlashCommands, " ")
		return []TranscriptEvent{e}

	case *claudecode.AssistantMessage:
		return fromBlocks(base, m.SessionID, m.Content)

	case *claudecode.UserMessage:
		return fromBlocks(base, m.SessionID, m.Content)

	case *claudecode.ResultMessage:
		e := base
		e.SessionID = m.SessionID
		e.Type = EventResult
		e.Content = m.Result
		e.Summary = "Result: " + m.Subtype
		if m.IsError {
			e.Type = EventError
		}
		return []TranscriptEvent{e}
	}

	return nil
}

func fromBlocks(base TranscriptEvent, sessionID string, blocks []claudecode.ContentBlock) []TranscriptEvent {
	var out []TranscriptEvent
	for _, b := range blocks {
		e := base
		e.SessionID = sessionID

		switch b.Type {
		case claudecode.BlockText:
			e.Type = EventText
			e.Content = b.Text
			e.Summary = truncate(b.Text, 100)

		case claudecode.BlockThinking:
			e.Type = EventThinking
			e.Content = b.Thinking
			e.Summary = truncate(b.Thinking, 100)

		case claudecode.BlockToolUse:
			e.Type = EventToolUse
			e.ToolName = b.Name
			if b.Input != nil {
				e.ToolInput = string(b.Input)
			}
			e.Summary = "Tool: " + b.Name

		case claudecode.BlockToolResult:
			e.Type = EventToolResult
			e.Content = claudecode.ToolResultText(b.Content)
			e.Summary = truncate(e.Content, 100)

		default:
			continue
		}
		out = append(out, e)
	}
	return out
}

// NewError builds an error event.
func NewError(params ConvertParams, err error) TranscriptEvent {
	ts := params.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return TranscriptEvent{
		Timestamp: ts,
		RunID:     params.RunID,
		Scenario:  params.Scenario,
		Step:      params.Step,
		Type:      EventError,
		Content:   err.Error(),
		Summary:   truncate(err.Error(), 100),
	}
}

// truncate shortens a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
