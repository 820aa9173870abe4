package claudecode

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// maxLineSize bounds a single NDJSON line; tool results can be large.
const maxLineSize = 4 * 1024 * 1024

type rawEvent struct {
	Type      string          `json:"type"`
	Subtype   string          `json:"subtype,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
	Message   json.RawMessage `json:"message,omitempty"`
}

type rawMessage struct {
	Model   string         `json:"model,omitempty"`
	Content []ContentBlock `json:"content"`
}

// DecodeLine decodes one stream-json line. Unknown event types return
// (nil, nil) so callers can skip them.
func DecodeLine(line []byte) (Message, error) {
	var evt rawEvent
	if err := json.Unmarshal(line, &evt); err != nil {
		return nil, fmt.Errorf("malformed stream line: %w", err)
	}

	switch MessageType(evt.Type) {
	case TypeSystem:
		var msg SystemMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			return nil, fmt.Errorf("malformed system message: %w", err)
		}
		return &msg, nil

	case TypeAssistant:
		var body rawMessage
		if err := json.Unmarshal(evt.Message, &body); err != nil {
			return nil, fmt.Errorf("malformed assistant message: %w", err)
		}
		return &AssistantMessage{
			SessionID: evt.SessionID,
			Model:     body.Model,
			Content:   normalizeBlocks(body.Content),
		}, nil

	case TypeUser:
		var body rawMessage
		if err := json.Unmarshal(evt.Message, &body); err != nil {
			return nil, fmt.Errorf("malformed user message: %w", err)
		}
		return &UserMessage{
			SessionID: evt.SessionID,
			Content:   normalizeBlocks(body.Content),
		}, nil

	case TypeResult:
		var msg ResultMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			return nil, fmt.Errorf("malformed result message: %w", err)
		}
		return &msg, nil
	}

	return nil, nil
}

func normalizeBlocks(blocks []ContentBlock) []ContentBlock {
	for i := range blocks {
		if blocks[i].Type == BlockThinking && len(blocks[i].Thinking) > MaxThinkingBytes {
			blocks[i].Thinking = truncateUTF8(blocks[i].Thinking, MaxThinkingBytes)
		}
	}
	return blocks
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// ReadStream decodes NDJSON from r and calls fn for every message. Blank,
// malformed and unknown lines are skipped. An error from fn stops reading.
func ReadStream(r io.Reader, fn func(Message) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		msg, err := DecodeLine(line)
		if err != nil || msg == nil {
			continue
		}
		if err := fn(msg); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stream: %w", err)
	}
	return nil
}

// ToolResultText converts a tool_result content field (string or array of
// text blocks) to a string.
func ToolResultText(content interface{}) string {
	if content == nil {
		return ""
	}
	switch v := content.(type) {
	case string:
		return v
	case []interface{}:
		var parts []string
		for _, item := range v {
			if m, ok := item.(map[string]interface{}); ok {
				if text, ok := m["text"].(string); ok && text != "" {
					parts = append(parts, text)
				}
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "\n")
		}
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
