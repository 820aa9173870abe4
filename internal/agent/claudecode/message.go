package claudecode

import "encoding/json"

// MessageType enumerates the top-level event types in stream-json output.
type MessageType string

const (
	TypeSystem    MessageType = "system"
	TypeAssistant MessageType = "assistant"
	TypeUser      MessageType = "user"
	TypeResult    MessageType = "result"
)

// SubtypeInit marks the system message emitted when a session starts.
const SubtypeInit = "init"

// BlockType enumerates content block types within messages.
type BlockType string

const (
	BlockText       BlockType = "text"
	BlockThinking   BlockType = "thinking"
	BlockToolUse    BlockType = "tool_use"
	BlockToolResult BlockType = "tool_result"
)

// MaxThinkingBytes is the truncation limit for thinking content.
const MaxThinkingBytes = 50000

// Message is one decoded line of the stream.
type Message interface {
	MessageType() MessageType
}

// TokenUsage holds token counts from a result message.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// PluginInfo identifies a plugin loaded by the session.
type PluginInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// SystemMessage carries session metadata. The init subtype lists the tools,
// slash commands and plugins available to the session.
type SystemMessage struct {
	Subtype        string       `json:"subtype"`
	SessionID      string       `json:"session_id"`
	Cwd            string       `json:"cwd,omitempty"`
	Model          string       `json:"model,omitempty"`
	PermissionMode string       `json:"permissionMode,omitempty"`
	Tools          []string     `json:"tools,omitempty"`
	SlashCommands  []string     `json:"slash_commands,omitempty"`
	Plugins        []PluginInfo `json:"plugins,omitempty"`
}

func (*SystemMessage) MessageType() MessageType { return TypeSystem }

// ContentBlock is a single block of an assistant or user message.
type ContentBlock struct {
	Type     BlockType       `json:"type"`
	Text     string          `json:"text,omitempty"`
	Thinking string          `json:"thinking,omitempty"`
	ID       string          `json:"id,omitempty"`
	Name     string          `json:"name,omitempty"`
	Input    json.RawMessage `json:"input,omitempty"`
	Content  interface{}     `json:"content,omitempty"`
}

// AssistantMessage is a turn produced by the model.
type AssistantMessage struct {
	SessionID string         `json:"session_id,omitempty"`
	Model     string         `json:"model,omitempty"`
	Content   []ContentBlock `json:"content"`
}

func (*AssistantMessage) MessageType() MessageType { return TypeAssistant }

// Text concatenates the message's text blocks.
func (m *AssistantMessage) Text() string {
	var text string
	for _, b := range m.Content {
		if b.Type == BlockText {
			text += b.Text
		}
	}
	return text
}

// UserMessage carries tool results fed back to the model.
type UserMessage struct {
	SessionID string         `json:"session_id,omitempty"`
	Content   []ContentBlock `json:"content"`
}

func (*UserMessage) MessageType() MessageType { return TypeUser }

// ResultMessage closes a session.
type ResultMessage struct {
	Subtype      string      `json:"subtype"`
	IsError      bool        `json:"is_error"`
	Result       string      `json:"result,omitempty"`
	SessionID    string      `json:"session_id,omitempty"`
	NumTurns     int         `json:"num_turns,omitempty"`
	DurationMS   int64       `json:"duration_ms,omitempty"`
	TotalCostUSD float64     `json:"total_cost_usd,omitempty"`
	Usage        *TokenUsage `json:"usage,omitempty"`
}

func (*ResultMessage) MessageType() MessageType { return TypeResult }
