package domain

import "encoding/json"

// MessageType classifies one turn of the agent's execution trace.
type MessageType string

const (
	MessageTypeAssistant  MessageType = "assistant"
	MessageTypeUser       MessageType = "user"
	MessageTypeSystem     MessageType = "system"
	MessageTypeResult     MessageType = "result"
	MessageTypeToolResult MessageType = "tool_result"
)

// ParseMessageType maps a wire value to a known type, defaulting to system
// so unknown turns render as generic output instead of breaking the view.
func ParseMessageType(s string) MessageType {
	switch MessageType(s) {
	case MessageTypeAssistant, MessageTypeUser, MessageTypeSystem,
		MessageTypeResult, MessageTypeToolResult:
		return MessageType(s)
	default:
		return MessageTypeSystem
	}
}

// BackendMessage is one backend-produced turn belonging to a prompt.
// Messages are read-only on the client; order within a prompt is the
// order the API returned them in.
type BackendMessage struct {
	Type            MessageType     `json:"type"`
	UUID            string          `json:"uuid"`
	SessionID       string          `json:"sessionId"`
	ParentToolUseID *string         `json:"parentToolUseId,omitempty"`
	Message         *MessagePayload `json:"message,omitempty"`
}

// MessagePayload is the role and content of a message turn.
type MessagePayload struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
	Usage   *TokenUsage    `json:"usage,omitempty"`
}

// TokenUsage is the optional token accounting attached to a turn.
type TokenUsage struct {
	InputTokens              int64 `json:"inputTokens"`
	OutputTokens             int64 `json:"outputTokens"`
	CacheReadInputTokens     int64 `json:"cacheReadInputTokens"`
	CacheCreationInputTokens int64 `json:"cacheCreationInputTokens"`
}

// ContentBlock is one piece of message content. The concrete type is one
// of TextBlock, ToolUseBlock, ToolResultBlock, or UnknownBlock; consumers
// switch on the concrete type rather than probing optional fields.
type ContentBlock interface {
	BlockType() string
}

// TextBlock is plain assistant or user text.
type TextBlock struct {
	Text string `json:"text"`
}

func (TextBlock) BlockType() string { return "text" }

func (b TextBlock) MarshalJSON() ([]byte, error) {
	type alias TextBlock
	return marshalBlock(b.BlockType(), alias(b))
}

// ToolUseBlock is a tool invocation emitted by the agent.
type ToolUseBlock struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input,omitempty"`
}

func (ToolUseBlock) BlockType() string { return "tool_use" }

func (b ToolUseBlock) MarshalJSON() ([]byte, error) {
	type alias ToolUseBlock
	return marshalBlock(b.BlockType(), alias(b))
}

// ToolResultBlock carries the output of a tool invocation back into the trace.
type ToolResultBlock struct {
	ToolUseID string          `json:"toolUseId"`
	Content   json.RawMessage `json:"content,omitempty"`
	IsError   bool            `json:"isError"`
}

func (ToolResultBlock) BlockType() string { return "tool_result" }

func (b ToolResultBlock) MarshalJSON() ([]byte, error) {
	type alias ToolResultBlock
	return marshalBlock(b.BlockType(), alias(b))
}

// UnknownBlock preserves content kinds this client does not understand yet.
type UnknownBlock struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"raw,omitempty"`
}

func (b UnknownBlock) BlockType() string { return b.Type }

func (b UnknownBlock) MarshalJSON() ([]byte, error) {
	type alias UnknownBlock
	return json.Marshal(alias(b))
}

// marshalBlock tags a block's fields with its type so serialized
// content stays self-describing.
func marshalBlock(blockType string, v any) ([]byte, error) {
	fields, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(fields, &m); err != nil {
		return nil, err
	}
	m["type"] = json.RawMessage(`"` + blockType + `"`)
	return json.Marshal(m)
}
