package backend

import (
	"encoding/json"
	"time"

	"github.com/emiliopalmerini/agentdeck/internal/domain"
)

// The backend speaks snake_case JSON with nested envelopes; the domain
// model is camelCase Go. Everything crossing the boundary goes through
// the DTOs in this file. Decoding is permissive: missing optional fields
// default, malformed dates parse to the zero time, unknown enum values
// fall back to a safe bucket. Only a top-level shape mismatch is an error.

type sessionDTO struct {
	ID            string            `json:"id"`
	Title         string            `json:"title,omitempty"`
	Repo          string            `json:"repo,omitempty"`
	Branch        string            `json:"branch,omitempty"`
	TargetBranch  string            `json:"target_branch,omitempty"`
	InboxStatus   string            `json:"inbox_status,omitempty"`
	UIStatus      string            `json:"ui_status,omitempty"`
	SessionStatus string            `json:"session_status,omitempty"`
	ParentID      *string           `json:"parent_id,omitempty"`
	DiffStats     *diffStatsDTO     `json:"diff_stats,omitempty"`
	PRURL         string            `json:"pr_url,omitempty"`
	SbxConfig     json.RawMessage   `json:"sbx_config,omitempty"`
	CreatedAt     string            `json:"created_at,omitempty"`
	Children      []sessionDTO      `json:"children,omitempty"`
	Messages      []messageEnvelope `json:"messages,omitempty"`
}

type diffStatsDTO struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
}

type promptDTO struct {
	ID        string            `json:"id"`
	SessionID string            `json:"session_id"`
	Content   string            `json:"content,omitempty"`
	Data      []json.RawMessage `json:"data,omitempty"`
	Status    string            `json:"status,omitempty"`
	CreatedAt string            `json:"created_at,omitempty"`
}

// messageEnvelope is the wrapper the backend puts around stored messages:
// {id, prompt_id, data: <the real message>, created_at, updated_at}. Some
// endpoints return the message unwrapped, so the wrapper also carries the
// message fields directly and decodeMessage falls back to them when no
// data field is present.
type messageEnvelope struct {
	ID        string          `json:"id,omitempty"`
	PromptID  string          `json:"prompt_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt string          `json:"created_at,omitempty"`
	UpdatedAt string          `json:"updated_at,omitempty"`

	messageDTO
}

type messageDTO struct {
	Type            string             `json:"type,omitempty"`
	UUID            string             `json:"uuid,omitempty"`
	SessionID       string             `json:"session_id,omitempty"`
	ParentToolUseID *string            `json:"parent_tool_use_id,omitempty"`
	Message         *messagePayloadDTO `json:"message,omitempty"`
}

type messagePayloadDTO struct {
	Role    string            `json:"role,omitempty"`
	Content []json.RawMessage `json:"content,omitempty"`
	Usage   *usageDTO         `json:"usage,omitempty"`
}

type usageDTO struct {
	InputTokens              int64 `json:"input_tokens,omitempty"`
	OutputTokens             int64 `json:"output_tokens,omitempty"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens,omitempty"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens,omitempty"`
}

type createSessionDTO struct {
	Title        string          `json:"title,omitempty"`
	Repo         string          `json:"repo"`
	Branch       string          `json:"branch,omitempty"`
	TargetBranch string          `json:"target_branch"`
	ParentID     *string         `json:"parent_id,omitempty"`
	SbxConfig    json.RawMessage `json:"sbx_config,omitempty"`
}

type updateSessionDTO struct {
	Title         *string `json:"title,omitempty"`
	InboxStatus   *string `json:"inbox_status,omitempty"`
	UIStatus      *string `json:"ui_status,omitempty"`
	SessionStatus *string `json:"session_status,omitempty"`
	TargetBranch  *string `json:"target_branch,omitempty"`
	PRURL         *string `json:"pr_url,omitempty"`
}

type createPromptDTO struct {
	Content string `json:"content"`
}

// parseWireTime parses an ISO-8601 timestamp, returning the zero time for
// anything it cannot parse. The backend is permissive about dates and the
// client tolerates that rather than failing a whole list render.
func parseWireTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func decodeSession(dto sessionDTO) domain.Session {
	s := domain.Session{
		ID:            dto.ID,
		Title:         dto.Title,
		Repo:          dto.Repo,
		Branch:        dto.Branch,
		TargetBranch:  dto.TargetBranch,
		InboxStatus:   domain.ParseInboxStatus(dto.InboxStatus),
		UIStatus:      domain.ParseUIStatus(dto.UIStatus),
		SessionStatus: domain.ParseSessionStatus(dto.SessionStatus),
		ParentID:      dto.ParentID,
		PRURL:         dto.PRURL,
		SbxConfig:     dto.SbxConfig,
		CreatedAt:     parseWireTime(dto.CreatedAt),
	}
	if dto.DiffStats != nil {
		s.DiffStats = &domain.DiffStats{Additions: dto.DiffStats.Additions, Deletions: dto.DiffStats.Deletions}
	}
	for _, child := range dto.Children {
		c := decodeSession(child)
		s.Children = append(s.Children, &c)
	}
	for _, env := range dto.Messages {
		s.Messages = append(s.Messages, decodeMessage(env))
	}
	return s
}

func decodeSessions(dtos []sessionDTO) []domain.Session {
	out := make([]domain.Session, len(dtos))
	for i, dto := range dtos {
		out[i] = decodeSession(dto)
	}
	return out
}

func decodePrompt(dto promptDTO) domain.Prompt {
	p := domain.Prompt{
		ID:        dto.ID,
		SessionID: dto.SessionID,
		Content:   dto.Content,
		Status:    domain.ParsePromptStatus(dto.Status),
		CreatedAt: parseWireTime(dto.CreatedAt),
	}
	for _, raw := range dto.Data {
		p.Blocks = append(p.Blocks, decodeContentBlock(raw))
	}
	return p
}

func decodePrompts(dtos []promptDTO) []domain.Prompt {
	out := make([]domain.Prompt, len(dtos))
	for i, dto := range dtos {
		out[i] = decodePrompt(dto)
	}
	return out
}

// decodeMessage unwraps the storage envelope. When the envelope has a
// data payload that payload is the message; otherwise the envelope fields
// themselves are.
func decodeMessage(env messageEnvelope) domain.BackendMessage {
	dto := env.messageDTO
	if len(env.Data) > 0 && string(env.Data) != "null" {
		var inner messageDTO
		if err := json.Unmarshal(env.Data, &inner); err == nil {
			dto = inner
		}
	}

	msg := domain.BackendMessage{
		Type:            domain.ParseMessageType(dto.Type),
		UUID:            dto.UUID,
		SessionID:       dto.SessionID,
		ParentToolUseID: dto.ParentToolUseID,
	}
	if dto.Message != nil {
		payload := &domain.MessagePayload{Role: dto.Message.Role}
		for _, raw := range dto.Message.Content {
			payload.Content = append(payload.Content, decodeContentBlock(raw))
		}
		if dto.Message.Usage != nil {
			payload.Usage = &domain.TokenUsage{
				InputTokens:              dto.Message.Usage.InputTokens,
				OutputTokens:             dto.Message.Usage.OutputTokens,
				CacheReadInputTokens:     dto.Message.Usage.CacheReadInputTokens,
				CacheCreationInputTokens: dto.Message.Usage.CacheCreationInputTokens,
			}
		}
		msg.Message = payload
	}
	return msg
}

func decodeMessages(envs []messageEnvelope) []domain.BackendMessage {
	out := make([]domain.BackendMessage, len(envs))
	for i, env := range envs {
		out[i] = decodeMessage(env)
	}
	return out
}

// decodeContentBlock turns one wire content block into its tagged domain
// type. Unknown kinds are preserved as UnknownBlock instead of dropped.
func decodeContentBlock(raw json.RawMessage) domain.ContentBlock {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return domain.UnknownBlock{Type: "", Raw: raw}
	}

	switch probe.Type {
	case "text":
		var b struct {
			Text string `json:"text"`
		}
		_ = json.Unmarshal(raw, &b)
		return domain.TextBlock{Text: b.Text}
	case "tool_use":
		var b struct {
			ID    string          `json:"id"`
			Name  string          `json:"name"`
			Input json.RawMessage `json:"input"`
		}
		_ = json.Unmarshal(raw, &b)
		return domain.ToolUseBlock{ID: b.ID, Name: b.Name, Input: b.Input}
	case "tool_result":
		var b struct {
			ToolUseID string          `json:"tool_use_id"`
			Content   json.RawMessage `json:"content"`
			IsError   bool            `json:"is_error"`
		}
		_ = json.Unmarshal(raw, &b)
		return domain.ToolResultBlock{ToolUseID: b.ToolUseID, Content: b.Content, IsError: b.IsError}
	default:
		return domain.UnknownBlock{Type: probe.Type, Raw: raw}
	}
}

func encodeCreateSession(data domain.CreateSessionData) createSessionDTO {
	return createSessionDTO{
		Title:        data.Title,
		Repo:         data.Repo,
		Branch:       data.Branch,
		TargetBranch: data.TargetBranch,
		ParentID:     data.ParentID,
		SbxConfig:    data.SbxConfig,
	}
}

// encodeUpdateSession keeps a patch partial: only the fields set on the
// update appear in the outgoing JSON.
func encodeUpdateSession(u domain.UpdateSessionData) updateSessionDTO {
	dto := updateSessionDTO{
		Title:        u.Title,
		TargetBranch: u.TargetBranch,
		PRURL:        u.PRURL,
	}
	if u.InboxStatus != nil {
		s := string(*u.InboxStatus)
		dto.InboxStatus = &s
	}
	if u.UIStatus != nil {
		s := string(*u.UIStatus)
		dto.UIStatus = &s
	}
	if u.SessionStatus != nil {
		s := string(*u.SessionStatus)
		dto.SessionStatus = &s
	}
	return dto
}

// encodeSession is the inverse of decodeSession for fields that travel on
// the wire. Children and messages are derived or read-only and are never
// serialized back.
func encodeSession(s domain.Session) sessionDTO {
	dto := sessionDTO{
		ID:            s.ID,
		Title:         s.Title,
		Repo:          s.Repo,
		Branch:        s.Branch,
		TargetBranch:  s.TargetBranch,
		InboxStatus:   string(s.InboxStatus),
		UIStatus:      string(s.UIStatus),
		SessionStatus: string(s.SessionStatus),
		ParentID:      s.ParentID,
		PRURL:         s.PRURL,
		SbxConfig:     s.SbxConfig,
	}
	if !s.CreatedAt.IsZero() {
		dto.CreatedAt = s.CreatedAt.Format(time.RFC3339)
	}
	if s.DiffStats != nil {
		dto.DiffStats = &diffStatsDTO{Additions: s.DiffStats.Additions, Deletions: s.DiffStats.Deletions}
	}
	return dto
}
