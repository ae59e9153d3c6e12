package backend

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/emiliopalmerini/agentdeck/internal/domain"
)

func TestDecodeSession_SnakeCaseFields(t *testing.T) {
	raw := `{
		"id": "s1",
		"title": "Fix login",
		"repo": "acme/webapp",
		"target_branch": "main",
		"inbox_status": "in-progress",
		"ui_status": "in-progress",
		"session_status": "active",
		"parent_id": "s0",
		"diff_stats": {"additions": 10, "deletions": 3},
		"pr_url": "https://github.com/acme/webapp/pull/7",
		"created_at": "2025-06-01T12:00:00Z"
	}`

	var dto sessionDTO
	if err := json.Unmarshal([]byte(raw), &dto); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	s := decodeSession(dto)

	if s.ID != "s1" || s.Repo != "acme/webapp" || s.TargetBranch != "main" {
		t.Errorf("Unexpected core fields: %+v", s)
	}
	if s.InboxStatus != domain.InboxStatusInProgress {
		t.Errorf("Expected in-progress inboxStatus, got %q", s.InboxStatus)
	}
	if s.ParentID == nil || *s.ParentID != "s0" {
		t.Errorf("Expected parentId s0, got %v", s.ParentID)
	}
	if s.DiffStats == nil || s.DiffStats.Additions != 10 || s.DiffStats.Deletions != 3 {
		t.Errorf("Unexpected diff stats: %+v", s.DiffStats)
	}
	want := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if !s.CreatedAt.Equal(want) {
		t.Errorf("Expected createdAt %v, got %v", want, s.CreatedAt)
	}
}

func TestDecodeSession_UnknownEnumsDegrade(t *testing.T) {
	var dto sessionDTO
	if err := json.Unmarshal([]byte(`{"id":"s1","inbox_status":"??","ui_status":"??","session_status":"??"}`), &dto); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	s := decodeSession(dto)

	if s.InboxStatus != domain.InboxStatusPending {
		t.Errorf("Expected pending inboxStatus, got %q", s.InboxStatus)
	}
	if s.UIStatus != domain.UIStatusPending {
		t.Errorf("Expected pending uiStatus, got %q", s.UIStatus)
	}
	if s.SessionStatus != domain.SessionStatusActive {
		t.Errorf("Expected active sessionStatus, got %q", s.SessionStatus)
	}
}

func TestParseWireTime_PermissiveFormats(t *testing.T) {
	cases := []struct {
		in   string
		zero bool
	}{
		{"2025-06-01T12:00:00Z", false},
		{"2025-06-01T12:00:00.123456789Z", false},
		{"2025-06-01T12:00:00", false},
		{"2025-06-01", false},
		{"", true},
		{"yesterday-ish", true},
		{"01/06/2025", true},
	}
	for _, tc := range cases {
		got := parseWireTime(tc.in)
		if got.IsZero() != tc.zero {
			t.Errorf("parseWireTime(%q): IsZero() = %v, expected %v", tc.in, got.IsZero(), tc.zero)
		}
	}
}

func TestDecodeMessage_UnwrapsDataEnvelope(t *testing.T) {
	raw := `{
		"id": "env1",
		"prompt_id": "p1",
		"data": {
			"type": "assistant",
			"uuid": "m1",
			"session_id": "s1",
			"message": {
				"role": "assistant",
				"content": [{"type": "text", "text": "done"}],
				"usage": {"input_tokens": 12, "output_tokens": 34}
			}
		},
		"created_at": "2025-06-01T12:00:00Z"
	}`

	var env messageEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	msg := decodeMessage(env)

	if msg.Type != domain.MessageTypeAssistant || msg.UUID != "m1" {
		t.Errorf("Unexpected message identity: %+v", msg)
	}
	if msg.Message == nil {
		t.Fatal("Expected payload, got nil")
	}
	if len(msg.Message.Content) != 1 {
		t.Fatalf("Expected 1 content block, got %d", len(msg.Message.Content))
	}
	text, ok := msg.Message.Content[0].(domain.TextBlock)
	if !ok || text.Text != "done" {
		t.Errorf("Expected text block %q, got %#v", "done", msg.Message.Content[0])
	}
	if msg.Message.Usage == nil || msg.Message.Usage.InputTokens != 12 {
		t.Errorf("Unexpected usage: %+v", msg.Message.Usage)
	}
}

func TestDecodeMessage_FallsBackToUnwrappedFields(t *testing.T) {
	raw := `{
		"type": "user",
		"uuid": "m2",
		"session_id": "s1",
		"message": {"role": "user", "content": [{"type": "text", "text": "hi"}]}
	}`

	var env messageEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	msg := decodeMessage(env)

	if msg.Type != domain.MessageTypeUser || msg.UUID != "m2" {
		t.Errorf("Expected unwrapped fields used, got %+v", msg)
	}
}

func TestDecodeMessage_NullDataFallsBack(t *testing.T) {
	raw := `{"data": null, "type": "result", "uuid": "m3"}`

	var env messageEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	msg := decodeMessage(env)

	if msg.Type != domain.MessageTypeResult || msg.UUID != "m3" {
		t.Errorf("Expected fallback on null data, got %+v", msg)
	}
}

func TestDecodeContentBlock_TaggedUnion(t *testing.T) {
	toolUse := decodeContentBlock(json.RawMessage(`{"type":"tool_use","id":"t1","name":"bash","input":{"command":"ls"}}`))
	if b, ok := toolUse.(domain.ToolUseBlock); !ok || b.Name != "bash" {
		t.Errorf("Expected tool_use block, got %#v", toolUse)
	}

	toolResult := decodeContentBlock(json.RawMessage(`{"type":"tool_result","tool_use_id":"t1","content":"ok","is_error":true}`))
	if b, ok := toolResult.(domain.ToolResultBlock); !ok || b.ToolUseID != "t1" || !b.IsError {
		t.Errorf("Expected tool_result block, got %#v", toolResult)
	}

	unknown := decodeContentBlock(json.RawMessage(`{"type":"thinking","thinking":"..."}`))
	if b, ok := unknown.(domain.UnknownBlock); !ok || b.Type != "thinking" {
		t.Errorf("Expected unknown block preserved, got %#v", unknown)
	}
}

func TestEncodeUpdateSession_OnlySetFieldsSerialized(t *testing.T) {
	title := "new"
	status := domain.UIStatusArchived

	data, err := json.Marshal(encodeUpdateSession(domain.UpdateSessionData{
		Title:    &title,
		UIStatus: &status,
	}))
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if len(m) != 2 {
		t.Errorf("Expected exactly 2 keys, got %v", m)
	}
	if m["title"] != "new" || m["ui_status"] != "archived" {
		t.Errorf("Unexpected payload: %v", m)
	}
}

func TestEncodeCreateSession_RequiredKeysAlwaysPresent(t *testing.T) {
	data, err := json.Marshal(encodeCreateSession(domain.CreateSessionData{
		Repo:         "acme/webapp",
		TargetBranch: "main",
	}))
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if m["repo"] != "acme/webapp" || m["target_branch"] != "main" {
		t.Errorf("Expected repo and target_branch keys, got %v", m)
	}
	if _, ok := m["title"]; ok {
		t.Error("Expected empty title omitted")
	}
}
