package domain

import (
	"encoding/json"
	"time"
)

// Session is a tracked unit of agent work against a repo/branch.
type Session struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Repo         string `json:"repo"`
	Branch       string `json:"branch"`
	TargetBranch string `json:"targetBranch"`

	InboxStatus   InboxStatus   `json:"inboxStatus"`
	UIStatus      UIStatus      `json:"uiStatus"`
	SessionStatus SessionStatus `json:"sessionStatus"`

	// ParentID links a subtask to its parent session. Children is derived
	// by the hierarchy builder and is never sent back to the backend.
	ParentID *string    `json:"parentId"`
	Children []*Session `json:"children,omitempty"`

	DiffStats *DiffStats `json:"diffStats,omitempty"`
	PRURL     string     `json:"prUrl,omitempty"`

	// Messages is populated only when the backend inlines the trace on a
	// session payload. Nil otherwise; the conversation view fetches
	// messages per prompt.
	Messages []BackendMessage `json:"messages,omitempty"`

	// SbxConfig is backend-defined sandbox configuration, passed through opaquely.
	SbxConfig json.RawMessage `json:"sbxConfig,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// DiffStats holds the diff size of a session's working branch.
type DiffStats struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
}

// CreateSessionData is the client-side input for creating a session.
type CreateSessionData struct {
	Title        string          `json:"title"`
	Repo         string          `json:"repo"`
	Branch       string          `json:"branch"`
	TargetBranch string          `json:"targetBranch"`
	ParentID     *string         `json:"parentId,omitempty"`
	SbxConfig    json.RawMessage `json:"sbxConfig,omitempty"`
}

// UpdateSessionData is a partial update. Nil fields are left untouched
// server-side, so a patch stays a patch.
type UpdateSessionData struct {
	Title         *string        `json:"title,omitempty"`
	InboxStatus   *InboxStatus   `json:"inboxStatus,omitempty"`
	UIStatus      *UIStatus      `json:"uiStatus,omitempty"`
	SessionStatus *SessionStatus `json:"sessionStatus,omitempty"`
	TargetBranch  *string        `json:"targetBranch,omitempty"`
	PRURL         *string        `json:"prUrl,omitempty"`
}

// IsSubtask reports whether the session has a parent.
func (s *Session) IsSubtask() bool {
	return s.ParentID != nil && *s.ParentID != ""
}

// Apply copies the non-nil fields of an update onto the session.
// Used for optimistic cache updates before the server confirms.
func (s *Session) Apply(u UpdateSessionData) {
	if u.Title != nil {
		s.Title = *u.Title
	}
	if u.InboxStatus != nil {
		s.InboxStatus = *u.InboxStatus
	}
	if u.UIStatus != nil {
		s.UIStatus = *u.UIStatus
	}
	if u.SessionStatus != nil {
		s.SessionStatus = *u.SessionStatus
	}
	if u.TargetBranch != nil {
		s.TargetBranch = *u.TargetBranch
	}
	if u.PRURL != nil {
		s.PRURL = *u.PRURL
	}
}
