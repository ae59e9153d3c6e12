package domain

// InboxStatus is the fine-grained processing status reported by the backend.
type InboxStatus string

const (
	InboxStatusPending              InboxStatus = "pending"
	InboxStatusInProgress           InboxStatus = "in-progress"
	InboxStatusCompleted            InboxStatus = "completed"
	InboxStatusFailed               InboxStatus = "failed"
	InboxStatusNeedsReview          InboxStatus = "needs-review"
	InboxStatusNeedsReviewIPReturn  InboxStatus = "needs-review-ip-returned"
)

// UIStatus is the coarse bucket used for sidebar tab filtering.
type UIStatus string

const (
	UIStatusPending              UIStatus = "pending"
	UIStatusInProgress           UIStatus = "in-progress"
	UIStatusNeedsReview          UIStatus = "needs-review"
	UIStatusNeedsReviewIPReturn  UIStatus = "needs-review-ip-returned"
	UIStatusArchived             UIStatus = "archived"
)

// SessionStatus is the session lifecycle state.
type SessionStatus string

const (
	SessionStatusActive      SessionStatus = "active"
	SessionStatusArchived    SessionStatus = "archived"
	SessionStatusReturningIP SessionStatus = "returning-ip"
)

// PromptStatus is the processing status of a single prompt.
type PromptStatus string

const (
	PromptStatusPending    PromptStatus = "pending"
	PromptStatusProcessing PromptStatus = "processing"
	PromptStatusCompleted  PromptStatus = "completed"
	PromptStatusFailed     PromptStatus = "failed"
)

// ParseInboxStatus maps a wire value to a known status. Unrecognized
// values degrade to pending so a backend rollout never breaks list rendering.
func ParseInboxStatus(s string) InboxStatus {
	switch InboxStatus(s) {
	case InboxStatusPending, InboxStatusInProgress, InboxStatusCompleted,
		InboxStatusFailed, InboxStatusNeedsReview, InboxStatusNeedsReviewIPReturn:
		return InboxStatus(s)
	default:
		return InboxStatusPending
	}
}

// ParseUIStatus maps a wire value to a known bucket, defaulting to pending.
func ParseUIStatus(s string) UIStatus {
	switch UIStatus(s) {
	case UIStatusPending, UIStatusInProgress, UIStatusNeedsReview,
		UIStatusNeedsReviewIPReturn, UIStatusArchived:
		return UIStatus(s)
	default:
		return UIStatusPending
	}
}

// ParseSessionStatus maps a wire value to a lifecycle state, defaulting to active.
func ParseSessionStatus(s string) SessionStatus {
	switch SessionStatus(s) {
	case SessionStatusActive, SessionStatusArchived, SessionStatusReturningIP:
		return SessionStatus(s)
	default:
		return SessionStatusActive
	}
}

// ParsePromptStatus maps a wire value to a prompt status, defaulting to pending.
func ParsePromptStatus(s string) PromptStatus {
	switch PromptStatus(s) {
	case PromptStatusPending, PromptStatusProcessing, PromptStatusCompleted, PromptStatusFailed:
		return PromptStatus(s)
	default:
		return PromptStatusPending
	}
}
