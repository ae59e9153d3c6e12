package domain

// ConversationItem is a derived view type pairing a prompt with the
// messages produced for it. It is assembled by the conversation builder
// and never constructed by the backend.
type ConversationItem struct {
	Prompt   Prompt           `json:"prompt"`
	Messages []BackendMessage `json:"messages"`
}
