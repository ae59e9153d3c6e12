package domain

import "time"

// Prompt is one user-submitted instruction within a session's conversation.
// Content holds the plain-text form; Blocks holds the structured content
// blocks when the backend provides them.
type Prompt struct {
	ID        string         `json:"id"`
	SessionID string         `json:"sessionId"`
	Content   string         `json:"content"`
	Blocks    []ContentBlock `json:"blocks,omitempty"`
	Status    PromptStatus   `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Text returns the best plain-text rendering of the prompt.
func (p *Prompt) Text() string {
	if p.Content != "" {
		return p.Content
	}
	out := ""
	for _, b := range p.Blocks {
		if t, ok := b.(TextBlock); ok {
			if out != "" {
				out += "\n"
			}
			out += t.Text
		}
	}
	return out
}
