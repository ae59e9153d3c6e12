package board

import (
	"sort"

	"github.com/emiliopalmerini/agentdeck/internal/domain"
)

// BuildConversation assembles the ordered conversation timeline for one
// session: prompts ascending by createdAt, each paired with exactly the
// messages fetched for its id. Message order within a prompt is the API
// return order; messages carry no reliable independent timestamp.
//
// The function is pure: identical inputs produce structurally identical
// output, so it is safe to recompute on every cache change.
func BuildConversation(prompts []domain.Prompt, messagesByPrompt map[string][]domain.BackendMessage) []domain.ConversationItem {
	sorted := make([]domain.Prompt, len(prompts))
	copy(sorted, prompts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	items := make([]domain.ConversationItem, 0, len(sorted))
	for _, p := range sorted {
		items = append(items, domain.ConversationItem{
			Prompt:   p,
			Messages: messagesByPrompt[p.ID],
		})
	}
	return items
}
