package board

import (
	"strings"

	"github.com/emiliopalmerini/agentdeck/internal/domain"
)

// FilterTree narrows a hierarchy to sessions whose title or repo contains
// the query, case-insensitively. A non-matching node survives only while
// it has a surviving descendant, so the ancestor chain of every match is
// preserved and no child is ever orphaned under a pruned parent. The
// input tree is not modified.
func FilterTree(nodes []*domain.Session, query string) []*domain.Session {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return nodes
	}
	return filterNodes(nodes, query)
}

func filterNodes(nodes []*domain.Session, query string) []*domain.Session {
	var out []*domain.Session
	for _, n := range nodes {
		kept := filterNodes(n.Children, query)
		if !matches(n, query) && len(kept) == 0 {
			continue
		}
		c := *n
		c.Children = kept
		out = append(out, &c)
	}
	return out
}

func matches(s *domain.Session, query string) bool {
	return strings.Contains(strings.ToLower(s.Title), query) ||
		strings.Contains(strings.ToLower(s.Repo), query)
}
