package board

import (
	"sort"

	"github.com/emiliopalmerini/agentdeck/internal/domain"
)

// BuildHierarchy turns a flat session list into a tree for the sidebar.
// Sessions are filtered by uiStatus first; a surviving session whose
// parent also survives nests under it, anything else becomes a root. A
// dangling or filtered-out parent id is not an error: the child is
// promoted to root rather than dropped. Every level is sorted newest
// first.
//
// Input sessions are copied shallowly; the caller's slice is untouched.
// Cycles in parent ids are not guarded against.
func BuildHierarchy(sessions []domain.Session, filter domain.UIStatus) []*domain.Session {
	byID := make(map[string]*domain.Session, len(sessions))
	order := make([]*domain.Session, 0, len(sessions))
	for _, s := range sessions {
		if s.UIStatus != filter {
			continue
		}
		c := s
		c.Children = nil
		order = append(order, &c)
		if c.ID != "" {
			byID[c.ID] = &c
		}
	}

	var roots []*domain.Session
	for _, s := range order {
		if s.ParentID != nil && *s.ParentID != "" {
			if parent, ok := byID[*s.ParentID]; ok && parent != s {
				parent.Children = append(parent.Children, s)
				continue
			}
		}
		roots = append(roots, s)
	}

	sortTree(roots)
	return roots
}

func sortTree(nodes []*domain.Session) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].CreatedAt.After(nodes[j].CreatedAt)
	})
	for _, n := range nodes {
		sortTree(n.Children)
	}
}

// CountSessions returns the number of sessions in a tree, all levels
// included.
func CountSessions(nodes []*domain.Session) int {
	n := len(nodes)
	for _, node := range nodes {
		n += CountSessions(node.Children)
	}
	return n
}
