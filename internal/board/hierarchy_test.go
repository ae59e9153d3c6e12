package board

import (
	"testing"
	"time"

	"github.com/emiliopalmerini/agentdeck/internal/domain"
)

func ptr(s string) *string { return &s }

func sessionAt(id string, parentID *string, status domain.UIStatus, created time.Time) domain.Session {
	return domain.Session{
		ID:        id,
		ParentID:  parentID,
		UIStatus:  status,
		CreatedAt: created,
	}
}

func TestBuildHierarchy_NestsAndSortsNewestFirst(t *testing.T) {
	t1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t1.Add(2 * time.Hour)

	sessions := []domain.Session{
		sessionAt("A", nil, domain.UIStatusPending, t1),
		sessionAt("B", ptr("A"), domain.UIStatusPending, t2),
		sessionAt("C", ptr("missing"), domain.UIStatusPending, t3),
	}

	roots := BuildHierarchy(sessions, domain.UIStatusPending)

	if len(roots) != 2 {
		t.Fatalf("Expected 2 roots, got %d", len(roots))
	}
	if roots[0].ID != "C" || roots[1].ID != "A" {
		t.Errorf("Expected roots [C, A] by createdAt desc, got [%s, %s]", roots[0].ID, roots[1].ID)
	}
	if len(roots[1].Children) != 1 || roots[1].Children[0].ID != "B" {
		t.Errorf("Expected A.children = [B], got %+v", roots[1].Children)
	}
	if CountSessions(roots) != 3 {
		t.Errorf("Expected every session exactly once, got %d", CountSessions(roots))
	}
}

func TestBuildHierarchy_FilteredParentPromotesChild(t *testing.T) {
	now := time.Now()
	sessions := []domain.Session{
		sessionAt("parent", nil, domain.UIStatusArchived, now),
		sessionAt("child", ptr("parent"), domain.UIStatusPending, now.Add(time.Minute)),
	}

	roots := BuildHierarchy(sessions, domain.UIStatusPending)

	if len(roots) != 1 || roots[0].ID != "child" {
		t.Fatalf("Expected child promoted to root, got %+v", roots)
	}
	if len(roots[0].Children) != 0 {
		t.Errorf("Expected no children, got %+v", roots[0].Children)
	}
}

func TestBuildHierarchy_FilterDropsOtherBuckets(t *testing.T) {
	now := time.Now()
	sessions := []domain.Session{
		sessionAt("a", nil, domain.UIStatusPending, now),
		sessionAt("b", nil, domain.UIStatusArchived, now),
		sessionAt("c", nil, domain.UIStatusNeedsReview, now),
	}

	roots := BuildHierarchy(sessions, domain.UIStatusArchived)

	if len(roots) != 1 || roots[0].ID != "b" {
		t.Errorf("Expected only archived session, got %+v", roots)
	}
}

func TestBuildHierarchy_DoesNotMutateInput(t *testing.T) {
	now := time.Now()
	sessions := []domain.Session{
		sessionAt("A", nil, domain.UIStatusPending, now),
		sessionAt("B", ptr("A"), domain.UIStatusPending, now.Add(time.Minute)),
	}

	_ = BuildHierarchy(sessions, domain.UIStatusPending)

	if sessions[0].Children != nil {
		t.Error("Expected input sessions untouched")
	}
}

func TestBuildHierarchy_DeepNesting(t *testing.T) {
	now := time.Now()
	sessions := []domain.Session{
		sessionAt("root", nil, domain.UIStatusPending, now),
		sessionAt("mid", ptr("root"), domain.UIStatusPending, now.Add(time.Minute)),
		sessionAt("leaf", ptr("mid"), domain.UIStatusPending, now.Add(2*time.Minute)),
	}

	roots := BuildHierarchy(sessions, domain.UIStatusPending)

	if len(roots) != 1 {
		t.Fatalf("Expected 1 root, got %d", len(roots))
	}
	mid := roots[0].Children
	if len(mid) != 1 || mid[0].ID != "mid" {
		t.Fatalf("Expected mid under root, got %+v", mid)
	}
	if len(mid[0].Children) != 1 || mid[0].Children[0].ID != "leaf" {
		t.Errorf("Expected leaf under mid, got %+v", mid[0].Children)
	}
}

func TestBuildHierarchy_EmptyInput(t *testing.T) {
	if roots := BuildHierarchy(nil, domain.UIStatusPending); len(roots) != 0 {
		t.Errorf("Expected no roots, got %+v", roots)
	}
}
