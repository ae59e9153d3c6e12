package domain

import "testing"

func TestSession_Apply_PartialUpdate(t *testing.T) {
	s := Session{
		ID:           "s1",
		Title:        "old title",
		TargetBranch: "main",
		UIStatus:     UIStatusPending,
	}

	title := "new title"
	status := UIStatusNeedsReview
	s.Apply(UpdateSessionData{Title: &title, UIStatus: &status})

	if s.Title != "new title" {
		t.Errorf("Expected title updated, got %q", s.Title)
	}
	if s.UIStatus != UIStatusNeedsReview {
		t.Errorf("Expected uiStatus updated, got %q", s.UIStatus)
	}
	if s.TargetBranch != "main" {
		t.Errorf("Expected targetBranch untouched, got %q", s.TargetBranch)
	}
}

func TestSession_Apply_EmptyPatchIsNoop(t *testing.T) {
	s := Session{ID: "s1", Title: "title", PRURL: "https://example.com/pr/1"}

	s.Apply(UpdateSessionData{})

	if s.Title != "title" || s.PRURL != "https://example.com/pr/1" {
		t.Errorf("Expected session unchanged, got %+v", s)
	}
}

func TestSession_IsSubtask(t *testing.T) {
	parent := "p1"
	empty := ""

	cases := []struct {
		name     string
		parentID *string
		want     bool
	}{
		{"nil parent", nil, false},
		{"empty parent", &empty, false},
		{"real parent", &parent, true},
	}
	for _, tc := range cases {
		s := Session{ParentID: tc.parentID}
		if got := s.IsSubtask(); got != tc.want {
			t.Errorf("%s: IsSubtask() = %v, expected %v", tc.name, got, tc.want)
		}
	}
}
