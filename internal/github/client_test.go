package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchRepos_MapsSearchResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/repositories" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "webapp" || q.Get("sort") != "stars" || q.Get("order") != "desc" {
			t.Errorf("Unexpected query: %v", q)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Expected bearer token, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"full_name":"acme/webapp","description":"the app","stargazers_count":42},
			{"full_name":"acme/webapp-old","stargazers_count":1}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok")
	repos, err := client.SearchRepos(context.Background(), "webapp", 10)
	if err != nil {
		t.Fatalf("SearchRepos failed: %v", err)
	}
	if len(repos) != 2 {
		t.Fatalf("Expected 2 repos, got %d", len(repos))
	}
	if repos[0].FullName != "acme/webapp" || repos[0].Stars != 42 || repos[0].Description != "the app" {
		t.Errorf("Unexpected repo: %+v", repos[0])
	}
}

func TestSearchRepos_BlankQueryShortCircuits(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "")
	repos, err := client.SearchRepos(context.Background(), "   ", 10)
	if err != nil || repos != nil {
		t.Errorf("Expected nil, nil for blank query, got %v, %v", repos, err)
	}
}

func TestListBranches_ReturnsNamesAndDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/repos/acme/webapp":
			_, _ = w.Write([]byte(`{"default_branch":"main"}`))
		case "/repos/acme/webapp/branches":
			_, _ = w.Write([]byte(`[{"name":"main"},{"name":"develop"},{"name":"feature/login"}]`))
		default:
			t.Errorf("Unexpected path: %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	branches, err := client.ListBranches(context.Background(), "acme/webapp")
	if err != nil {
		t.Fatalf("ListBranches failed: %v", err)
	}
	if branches.Default != "main" {
		t.Errorf("Expected default main, got %q", branches.Default)
	}
	if len(branches.Names) != 3 || branches.Names[2] != "feature/login" {
		t.Errorf("Unexpected branches: %+v", branches.Names)
	}
}

func TestListBranches_RejectsMalformedName(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "")
	for _, name := range []string{"", "justname", "/name", "owner/"} {
		if _, err := client.ListBranches(context.Background(), name); err == nil {
			t.Errorf("Expected error for %q, got nil", name)
		}
	}
}

func TestListBranches_NonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	if _, err := client.ListBranches(context.Background(), "acme/webapp"); err == nil {
		t.Error("Expected error for 403, got nil")
	}
}
