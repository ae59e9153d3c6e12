package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/emiliopalmerini/agentdeck/internal/github"
	"github.com/emiliopalmerini/agentdeck/internal/web/views"
)

const repoSearchLimit = 8

// handleRepoSearch serves repository suggestions for the create form.
// Requests are pushed through a debouncer so rapid typing runs one
// GitHub query and superseded requests come back empty.
func (s *Server) handleRepoSearch(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("repo"))
	if query == "" {
		return render(c, http.StatusOK, views.RepoResults(nil))
	}

	type result struct {
		repos []github.Repo
		err   error
	}
	done := make(chan result, 1)
	s.repoSearch.Do(c.Request().Context(), func(ctx context.Context) {
		repos, err := s.gh.SearchRepos(ctx, query, repoSearchLimit)
		done <- result{repos: repos, err: err}
	})

	select {
	case res := <-done:
		if res.err != nil {
			if c.Request().Context().Err() != nil || errorsIsCanceled(res.err) {
				return c.NoContent(http.StatusNoContent)
			}
			return respondError(c, res.err)
		}
		rows := make([]views.RepoResult, 0, len(res.repos))
		for _, r := range res.repos {
			rows = append(rows, views.RepoResult{FullName: r.FullName, Stars: r.Stars})
		}
		return render(c, http.StatusOK, views.RepoResults(rows))
	case <-c.Request().Context().Done():
		return c.NoContent(http.StatusNoContent)
	}
}

func (s *Server) handleBranchSearch(c echo.Context) error {
	repo := strings.TrimSpace(c.QueryParam("repo"))
	if repo == "" {
		return render(c, http.StatusOK, views.BranchResults(nil, ""))
	}
	filter := strings.ToLower(strings.TrimSpace(c.QueryParam("target_branch")))

	type result struct {
		branches github.Branches
		err      error
	}
	done := make(chan result, 1)
	s.branchSearch.Do(c.Request().Context(), func(ctx context.Context) {
		branches, err := s.gh.ListBranches(ctx, repo)
		done <- result{branches: branches, err: err}
	})

	select {
	case res := <-done:
		if res.err != nil {
			if c.Request().Context().Err() != nil || errorsIsCanceled(res.err) {
				return c.NoContent(http.StatusNoContent)
			}
			return respondError(c, res.err)
		}
		names := res.branches.Names
		if filter != "" {
			kept := names[:0:0]
			for _, name := range names {
				if strings.Contains(strings.ToLower(name), filter) {
					kept = append(kept, name)
				}
			}
			names = kept
		}
		return render(c, http.StatusOK, views.BranchResults(names, res.branches.Default))
	case <-c.Request().Context().Done():
		return c.NoContent(http.StatusNoContent)
	}
}

func errorsIsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
