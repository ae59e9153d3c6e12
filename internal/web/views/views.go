// Package views renders the board UI. Components are built on the
// templ runtime so handlers can compose and serve them directly.
package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/emiliopalmerini/agentdeck/internal/domain"
)

func esc(s string) string { return templ.EscapeString(s) }

// Layout wraps body in the page chrome shared by every view.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<link rel="stylesheet" href="/static/app.css">
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="/static/app.js" defer></script>
</head>
<body>
<header class="topbar">
<a href="/" class="brand">agentdeck</a>
</header>
<main>
`, esc(title)); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main>
<div id="toasts" class="toasts"></div>
</body>
</html>
`)
		return err
	})
}

// Board renders the session sidebar plus an empty detail pane.
func Board(tree []*domain.Session, filter domain.UIStatus, query string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div class="board">
<aside class="sidebar" id="sidebar">
`); err != nil {
			return err
		}
		if err := filterBar(filter, query).Render(ctx, w); err != nil {
			return err
		}
		if err := SessionTree(tree).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</aside>
<section class="detail" id="detail">
`); err != nil {
			return err
		}
		if err := DetailPlaceholder().Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</section>
</div>
`); err != nil {
			return err
		}
		return NewSessionForm().Render(ctx, w)
	})
}

// DetailPlaceholder is the empty detail pane, also returned after a
// selected session is archived or deleted.
func DetailPlaceholder() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<p class="placeholder">Select a session</p>`+"\n")
		return err
	})
}

func filterBar(filter domain.UIStatus, query string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var opts strings.Builder
		for _, status := range []domain.UIStatus{
			domain.UIStatusPending,
			domain.UIStatusInProgress,
			domain.UIStatusNeedsReview,
			domain.UIStatusNeedsReviewIPReturn,
			domain.UIStatusArchived,
		} {
			opts.WriteString(statusOption(status, filter))
		}
		_, err := fmt.Fprintf(w, `<div class="filter-bar">
<input type="search" name="q" value="%s" placeholder="Filter sessions"
  hx-get="/partials/tree" hx-trigger="input changed delay:300ms" hx-target="#session-tree"
  hx-include="[name='status']">
<select name="status" hx-get="/partials/tree" hx-trigger="change" hx-target="#session-tree" hx-include="[name='q']">
%s</select>
</div>
`, esc(query), opts.String())
		return err
	})
}

func statusOption(status, selected domain.UIStatus) string {
	sel := ""
	if status == selected {
		sel = " selected"
	}
	return fmt.Sprintf(`<option value="%s"%s>%s</option>`+"\n", esc(string(status)), sel, esc(string(status)))
}

// SessionTree renders the filtered hierarchy. Served standalone for
// HTMX swaps as well as inside Board.
func SessionTree(tree []*domain.Session) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<ul class="session-tree" id="session-tree"
  hx-get="/partials/tree" hx-trigger="refresh" hx-swap="outerHTML" hx-include="[name='q'],[name='status']">`+"\n"); err != nil {
			return err
		}
		for _, node := range tree {
			if err := sessionNode(node, 0).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</ul>\n")
		return err
	})
}

func sessionNode(s *domain.Session, depth int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := s.Title
		if title == "" {
			title = s.ID
		}
		if _, err := fmt.Fprintf(w, `<li class="session-node depth-%d" data-session-id="%s">
<a href="%s" hx-get="/partials/sessions/%s" hx-target="#detail" hx-push-url="/sessions/%s">
<span class="title">%s</span>
<span class="repo">%s</span>
%s%s</a>
`, depth, esc(s.ID),
			templ.SafeURL("/sessions/"+s.ID), esc(s.ID), esc(s.ID),
			esc(title), esc(s.Repo),
			statusBadge(s), diffBadge(s.DiffStats)); err != nil {
			return err
		}
		if len(s.Children) > 0 {
			if _, err := io.WriteString(w, `<ul class="children">`+"\n"); err != nil {
				return err
			}
			for _, child := range s.Children {
				if err := sessionNode(child, depth+1).Render(ctx, w); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</ul>\n"); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</li>\n")
		return err
	})
}

func statusBadge(s *domain.Session) string {
	return fmt.Sprintf(`<span class="badge badge-%s">%s</span>`+"\n", esc(string(s.InboxStatus)), esc(string(s.InboxStatus)))
}

func diffBadge(d *domain.DiffStats) string {
	if d == nil {
		return ""
	}
	return fmt.Sprintf(`<span class="diff"><ins>+%d</ins> <del>-%d</del></span>`+"\n", d.Additions, d.Deletions)
}

// SessionDetail renders one session's header and conversation pane.
func SessionDetail(s domain.Session, items []domain.ConversationItem) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := s.Title
		if title == "" {
			title = s.ID
		}
		archiveLabel, archivePath := "Archive", "archive"
		if s.SessionStatus == domain.SessionStatusArchived {
			archiveLabel, archivePath = "Unarchive", "unarchive"
		}
		if _, err := fmt.Fprintf(w, `<article class="session-detail" data-session-id="%s">
<header>
<h1>%s</h1>
<p class="meta">%s &middot; %s &rarr; %s</p>
%s<div class="actions">
<button hx-post="/api/sessions/%s/%s" hx-target="#detail">%s</button>
<button hx-delete="/api/sessions/%s" hx-confirm="Delete this session?" hx-target="#detail">Delete</button>
</div>
</header>
`, esc(s.ID), esc(title), esc(s.Repo), esc(s.Branch), esc(s.TargetBranch),
			prLink(s.PRURL),
			esc(s.ID), archivePath, archiveLabel, esc(s.ID)); err != nil {
			return err
		}
		if err := Conversation(s.ID, items).Render(ctx, w); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, `<form class="prompt-form" hx-post="/api/sessions/%s/prompts" hx-target="#conversation" hx-swap="outerHTML">
<textarea name="content" placeholder="Send a prompt" required></textarea>
<button type="submit">Send</button>
</form>
</article>
`, esc(s.ID))
		return err
	})
}

func prLink(url string) string {
	if url == "" {
		return ""
	}
	return fmt.Sprintf(`<a class="pr-link" href="%s">Pull request</a>`+"\n", templ.SafeURL(url))
}

// Conversation renders prompt turns with their backend messages.
func Conversation(sessionID string, items []domain.ConversationItem) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div class="conversation" id="conversation" data-session-id="%s">`+"\n", esc(sessionID)); err != nil {
			return err
		}
		for _, item := range items {
			if err := conversationTurn(item).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</div>\n")
		return err
	})
}

func conversationTurn(item domain.ConversationItem) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div class="turn">
<div class="prompt prompt-%s">%s</div>
`, esc(string(item.Prompt.Status)), esc(item.Prompt.Text())); err != nil {
			return err
		}
		for _, msg := range item.Messages {
			if err := message(msg).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</div>\n")
		return err
	})
}

func message(m domain.BackendMessage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div class="message message-%s">`+"\n", esc(string(m.Type))); err != nil {
			return err
		}
		if m.Message != nil {
			for _, block := range m.Message.Content {
				if _, err := io.WriteString(w, renderBlock(block)); err != nil {
					return err
				}
			}
		}
		_, err := io.WriteString(w, "</div>\n")
		return err
	})
}

func renderBlock(block domain.ContentBlock) string {
	switch b := block.(type) {
	case domain.TextBlock:
		return fmt.Sprintf(`<p class="text">%s</p>`+"\n", esc(b.Text))
	case domain.ToolUseBlock:
		return fmt.Sprintf(`<details class="tool-use"><summary>%s</summary><pre>%s</pre></details>`+"\n", esc(b.Name), esc(string(b.Input)))
	case domain.ToolResultBlock:
		class := "tool-result"
		if b.IsError {
			class += " tool-result-error"
		}
		return fmt.Sprintf(`<pre class="%s">%s</pre>`+"\n", class, esc(string(b.Content)))
	case domain.UnknownBlock:
		return fmt.Sprintf(`<pre class="unknown">%s</pre>`+"\n", esc(string(b.Raw)))
	default:
		return ""
	}
}

// NewSessionForm renders the create dialog with repo and branch
// search fed by the GitHub endpoints.
func NewSessionForm() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<dialog id="new-session">
<form hx-post="/api/sessions" hx-target="#session-tree" hx-swap="outerHTML">
<label>Title <input name="title"></label>
<label>Repository
<input name="repo" autocomplete="off" required
  hx-get="/partials/repos" hx-trigger="input changed delay:300ms" hx-target="#repo-results">
</label>
<div id="repo-results" class="search-results"></div>
<label>Target branch
<input name="target_branch" autocomplete="off" required
  hx-get="/partials/branches" hx-trigger="input changed delay:300ms" hx-target="#branch-results"
  hx-include="[name='repo']">
</label>
<div id="branch-results" class="search-results"></div>
<label>First prompt <textarea name="prompt"></textarea></label>
<button type="submit">Create session</button>
</form>
</dialog>
`)
		return err
	})
}

// RepoResults renders repository search hits for the create form.
func RepoResults(repos []RepoResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, r := range repos {
			if _, err := fmt.Fprintf(w, `<button type="button" class="result" data-target="repo" data-value="%s">%s <span class="stars">&#9733; %d</span></button>`+"\n",
				esc(r.FullName), esc(r.FullName), r.Stars); err != nil {
				return err
			}
		}
		return nil
	})
}

// RepoResult is the slimmed repository row the search partial shows.
type RepoResult struct {
	FullName string
	Stars    int
}

// BranchResults renders branch search hits, default branch first.
func BranchResults(names []string, defaultBranch string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, name := range names {
			tag := ""
			if name == defaultBranch {
				tag = ` <span class="default">default</span>`
			}
			if _, err := fmt.Fprintf(w, `<button type="button" class="result" data-target="target_branch" data-value="%s">%s%s</button>`+"\n",
				esc(name), esc(name), tag); err != nil {
				return err
			}
		}
		return nil
	})
}

// ErrorPage renders a full-page error.
func ErrorPage(status int, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="error-page"><h1>%d</h1><p>%s</p><a href="/">Back to board</a></div>`+"\n", status, esc(message))
		return err
	})
}
