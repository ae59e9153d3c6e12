// Package board is the session board's data layer: cached, revalidating
// reads over the agent backend plus optimistic mutations, and the pure
// view-model builders (hierarchy, conversation, search) on top of them.
package board

import (
	"context"
	"time"

	"github.com/emiliopalmerini/agentdeck/internal/domain"
	"github.com/emiliopalmerini/agentdeck/internal/ports"
	"github.com/emiliopalmerini/agentdeck/internal/querycache"
)

// Backend is the slice of the backend client the board needs.
type Backend interface {
	ListSessions(ctx context.Context) ([]domain.Session, error)
	GetSession(ctx context.Context, id string) (domain.Session, error)
	CreateSession(ctx context.Context, data domain.CreateSessionData) (domain.Session, error)
	UpdateSession(ctx context.Context, id string, patch domain.UpdateSessionData) (domain.Session, error)
	ArchiveSession(ctx context.Context, id string) (domain.Session, error)
	UnarchiveSession(ctx context.Context, id string) (domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	ListPrompts(ctx context.Context, sessionID string) ([]domain.Prompt, error)
	CreatePrompt(ctx context.Context, sessionID, content string) (domain.Prompt, error)
	ListMessages(ctx context.Context, promptID string) ([]domain.BackendMessage, error)
}

// Cache key layout. Kind and op are split so "all session lists" can be
// invalidated with one prefix call.
const (
	kindSessions = "sessions"
	kindPrompts  = "prompts"
	kindMessages = "messages"

	opList   = "list"
	opDetail = "detail"
)

// SessionsKey addresses the cached session list.
func SessionsKey() querycache.Key {
	return querycache.ListKey(kindSessions, opList)
}

// SessionKey addresses one session's detail entry.
func SessionKey(id string) querycache.Key {
	return querycache.ItemKey(kindSessions, opDetail, id)
}

// PromptsKey addresses the prompt list of one session.
func PromptsKey(sessionID string) querycache.Key {
	return querycache.ItemKey(kindPrompts, opList, sessionID)
}

// MessagesKey addresses the message list of one prompt.
func MessagesKey(promptID string) querycache.Key {
	return querycache.ItemKey(kindMessages, opList, promptID)
}

// Config tunes the board's caching and polling behavior.
type Config struct {
	// ListTTL is how long the session list and detail entries stay fresh
	// before a read triggers background revalidation.
	ListTTL time.Duration
	// PollInterval drives the prompt and message pollers.
	PollInterval time.Duration
}

// Board binds the backend client to the query cache. One instance is
// constructed at startup and shared; it is safe for concurrent use.
type Board struct {
	client   Backend
	cache    *querycache.Store
	notifier Notifier
	metrics  ports.Metrics
	cfg      Config
}

// New creates a Board. A nil notifier or metrics falls back to no-ops.
func New(client Backend, cache *querycache.Store, notifier Notifier, metrics ports.Metrics, cfg Config) *Board {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if cfg.ListTTL == 0 {
		cfg.ListTTL = 30 * time.Second
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 3 * time.Second
	}
	b := &Board{
		client:   client,
		cache:    cache,
		notifier: notifier,
		metrics:  metrics,
		cfg:      cfg,
	}
	if metrics != nil {
		cache.SetStats(cacheStats{metrics})
	}
	return b
}

// Cache exposes the underlying store for change subscriptions. Consumers
// may watch it but must go through the Board for writes.
func (b *Board) Cache() *querycache.Store {
	return b.cache
}

// Sessions is the cached session list.
func (b *Board) Sessions(ctx context.Context) ([]domain.Session, error) {
	return querycache.Read(ctx, b.cache, SessionsKey(), b.cfg.ListTTL, b.client.ListSessions)
}

// Session is the cached detail entry for one session.
func (b *Board) Session(ctx context.Context, id string) (domain.Session, error) {
	return querycache.Read(ctx, b.cache, SessionKey(id), b.cfg.ListTTL, func(ctx context.Context) (domain.Session, error) {
		return b.client.GetSession(ctx, id)
	})
}

// Prompts is the cached prompt list for one session.
func (b *Board) Prompts(ctx context.Context, sessionID string) ([]domain.Prompt, error) {
	return querycache.Read(ctx, b.cache, PromptsKey(sessionID), 0, func(ctx context.Context) ([]domain.Prompt, error) {
		return b.client.ListPrompts(ctx, sessionID)
	})
}

// Messages is the cached message list for one prompt.
func (b *Board) Messages(ctx context.Context, promptID string) ([]domain.BackendMessage, error) {
	return querycache.Read(ctx, b.cache, MessagesKey(promptID), 0, func(ctx context.Context) ([]domain.BackendMessage, error) {
		return b.client.ListMessages(ctx, promptID)
	})
}

// Conversation derives the ordered conversation timeline for a session
// from the cached prompts and their message lists. Prompts whose messages
// have not been fetched yet appear with an empty message list.
func (b *Board) Conversation(ctx context.Context, sessionID string) ([]domain.ConversationItem, error) {
	prompts, err := b.Prompts(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	byPrompt := make(map[string][]domain.BackendMessage, len(prompts))
	for _, p := range prompts {
		msgs, err := b.Messages(ctx, p.ID)
		if err != nil {
			continue
		}
		byPrompt[p.ID] = msgs
	}
	return BuildConversation(prompts, byPrompt), nil
}

// Hierarchy derives the sidebar tree for a status bucket, optionally
// narrowed by a search query.
func (b *Board) Hierarchy(ctx context.Context, filter domain.UIStatus, query string) ([]*domain.Session, error) {
	sessions, err := b.Sessions(ctx)
	if err != nil {
		return nil, err
	}
	return FilterTree(BuildHierarchy(sessions, filter), query), nil
}

// WatchSessions polls the session list until ctx is cancelled. It
// blocks; run it in a goroutine owned by the server.
func (b *Board) WatchSessions(ctx context.Context) {
	querycache.Poll(ctx, b.cfg.PollInterval, func(ctx context.Context) {
		querycache.Revalidate(ctx, b.cache, SessionsKey(), b.client.ListSessions)
	})
}

// WatchConversation polls prompts and, per prompt, messages for a session
// until ctx is cancelled. It blocks; run it in a goroutine owned by the
// view (one per open detail pane). An empty session id is a no-op.
func (b *Board) WatchConversation(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	querycache.Poll(ctx, b.cfg.PollInterval, func(ctx context.Context) {
		querycache.Revalidate(ctx, b.cache, PromptsKey(sessionID), func(ctx context.Context) ([]domain.Prompt, error) {
			return b.client.ListPrompts(ctx, sessionID)
		})
		prompts, ok := querycache.Value[[]domain.Prompt](b.cache, PromptsKey(sessionID))
		if !ok {
			return
		}
		for _, p := range prompts {
			promptID := p.ID
			querycache.Revalidate(ctx, b.cache, MessagesKey(promptID), func(ctx context.Context) ([]domain.BackendMessage, error) {
				return b.client.ListMessages(ctx, promptID)
			})
		}
	})
}

// cacheStats bridges the store's event hooks onto the metrics port.
type cacheStats struct {
	m ports.Metrics
}

func (s cacheStats) CacheHit(key querycache.Key)        { s.m.RecordCacheHit(key.Kind) }
func (s cacheStats) CacheMiss(key querycache.Key)       { s.m.RecordCacheMiss(key.Kind) }
func (s cacheStats) CacheRevalidate(key querycache.Key) { s.m.RecordRevalidate(key.Kind) }
