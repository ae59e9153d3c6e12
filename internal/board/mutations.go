package board

import (
	"context"
	"fmt"
	"log"

	"github.com/emiliopalmerini/agentdeck/internal/domain"
	"github.com/emiliopalmerini/agentdeck/internal/querycache"
)

// Mutations follow one contract: validate client-side first (invalid
// input never reaches the network), apply optimistically where a cached
// value exists, roll back to the exact pre-mutation snapshot on failure,
// and finish with a revalidation so the cache converges on server state
// whatever happened in between. Every outcome surfaces a notification;
// failures are additionally logged. Errors are returned to the caller and
// never panic through.

// CreateSession validates and creates a session. On success the new
// session is prepended to every cached session list in one batch, its
// detail cache is seeded, and the lists are marked stale so a background
// revalidation reconciles ordering and server-computed fields.
func (b *Board) CreateSession(ctx context.Context, data domain.CreateSessionData) (domain.Session, error) {
	if err := domain.ValidateCreateSessionData(data); err != nil {
		return domain.Session{}, err
	}

	created, err := b.client.CreateSession(ctx, data)
	if err != nil {
		b.mutationFailed("sessions.create", "Failed to create task", err)
		return domain.Session{}, err
	}

	b.cache.UpdateMatching(kindSessions, opList, func(_ querycache.Key, value any) any {
		list, ok := value.([]domain.Session)
		if !ok {
			return value
		}
		next := make([]domain.Session, 0, len(list)+1)
		next = append(next, created)
		next = append(next, list...)
		return next
	})
	b.cache.Set(SessionKey(created.ID), created)
	b.cache.InvalidateMatching(kindSessions, opList)

	b.notifier.Notify(newNotification(NotifySuccess, fmt.Sprintf("Task %q created", titleOrID(created))))
	return created, nil
}

// UpdateSession applies a partial update optimistically, rolls back on
// failure, and revalidates the detail entry in every case.
func (b *Board) UpdateSession(ctx context.Context, id string, patch domain.UpdateSessionData) (domain.Session, error) {
	key := SessionKey(id)
	tx := b.cache.Begin(key)
	if cur, ok := querycache.Value[domain.Session](b.cache, key); ok {
		optimistic := cur
		optimistic.Apply(patch)
		tx.Apply(optimistic)
	}

	updated, err := b.client.UpdateSession(ctx, id, patch)
	if err != nil {
		tx.Rollback()
		b.mutationFailed("sessions.update", "Failed to update task", err)
		b.revalidateSession(ctx, id)
		return domain.Session{}, err
	}

	tx.Commit(updated)
	b.cache.InvalidateMatching(kindSessions, opList)
	b.revalidateSession(ctx, id)

	b.notifier.Notify(newNotification(NotifySuccess, fmt.Sprintf("Task %q updated", titleOrID(updated))))
	return updated, nil
}

// ArchiveSession moves a session into the archived bucket with the same
// optimistic/rollback contract as UpdateSession.
func (b *Board) ArchiveSession(ctx context.Context, id string) (domain.Session, error) {
	return b.toggleArchive(ctx, id, true)
}

// UnarchiveSession restores an archived session.
func (b *Board) UnarchiveSession(ctx context.Context, id string) (domain.Session, error) {
	return b.toggleArchive(ctx, id, false)
}

func (b *Board) toggleArchive(ctx context.Context, id string, archive bool) (domain.Session, error) {
	key := SessionKey(id)
	tx := b.cache.Begin(key)
	if cur, ok := querycache.Value[domain.Session](b.cache, key); ok {
		optimistic := cur
		if archive {
			optimistic.SessionStatus = domain.SessionStatusArchived
			optimistic.UIStatus = domain.UIStatusArchived
		} else {
			optimistic.SessionStatus = domain.SessionStatusActive
			optimistic.UIStatus = uiStatusForInbox(optimistic.InboxStatus)
		}
		tx.Apply(optimistic)
	}

	var (
		updated domain.Session
		err     error
		op      = "sessions.archive"
		verb    = "archived"
	)
	if archive {
		updated, err = b.client.ArchiveSession(ctx, id)
	} else {
		updated, err = b.client.UnarchiveSession(ctx, id)
		op, verb = "sessions.unarchive", "unarchived"
	}
	if err != nil {
		tx.Rollback()
		b.mutationFailed(op, "Failed to "+verb[:len(verb)-1]+" task", err)
		b.revalidateSession(ctx, id)
		return domain.Session{}, err
	}

	tx.Commit(updated)
	b.cache.InvalidateMatching(kindSessions, opList)
	b.revalidateSession(ctx, id)

	b.notifier.Notify(newNotification(NotifySuccess, fmt.Sprintf("Task %q %s", titleOrID(updated), verb)))
	return updated, nil
}

// DeleteSession removes the detail entry, drops the session from cached
// lists, and marks the lists stale.
func (b *Board) DeleteSession(ctx context.Context, id string) error {
	if err := b.client.DeleteSession(ctx, id); err != nil {
		b.mutationFailed("sessions.delete", "Failed to delete task", err)
		return err
	}

	b.cache.Delete(SessionKey(id))
	b.cache.UpdateMatching(kindSessions, opList, func(_ querycache.Key, value any) any {
		list, ok := value.([]domain.Session)
		if !ok {
			return value
		}
		next := make([]domain.Session, 0, len(list))
		for _, s := range list {
			if s.ID != id {
				next = append(next, s)
			}
		}
		return next
	})
	b.cache.InvalidateMatching(kindSessions, opList)

	b.notifier.Notify(newNotification(NotifySuccess, "Task deleted"))
	return nil
}

// CreatePrompt validates and submits a new prompt, then invalidates the
// session's prompt list so the prompt (and, via polling, its messages)
// shows up.
func (b *Board) CreatePrompt(ctx context.Context, sessionID, content string) (domain.Prompt, error) {
	if err := domain.ValidatePromptContent(content); err != nil {
		return domain.Prompt{}, err
	}

	prompt, err := b.client.CreatePrompt(ctx, sessionID, content)
	if err != nil {
		b.mutationFailed("prompts.create", "Failed to send message", err)
		return domain.Prompt{}, err
	}

	b.cache.Invalidate(PromptsKey(sessionID))
	b.notifier.Notify(newNotification(NotifySuccess, "Message sent"))
	return prompt, nil
}

func (b *Board) revalidateSession(ctx context.Context, id string) {
	go querycache.Revalidate(context.WithoutCancel(ctx), b.cache, SessionKey(id), func(ctx context.Context) (domain.Session, error) {
		return b.client.GetSession(ctx, id)
	})
}

func (b *Board) mutationFailed(op, message string, err error) {
	log.Printf("WARN: %s failed: %v", op, err)
	if b.metrics != nil {
		b.metrics.RecordMutationFailure(op)
	}
	b.notifier.Notify(newNotification(NotifyError, message))
}

// uiStatusForInbox maps the fine-grained status onto the sidebar bucket a
// session should land in when it leaves the archive.
func uiStatusForInbox(s domain.InboxStatus) domain.UIStatus {
	switch s {
	case domain.InboxStatusInProgress:
		return domain.UIStatusInProgress
	case domain.InboxStatusCompleted, domain.InboxStatusFailed, domain.InboxStatusNeedsReview:
		return domain.UIStatusNeedsReview
	case domain.InboxStatusNeedsReviewIPReturn:
		return domain.UIStatusNeedsReviewIPReturn
	default:
		return domain.UIStatusPending
	}
}

func titleOrID(s domain.Session) string {
	if s.Title != "" {
		return s.Title
	}
	return s.ID
}
