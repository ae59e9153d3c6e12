package ports

import "context"

// UI preference keys. Preferences are tiny key-value pairs (sidebar
// collapsed, last-selected filter). Nothing here is authoritative; the
// session list and conversation are always re-derived from the backend.
const (
	PrefSidebarCollapsed = "sidebar_collapsed"
	PrefLastFilter       = "last_filter"
)

// PrefsRepository persists UI preferences.
type PrefsRepository interface {
	// Get returns the stored value for a key, or "" when unset.
	Get(ctx context.Context, key string) (string, error)
	// Set stores a value, replacing any previous one.
	Set(ctx context.Context, key, value string) error
	// All returns every stored preference.
	All(ctx context.Context) (map[string]string, error)
}
