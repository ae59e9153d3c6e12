package querycache

// Tx is an optimistic mutation against one cache key, modeled as an
// explicit three-state transaction: snapshot at Begin, Apply the expected
// effect, then Commit the server's authoritative value or Rollback to the
// snapshot. Rollback restores exactly the pre-mutation entry, including
// its absence.
type Tx struct {
	store *Store
	key   Key
	snap  Entry
	had   bool
	done  bool
}

// Begin snapshots the current entry for key and opens a transaction.
func (s *Store) Begin(key Key) *Tx {
	e, ok := s.Lookup(key)
	return &Tx{store: s, key: key, snap: e, had: ok}
}

// Key returns the cache key this transaction is scoped to.
func (tx *Tx) Key() Key {
	return tx.key
}

// Apply writes the optimistic value. May be called at most once, before
// Commit or Rollback.
func (tx *Tx) Apply(value any) {
	if tx.done {
		return
	}
	tx.store.Set(tx.key, value)
}

// Commit replaces the optimistic value with the authoritative one and
// closes the transaction.
func (tx *Tx) Commit(value any) {
	if tx.done {
		return
	}
	tx.done = true
	tx.store.Set(tx.key, value)
}

// Rollback restores the snapshot taken at Begin and closes the
// transaction. If the key did not exist before the mutation, it is
// removed again.
func (tx *Tx) Rollback() {
	if tx.done {
		return
	}
	tx.done = true
	if !tx.had {
		tx.store.Delete(tx.key)
		return
	}
	tx.store.mu.Lock()
	tx.store.entries[tx.key] = tx.snap
	tx.store.mu.Unlock()
	tx.store.notify(tx.key)
}
