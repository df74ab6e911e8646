package repositories

import (
	"database/sql"
	"fmt"
	"sync"
)

// Table names used in change events.
const (
	TableSongs     = "songs"
	TablePlaylists = "playlists"
	TableLedger    = "user_ledger"
)

// Event signals a committed write to a table.
type Event struct {
	Table string
}

// Notifier broadcasts committed writes to subscribers.
//
// Repositories publish after each commit and cached readers re-read on
// receipt, so every layer observes the same storage state.
type Notifier struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// NewNotifier creates an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener. The returned cancel function must be called
// to release the subscription; the channel is closed on cancel.
func (n *Notifier) Subscribe() (<-chan Event, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.next
	n.next++
	ch := make(chan Event, 16)
	n.subs[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if sub, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish notifies all subscribers of a committed write. Slow subscribers
// drop events rather than block the writer.
func (n *Notifier) Publish(table string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs {
		select {
		case ch <- Event{Table: table}:
		default:
		}
	}
}

// WithTx runs fn inside a transaction, committing on success and rolling back
// on error. This is the adapter's atomicity primitive: a read-modify-write
// wrapped in WithTx cannot interleave with another transaction on the same
// tables.
func WithTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
