// Package memstore provides an in-memory tether.Store implementation with
// synchronous subscriber notification. It is the reference store for hosts
// that keep editor state in process memory, and the store used throughout the
// engine's own tests.
package memstore

import "github.com/zoobzio/tether"

// Store is an in-memory block-tree store. Every mutation notifies subscribers
// synchronously, within the mutating call, in subscription order — the
// delivery model the synchronization engine requires.
//
// A Store is not safe for concurrent use; drive it from the same goroutine as
// the Tether observing it.
type Store struct {
	blocks    *tether.BlockList
	selection tether.Selection
	settings  *tether.EditorSettings

	lastPersistent         bool
	ignoreLastChange       bool
	controlledInnerRegions bool

	subscribers []subscriber
	nextID      int
}

type subscriber struct {
	id int
	fn func()
}

// New creates an empty Store. Blocks() starts as a non-nil empty tree and
// stays reference-stable until the first mutation.
func New() *Store {
	return &Store{
		blocks: &tether.BlockList{},
	}
}

// Subscribe registers fn to be called synchronously on every state change.
// The returned disposer removes the subscription; calling it more than once
// is harmless.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	id := s.nextID
	s.nextID++
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})

	return func() {
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Blocks returns the current block tree. The result is the same value across
// calls for as long as the blocks have not changed.
func (s *Store) Blocks() *tether.BlockList {
	return s.blocks
}

// Selection returns the current selection range, zero when unset.
func (s *Store) Selection() tether.Selection {
	return s.selection
}

// Settings returns the last applied editor settings, nil if never set.
func (s *Store) Settings() *tether.EditorSettings {
	return s.settings
}

// IsLastChangePersistent reports whether the most recent block change should
// be durably recorded.
func (s *Store) IsLastChangePersistent() bool {
	return s.lastPersistent
}

// HasControlledInnerRegions reports whether nested sub-trees are
// independently controlled.
func (s *Store) HasControlledInnerRegions() bool {
	return s.controlledInnerRegions
}

// ShouldIgnoreLastChangeForSync reports whether the most recent block change
// came from an action that must not trigger outward sync.
func (s *Store) ShouldIgnoreLastChangeForSync() bool {
	return s.ignoreLastChange
}

// ReplaceBlocks installs a new block tree. This is the entry point the
// synchronization engine uses for inbound resets; the change is recorded as
// persistent.
func (s *Store) ReplaceBlocks(tree *tether.BlockList) {
	s.blocks = tree
	s.lastPersistent = true
	s.ignoreLastChange = false
	s.notify()
}

// ReplaceSelection installs a new selection range.
func (s *Store) ReplaceSelection(sel tether.Selection) {
	s.selection = sel
	s.notify()
}

// UpdateSettings applies new editor settings.
func (s *Store) UpdateSettings(settings *tether.EditorSettings) {
	s.settings = settings
	s.notify()
}

// SetBlocks records an edit: a new tree produced by user interaction.
// Persistent marks the edit as undo-stack-worthy; in-progress typing passes
// false and commits pass true.
func (s *Store) SetBlocks(tree *tether.BlockList, persistent bool) {
	s.blocks = tree
	s.lastPersistent = persistent
	s.ignoreLastChange = false
	s.notify()
}

// MarkLastChangePersistent promotes the most recent transient edit to a
// persistent one without mutating blocks. Subscribers are notified so
// observers can report the promotion.
func (s *Store) MarkLastChangePersistent() {
	s.lastPersistent = true
	s.notify()
}

// RestoreBlocks installs a tree while flagging the change as ignorable for
// sync purposes, e.g. rehydrating editor state that the host already has.
func (s *Store) RestoreBlocks(tree *tether.BlockList) {
	s.blocks = tree
	s.lastPersistent = true
	s.ignoreLastChange = true
	s.notify()
}

// SetControlledInnerRegions flags whether nested sub-trees are independently
// controlled, switching observers to structural comparison.
func (s *Store) SetControlledInnerRegions(controlled bool) {
	s.controlledInnerRegions = controlled
}

// notify invokes all subscribers synchronously, in subscription order. The
// list is copied first so callbacks may subscribe or unsubscribe without
// disturbing the current delivery; a mutation made inside a callback delivers
// its own notifications depth-first before the outer loop resumes.
func (s *Store) notify() {
	for _, sub := range append([]subscriber(nil), s.subscribers...) {
		sub.fn()
	}
}

// Ensure Store satisfies the engine's contract.
var _ tether.Store[*tether.BlockList] = (*Store)(nil)
