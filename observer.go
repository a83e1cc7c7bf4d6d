package tether

import "github.com/zoobzio/capitan"

// observer converts raw store notifications into classified, de-duplicated
// outward events. Its snapshot state is constructed fresh on every
// (re)attachment and discarded on detach; it never outlives a subscription.
type observer[T comparable] struct {
	t     *Tether[T]
	store Store[T]

	lastBlocks             T
	lastPersistent         bool
	lastChangeWasDifferent bool
}

// newObserver captures the store's current blocks and persistence flag as the
// comparison baseline. Reading the baseline consumes any armed incoming
// marker: whatever the marker referred to is what the store now holds, so the
// marker has nothing left to suppress.
func newObserver[T comparable](t *Tether[T], store Store[T]) *observer[T] {
	o := &observer[T]{
		t:              t,
		store:          store,
		lastBlocks:     store.Blocks(),
		lastPersistent: store.IsLastChangePersistent(),
	}
	t.disarmIncoming()
	return o
}

// notify handles one synchronous store notification. Notifications fire for
// every state change, including slices unrelated to blocks; those fall
// through as no-ops.
func (o *observer[T]) notify() {
	start := o.t.clock.Now()

	blocks := o.store.Blocks()
	persistent := o.store.IsLastChangePersistent()

	// Inner controlled regions can mutate blocks without changing the outer
	// tree's identity, so only then is the expensive structural comparison
	// warranted.
	var areDifferent bool
	if o.store.HasControlledInnerRegions() {
		areDifferent = !o.t.equals(blocks, o.lastBlocks)
	} else {
		areDifferent = blocks != o.lastBlocks
	}

	if areDifferent && (o.t.incoming != nil || o.store.ShouldIgnoreLastChangeForSync()) {
		// Internal side effect of an inbound reset or an explicitly
		// ignorable action. Adopt it as the new baseline without re-emitting.
		o.t.disarmIncoming()
		o.lastBlocks = blocks
		o.lastPersistent = persistent
		capitan.Emit(o.t.ctx, NotificationSuppressed,
			KeyBlockCount.Field(o.t.blockCount(blocks)),
		)
		o.t.metrics.OnSuppressed()
		return
	}

	// A transient edit followed by an action that marks it persistent
	// arrives as two notifications: one with different blocks, then one with
	// identical blocks and the persistence flag flipped on. The second must
	// still be reported.
	persistenceChanged := o.lastChangeWasDifferent && !areDifferent &&
		persistent && !o.lastPersistent

	if areDifferent || persistenceChanged {
		o.lastBlocks = blocks
		o.lastPersistent = persistent
		if areDifferent {
			// The host is about to receive this exact value; remember it so
			// its echo is not mistaken for a fresh external change.
			o.t.queue.push(blocks)
		}
		o.t.emit(blocks, o.store.Selection(), persistent, start)
	}

	o.lastChangeWasDifferent = areDifferent
}
