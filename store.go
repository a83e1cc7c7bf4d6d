package tether

// Store is the subscription-based state container the engine synchronizes
// against. Implementations must notify subscribers synchronously, in the same
// execution turn as the mutation that triggered the notification: the
// engine's persistence-promotion detection depends on observing a mutate step
// and a mark-persistent step as two distinct callbacks.
//
// T is the block tree type. It must carry reference identity: a Store must
// return the same T from Blocks() for as long as its blocks have not changed.
// Hosts typically use *BlockList.
type Store[T comparable] interface {
	// Subscribe registers a callback invoked synchronously on every state
	// change and returns a disposer. Callbacks may fire for state slices
	// unrelated to blocks; the engine treats those as no-ops.
	Subscribe(fn func()) (unsubscribe func())

	// Blocks returns the current block tree. The result is reference-stable
	// across notifications that did not change the blocks.
	Blocks() T

	// Selection returns the current selection range, zero when unset.
	Selection() Selection

	// IsLastChangePersistent reports whether the most recent block change
	// should be durably recorded by the host.
	IsLastChangePersistent() bool

	// HasControlledInnerRegions reports whether any nested sub-region of the
	// tree is independently controlled. When true, the engine compares trees
	// structurally instead of by reference, because inner mutations may not
	// change the outer tree's identity.
	HasControlledInnerRegions() bool

	// ShouldIgnoreLastChangeForSync reports whether the most recent block
	// change came from an internal action that must not trigger outward
	// sync, such as a restore driven by the engine itself.
	ShouldIgnoreLastChangeForSync() bool

	// ReplaceBlocks installs a new block tree.
	ReplaceBlocks(tree T)

	// ReplaceSelection installs a new selection range.
	ReplaceSelection(sel Selection)

	// UpdateSettings applies new editor settings.
	UpdateSettings(settings *EditorSettings)
}
