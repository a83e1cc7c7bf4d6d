package tether

import (
	"context"
	"testing"
)

// testStore is a minimal Store implementation with call counters, used to
// assert exactly which mutations the engine performs.
type testStore struct {
	blocks     *BlockList
	selection  Selection
	settings   *EditorSettings
	persistent bool
	ignored    bool
	controlled bool

	subscribers []func()

	replaceBlocksCalls    int
	replaceSelectionCalls int
	updateSettingsCalls   int
}

func newTestStore() *testStore {
	return &testStore{blocks: &BlockList{}}
}

func (s *testStore) Subscribe(fn func()) func() {
	s.subscribers = append(s.subscribers, fn)
	i := len(s.subscribers) - 1
	return func() {
		s.subscribers[i] = nil
	}
}

func (s *testStore) Blocks() *BlockList                  { return s.blocks }
func (s *testStore) Selection() Selection                { return s.selection }
func (s *testStore) IsLastChangePersistent() bool        { return s.persistent }
func (s *testStore) HasControlledInnerRegions() bool     { return s.controlled }
func (s *testStore) ShouldIgnoreLastChangeForSync() bool { return s.ignored }

func (s *testStore) ReplaceBlocks(tree *BlockList) {
	s.replaceBlocksCalls++
	s.blocks = tree
	s.persistent = true
	s.ignored = false
	s.notify()
}

func (s *testStore) ReplaceSelection(sel Selection) {
	s.replaceSelectionCalls++
	s.selection = sel
	s.notify()
}

func (s *testStore) UpdateSettings(settings *EditorSettings) {
	s.updateSettingsCalls++
	s.settings = settings
	s.notify()
}

// edit simulates a user edit producing a new tree.
func (s *testStore) edit(tree *BlockList, persistent bool) {
	s.blocks = tree
	s.persistent = persistent
	s.ignored = false
	s.notify()
}

// markPersistent promotes the last edit without mutating blocks.
func (s *testStore) markPersistent() {
	s.persistent = true
	s.notify()
}

// restore installs a tree flagged as ignorable for sync.
func (s *testStore) restore(tree *BlockList) {
	s.blocks = tree
	s.persistent = true
	s.ignored = true
	s.notify()
}

func (s *testStore) notify() {
	for _, fn := range s.subscribers {
		if fn != nil {
			fn()
		}
	}
}

// recorder captures outward emissions.
type recorder struct {
	changes []*BlockList
	inputs  []*BlockList
	sels    []Selection
}

func (r *recorder) bind(t *Tether[*BlockList]) {
	t.OnChange(func(blocks *BlockList, sel Selection) {
		r.changes = append(r.changes, blocks)
		r.sels = append(r.sels, sel)
	})
	t.OnInput(func(blocks *BlockList, sel Selection) {
		r.inputs = append(r.inputs, blocks)
		r.sels = append(r.sels, sel)
	})
}

func paragraph(text string) *Block {
	return &Block{
		Name:       "core/paragraph",
		Attributes: map[string]any{"content": text},
	}
}

func TestTether_AttachInstallsInitialValue(t *testing.T) {
	store := newTestStore()
	rec := &recorder{}
	tt := New[*BlockList](store)
	rec.bind(tt)

	initial := NewBlockList(paragraph("hello"))
	settings := &EditorSettings{MaxDepth: 3}

	if err := tt.Attach(context.Background(), initial, settings); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	if store.blocks != initial {
		t.Error("expected initial value installed in store")
	}
	if store.settings != settings {
		t.Error("expected settings pushed to store")
	}
	if store.replaceBlocksCalls != 1 {
		t.Errorf("expected 1 ReplaceBlocks call, got %d", store.replaceBlocksCalls)
	}
	if len(rec.changes) != 0 || len(rec.inputs) != 0 {
		t.Errorf("expected no outward emissions on attach, got %d changes, %d inputs",
			len(rec.changes), len(rec.inputs))
	}
	if tt.Status() != StatusAttached {
		t.Errorf("expected attached, got %s", tt.Status())
	}
}

func TestTether_AttachTwiceFails(t *testing.T) {
	store := newTestStore()
	tt := New[*BlockList](store)

	if err := tt.Attach(context.Background(), NewBlockList(), nil); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if err := tt.Attach(context.Background(), NewBlockList(), nil); err == nil {
		t.Fatal("expected second Attach to fail")
	}
}

func TestTether_GenuineChangeReplacesBlocksOnce(t *testing.T) {
	store := newTestStore()
	rec := &recorder{}
	tt := New[*BlockList](store)
	rec.bind(tt)

	if err := tt.Attach(context.Background(), NewBlockList(), nil); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	store.replaceBlocksCalls = 0

	next := NewBlockList(paragraph("A"))
	tt.SetValue(next, Selection{})

	if store.replaceBlocksCalls != 1 {
		t.Errorf("expected exactly 1 ReplaceBlocks call, got %d", store.replaceBlocksCalls)
	}
	if store.blocks != next {
		t.Error("expected new value installed in store")
	}
	if tt.PendingEchoes() != 0 {
		t.Errorf("expected empty echo queue, got %d", tt.PendingEchoes())
	}
	if len(rec.changes) != 0 || len(rec.inputs) != 0 {
		t.Error("inbound reset must not re-emit outward")
	}
}

func TestTether_SameValueIsNoop(t *testing.T) {
	store := newTestStore()
	tt := New[*BlockList](store)

	initial := NewBlockList(paragraph("A"))
	if err := tt.Attach(context.Background(), initial, nil); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	store.replaceBlocksCalls = 0

	tt.SetValue(initial, Selection{})

	if store.replaceBlocksCalls != 0 {
		t.Errorf("expected no ReplaceBlocks call, got %d", store.replaceBlocksCalls)
	}
}

func TestTether_EchoDoesNotReset(t *testing.T) {
	store := newTestStore()
	rec := &recorder{}
	tt := New[*BlockList](store)
	rec.bind(tt)

	if err := tt.Attach(context.Background(), NewBlockList(), nil); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	store.replaceBlocksCalls = 0

	// Internal edit emits outward.
	edited := NewBlockList(paragraph("typed"))
	store.edit(edited, false)

	if len(rec.inputs) != 1 || rec.inputs[0] != edited {
		t.Fatalf("expected one onInput with edited tree, got %d", len(rec.inputs))
	}
	if tt.PendingEchoes() != 1 {
		t.Fatalf("expected 1 pending echo, got %d", tt.PendingEchoes())
	}

	// Host echoes the emitted value back unchanged.
	tt.SetValue(edited, Selection{})

	if store.replaceBlocksCalls != 0 {
		t.Errorf("echo must not replace blocks, got %d calls", store.replaceBlocksCalls)
	}
	if tt.PendingEchoes() != 0 {
		t.Errorf("expected echo queue cleared, got %d", tt.PendingEchoes())
	}
	if len(rec.changes) != 0 || len(rec.inputs) != 1 {
		t.Error("echo must not cause a second outward emission")
	}
}

func TestTether_OlderEchoLeavesQueuePending(t *testing.T) {
	store := newTestStore()
	tt := New[*BlockList](store)

	if err := tt.Attach(context.Background(), NewBlockList(), nil); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	store.replaceBlocksCalls = 0

	first := NewBlockList(paragraph("one"))
	second := NewBlockList(paragraph("one"), paragraph("two"))
	store.edit(first, false)
	store.edit(second, false)

	if tt.PendingEchoes() != 2 {
		t.Fatalf("expected 2 pending echoes, got %d", tt.PendingEchoes())
	}

	// An intermediate echo: more are still in flight, queue stays.
	tt.SetValue(first, Selection{})

	if tt.PendingEchoes() != 2 {
		t.Errorf("older echo must leave queue untouched, got %d", tt.PendingEchoes())
	}
	if store.replaceBlocksCalls != 0 {
		t.Error("older echo must not replace blocks")
	}

	// The final echo completes the round-trip.
	tt.SetValue(second, Selection{})

	if tt.PendingEchoes() != 0 {
		t.Errorf("expected queue cleared after latest echo, got %d", tt.PendingEchoes())
	}
	if store.replaceBlocksCalls != 0 {
		t.Error("latest echo must not replace blocks")
	}
}

func TestTether_GenuineChangeAbandonsPendingEchoes(t *testing.T) {
	store := newTestStore()
	tt := New[*BlockList](store)

	if err := tt.Attach(context.Background(), NewBlockList(), nil); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	store.edit(NewBlockList(paragraph("edit")), false)
	if tt.PendingEchoes() != 1 {
		t.Fatalf("expected 1 pending echo, got %d", tt.PendingEchoes())
	}

	// Host supplies a brand-new value instead of the echo.
	replacement := NewBlockList(paragraph("replaced"))
	tt.SetValue(replacement, Selection{})

	if tt.PendingEchoes() != 0 {
		t.Errorf("expected pending echoes abandoned, got %d", tt.PendingEchoes())
	}
	if store.blocks != replacement {
		t.Error("expected replacement installed")
	}
}

func TestTether_DeepEqualNewIdentityStillResets(t *testing.T) {
	store := newTestStore()
	tt := New[*BlockList](store)

	initial := NewBlockList(paragraph("same"))
	if err := tt.Attach(context.Background(), initial, nil); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	store.replaceBlocksCalls = 0

	// Structurally identical but a different object: identity is the contract.
	clone := NewBlockList(paragraph("same"))
	tt.SetValue(clone, Selection{})

	if store.replaceBlocksCalls != 1 {
		t.Errorf("deep-equal new identity must reset, got %d calls", store.replaceBlocksCalls)
	}
}

func TestTether_SelectionForwardedOnlyWhenComplete(t *testing.T) {
	store := newTestStore()
	tt := New[*BlockList](store)

	if err := tt.Attach(context.Background(), NewBlockList(), nil); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	// Partial pair: start without end is silently ignored.
	tt.SetValue(NewBlockList(paragraph("a")), Selection{
		Start: Position{Block: "b1", Offset: 2},
	})
	if store.replaceSelectionCalls != 0 {
		t.Errorf("partial selection must not be forwarded, got %d calls", store.replaceSelectionCalls)
	}

	// Complete pair is applied.
	sel := Selection{
		Start: Position{Block: "b1", Offset: 2},
		End:   Position{Block: "b1", Offset: 5},
	}
	tt.SetValue(NewBlockList(paragraph("b")), sel)
	if store.replaceSelectionCalls != 1 {
		t.Fatalf("expected selection forwarded once, got %d calls", store.replaceSelectionCalls)
	}
	if store.selection != sel {
		t.Errorf("expected selection %+v, got %+v", sel, store.selection)
	}
}

func TestTether_SetSettingsByIdentity(t *testing.T) {
	store := newTestStore()
	tt := New[*BlockList](store)

	settings := &EditorSettings{ReadOnly: true}
	if err := tt.Attach(context.Background(), NewBlockList(), settings); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if store.updateSettingsCalls != 1 {
		t.Fatalf("expected settings pushed on attach, got %d calls", store.updateSettingsCalls)
	}

	// Same object again: no-op.
	tt.SetSettings(settings)
	if store.updateSettingsCalls != 1 {
		t.Errorf("same settings object must not be forwarded, got %d calls", store.updateSettingsCalls)
	}

	// New object is forwarded even if equal in content.
	tt.SetSettings(&EditorSettings{ReadOnly: true})
	if store.updateSettingsCalls != 2 {
		t.Errorf("new settings object must be forwarded, got %d calls", store.updateSettingsCalls)
	}
}

func TestTether_SetStoreReattaches(t *testing.T) {
	first := newTestStore()
	second := newTestStore()
	rec := &recorder{}
	tt := New[*BlockList](first)
	rec.bind(tt)

	if err := tt.Attach(context.Background(), NewBlockList(), nil); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	// Seed the second store before the move; its state becomes the baseline.
	second.blocks = NewBlockList(paragraph("elsewhere"))

	tt.SetStore(second)

	// Edits on the old store are no longer observed.
	first.edit(NewBlockList(paragraph("stale")), true)
	if len(rec.changes) != 0 {
		t.Errorf("old store edits must not be observed, got %d changes", len(rec.changes))
	}

	// The new store's baseline is its current state: an identical notify is a no-op.
	second.notify()
	if len(rec.changes) != 0 || len(rec.inputs) != 0 {
		t.Error("baseline notification must not emit")
	}

	// A real edit on the new store is observed.
	second.edit(NewBlockList(paragraph("fresh")), true)
	if len(rec.changes) != 1 {
		t.Errorf("expected 1 change from new store, got %d", len(rec.changes))
	}
}

func TestTether_CloseStopsProcessing(t *testing.T) {
	store := newTestStore()
	rec := &recorder{}
	tt := New[*BlockList](store)
	rec.bind(tt)

	if err := tt.Attach(context.Background(), NewBlockList(), nil); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	tt.Close()
	tt.Close() // idempotent

	if tt.Status() != StatusClosed {
		t.Errorf("expected closed, got %s", tt.Status())
	}

	store.edit(NewBlockList(paragraph("after close")), true)
	if len(rec.changes) != 0 {
		t.Error("closed tether must not observe edits")
	}

	store.replaceBlocksCalls = 0
	tt.SetValue(NewBlockList(paragraph("ignored")), Selection{})
	if store.replaceBlocksCalls != 0 {
		t.Error("closed tether must not process inbound values")
	}
}

func TestTether_CloseWithoutAttach(t *testing.T) {
	tt := New[*BlockList](newTestStore())
	tt.Close()

	if tt.Status() != StatusClosed {
		t.Errorf("expected closed, got %s", tt.Status())
	}
}
