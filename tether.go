package tether

import (
	"context"
	"fmt"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// Tether keeps an externally owned block tree (the controlled value)
// synchronized with a subscription-based store. Internal edits are classified
// and reported outward exactly once, as durable changes or transient input;
// inbound values from the host reset internal state without echoing back out.
//
// T is the block tree type and must carry reference identity; hosts typically
// use *BlockList. Identity, not structure, decides whether the host
// intentionally changed the value: a deep-equal tree under a new identity is
// still treated as an intentional replacement, because hosts may rely on the
// reset's side effects.
//
// A Tether is not safe for concurrent use. All methods, and all store
// notifications, must run on the same goroutine; the store must notify
// subscribers synchronously within the mutating call.
type Tether[T comparable] struct {
	store    Store[T]
	onChange func(T, Selection)
	onInput  func(T, Selection)
	equals   func(a, b T) bool
	clock    clockz.Clock
	metrics  MetricsProvider

	status atomic.Int32
	ctx    context.Context

	// value is the last controlled value supplied by the host or installed
	// by a reset; inbound updates are compared against it by identity.
	value    T
	settings *EditorSettings

	queue echoQueue[T]

	// incoming marks the tree currently being installed by an inbound reset.
	// Non-nil means the next observed block change originated from the host
	// and must not be re-emitted. At most one marker is live at a time.
	incoming *T

	observer    *observer[T]
	unsubscribe func()
}

// New creates a Tether for the given store.
//
// Configure it with chainable methods before calling Attach:
//
//	t := tether.New(store).
//	    OnChange(func(tree *tether.BlockList, sel tether.Selection) {
//	        saveDocument(tree)
//	    }).
//	    OnInput(func(tree *tether.BlockList, sel tether.Selection) {
//	        markDirty()
//	    })
//
//	if err := t.Attach(ctx, doc.Tree(), settings); err != nil {
//	    return err
//	}
func New[T comparable](store Store[T]) *Tether[T] {
	t := &Tether[T]{
		store:    store,
		onChange: func(T, Selection) {},
		onInput:  func(T, Selection) {},
		equals: func(a, b T) bool {
			return reflect.DeepEqual(a, b)
		},
		clock:   clockz.RealClock,
		metrics: NoOpMetricsProvider{},
		ctx:     context.Background(),
	}
	t.status.Store(int32(StatusIdle))
	return t
}

// -----------------------------------------------------------------------------
// Chainable Instance Configuration
// -----------------------------------------------------------------------------

// OnChange sets the callback for durable changes the host should record.
// Default: no-op. Must be called before Attach().
func (t *Tether[T]) OnChange(fn func(blocks T, sel Selection)) *Tether[T] {
	if fn != nil {
		t.onChange = fn
	}
	return t
}

// OnInput sets the callback for transient, in-progress edits.
// Default: no-op. Must be called before Attach().
func (t *Tether[T]) OnInput(fn func(blocks T, sel Selection)) *Tether[T] {
	if fn != nil {
		t.onInput = fn
	}
	return t
}

// Equals sets the structural comparison used when the store reports
// controlled inner regions. Default: reflect.DeepEqual.
// Must be called before Attach().
func (t *Tether[T]) Equals(fn func(a, b T) bool) *Tether[T] {
	if fn != nil {
		t.equals = fn
	}
	return t
}

// Clock sets a custom clock for metrics timing.
// Use this with clockz.FakeClock for deterministic tests.
// Must be called before Attach().
func (t *Tether[T]) Clock(clock clockz.Clock) *Tether[T] {
	t.clock = clock
	return t
}

// Metrics sets a metrics provider for observability integration.
// Must be called before Attach().
func (t *Tether[T]) Metrics(provider MetricsProvider) *Tether[T] {
	t.metrics = provider
	return t
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Attach activates the Tether: settings are pushed to the store, the initial
// value is installed unconditionally, and the change observer subscribes.
// Attach can only be called once.
func (t *Tether[T]) Attach(ctx context.Context, value T, settings *EditorSettings) error {
	if Status(t.status.Load()) != StatusIdle {
		return fmt.Errorf("tether already attached")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	t.ctx = ctx

	if settings != nil {
		t.settings = settings
		t.store.UpdateSettings(settings)
	}

	// The first value is always "new": install it before the observer
	// subscribes, then let the baseline read absorb it.
	t.reset(value, Selection{})
	t.attachObserver(t.store)

	t.status.Store(int32(StatusAttached))
	capitan.Emit(t.ctx, TetherAttached,
		KeyStatus.Field(t.Status().String()),
		KeyBlockCount.Field(t.blockCount(value)),
	)
	return nil
}

// Close detaches the observer and stops processing. It is idempotent, and
// closing without a prior attachment is a no-op beyond marking the Tether
// closed.
func (t *Tether[T]) Close() {
	if Status(t.status.Load()) == StatusClosed {
		return
	}
	if t.unsubscribe != nil {
		t.unsubscribe()
		t.unsubscribe = nil
	}
	t.observer = nil
	t.status.Store(int32(StatusClosed))
	capitan.Emit(t.ctx, TetherClosed,
		KeyQueueDepth.Field(t.queue.depth()),
	)
}

// Status returns the current lifecycle status.
func (t *Tether[T]) Status() Status {
	return Status(t.status.Load())
}

// Value returns the last controlled value: the value most recently supplied
// by the host or installed by a reset.
func (t *Tether[T]) Value() T {
	return t.value
}

// PendingEchoes returns the number of outward emissions not yet echoed back
// by the host. In steady state this returns to zero after every round-trip.
func (t *Tether[T]) PendingEchoes() int {
	return t.queue.depth()
}

// -----------------------------------------------------------------------------
// Inbound Updates
// -----------------------------------------------------------------------------

// SetValue handles an external value update from the host.
//
// If newValue is one of the engine's own recent emissions, it is an echo: no
// store mutation occurs, and a match on the most recent emission clears the
// pending set. Otherwise, a value whose identity differs from the previous
// one is a genuine host change and replaces the store's blocks; sel is
// forwarded too when both its ends are set. A value identical to the previous
// one is a no-op.
func (t *Tether[T]) SetValue(newValue T, sel Selection) {
	if Status(t.status.Load()) != StatusAttached {
		return
	}

	if found, cleared := t.queue.match(newValue); found {
		t.value = newValue
		if cleared {
			capitan.Emit(t.ctx, EchoConfirmed,
				KeyQueueDepth.Field(0),
			)
		} else {
			capitan.Emit(t.ctx, EchoPending,
				KeyQueueDepth.Field(t.queue.depth()),
			)
		}
		t.metrics.OnEchoMatched(cleared)
		return
	}

	if newValue != t.value {
		t.reset(newValue, sel)
	}
}

// SetSettings forwards new settings to the store. Settings are compared by
// pointer identity; forwarding the same object again is a no-op.
func (t *Tether[T]) SetSettings(settings *EditorSettings) {
	if Status(t.status.Load()) != StatusAttached {
		return
	}
	if settings == nil || settings == t.settings {
		return
	}
	t.settings = settings
	t.store.UpdateSettings(settings)
	capitan.Emit(t.ctx, SettingsUpdated)
}

// SetStore moves the Tether to a new store. The previous subscription is
// released unconditionally before the observer reattaches, so two observers
// are never live at once. The observer's baseline resets to the new store's
// current state.
func (t *Tether[T]) SetStore(store Store[T]) {
	if Status(t.status.Load()) != StatusAttached {
		return
	}
	if store == nil || store == t.store {
		return
	}
	t.store = store
	t.attachObserver(store)
	capitan.Emit(t.ctx, TetherReattached)
}

// -----------------------------------------------------------------------------
// Internals
// -----------------------------------------------------------------------------

// reset installs an inbound value: pending echo expectations are abandoned,
// the incoming marker is armed so the resulting notification is not
// re-emitted, and the store's blocks (and optionally selection) are replaced.
func (t *Tether[T]) reset(v T, sel Selection) {
	t.queue.clear()
	t.incoming = &v
	t.value = v

	t.store.ReplaceBlocks(v)
	if sel.IsSet() {
		t.store.ReplaceSelection(sel)
	}

	capitan.Emit(t.ctx, ValueReset,
		KeyBlockCount.Field(t.blockCount(v)),
	)
	t.metrics.OnReset()
}

// disarmIncoming clears the incoming marker once consumed.
func (t *Tether[T]) disarmIncoming() {
	t.incoming = nil
}

// attachObserver releases any live subscription, then installs a fresh
// observer with a baseline read from the given store.
func (t *Tether[T]) attachObserver(store Store[T]) {
	if t.unsubscribe != nil {
		t.unsubscribe()
		t.unsubscribe = nil
	}
	t.observer = newObserver(t, store)
	t.unsubscribe = store.Subscribe(t.observer.notify)
}

// emit delivers one classified outward notification to the host.
func (t *Tether[T]) emit(blocks T, sel Selection, persistent bool, start time.Time) {
	if persistent {
		t.onChange(blocks, sel)
		capitan.Emit(t.ctx, ChangeEmitted,
			KeyKind.Field("change"),
			KeyQueueDepth.Field(t.queue.depth()),
		)
		t.metrics.OnEmit("change", t.clock.Since(start))
		return
	}
	t.onInput(blocks, sel)
	capitan.Emit(t.ctx, InputEmitted,
		KeyKind.Field("input"),
		KeyQueueDepth.Field(t.queue.depth()),
	)
	t.metrics.OnEmit("input", t.clock.Since(start))
}

// blockCount extracts a block count for observability when T is *BlockList;
// other tree types report zero.
func (t *Tether[T]) blockCount(v T) int {
	if l, ok := any(v).(*BlockList); ok {
		return l.Len()
	}
	return 0
}
