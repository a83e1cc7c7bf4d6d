package tether

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/pipz"
)

// Commit carries one durable change from the engine to a host sink.
type Commit struct {
	// Blocks is the tree the engine reported via onChange.
	Blocks *BlockList

	// Selection is the selection range at the time of the change.
	Selection Selection

	// Timestamp records when the change was observed.
	Timestamp time.Time
}

// Relay delivers durable changes to a fallible host sink, such as a file or a
// remote API, with optional retry, backoff, and timeout protection around the
// sink. The synchronization engine itself never fails; the Relay is where
// host-side persistence failures are absorbed so they cannot re-enter the
// engine.
//
// Wire it to a Tether through ChangeHandler:
//
//	relay := tether.NewRelay("save", saveToDisk).
//	    WithBackoff(5, time.Second).
//	    WithTimeout(10 * time.Second)
//
//	t := tether.New(store).OnChange(relay.ChangeHandler(ctx))
type Relay struct {
	processor pipz.Chainable[Commit]
	clock     clockz.Clock

	lastError atomic.Pointer[error]
}

// NewRelay creates a Relay around a host sink.
//
// The name identifies the sink in pipeline error messages. The sink receives
// each Commit after all configured protection has been applied.
func NewRelay(name string, sink func(ctx context.Context, c Commit) error) *Relay {
	return &Relay{
		processor: pipz.Effect[Commit](pipz.Name(name), sink),
		clock:     clockz.RealClock,
	}
}

// WithRetry adds retry capability to the relay.
// Failed deliveries are retried immediately up to attempts times.
// For exponential backoff between attempts, use WithBackoff instead.
func (r *Relay) WithRetry(attempts int) *Relay {
	return &Relay{
		processor: pipz.NewRetry("retry", r.processor, attempts),
		clock:     r.clock,
	}
}

// WithBackoff adds exponential backoff retry to the relay.
// Failed deliveries are retried with delays starting at baseDelay and
// doubling with each attempt.
func (r *Relay) WithBackoff(attempts int, baseDelay time.Duration) *Relay {
	return &Relay{
		processor: pipz.NewBackoff("backoff", r.processor, attempts, baseDelay),
		clock:     r.clock,
	}
}

// WithTimeout adds timeout protection to the relay.
// Deliveries taking longer than duration are canceled with a timeout error.
func (r *Relay) WithTimeout(duration time.Duration) *Relay {
	return &Relay{
		processor: pipz.NewTimeout("timeout", r.processor, duration),
		clock:     r.clock,
	}
}

// Clock sets a custom clock for commit timestamps.
// Use this with clockz.FakeClock for deterministic tests.
func (r *Relay) Clock(clock clockz.Clock) *Relay {
	r.clock = clock
	return r
}

// Deliver pushes one commit through the pipeline to the sink.
// The last delivery error is retained and available via LastError.
func (r *Relay) Deliver(ctx context.Context, c Commit) error {
	if _, err := r.processor.Process(ctx, c); err != nil {
		r.setError(err)
		return err
	}
	r.lastError.Store(nil)
	return nil
}

// ChangeHandler adapts the relay into an OnChange callback for a Tether.
// Delivery errors are recorded on the relay, not surfaced to the engine.
func (r *Relay) ChangeHandler(ctx context.Context) func(*BlockList, Selection) {
	return func(blocks *BlockList, sel Selection) {
		_ = r.Deliver(ctx, Commit{ //nolint:errcheck // Errors stored via setError
			Blocks:    blocks,
			Selection: sel,
			Timestamp: r.clock.Now(),
		})
	}
}

// LastError returns the last delivery error, or nil if the most recent
// delivery succeeded.
func (r *Relay) LastError() error {
	ptr := r.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// setError stores an error atomically.
func (r *Relay) setError(err error) {
	e := err
	r.lastError.Store(&e)
}
