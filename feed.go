package tether

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// DefaultDebounce is the default debounce duration for document changes.
const DefaultDebounce = 100 * time.Millisecond

// validate is the shared validator instance for decoded documents.
var validate = validator.New()

// Feed drives a Tether from an external document home. It watches a Source
// for raw bytes, decodes them into Documents through a Codec, validates the
// result, and applies settings and blocks to the Tether as inbound updates.
//
// Every application runs on the Feed's watch goroutine; the Tether and its
// store must not be driven from any other goroutine while a Feed is running.
// For tests, SyncMode() processes documents manually on the caller's
// goroutine instead.
type Feed struct {
	source   Source
	tether   *Tether[*BlockList]
	codec    Codec
	debounce time.Duration
	syncMode bool
	clock    clockz.Clock

	current   atomic.Pointer[Document]
	lastError atomic.Pointer[error]

	mu      sync.Mutex
	started bool

	// For sync mode: channel to receive changes
	changes <-chan []byte
}

// NewFeed creates a Feed that applies documents from source to t.
//
// Example:
//
//	t := tether.New(store).OnChange(persist)
//	feed := tether.NewFeed(tether.NewFileSource("post.json"), t)
//	if err := feed.Start(ctx); err != nil {
//	    return err
//	}
func NewFeed(source Source, t *Tether[*BlockList]) *Feed {
	return &Feed{
		source:   source,
		tether:   t,
		codec:    JSONCodec{},
		debounce: DefaultDebounce,
		clock:    clockz.RealClock,
	}
}

// Codec sets the codec for decoding document data.
// Default: JSONCodec. Must be called before Start().
func (f *Feed) Codec(codec Codec) *Feed {
	f.codec = codec
	return f
}

// Debounce sets the debounce duration for document change processing.
// Changes arriving within this duration are coalesced into a single update.
// Default: 100ms. Must be called before Start().
func (f *Feed) Debounce(d time.Duration) *Feed {
	f.debounce = d
	return f
}

// SyncMode enables synchronous processing for testing.
// In sync mode, documents are processed immediately on the calling goroutine
// via Process(), making tests deterministic. Must be called before Start().
func (f *Feed) SyncMode() *Feed {
	f.syncMode = true
	return f
}

// Clock sets a custom clock for debounce timers.
// Use this with clockz.FakeClock for deterministic debounce testing.
// Must be called before Start().
func (f *Feed) Clock(clock clockz.Clock) *Feed {
	f.clock = clock
	return f
}

// Current returns the last successfully applied document and true, or nil and
// false if no document has been applied.
func (f *Feed) Current() (*Document, bool) {
	doc := f.current.Load()
	if doc == nil {
		return nil, false
	}
	return doc, true
}

// LastError returns the last error encountered, or nil if no error occurred.
func (f *Feed) LastError() error {
	ptr := f.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// Start begins watching the source. It blocks until the initial document is
// processed (success or failure), then continues watching asynchronously.
// If the Tether has not been attached yet, the initial document attaches it.
//
// If the initial document fails, Start returns the error but continues
// watching in the background for valid updates.
//
// In sync mode, Start only processes the initial document. Use Process() to
// manually trigger processing of subsequent values.
//
// Start can only be called once. Subsequent calls return an error.
func (f *Feed) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return fmt.Errorf("feed already started")
	}
	f.started = true
	f.mu.Unlock()

	capitan.Emit(ctx, FeedStarted,
		KeyDebounce.Field(f.debounce),
		KeyContentType.Field(f.codec.ContentType()),
	)

	changes, err := f.source.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to start source: %w", err)
	}

	// Wait for the initial document and process synchronously
	var initialErr error
	select {
	case <-ctx.Done():
		return ctx.Err()
	case raw, ok := <-changes:
		if !ok {
			return fmt.Errorf("source closed before emitting initial document")
		}
		initialErr = f.process(ctx, raw)
	}

	if f.syncMode {
		// In sync mode, store channel for manual processing
		f.changes = changes
		return initialErr
	}

	// Continue watching asynchronously
	go f.watch(ctx, changes)

	return initialErr
}

// Process reads and processes the next document from the source.
// This is only available in sync mode and is used for deterministic testing.
// Returns false if no value is available or the channel is closed.
func (f *Feed) Process(ctx context.Context) bool {
	if !f.syncMode {
		return false
	}

	select {
	case raw, ok := <-f.changes:
		if !ok {
			return false
		}
		_ = f.process(ctx, raw) //nolint:errcheck // Errors stored via setError
		return true
	default:
		return false
	}
}

// process decodes, validates, and applies a single document.
func (f *Feed) process(ctx context.Context, raw []byte) error {
	var doc Document
	if err := f.codec.Unmarshal(raw, &doc); err != nil {
		f.setError(err)
		capitan.Emit(ctx, FeedDecodeFailed,
			KeyError.Field(err.Error()),
			KeyContentType.Field(f.codec.ContentType()),
		)
		return fmt.Errorf("document decode failed: %w", err)
	}

	if err := validate.Struct(&doc); err != nil {
		f.setError(err)
		capitan.Emit(ctx, FeedValidationFailed,
			KeyError.Field(err.Error()),
		)
		return fmt.Errorf("document validation failed: %w", err)
	}

	tree := doc.Tree()
	if f.tether.Status() == StatusIdle {
		if err := f.tether.Attach(ctx, tree, doc.Settings); err != nil {
			f.setError(err)
			return err
		}
	} else {
		if doc.Settings != nil {
			f.tether.SetSettings(doc.Settings)
		}
		f.tether.SetValue(tree, Selection{})
	}

	f.current.Store(&doc)
	f.lastError.Store(nil)
	capitan.Emit(ctx, FeedDocumentApplied,
		KeyBlockCount.Field(len(doc.Blocks)),
	)

	return nil
}

// setError stores an error atomically.
func (f *Feed) setError(err error) {
	e := err
	f.lastError.Store(&e)
}

// watch processes changes from the source channel with debouncing.
func (f *Feed) watch(ctx context.Context, changes <-chan []byte) {
	defer func() {
		capitan.Emit(ctx, FeedStopped)
	}()

	var (
		timer      clockz.Timer
		pending    []byte
		hasPending bool
	)

	for {
		// Get timer channel or nil if no timer
		var timerC <-chan time.Time
		if timer != nil {
			timerC = timer.C()
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case raw, ok := <-changes:
			if !ok {
				// Channel closed, process any pending change
				if hasPending {
					_ = f.process(ctx, pending) //nolint:errcheck // Errors stored via setError
				}
				return
			}

			pending = raw
			hasPending = true

			// Reset or start debounce timer
			if timer == nil {
				timer = f.clock.NewTimer(f.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C():
					default:
					}
				}
				timer.Reset(f.debounce)
			}

		case <-timerC:
			if hasPending {
				_ = f.process(ctx, pending) //nolint:errcheck // Errors stored via setError
				hasPending = false
			}
		}
	}
}
