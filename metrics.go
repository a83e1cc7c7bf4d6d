package tether

import "time"

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on key synchronization events.
type MetricsProvider interface {
	// OnReset is called when an inbound value replaces the store's blocks.
	OnReset()

	// OnEmit is called when an outward notification is delivered to the host.
	// Kind is "change" for persistent changes and "input" for transient
	// edits. Duration is the time taken to classify and deliver.
	OnEmit(kind string, duration time.Duration)

	// OnEchoMatched is called when an inbound value is recognized as the echo
	// of a prior outward emission. Cleared reports whether the echo queue was
	// emptied (the round-trip completed) or left pending.
	OnEchoMatched(cleared bool)

	// OnSuppressed is called when a store notification is swallowed because
	// it carried an inbound or ignored change.
	OnSuppressed()
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnReset()                         {}
func (NoOpMetricsProvider) OnEmit(_ string, _ time.Duration) {}
func (NoOpMetricsProvider) OnEchoMatched(_ bool)             {}
func (NoOpMetricsProvider) OnSuppressed()                    {}
