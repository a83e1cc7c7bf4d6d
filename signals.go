package tether

import "github.com/zoobzio/capitan"

// Tether lifecycle signals.
var (
	// TetherAttached is emitted when a Tether attaches to a store.
	TetherAttached = capitan.NewSignal(
		"tether.attached",
		"Tether attached to store",
	)

	// TetherReattached is emitted when the observer moves to a new store.
	TetherReattached = capitan.NewSignal(
		"tether.reattached",
		"Observer reattached to a new store",
	)

	// TetherClosed is emitted when a Tether is closed.
	TetherClosed = capitan.NewSignal(
		"tether.closed",
		"Tether closed, subscription released",
	)
)

// Inbound synchronization signals.
var (
	// ValueReset is emitted when an inbound value replaces the store's blocks.
	ValueReset = capitan.NewSignal(
		"tether.value.reset",
		"Inbound value installed into store",
	)

	// EchoConfirmed is emitted when an inbound value matches the most recent
	// outbound emission and the echo queue is cleared.
	EchoConfirmed = capitan.NewSignal(
		"tether.echo.confirmed",
		"Outbound round-trip completed",
	)

	// EchoPending is emitted when an inbound value matches an older outbound
	// emission while newer emissions are still awaiting their echo.
	EchoPending = capitan.NewSignal(
		"tether.echo.pending",
		"Intermediate echo observed, newer emissions still pending",
	)

	// SettingsUpdated is emitted when new settings are forwarded to the store.
	SettingsUpdated = capitan.NewSignal(
		"tether.settings.updated",
		"Editor settings forwarded to store",
	)
)

// Outbound notification signals.
var (
	// ChangeEmitted is emitted when a durable change is reported to the host.
	ChangeEmitted = capitan.NewSignal(
		"tether.change.emitted",
		"Persistent change reported to host",
	)

	// InputEmitted is emitted when a transient edit is reported to the host.
	InputEmitted = capitan.NewSignal(
		"tether.input.emitted",
		"Transient edit reported to host",
	)

	// NotificationSuppressed is emitted when a store notification carrying an
	// inbound or ignored change is swallowed instead of re-emitted.
	NotificationSuppressed = capitan.NewSignal(
		"tether.notification.suppressed",
		"Store notification suppressed as inbound side effect",
	)
)

// Feed signals.
var (
	// FeedStarted is emitted when a Feed begins watching its source.
	FeedStarted = capitan.NewSignal(
		"tether.feed.started",
		"Feed watching started",
	)

	// FeedStopped is emitted when a Feed stops watching.
	FeedStopped = capitan.NewSignal(
		"tether.feed.stopped",
		"Feed watching stopped",
	)

	// FeedDocumentApplied is emitted when a decoded document is applied.
	FeedDocumentApplied = capitan.NewSignal(
		"tether.feed.document.applied",
		"Document decoded and applied",
	)

	// FeedDecodeFailed is emitted when source bytes cannot be decoded.
	FeedDecodeFailed = capitan.NewSignal(
		"tether.feed.decode.failed",
		"Document decode failed",
	)

	// FeedValidationFailed is emitted when a decoded document fails validation.
	FeedValidationFailed = capitan.NewSignal(
		"tether.feed.validation.failed",
		"Document validation failed",
	)
)
