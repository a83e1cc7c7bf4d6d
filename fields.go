package tether

import "github.com/zoobzio/capitan"

// Field keys for Tether events.
var (
	// KeyStatus is the current lifecycle status of the Tether.
	KeyStatus = capitan.NewStringKey("status")

	// KeyKind is the outward notification kind, "change" or "input".
	KeyKind = capitan.NewStringKey("kind")

	// KeyQueueDepth is the number of outbound emissions awaiting their echo.
	KeyQueueDepth = capitan.NewIntKey("queue_depth")

	// KeyBlockCount is the number of top-level blocks in a tree.
	KeyBlockCount = capitan.NewIntKey("block_count")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyDebounce is the configured debounce duration of a Feed.
	KeyDebounce = capitan.NewDurationKey("debounce")

	// KeyContentType is the codec content type used by a Feed.
	KeyContentType = capitan.NewStringKey("content_type")
)
