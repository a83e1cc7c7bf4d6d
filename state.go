package tether

// Status represents the lifecycle state of a Tether.
type Status int32

const (
	// StatusIdle indicates the Tether has been created but not attached.
	StatusIdle Status = iota

	// StatusAttached indicates the Tether is observing a store and
	// processing inbound value updates.
	StatusAttached

	// StatusClosed indicates the Tether has been closed. No further
	// notifications are processed and it cannot be reattached.
	StatusClosed
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusAttached:
		return "attached"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}
