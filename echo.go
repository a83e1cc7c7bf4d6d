package tether

// echoQueue tracks block trees the engine has emitted outward but has not yet
// seen echoed back as an inbound value. Entries are compared by identity, not
// structure: an echo is the exact value the engine handed to the host.
//
// Not safe for concurrent use; the Tether mutates it only from the single
// notification/update goroutine.
type echoQueue[T comparable] struct {
	pending []T
}

// push records an outward emission awaiting its echo.
func (q *echoQueue[T]) push(v T) {
	q.pending = append(q.pending, v)
}

// depth returns the number of emissions awaiting their echo.
func (q *echoQueue[T]) depth() int {
	return len(q.pending)
}

// match classifies an inbound value against pending emissions. It returns
// found=true when v is identical to any pending entry. When v matches the
// most recent entry the round-trip completed cleanly and the queue is
// emptied (cleared=true); a match on an older entry leaves the queue
// untouched, since newer emissions are still in flight.
func (q *echoQueue[T]) match(v T) (found, cleared bool) {
	for i, p := range q.pending {
		if p != v {
			continue
		}
		if i == len(q.pending)-1 {
			q.pending = q.pending[:0]
			return true, true
		}
		return true, false
	}
	return false, false
}

// clear abandons all pending echo expectations. Called when a genuinely new
// external value supersedes whatever was in flight.
func (q *echoQueue[T]) clear() {
	q.pending = q.pending[:0]
}
