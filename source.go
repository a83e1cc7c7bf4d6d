package tether

import "context"

// Source observes an external home of a host document and emits its raw bytes
// on change. Implementations must emit the current contents immediately upon
// Watch() being called so a Feed can install the initial value.
type Source interface {
	// Watch begins observing the source and returns a channel that emits
	// raw document bytes when changes occur. The channel is closed when the
	// context is canceled or an unrecoverable error occurs.
	Watch(ctx context.Context) (<-chan []byte, error)
}
