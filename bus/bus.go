package bus

import (
	"errors"

	"github.com/google/uuid"
)

// ErrClosed is returned by Broadcast once the bus has been closed.
var ErrClosed = errors.New("bus is closed")

// Bus carries typed messages from publishers to every current subscriber.
type Bus[T any] interface {
	Broadcast(m T) error
	Subscribe() *Subscription[T]
	Unsubscribe(id uuid.UUID)
	Close()
}

// Subscription is a single subscriber's view of a Bus.
// C is closed when the subscriber is removed or the bus is closed.
type Subscription[T any] struct {
	ID uuid.UUID
	C  <-chan T
}
