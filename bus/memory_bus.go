package bus

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const defaultBufferSize = 16

// MemoryBus is an in-process Bus. Each subscriber gets a buffered channel;
// Broadcast never blocks and drops the message for a subscriber whose
// buffer is full.
type MemoryBus[T any] struct {
	subscribers map[uuid.UUID]chan T
	bufferSize  int

	mu       sync.RWMutex
	isClosed bool
}

// NewMemoryBus creates a MemoryBus. A bufferSize <= 0 selects the default.
func NewMemoryBus[T any](bufferSize int) *MemoryBus[T] {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &MemoryBus[T]{
		subscribers: make(map[uuid.UUID]chan T),
		bufferSize:  bufferSize,
	}
}

// Broadcast delivers m to all subscribers without blocking.
func (b *MemoryBus[T]) Broadcast(m T) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.isClosed {
		return ErrClosed
	}

	for id, ch := range b.subscribers {
		select {
		case ch <- m:
		default:
			slog.Warn("Dropping message for slow subscriber", "subscriber", id)
		}
	}
	return nil
}

// Subscribe registers a new subscriber. On a closed bus the returned
// channel is already closed.
func (b *MemoryBus[T]) Subscribe() *Subscription[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New()
	ch := make(chan T, b.bufferSize)

	if b.isClosed {
		close(ch)
		return &Subscription[T]{ID: id, C: ch}
	}

	b.subscribers[id] = ch
	return &Subscription[T]{ID: id, C: ch}
}

// Unsubscribe removes the subscriber and closes its channel.
// Unknown ids are ignored.
func (b *MemoryBus[T]) Unsubscribe(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
}

// Close closes the bus and every subscriber channel.
func (b *MemoryBus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.isClosed {
		return
	}
	b.isClosed = true
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}

// Len returns the number of active subscribers.
func (b *MemoryBus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

var _ Bus[int] = (*MemoryBus[int])(nil)
