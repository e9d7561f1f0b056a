package ws

import (
	"chatline/domain/event"
	"chatline/errors"
	"context"
	"sync"
)

// Sink is the push side of one WebSocket connection.
// Events are buffered and written by the connection writer loop.
type Sink struct {
	events chan event.DomainEvent
	done   chan struct{}
	once   sync.Once
}

func NewSink(bufferSize int) *Sink {
	return &Sink{
		events: make(chan event.DomainEvent, bufferSize),
		done:   make(chan struct{}),
	}
}

// Consume never blocks: a closed connection or a full buffer is reported as an error.
func (s *Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-s.done:
		return errors.ErrConnectionClosed
	default:
	}
	select {
	case s.events <- e:
		return nil
	default:
		return errors.ErrBackpressure
	}
}

func (s *Sink) Events() <-chan event.DomainEvent {
	return s.events
}

// Close is idempotent.
func (s *Sink) Close() {
	s.once.Do(func() { close(s.done) })
}
