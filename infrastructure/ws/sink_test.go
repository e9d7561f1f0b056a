package ws

import (
	"chatline/domain/event"
	"chatline/errors"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSink_Consume(t *testing.T) {
	req := require.New(t)
	sink := NewSink(1)
	ctx := context.Background()
	evt := event.OnlineUsers{UserIDs: []string{"u1"}}

	// Given a sink with room for one event
	req.NoError(sink.Consume(ctx, evt))

	// When the buffer is full
	err := sink.Consume(ctx, evt)

	// Then the push is refused instead of blocking
	req.ErrorIs(err, errors.ErrBackpressure)
	req.Equal(evt, <-sink.Events())
}

func TestSink_Consume_After_Close(t *testing.T) {
	req := require.New(t)
	sink := NewSink(4)

	sink.Close()
	sink.Close()

	req.ErrorIs(sink.Consume(context.Background(), event.OnlineUsers{}), errors.ErrConnectionClosed)
}

func TestSink_Consume_Canceled_Context(t *testing.T) {
	req := require.New(t)
	sink := NewSink(4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req.ErrorIs(sink.Consume(ctx, event.OnlineUsers{}), context.Canceled)
}
