package runtime

import (
	"chatline/domain"
	"chatline/domain/event"
	"chatline/errors"
	"chatline/mocks"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestMessage(sender, receiver string) domain.Message {
	return domain.Message{
		ID:         uuid.New(),
		SenderID:   sender,
		ReceiverID: receiver,
		Text:       "hi",
		CreatedAt:  time.Now().UTC(),
	}
}

func TestDispatcher_Deliver_Online_Receiver(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	sink := mocks.NewMockEventSink(ctrl)
	registry := NewRegistry()
	connections := NewConnections()
	message := newTestMessage("u1", "u2")

	// Given u2 is online on c2
	registry.Register("u2", "c2")
	connections.Add("c2", sink)

	// Then exactly one newMessage event reaches c2
	sink.EXPECT().
		Consume(gomock.Any(), event.NewMessage{Message: message}).
		Return(nil).
		Times(1)

	// When the message is delivered
	dispatcher := NewDispatcher(log, registry, connections, time.Second)
	result := dispatcher.Deliver(context.Background(), message)

	req.Equal(domain.Delivered, result)
}

func TestDispatcher_Deliver_Offline_Receiver(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIRegistry(ctrl)
	sink := mocks.NewMockEventSink(ctrl)
	connections := NewConnections()
	connections.Add("c1", sink)

	// Given u2 is not in the directory
	registry.EXPECT().Lookup("u2").Return("", false)

	// Then nothing is pushed to anybody
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).Times(0)

	dispatcher := NewDispatcher(slog.Default(), registry, connections, time.Second)
	result := dispatcher.Deliver(context.Background(), newTestMessage("u1", "u2"))

	req.Equal(domain.SkippedOffline, result)
}

func TestDispatcher_Deliver_Vanished_Connection(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIRegistry(ctrl)

	// Given the directory points to a connection no longer known
	registry.EXPECT().Lookup("u2").Return("c-gone", true)

	dispatcher := NewDispatcher(slog.Default(), registry, NewConnections(), time.Second)
	result := dispatcher.Deliver(context.Background(), newTestMessage("u1", "u2"))

	req.Equal(domain.PushFailed, result)
}

func TestDispatcher_Deliver_Push_Error(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockEventSink(ctrl)
	registry := NewRegistry()
	connections := NewConnections()
	registry.Register("u2", "c2")
	connections.Add("c2", sink)

	// Given the receiver transport is saturated
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(errors.ErrBackpressure)

	dispatcher := NewDispatcher(slog.Default(), registry, connections, time.Second)
	result := dispatcher.Deliver(context.Background(), newTestMessage("u1", "u2"))

	req.Equal(domain.PushFailed, result)
}

func TestDispatcher_Deliver_Applies_Push_Timeout(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockEventSink(ctrl)
	registry := NewRegistry()
	connections := NewConnections()
	registry.Register("u2", "c2")
	connections.Add("c2", sink)

	// Given a sink blocking until its context expires
	sink.EXPECT().
		Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ event.DomainEvent) error {
			_, hasDeadline := ctx.Deadline()
			req.True(hasDeadline)
			<-ctx.Done()
			return ctx.Err()
		})

	dispatcher := NewDispatcher(slog.Default(), registry, connections, 20*time.Millisecond)
	result := dispatcher.Deliver(context.Background(), newTestMessage("u1", "u2"))

	req.Equal(domain.PushFailed, result)
}

func TestDispatcher_BroadcastPresence(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registered := mocks.NewMockEventSink(ctrl)
	anonymous := mocks.NewMockEventSink(ctrl)
	failing := mocks.NewMockEventSink(ctrl)
	registry := NewRegistry()
	connections := NewConnections()

	// Given one registered, one anonymous and one broken connection
	registry.Register("u1", "c1")
	connections.Add("c1", registered)
	connections.Add("c2", anonymous)
	connections.Add("c3", failing)

	// Then every connection receives the same presence view
	want := event.OnlineUsers{UserIDs: []string{"u1"}}
	registered.EXPECT().Consume(gomock.Any(), want).Return(nil)
	anonymous.EXPECT().Consume(gomock.Any(), want).Return(nil)
	failing.EXPECT().Consume(gomock.Any(), want).Return(errors.ErrConnectionClosed)

	dispatcher := NewDispatcher(slog.Default(), registry, connections, time.Second)
	pushed := dispatcher.BroadcastPresence(context.Background())

	// And the broken one is not counted
	req.Equal(2, pushed)
}
