package client

import (
	"chatline/domain"
	"chatline/domain/event"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakeChannel emits synchronously, like a socket read loop would.
type fakeChannel struct {
	*handlers
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{handlers: newHandlers()}
}

func message(sender, receiver, text string) domain.Message {
	return domain.Message{ID: uuid.New(), SenderID: sender, ReceiverID: receiver, Text: text, CreatedAt: time.Now().UTC()}
}

func TestSubscriber_Appends_Messages_From_Partner(t *testing.T) {
	req := require.New(t)
	channel := newFakeChannel()
	subscriber := NewSubscriber(channel)
	history := []domain.Message{message("bob", "me", "earlier")}

	// Given the conversation with bob is open
	subscriber.Subscribe("bob", history)

	// When bob writes
	channel.emit(event.NewMessage{Message: message("bob", "me", "hi")})

	// Then it is appended after the history
	messages := subscriber.Messages()
	req.Len(messages, 2)
	req.Equal("hi", messages[1].Text)
}

func TestSubscriber_Drops_Messages_From_Others(t *testing.T) {
	req := require.New(t)
	channel := newFakeChannel()
	subscriber := NewSubscriber(channel)
	subscriber.Subscribe("bob", nil)

	// When carol writes while bob is selected
	channel.emit(event.NewMessage{Message: message("carol", "me", "psst")})

	// Then the open conversation is untouched
	req.Empty(subscriber.Messages())
}

func TestSubscriber_Resubscribe_Does_Not_Duplicate(t *testing.T) {
	req := require.New(t)
	channel := newFakeChannel()
	subscriber := NewSubscriber(channel)

	// Given the same conversation selected twice
	subscriber.Subscribe("bob", nil)
	subscriber.Subscribe("bob", nil)
	req.Equal(1, channel.count(event.NewMessageName))

	// When bob writes once
	channel.emit(event.NewMessage{Message: message("bob", "me", "hi")})

	// Then it appears once
	req.Len(subscriber.Messages(), 1)
}

func TestSubscriber_Switching_Partner(t *testing.T) {
	req := require.New(t)
	channel := newFakeChannel()
	subscriber := NewSubscriber(channel)
	subscriber.Subscribe("bob", nil)

	// When the user switches to carol
	subscriber.Subscribe("carol", nil)
	channel.emit(event.NewMessage{Message: message("bob", "me", "still there?")})
	channel.emit(event.NewMessage{Message: message("carol", "me", "hello")})

	// Then only carol's message shows up
	req.Equal("carol", subscriber.PartnerID())
	messages := subscriber.Messages()
	req.Len(messages, 1)
	req.Equal("carol", messages[0].SenderID)
}

func TestSubscriber_Unsubscribe(t *testing.T) {
	req := require.New(t)
	channel := newFakeChannel()
	subscriber := NewSubscriber(channel)
	subscriber.Subscribe("bob", nil)

	subscriber.Unsubscribe()
	subscriber.Unsubscribe()
	channel.emit(event.NewMessage{Message: message("bob", "me", "hi")})

	req.Zero(channel.count(event.NewMessageName))
	req.Empty(subscriber.Messages())
}

func TestSubscriber_Append_Own_Message(t *testing.T) {
	req := require.New(t)
	subscriber := NewSubscriber(newFakeChannel())

	// Nothing selected, nothing kept
	subscriber.Append(message("me", "bob", "lost"))
	req.Nil(subscriber.Messages())

	subscriber.Subscribe("bob", nil)
	subscriber.Append(message("me", "bob", "hi bob"))
	req.Len(subscriber.Messages(), 1)
}

func TestHandlers_Off_Only_Removes_One(t *testing.T) {
	req := require.New(t)
	h := newHandlers()
	calls := 0

	first := h.On(event.OnlineUsersName, func(event.DomainEvent) { calls++ })
	h.On(event.OnlineUsersName, func(event.DomainEvent) { calls++ })
	h.Off(first)
	h.emit(event.OnlineUsers{UserIDs: []string{"a"}})

	req.Equal(1, calls)
}
