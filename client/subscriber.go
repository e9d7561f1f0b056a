package client

import (
	"chatline/domain"
	"chatline/domain/event"
	"sync"
)

// Subscriber keeps the conversation with the selected partner in sync with
// newMessage events. At most one handler is registered at any time.
type Subscriber struct {
	mu           sync.Mutex
	channel      Channel
	handlerID    HandlerID
	subscribed   bool
	conversation *domain.Conversation
}

func NewSubscriber(channel Channel) *Subscriber {
	return &Subscriber{channel: channel}
}

// Subscribe selects partnerID, seeded with its fetched history.
// Calling it again replaces the previous subscription instead of adding one.
func (s *Subscriber) Subscribe(partnerID string, history []domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.unsubscribeLocked()
	conversation := domain.NewConversation(partnerID, history)
	s.conversation = conversation
	s.handlerID = s.channel.On(event.NewMessageName, func(e event.DomainEvent) {
		evt, ok := e.(event.NewMessage)
		if !ok || evt.Message.SenderID != partnerID {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		// A late event of a replaced subscription must not leak in
		if s.conversation == conversation {
			conversation.Append(evt.Message)
		}
	})
	s.subscribed = true
}

func (s *Subscriber) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsubscribeLocked()
}

func (s *Subscriber) unsubscribeLocked() {
	if !s.subscribed {
		return
	}
	s.channel.Off(s.handlerID)
	s.subscribed = false
}

// Append adds a message sent by the local user, as returned by the send endpoint.
func (s *Subscriber) Append(message domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conversation != nil {
		s.conversation.Append(message)
	}
}

// Messages returns the open conversation, nil when nothing is selected.
func (s *Subscriber) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conversation == nil {
		return nil
	}
	return s.conversation.Messages()
}

func (s *Subscriber) PartnerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conversation == nil {
		return ""
	}
	return s.conversation.PartnerID
}
