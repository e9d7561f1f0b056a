package event

import (
	"chatline/domain"
	"encoding/json"
	"fmt"
)

// Names of the events pushed to real-time clients.
const (
	NewMessageName  = "newMessage"
	OnlineUsersName = "getOnlineUsers"
)

type DomainEvent interface {
	Name() string
}

// NewMessage carries a just persisted message to its recipient.
type NewMessage struct {
	Message domain.Message
}

func (NewMessage) Name() string { return NewMessageName }

// OnlineUsers is the full presence view, it replaces any previous one on the client.
type OnlineUsers struct {
	UserIDs []string
}

func (OnlineUsers) Name() string { return OnlineUsersName }

// Envelope is the JSON frame written on a real-time connection.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Encode builds the wire frame of e.
func Encode(e DomainEvent) ([]byte, error) {
	var payload any
	switch evt := e.(type) {
	case NewMessage:
		payload = evt.Message
	case OnlineUsers:
		ids := evt.UserIDs
		if ids == nil {
			ids = []string{}
		}
		payload = ids
	default:
		return nil, fmt.Errorf("unsupported event %T", e)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: e.Name(), Data: data})
}

// Decode parses a frame written by Encode.
func Decode(frame []byte) (DomainEvent, error) {
	var envelope Envelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		return nil, err
	}
	switch envelope.Event {
	case NewMessageName:
		var message domain.Message
		if err := json.Unmarshal(envelope.Data, &message); err != nil {
			return nil, err
		}
		return NewMessage{Message: message}, nil
	case OnlineUsersName:
		var ids []string
		if err := json.Unmarshal(envelope.Data, &ids); err != nil {
			return nil, err
		}
		return OnlineUsers{UserIDs: ids}, nil
	default:
		return nil, fmt.Errorf("unknown event %q", envelope.Event)
	}
}
