package domain

import "encoding/hex"

// ConversationID is the canonical identifier of the pair (a, b).
// It does not depend on the argument order and is safe to embed in storage keys.
func ConversationID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return hex.EncodeToString([]byte(a)) + "." + hex.EncodeToString([]byte(b))
}

// Conversation is the local, ordered view of the messages exchanged with one partner.
type Conversation struct {
	PartnerID string
	messages  []Message
}

func NewConversation(partnerID string, history []Message) *Conversation {
	messages := make([]Message, len(history))
	copy(messages, history)
	return &Conversation{PartnerID: partnerID, messages: messages}
}

func (c *Conversation) Append(message Message) {
	c.messages = append(c.messages, message)
}

// Messages returns a copy of the conversation in arrival order.
func (c *Conversation) Messages() []Message {
	res := make([]Message, len(c.messages))
	copy(res, c.messages)
	return res
}
