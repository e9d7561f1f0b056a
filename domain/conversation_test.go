package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestConversationID_IsSymmetric(t *testing.T) {
	req := require.New(t)

	req.Equal(ConversationID("alice", "bob"), ConversationID("bob", "alice"))
	req.NotEqual(ConversationID("alice", "bob"), ConversationID("alice", "carol"))
	// Separators inside identifiers must not collide with another pair
	req.NotEqual(ConversationID("a.b", "c"), ConversationID("a", "b.c"))
}

func TestConversation_Append_KeepsOrder(t *testing.T) {
	req := require.New(t)
	first := Message{ID: uuid.New(), SenderID: "bob", ReceiverID: "alice", Text: "hi", CreatedAt: time.Now()}
	second := Message{ID: uuid.New(), SenderID: "alice", ReceiverID: "bob", Text: "hey", CreatedAt: time.Now()}

	// Given a conversation loaded with one message
	conversation := NewConversation("bob", []Message{first})

	// When a second message arrives
	conversation.Append(second)

	// Then both are kept in arrival order
	req.Equal([]Message{first, second}, conversation.Messages())
}

func TestSendMessageCommand_IsEmpty(t *testing.T) {
	req := require.New(t)

	req.True(SendMessageCommand{SenderID: "alice", ReceiverID: "bob"}.IsEmpty())
	req.False(SendMessageCommand{Text: "hi"}.IsEmpty())
	req.False(SendMessageCommand{Image: "data:image/png;base64,AA=="}.IsEmpty())
}
