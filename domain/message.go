// Package domain contains core concepts of the chat system.
// This file defines direct messages exchanged between two users.
// Messages are immutable once persisted.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is a direct message from SenderID to ReceiverID.
// Text and Image are optional, an empty string means absent.
type Message struct {
	ID         uuid.UUID `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	Image      string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewMessage is what a sender submits before persistence assigns an ID and a timestamp.
type NewMessage struct {
	SenderID   string
	ReceiverID string
	Text       string
	Image      string
}
