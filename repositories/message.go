package repositories

import (
	"chatline/domain"
	"chatline/errors"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

var messageSequenceKey = []byte("seq:messages")

const messageSequenceBandwidth = 100

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
	seq *badger.Sequence
	now func() time.Time
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) (*MessageRepository, error) {
	seq, err := db.GetSequence(messageSequenceKey, messageSequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("%w: message sequence: %w", errors.ErrStorage, err)
	}
	return &MessageRepository{db: db, log: log, seq: seq, now: time.Now}, nil
}

// StoreMessage persists a message in BadgerDB and returns it with its ID and timestamp.
// The key is formatted as "msg:{conversation}:{sequence_padded}" so that:
//  1. Both directions of a pair share the same prefix.
//  2. A prefix scan returns messages in the order StoreMessage was called,
//     the 20-digit zero padding keeping lexicographical and numerical order aligned.
func (m *MessageRepository) StoreMessage(ctx context.Context, message domain.NewMessage) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, fmt.Errorf("%w: %w", errors.ErrStorage, err)
	}
	seq, err := m.seq.Next()
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: next sequence: %w", errors.ErrStorage, err)
	}

	stored := domain.Message{
		ID:         uuid.New(),
		SenderID:   message.SenderID,
		ReceiverID: message.ReceiverID,
		Text:       message.Text,
		Image:      message.Image,
		// Rounded through UnixNano so the returned value equals what is read back
		CreatedAt: time.Unix(0, m.now().UnixNano()).UTC(),
	}
	key := messageKey(domain.ConversationID(message.SenderID, message.ReceiverID), seq)

	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, encodeMessage(stored, seq))
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %w", errors.ErrStorage, err)
	}
	m.log.Debug("Message stored", "message_id", stored.ID, "sequence", seq)
	return stored, nil
}

// GetConversation returns every message exchanged between userA and userB, oldest first.
// There is no limit, the whole history is loaded.
func (m *MessageRepository) GetConversation(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrStorage, err)
	}
	messages, err := ReadConversation(m.db, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrStorage, err)
	}
	return messages, nil
}

// ReadConversation scans the messages of the pair without taking any write lease,
// it works on a read-only database.
func ReadConversation(db *badger.DB, userA, userB string) ([]domain.Message, error) {
	prefix := []byte(fmt.Sprintf("msg:%s:", domain.ConversationID(userA, userB)))
	messages := make([]domain.Message, 0)

	err := db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				message, err := decodeMessage(value)
				if err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return messages, err
}

// Close releases the sequence lease, unused numbers are lost.
func (m *MessageRepository) Close() error {
	return m.seq.Release()
}

func messageKey(conversationID string, seq uint64) []byte {
	return []byte(fmt.Sprintf("msg:%s:%020d", conversationID, seq))
}
