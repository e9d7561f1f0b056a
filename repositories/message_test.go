package repositories

import (
	"chatline/domain"
	"chatline/errors"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newMessageRepository(t *testing.T, db *badger.DB) *MessageRepository {
	t.Helper()
	repository, err := NewMessageRepository(db, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close() })
	return repository
}

func Test_Store_Then_Fetch_Conversation_Round_Trips(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := newMessageRepository(t, openDB(t))

	// Given messages in both directions and one with a third user
	inputs := []domain.NewMessage{
		{SenderID: "alice", ReceiverID: "bob", Text: "hi"},
		{SenderID: "bob", ReceiverID: "alice", Text: "hey"},
		{SenderID: "alice", ReceiverID: "carol", Text: "not for bob"},
		{SenderID: "alice", ReceiverID: "bob", Image: "https://cdn.example.com/cat.png"},
	}
	var stored []domain.Message
	for _, input := range inputs {
		message, err := repository.StoreMessage(ctx, input)
		req.NoError(err)
		req.NotEmpty(message.ID)
		req.False(message.CreatedAt.IsZero())
		stored = append(stored, message)
	}

	// When the conversation is fetched from either side
	fromAlice, err := repository.GetConversation(ctx, "alice", "bob")
	req.NoError(err)
	fromBob, err := repository.GetConversation(ctx, "bob", "alice")
	req.NoError(err)

	// Then every message of the pair appears once, in creation order
	expected := []domain.Message{stored[0], stored[1], stored[3]}
	req.Equal(expected, fromAlice)
	req.Equal(expected, fromBob)
}

func Test_Message_For_Offline_User_Is_Retrievable(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := newMessageRepository(t, openDB(t))

	// Given alice sends a message to bob who never connected
	_, err := repository.StoreMessage(ctx, domain.NewMessage{SenderID: "alice", ReceiverID: "bob", Text: "hi"})
	req.NoError(err)

	// When bob fetches the conversation later
	messages, err := repository.GetConversation(ctx, "alice", "bob")

	// Then the message is there
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("alice", messages[0].SenderID)
	req.Equal("bob", messages[0].ReceiverID)
	req.Equal("hi", messages[0].Text)
	req.Empty(messages[0].Image)
}

func Test_Empty_Conversation_Is_Not_Nil(t *testing.T) {
	req := require.New(t)
	repository := newMessageRepository(t, openDB(t))

	messages, err := repository.GetConversation(context.Background(), "alice", "bob")

	req.NoError(err)
	req.NotNil(messages)
	req.Empty(messages)
}

func Test_Order_Survives_More_Than_Ten_Messages(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := newMessageRepository(t, openDB(t))

	var ids []string
	for i := 0; i < 25; i++ {
		message, err := repository.StoreMessage(ctx, domain.NewMessage{SenderID: "alice", ReceiverID: "bob", Text: "ping"})
		req.NoError(err)
		ids = append(ids, message.ID.String())
	}

	messages, err := repository.GetConversation(ctx, "bob", "alice")
	req.NoError(err)
	req.Len(messages, len(ids))
	for i, message := range messages {
		req.Equal(ids[i], message.ID.String())
	}
}

func Test_Concurrent_Senders_Are_All_Persisted(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := newMessageRepository(t, openDB(t))

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repository.StoreMessage(ctx, domain.NewMessage{SenderID: "alice", ReceiverID: "bob", Text: "concurrent"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		req.NoError(err)
	}

	messages, err := repository.GetConversation(ctx, "alice", "bob")
	req.NoError(err)
	req.Len(messages, 20)
}

func Test_Storage_Failure_Is_Reported(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	repository, err := NewMessageRepository(db, slog.Default())
	req.NoError(err)

	// Given the database is gone
	_ = repository.Close()
	req.NoError(db.Close())

	// When a message is stored
	_, err = repository.StoreMessage(context.Background(), domain.NewMessage{SenderID: "alice", ReceiverID: "bob", Text: "hi"})

	// Then a storage error is returned
	req.ErrorIs(err, errors.ErrStorage)
}
