package rest

import (
	"chatline/domain/event"
	"chatline/infrastructure/ws"
	"fmt"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// listen serves the stack on a real port, the WebSocket upgrade needs one.
func (s *testStack) listen(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = s.app.Listener(ln) }()
	t.Cleanup(func() { _ = s.app.Shutdown() })
	return ln.Addr().String()
}

func dial(t *testing.T, addr, userID string) *websocket.Conn {
	t.Helper()
	url := fmt.Sprintf("ws://%s/ws?userId=%s", addr, userID)
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// next reads frames until one matches, failing after a second.
func next(t *testing.T, conn *websocket.Conn, match func(event.DomainEvent) bool) event.DomainEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	for {
		_, frame, err := conn.ReadMessage()
		require.NoError(t, err)
		evt, err := event.Decode(frame)
		require.NoError(t, err)
		if match(evt) {
			return evt
		}
	}
}

func presenceIs(ids ...string) func(event.DomainEvent) bool {
	return func(e event.DomainEvent) bool {
		online, ok := e.(event.OnlineUsers)
		if !ok || len(online.UserIDs) != len(ids) {
			return false
		}
		set := make(map[string]bool, len(online.UserIDs))
		for _, id := range online.UserIDs {
			set[id] = true
		}
		for _, id := range ids {
			if !set[id] {
				return false
			}
		}
		return true
	}
}

func isNewMessage(e event.DomainEvent) bool {
	_, ok := e.(event.NewMessage)
	return ok
}

func TestWebSocket_Presence_And_Delivery(t *testing.T) {
	req := require.New(t)
	stack := newTestStack(t)
	alice, aliceToken := stack.signup(t, "Alice", "alice@example.com")
	bob, _ := stack.signup(t, "Bob", "bob@example.com")
	addr := stack.listen(t)

	// Given Alice then Bob connected
	aliceConn := dial(t, addr, alice.ID)
	next(t, aliceConn, presenceIs(alice.ID))
	bobConn := dial(t, addr, bob.ID)

	// Then both see both online
	next(t, aliceConn, presenceIs(alice.ID, bob.ID))
	next(t, bobConn, presenceIs(alice.ID, bob.ID))

	// When Alice sends Bob a message
	resp, raw := stack.do(t, http.MethodPost, "/api/message/send/"+bob.ID, map[string]string{"text": "hi"}, aliceToken)
	req.Equal(http.StatusCreated, resp.StatusCode, string(raw))

	// Then Bob receives it in real time
	got := next(t, bobConn, isNewMessage).(event.NewMessage)
	req.Equal(alice.ID, got.Message.SenderID)
	req.Equal("hi", got.Message.Text)

	// When Bob leaves
	req.NoError(bobConn.Close())

	// Then Alice sees only herself
	next(t, aliceConn, presenceIs(alice.ID))
	req.Eventually(func() bool {
		return stack.connections.Count() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestWebSocket_Anonymous_Receives_Presence_Only(t *testing.T) {
	req := require.New(t)
	stack := newTestStack(t)
	alice, _ := stack.signup(t, "Alice", "alice@example.com")
	addr := stack.listen(t)

	aliceConn := dial(t, addr, alice.ID)
	next(t, aliceConn, presenceIs(alice.ID))

	// When a client connects without identity
	anonymous := dial(t, addr, "")

	// Then it gets the presence view and is not listed
	next(t, anonymous, presenceIs(alice.ID))
	req.Eventually(func() bool {
		return stack.connections.Count() == 2
	}, time.Second, 10*time.Millisecond)
	req.Equal(1, stack.registry.Count())
}

func TestWebSocket_Oversized_Frame_Closes_Session(t *testing.T) {
	req := require.New(t)
	stack := newTestStack(t)
	alice, _ := stack.signup(t, "Alice", "alice@example.com")
	bob, _ := stack.signup(t, "Bob", "bob@example.com")
	addr := stack.listen(t)

	aliceConn := dial(t, addr, alice.ID)
	next(t, aliceConn, presenceIs(alice.ID))
	bobConn := dial(t, addr, bob.ID)
	next(t, aliceConn, presenceIs(alice.ID, bob.ID))

	// When Bob pushes a frame bigger than the read limit
	req.NoError(bobConn.WriteMessage(websocket.TextMessage, []byte(strings.Repeat("x", 4096))))

	// Then the server drops Bob and tells Alice
	next(t, aliceConn, presenceIs(alice.ID))
	req.Eventually(func() bool {
		return stack.connections.Count() == 1
	}, time.Second, 10*time.Millisecond)
	_, online := stack.registry.Lookup(bob.ID)
	req.False(online)
}

func TestWebSocket_Silent_Peer_Is_Dropped(t *testing.T) {
	req := require.New(t)
	stack := newTestStackWithSocket(t, ws.Config{
		BufferSize:       16,
		PingInterval:     50 * time.Millisecond,
		WriteTimeout:     time.Second,
		LifecycleTimeout: time.Second,
	})
	alice, _ := stack.signup(t, "Alice", "alice@example.com")
	addr := stack.listen(t)

	// Given Alice connected but never reading, so pings are never answered
	dial(t, addr, alice.ID)
	req.Eventually(func() bool {
		return stack.registry.Count() == 1
	}, time.Second, 10*time.Millisecond)

	// Then the read deadline expires and she goes offline
	req.Eventually(func() bool {
		return stack.registry.Count() == 0 && stack.connections.Count() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
