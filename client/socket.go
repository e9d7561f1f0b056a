package client

import (
	"chatline/domain/event"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// SocketChannel is a Channel over the server WebSocket endpoint.
type SocketChannel struct {
	*handlers
	log    *slog.Logger
	conn   *websocket.Conn
	mu     sync.RWMutex
	online []string
	done   chan struct{}
}

func NewSocketChannel(log *slog.Logger) *SocketChannel {
	return &SocketChannel{
		handlers: newHandlers(),
		log:      log,
		done:     make(chan struct{}),
	}
}

// Connect dials baseURL (ws:// or wss://) announcing userID, empty for anonymous,
// and starts dispatching events. Handlers may be registered before or after.
func (s *SocketChannel) Connect(ctx context.Context, baseURL, userID string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid socket url %q: %w", baseURL, err)
	}
	u.Path = "/ws"
	if userID != "" {
		u.RawQuery = url.Values{"userId": {userID}}.Encode()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("could not connect to %s: %w", u.String(), err)
	}
	s.conn = conn
	go s.readLoop()
	return nil
}

func (s *SocketChannel) readLoop() {
	defer close(s.done)
	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("Socket closed", "error", err)
			}
			return
		}
		e, err := event.Decode(frame)
		if err != nil {
			s.log.Debug("Unreadable frame dropped", "error", err)
			continue
		}
		if online, ok := e.(event.OnlineUsers); ok {
			s.mu.Lock()
			s.online = online.UserIDs
			s.mu.Unlock()
		}
		s.emit(e)
	}
}

// Online is the last presence view received, it replaces any previous one.
func (s *SocketChannel) Online() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]string, len(s.online))
	copy(res, s.online)
	return res
}

// Done is closed once the connection is gone.
func (s *SocketChannel) Done() <-chan struct{} {
	return s.done
}

func (s *SocketChannel) Close() error {
	if s.conn == nil {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteMessage(websocket.CloseMessage, msg)
	return s.conn.Close()
}
