// Package ws serves the real-time channel of the chat.
// Every connection is handed to the gateway, then only pushes server events.
package ws

import (
	"chatline/contract"
	"chatline/domain/event"
	"chatline/runtime"
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// UserIDQuery is the query parameter announcing the identity of the client.
const UserIDQuery = "userId"

const defaultReadLimit = 512

type connectionGateway interface {
	Connect(ctx context.Context, userID string, sink contract.EventSink) (*runtime.Session, error)
	Disconnect(ctx context.Context, session *runtime.Session) error
}

type Config struct {
	BufferSize       int
	PingInterval     time.Duration
	WriteTimeout     time.Duration
	LifecycleTimeout time.Duration
	// ReadLimit caps the size of a client frame, a bigger one closes the connection.
	ReadLimit int64
}

type Handler struct {
	log     *slog.Logger
	gateway connectionGateway
	cfg     Config
}

func NewHandler(log *slog.Logger, gateway connectionGateway, cfg Config) *Handler {
	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = defaultReadLimit
	}
	return &Handler{log: log, gateway: gateway, cfg: cfg}
}

// pongWait is how long a silent peer is kept, pings go out every 9/10 of it.
func (h *Handler) pongWait() time.Duration {
	return h.cfg.PingInterval * 10 / 9
}

// Register mounts the WebSocket endpoint on path.
func (h *Handler) Register(app fiber.Router, path string) {
	app.Use(path, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get(path, websocket.New(h.Serve))
}

// Serve runs one connection until the client leaves or a write fails.
func (h *Handler) Serve(c *websocket.Conn) {
	sink := NewSink(h.cfg.BufferSize)
	userID := c.Query(UserIDQuery)

	connectCtx, cancel := context.WithTimeout(context.Background(), h.cfg.LifecycleTimeout)
	session, err := h.gateway.Connect(connectCtx, userID, sink)
	cancel()
	if err != nil {
		h.log.Warn("Connection refused", "user_id", userID, "error", err)
		_ = c.Close()
		return
	}

	defer func() {
		sink.Close()
		_ = c.Close()
		ctx, cancel := context.WithTimeout(context.Background(), h.cfg.LifecycleTimeout)
		defer cancel()
		if err := h.gateway.Disconnect(ctx, session); err != nil {
			h.log.Error("Disconnect not applied", "conn_id", session.ID, "user_id", userID, "error", err)
		}
	}()

	closed := make(chan struct{})
	go h.readLoop(c, session, closed)
	h.writeLoop(c, session, sink, closed)
}

// readLoop only detects the end of the connection, clients send nothing meaningful.
// A peer that stops answering pings is dropped once the read deadline passes.
func (h *Handler) readLoop(c *websocket.Conn, session *runtime.Session, closed chan<- struct{}) {
	defer close(closed)
	c.SetReadLimit(h.cfg.ReadLimit)
	_ = c.SetReadDeadline(time.Now().Add(h.pongWait()))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(h.pongWait()))
	})
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("WebSocket read error", "conn_id", session.ID, "error", err)
			}
			return
		}
	}
}

func (h *Handler) writeLoop(c *websocket.Conn, session *runtime.Session, sink *Sink, closed <-chan struct{}) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case e := <-sink.Events():
			frame, err := event.Encode(e)
			if err != nil {
				h.log.Error("Event not encoded", "conn_id", session.ID, "event", e.Name(), "error", err)
				continue
			}
			_ = c.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := c.WriteMessage(websocket.TextMessage, frame); err != nil {
				h.log.Debug("WebSocket write failed", "conn_id", session.ID, "error", err)
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(h.cfg.WriteTimeout)
			if err := c.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				h.log.Debug("WebSocket ping failed", "conn_id", session.ID, "error", err)
				return
			}
		}
	}
}
