// Package runtime owns the live state of the server: who is connected,
// on which connection, and how events reach them.
// It holds no business rules about messages or users.
package runtime

import (
	"chatline/contract"
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Gateway drives connection lifecycles.
//
// Connect and Disconnect only enqueue lifecycle events. Handle applies them and
// is meant to be called by a single goroutine (see workers.LifecycleWorker), so
// that each connect or disconnect, with the presence broadcast it triggers,
// runs to completion before the next one starts.
type Gateway struct {
	log         *slog.Logger
	registry    contract.IRegistry
	connections *Connections
	dispatcher  contract.IDispatcher
	lifecycle   chan LifecycleEvent
}

func NewGateway(log *slog.Logger, registry contract.IRegistry, connections *Connections,
	dispatcher contract.IDispatcher, bufferSize int) *Gateway {
	return &Gateway{
		log:         log,
		registry:    registry,
		connections: connections,
		dispatcher:  dispatcher,
		lifecycle:   make(chan LifecycleEvent, bufferSize),
	}
}

// Events is consumed by the lifecycle worker.
func (g *Gateway) Events() <-chan LifecycleEvent {
	return g.lifecycle
}

// Connect opens a session for userID, which may be empty for an anonymous client.
// The identity is trusted as given.
func (g *Gateway) Connect(ctx context.Context, userID string, sink contract.EventSink) (*Session, error) {
	session := &Session{ID: uuid.NewString(), UserID: userID, sink: sink}
	if err := g.enqueue(ctx, Connected{session: session}); err != nil {
		return nil, err
	}
	return session, nil
}

// Disconnect is called once the transport is gone, whatever the reason.
func (g *Gateway) Disconnect(ctx context.Context, session *Session) error {
	return g.enqueue(ctx, Disconnected{session: session})
}

func (g *Gateway) enqueue(ctx context.Context, evt LifecycleEvent) error {
	select {
	case g.lifecycle <- evt:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("lifecycle event for %s dropped: %w", evt.Session().ID, ctx.Err())
	}
}

// Handle applies one lifecycle event.
func (g *Gateway) Handle(ctx context.Context, evt LifecycleEvent) {
	switch e := evt.(type) {
	case Connected:
		g.established(ctx, e.session)
	case Disconnected:
		g.closed(ctx, e.session)
	default:
		g.log.Warn(fmt.Sprintf("Unknown lifecycle event %T", evt))
	}
}

func (g *Gateway) established(ctx context.Context, session *Session) {
	if !session.transition(Connecting, Established) {
		return
	}
	g.connections.Add(session.ID, session.sink)
	if !session.Anonymous() {
		g.registry.Register(session.UserID, session.ID)
	}
	g.log.Info("Connection established", "conn_id", session.ID, "user_id", session.UserID)
	g.dispatcher.BroadcastPresence(ctx)
}

func (g *Gateway) closed(ctx context.Context, session *Session) {
	if session.transition(Connecting, Closed) {
		// Never established, nothing was registered
		return
	}
	if !session.transition(Established, Closed) {
		return
	}
	g.connections.Remove(session.ID)
	if !session.Anonymous() {
		removed := g.registry.Unregister(session.UserID, session.ID)
		g.log.Debug("Presence entry released", "conn_id", session.ID, "user_id", session.UserID, "removed", removed)
	}
	g.log.Info("Connection closed", "conn_id", session.ID, "user_id", session.UserID)
	g.dispatcher.BroadcastPresence(ctx)
}
