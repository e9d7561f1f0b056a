package runtime

import (
	"chatline/contract"
	"chatline/domain"
	"chatline/domain/event"
	"context"
	"log/slog"
	"time"
)

// Dispatcher pushes events to live connections.
//
// Delivery is best-effort and at most once: the message is already durable
// when Deliver is called, so nothing is retried and no failure reaches the sender.
type Dispatcher struct {
	log         *slog.Logger
	registry    contract.IRegistry
	connections *Connections
	pushTimeout time.Duration
}

func NewDispatcher(log *slog.Logger, registry contract.IRegistry, connections *Connections, pushTimeout time.Duration) *Dispatcher {
	return &Dispatcher{log: log, registry: registry, connections: connections, pushTimeout: pushTimeout}
}

// Deliver pushes a newMessage event to the receiver's connection if it is online.
func (d *Dispatcher) Deliver(ctx context.Context, message domain.Message) domain.DeliveryResult {
	connectionID, ok := d.registry.Lookup(message.ReceiverID)
	if !ok {
		d.log.Debug("Receiver offline, message kept for next fetch",
			"message_id", message.ID, "receiver_id", message.ReceiverID)
		return domain.SkippedOffline
	}

	sink, ok := d.connections.Get(connectionID)
	if !ok {
		// Registry still points to a connection that is already gone
		d.log.Debug("Receiver connection vanished",
			"message_id", message.ID, "receiver_id", message.ReceiverID, "conn_id", connectionID)
		return domain.PushFailed
	}

	if err := d.push(ctx, sink, event.NewMessage{Message: message}); err != nil {
		d.log.Debug("Push failed",
			"message_id", message.ID, "receiver_id", message.ReceiverID, "conn_id", connectionID, "error", err)
		return domain.PushFailed
	}
	return domain.Delivered
}

// BroadcastPresence sends the full set of online users to every connection.
// It returns the number of connections that accepted the event.
func (d *Dispatcher) BroadcastPresence(ctx context.Context) int {
	evt := event.OnlineUsers{UserIDs: d.registry.Snapshot()}
	pushed := 0
	for connectionID, sink := range d.connections.All() {
		if err := d.push(ctx, sink, evt); err != nil {
			d.log.Debug("Presence push failed", "conn_id", connectionID, "error", err)
			continue
		}
		pushed++
	}
	return pushed
}

func (d *Dispatcher) push(ctx context.Context, sink contract.EventSink, evt event.DomainEvent) error {
	pushCtx, cancel := context.WithTimeout(ctx, d.pushTimeout)
	defer cancel()
	return sink.Consume(pushCtx, evt)
}
