package workers

import (
	"chatline/runtime"
	"context"
	"log/slog"
)

type lifecycleHandler interface {
	Events() <-chan runtime.LifecycleEvent
	Handle(ctx context.Context, evt runtime.LifecycleEvent)
}

// LifecycleWorker is the single consumer of connection lifecycle events.
// Connect and disconnect handling never interleave.
type LifecycleWorker struct {
	log     *slog.Logger
	gateway lifecycleHandler
}

func NewLifecycleWorker(log *slog.Logger, gateway lifecycleHandler) *LifecycleWorker {
	return &LifecycleWorker{log: log, gateway: gateway}
}

func (w *LifecycleWorker) Run(ctx context.Context) error {
	events := w.gateway.Events()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping lifecycle loop")
			return nil
		case evt := <-events:
			w.gateway.Handle(ctx, evt)
		}
	}
}
