package workers

import (
	"chatline/domain"
	"context"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

type NamedChannel struct {
	Name    string
	Channel any
}

// ChannelCapacityWorker periodically samples the length and capacity of channels.
// Reading len(channel) and cap(channel) is non-blocking, so this won't interfere
// with the goroutines using them.
type ChannelCapacityWorker struct {
	log            *slog.Logger
	channels       []NamedChannel
	metricInterval time.Duration
	mu             sync.RWMutex
	last           []domain.ChannelCapacity
}

func NewChannelCapacityWorker(log *slog.Logger, channels []NamedChannel, metricInterval time.Duration) *ChannelCapacityWorker {
	return &ChannelCapacityWorker{
		log:            log,
		channels:       channels,
		metricInterval: metricInterval,
	}
}

func (w *ChannelCapacityWorker) Run(ctx context.Context) error {
	w.sample()
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping channel sampling")
			return nil
		case <-ticker.C:
			w.sample()
		}
	}
}

func (w *ChannelCapacityWorker) sample() {
	capacities := make([]domain.ChannelCapacity, 0, len(w.channels))
	for _, nc := range w.channels {
		v := reflect.ValueOf(nc.Channel)
		if v.Kind() != reflect.Chan {
			w.log.Error("Provided object is not a channel", "name", nc.Name)
			continue
		}
		c := domain.ChannelCapacity{Name: nc.Name, Capacity: v.Cap(), Length: v.Len()}
		if c.Capacity > 0 && c.Length == c.Capacity {
			w.log.Warn("Channel is full", "name", nc.Name, "capacity", c.Capacity)
		}
		capacities = append(capacities, c)
	}
	w.mu.Lock()
	w.last = capacities
	w.mu.Unlock()
}

// Last returns the latest sample.
func (w *ChannelCapacityWorker) Last() []domain.ChannelCapacity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	res := make([]domain.ChannelCapacity, len(w.last))
	copy(res, w.last)
	return res
}
