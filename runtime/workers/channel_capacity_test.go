package workers

import (
	"chatline/domain"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestChannelCapacityWorker_Samples_Channels(t *testing.T) {
	req := require.New(t)
	queue := make(chan int, 4)
	queue <- 1
	queue <- 2

	worker := NewChannelCapacityWorker(slog.Default(), []NamedChannel{
		{Name: "lifecycle", Channel: queue},
		{Name: "not a channel", Channel: 42},
	}, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	// Then only the real channel is reported
	req.Eventually(func() bool {
		return len(worker.Last()) == 1
	}, time.Second, 5*time.Millisecond)
	req.Equal(domain.ChannelCapacity{Name: "lifecycle", Capacity: 4, Length: 2}, worker.Last()[0])

	cancel()
	req.NoError(<-done)
}
