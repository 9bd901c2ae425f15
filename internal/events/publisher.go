package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/paisa/paisa/internal/metrics"
)

// PublishTimeout is the max time to wait for a broker publish.
const PublishTimeout = 2 * time.Second

// Sink delivers one event to a broker.
type Sink interface {
	Send(ctx context.Context, event Event) error
	Close() error
}

// Publisher sends events in the background so ledger writes never wait on
// or fail because of a broker.
type Publisher struct {
	sink    Sink
	logger  *slog.Logger
	metrics metrics.Recorder
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewPublisher creates a Publisher. A nil sink discards every event.
func NewPublisher(sink Sink, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		sink:    sink,
		logger:  logger.With("component", "events.publisher"),
		metrics: recorder,
		timeout: PublishTimeout,
	}
}

// Publish sends an event synchronously.
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	if p.sink == nil {
		return nil
	}
	return p.sink.Send(ctx, event)
}

// PublishAsync publishes without blocking the caller.
// Errors are logged but not returned (fire-and-forget).
func (p *Publisher) PublishAsync(event Event) {
	if p == nil || p.sink == nil {
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		if err := p.sink.Send(ctx, event); err != nil {
			p.logger.Warn("failed to publish event",
				"event_type", event.Type,
				"event_id", event.ID,
				"error", err,
			)
			p.metrics.IncEventPublished("dropped")
			return
		}

		p.logger.Debug("event published",
			"event_type", event.Type,
			"event_id", event.ID,
		)
		p.metrics.IncEventPublished("success")
	}()
}

// Close waits for in-flight publishes, bounded by ctx, then closes the sink.
func (p *Publisher) Close(ctx context.Context) error {
	if p.sink == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		p.logger.Warn("closing event sink with publishes still in flight")
	}

	return p.sink.Close()
}
