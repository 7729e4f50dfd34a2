// Package worker runs the reveal task and forwards its events to viewers.
package worker

import (
	"context"
	"fmt"

	"github.com/okian/lineup/internal/adapters/mq/queue"
	"github.com/okian/lineup/pkg/logger"
	"github.com/okian/lineup/pkg/metrics"
)

// Event abstracts what consumers read off the queue.
type Event = queue.Event

// Queue defines how consumers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Publisher delivers one event to viewers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Consumer drains the queue into a Publisher. A single consumer keeps
// events in the order they were enqueued.
type Consumer struct {
	queue     Queue
	publisher Publisher
	name      string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewConsumer creates a consumer with configuration options.
func NewConsumer(q Queue, pub Publisher, opts ...Option) *Consumer {
	c := &Consumer{
		queue:     q,
		publisher: pub,
		name:      "consumer",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("consumer"),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.name != "consumer" {
		c.logger = c.logger.Named(c.name)
	}

	return c
}

// Run forwards events until ctx is canceled, Shutdown is called or the
// queue closes.
func (c *Consumer) Run(ctx context.Context) {
	defer close(c.done)

	events := c.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.shutdown:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := c.publisher.Publish(ctx, event); err != nil {
				metrics.RecordErrorByComponent("consumer", "publish_error")
				c.logger.Error(ctx, "publish failed",
					logger.String("type", string(event.Type)),
					logger.String("session", event.SessionID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the consumer and waits for Run to return.
func (c *Consumer) Shutdown(ctx context.Context) error {
	select {
	case <-c.shutdown:
	default:
		close(c.shutdown)
	}

	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		c.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (c *Consumer) Done() <-chan struct{} { return c.done }
