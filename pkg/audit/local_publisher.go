package audit

import (
	"context"
	"errors"
	"sync"
)

// ErrPublisherClosed is returned when attempting to publish to a closed
// publisher.
var ErrPublisherClosed = errors.New("publisher is closed")

// PublishCallback is called for each event published to a topic.
type PublishCallback func(topic string, event SecurityEvent)

// LocalPublisher is an in-memory implementation of Publisher for library
// mode. It routes events to topics and invokes callbacks for each published
// message. This avoids requiring a real Kafka dependency for library
// consumers.
type LocalPublisher struct {
	router    *TopicRouter
	config    *PublisherConfig
	callbacks []PublishCallback
	mu        sync.RWMutex
	closed    bool
}

// Ensure LocalPublisher implements the Publisher interface.
var _ Publisher = (*LocalPublisher)(nil)

// NewLocalPublisher creates a new local publisher with the given
// configuration. If config is nil, DefaultPublisherConfig() is used.
func NewLocalPublisher(config *PublisherConfig) *LocalPublisher {
	if config == nil {
		config = DefaultPublisherConfig()
	}
	return &LocalPublisher{
		router:    NewTopicRouter(config.Topics),
		config:    config,
		callbacks: make([]PublishCallback, 0),
	}
}

// OnPublish registers a callback that will be invoked for each event
// published to a topic. Multiple callbacks can be registered and all will be
// invoked in registration order.
func (p *LocalPublisher) OnPublish(cb PublishCallback) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callbacks = append(p.callbacks, cb)
}

// Publish routes events to topics and invokes all registered callbacks for
// each (topic, event) pair.
func (p *LocalPublisher) Publish(ctx context.Context, events []SecurityEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPublisherClosed
	}

	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		topics := p.router.Route(event)
		for _, topic := range topics {
			for _, cb := range p.callbacks {
				cb(topic, event)
			}
		}
	}

	return nil
}

// Close marks the publisher as closed. Subsequent calls to Publish will
// return ErrPublisherClosed.
func (p *LocalPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
