package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/IBM/sarama"
)

// KafkaPublisher is a Kafka-backed implementation of Publisher.
// It uses sarama's AsyncProducer for high-throughput, non-blocking publishing.
type KafkaPublisher struct {
	producer sarama.AsyncProducer
	router   *TopicRouter
	config   *PublisherConfig
	mu       sync.RWMutex
	closed   bool
	errCh    chan error
	wg       sync.WaitGroup
}

// Ensure KafkaPublisher implements the Publisher interface.
var _ Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a new Kafka publisher with the given
// configuration. It connects to the configured brokers and starts an async
// producer.
func NewKafkaPublisher(config *PublisherConfig) (*KafkaPublisher, error) {
	if config == nil {
		config = DefaultPublisherConfig()
	}

	if len(config.Brokers) == 0 {
		return nil, errors.New("at least one Kafka broker is required")
	}

	saramaConfig := buildSaramaConfig(config)

	producer, err := sarama.NewAsyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	kp := &KafkaPublisher{
		producer: producer,
		router:   NewTopicRouter(config.Topics),
		config:   config,
		errCh:    make(chan error, 100),
	}

	// Start background goroutines to handle successes and errors
	kp.wg.Add(2)
	go kp.handleSuccesses()
	go kp.handleErrors()

	return kp, nil
}

// NewKafkaPublisherWithProducer creates a KafkaPublisher with an injected
// producer. This is primarily useful for testing with sarama/mocks.
func NewKafkaPublisherWithProducer(producer sarama.AsyncProducer, config *PublisherConfig) *KafkaPublisher {
	if config == nil {
		config = DefaultPublisherConfig()
	}

	kp := &KafkaPublisher{
		producer: producer,
		router:   NewTopicRouter(config.Topics),
		config:   config,
		errCh:    make(chan error, 100),
	}

	kp.wg.Add(2)
	go kp.handleSuccesses()
	go kp.handleErrors()

	return kp
}

// Publish sends events to Kafka topics based on routing rules.
func (kp *KafkaPublisher) Publish(ctx context.Context, events []SecurityEvent) error {
	kp.mu.RLock()
	defer kp.mu.RUnlock()

	if kp.closed {
		return ErrPublisherClosed
	}

	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", event.ID, err)
		}

		// Route to appropriate topics
		topics := kp.router.Route(event)
		for _, topic := range topics {
			msg := &sarama.ProducerMessage{
				Topic: topic,
				Key:   sarama.StringEncoder(event.FileID + ":" + event.CorrelationID),
				Value: sarama.ByteEncoder(data),
			}

			select {
			case kp.producer.Input() <- msg:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return nil
}

// Close flushes pending messages and closes the Kafka producer.
func (kp *KafkaPublisher) Close() error {
	kp.mu.Lock()
	if kp.closed {
		kp.mu.Unlock()
		return nil
	}
	kp.closed = true
	kp.mu.Unlock()

	// AsyncClose triggers the producer to flush and close
	kp.producer.AsyncClose()

	// Wait for background handlers to finish
	kp.wg.Wait()

	return nil
}

// Errors returns a channel of non-fatal errors encountered during publishing.
func (kp *KafkaPublisher) Errors() <-chan error {
	return kp.errCh
}

// handleSuccesses drains the producer's success channel.
func (kp *KafkaPublisher) handleSuccesses() {
	defer kp.wg.Done()
	for range kp.producer.Successes() {
		// Success messages are acknowledged; no action needed.
	}
}

// handleErrors drains the producer's error channel and forwards errors.
func (kp *KafkaPublisher) handleErrors() {
	defer kp.wg.Done()
	for err := range kp.producer.Errors() {
		if err != nil {
			select {
			case kp.errCh <- fmt.Errorf("kafka produce error on topic %s: %w", err.Msg.Topic, err.Err):
			default:
				// Error channel full; drop to avoid blocking the producer
			}
		}
	}
}

// buildSaramaConfig creates a sarama configuration from our PublisherConfig.
func buildSaramaConfig(config *PublisherConfig) *sarama.Config {
	sc := sarama.NewConfig()

	// Producer settings
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true

	// Batch settings
	if config.FlushInterval > 0 {
		sc.Producer.Flush.Frequency = config.FlushInterval
	}
	if config.BatchSize > 0 {
		sc.Producer.Flush.Messages = config.BatchSize
	}

	// Compression
	switch config.Compression {
	case "gzip":
		sc.Producer.Compression = sarama.CompressionGZIP
	case "snappy":
		sc.Producer.Compression = sarama.CompressionSnappy
	case "lz4":
		sc.Producer.Compression = sarama.CompressionLZ4
	default:
		sc.Producer.Compression = sarama.CompressionNone
	}

	// Required acks
	switch config.RequiredAcks {
	case "none":
		sc.Producer.RequiredAcks = sarama.NoResponse
	case "leader":
		sc.Producer.RequiredAcks = sarama.WaitForLocal
	case "all":
		sc.Producer.RequiredAcks = sarama.WaitForAll
	default:
		sc.Producer.RequiredAcks = sarama.WaitForAll
	}

	// Retry settings
	if config.MaxRetries > 0 {
		sc.Producer.Retry.Max = config.MaxRetries
	}
	if config.RetryBackoff > 0 {
		sc.Producer.Retry.Backoff = config.RetryBackoff
	}

	return sc
}
