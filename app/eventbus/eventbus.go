// Package eventbus provides the watermill pub/sub pair the modules
// communicate over: in-process gochannel by default, NATS JetStream when a
// NATS URL is configured.
package eventbus

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
)

// EventBus is the publisher/subscriber pair shared by all modules.
type EventBus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
}

// NewInProcess returns a gochannel-backed bus. Suitable for the single-binary
// deployment and for tests.
func NewInProcess(logger watermill.LoggerAdapter) *EventBus {
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, logger)
	return &EventBus{Publisher: pubsub, Subscriber: pubsub}
}

// NewNATS returns a JetStream-backed bus for multi-process deployments.
func NewNATS(natsURL string, logger watermill.LoggerAdapter) (*EventBus, error) {
	marshaler := &wmnats.GobMarshaler{}
	options := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(1 * time.Second),
	}

	jsConfig := wmnats.JetStreamConfig{
		Disabled:      false,
		AutoProvision: true,
	}

	publisher, err := wmnats.NewPublisher(
		wmnats.PublisherConfig{
			URL:               natsURL,
			NatsOptions:       options,
			Marshaler:         marshaler,
			JetStream:         jsConfig,
			SubjectCalculator: wmnats.DefaultSubjectCalculator,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	subscriber, err := wmnats.NewSubscriber(
		wmnats.SubscriberConfig{
			URL:               natsURL,
			NatsOptions:       options,
			Unmarshaler:       marshaler,
			JetStream:         jsConfig,
			SubjectCalculator: wmnats.DefaultSubjectCalculator,
		},
		logger,
	)
	if err != nil {
		publisher.Close()
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	return &EventBus{Publisher: publisher, Subscriber: subscriber}, nil
}

// Close shuts both sides down.
func (b *EventBus) Close() error {
	pubErr := b.Publisher.Close()
	subErr := b.Subscriber.Close()
	if pubErr != nil {
		return pubErr
	}
	return subErr
}
