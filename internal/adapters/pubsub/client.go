// Package pubsub wraps the Cloud Pub/Sub client for the prover
// pipeline: topic and subscription provisioning, publishing, and a
// cancellable receive loop.
//
// Delivery and acknowledgment semantics belong to the broker; this
// package only acks messages after the handler returns and reports
// transport failures to the caller without retrying.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"os"

	gcppubsub "cloud.google.com/go/pubsub"

	"github.com/0xer-org/zk/pkg/logger"
	"github.com/0xer-org/zk/pkg/metrics"
)

// Channel names a topic together with the subscription attached to it.
type Channel struct {
	Topic        string
	Subscription string
}

// Handler consumes a single decoded message payload.
type Handler func(ctx context.Context, data []byte)

// Client wraps the Cloud Pub/Sub client.
type Client struct {
	client       *gcppubsub.Client
	projectID    string
	emulatorHost string
	logger       logger.Logger
}

// New creates a Pub/Sub client. A configured emulator host is exported
// through PUBSUB_EMULATOR_HOST, the variable the client library honors;
// this mirrors how the emulator tooling dials.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	c := &Client{
		projectID: "test-project",
		logger:    logger.Get().Named("pubsub"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	if c.emulatorHost != "" {
		if err := os.Setenv("PUBSUB_EMULATOR_HOST", c.emulatorHost); err != nil {
			return nil, fmt.Errorf("failed to set emulator host: %w", err)
		}
	}

	client, err := gcppubsub.NewClient(ctx, c.projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClientInit, err)
	}
	c.client = client

	return c, nil
}

// EnsureTopic creates the topic if it does not exist. An existing topic
// is informational, not an error.
func (c *Client) EnsureTopic(ctx context.Context, topicID string) (*gcppubsub.Topic, error) {
	topic := c.client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check topic %s: %w", topicID, err)
	}
	if exists {
		c.logger.Info(ctx, "topic already exists", logger.String("topic", topicID))
		return topic, nil
	}

	topic, err = c.client.CreateTopic(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to create topic %s: %w", topicID, err)
	}
	c.logger.Info(ctx, "created topic", logger.String("topic", topicID))
	return topic, nil
}

// EnsureSubscription creates the subscription on the given topic if it
// does not exist.
func (c *Client) EnsureSubscription(ctx context.Context, subscriptionID, topicID string) error {
	sub := c.client.Subscription(subscriptionID)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check subscription %s: %w", subscriptionID, err)
	}
	if exists {
		c.logger.Info(ctx, "subscription already exists", logger.String("subscription", subscriptionID))
		return nil
	}

	topic := c.client.Topic(topicID)
	if _, err := c.client.CreateSubscription(ctx, subscriptionID, gcppubsub.SubscriptionConfig{
		Topic: topic,
	}); err != nil {
		return fmt.Errorf("failed to create subscription %s: %w", subscriptionID, err)
	}
	c.logger.Info(ctx, "created subscription",
		logger.String("subscription", subscriptionID),
		logger.String("topic", topicID))
	return nil
}

// Setup provisions every channel's topic and subscription.
func (c *Client) Setup(ctx context.Context, channels ...Channel) error {
	for _, ch := range channels {
		if _, err := c.EnsureTopic(ctx, ch.Topic); err != nil {
			return err
		}
		if err := c.EnsureSubscription(ctx, ch.Subscription, ch.Topic); err != nil {
			return err
		}
	}
	return nil
}

// Publish sends data on a topic and waits for the server-assigned
// message ID.
func (c *Client) Publish(ctx context.Context, topicID string, data []byte) (string, error) {
	topic := c.client.Topic(topicID)
	defer topic.Stop()

	result := topic.Publish(ctx, &gcppubsub.Message{Data: data})
	id, err := result.Get(ctx)
	if err != nil {
		metrics.RecordPublishError(topicID)
		return "", fmt.Errorf("%w: topic %s: %w", ErrPublish, topicID, err)
	}

	metrics.RecordMessagePublished(topicID)
	c.logger.Debug(ctx, "published message",
		logger.String("topic", topicID),
		logger.String("messageID", id),
		logger.Int("bytes", len(data)))
	return id, nil
}

// ReceiveFunc handles a raw broker message. The handler owns ack/nack.
type ReceiveFunc func(ctx context.Context, msg *gcppubsub.Message)

// Receive runs the subscription's streaming pull until ctx is done,
// handing raw messages to fn. Cancellation and deadline expiry end the
// loop normally.
func (c *Client) Receive(ctx context.Context, subscriptionID string, fn ReceiveFunc) error {
	sub := c.client.Subscription(subscriptionID)

	err := sub.Receive(ctx, func(ctx context.Context, msg *gcppubsub.Message) {
		metrics.RecordMessageReceived(subscriptionID)
		fn(ctx, msg)
	})
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: subscription %s: %w", ErrReceive, subscriptionID, err)
	}
	return nil
}

// Listen receives messages from a subscription until ctx is done,
// acking each message after the handler returns.
func (c *Client) Listen(ctx context.Context, subscriptionID string, handler Handler) error {
	return c.Receive(ctx, subscriptionID, func(ctx context.Context, msg *gcppubsub.Message) {
		handler(ctx, msg.Data)
		msg.Ack()
	})
}

// ProjectID returns the configured project.
func (c *Client) ProjectID() string {
	return c.projectID
}

// Close releases the underlying client connection.
func (c *Client) Close() error {
	return c.client.Close()
}
