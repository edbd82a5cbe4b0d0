package pubsub

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
)

// MessageHandler processes one Pub/Sub payload. Returning an error nacks the
// message so Pub/Sub redelivers it.
type MessageHandler func(ctx context.Context, messageID string, data []byte) error

// Subscriber handles Pub/Sub messages
type Subscriber struct {
	client         *pubsub.Client
	subscriptionID string
	logger         *zap.Logger
}

// NewSubscriber creates a new Pub/Sub subscriber
func NewSubscriber(ctx context.Context, projectID, subscriptionID string, logger *zap.Logger) (*Subscriber, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &Subscriber{
		client:         client,
		subscriptionID: subscriptionID,
		logger:         logger,
	}, nil
}

// Listen blocks receiving messages until ctx is cancelled.
func (s *Subscriber) Listen(ctx context.Context, handler MessageHandler) error {
	sub := s.client.Subscription(s.subscriptionID)

	s.logger.Info("Pub/Sub listener started", zap.String("subscription", s.subscriptionID))

	return sub.Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		if err := handler(ctx, m.ID, m.Data); err != nil {
			s.logger.Warn("Pub/Sub message not handled, requesting redelivery",
				zap.String("message_id", m.ID),
				zap.Error(err))
			m.Nack()
			return
		}
		m.Ack()
	})
}

// Close closes the Pub/Sub client
func (s *Subscriber) Close() error {
	return s.client.Close()
}
