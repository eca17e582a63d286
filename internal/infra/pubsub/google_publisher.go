package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"agriconnect/internal/domain/service"

	"cloud.google.com/go/pubsub/v2"
	pubsubpb "cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/pkg/errors"
)

// googlePubSubPublisher implements EventPublisher using Google Cloud Pub/Sub
type googlePubSubPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	logger    *slog.Logger
}

// NewGooglePubSubPublisher creates a new Google Pub/Sub publisher
func NewGooglePubSubPublisher(
	ctx context.Context,
	projectID string,
	topicID string,
	logger *slog.Logger,
) (service.EventPublisher, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create pubsub client")
	}

	// Verify topic exists before accepting traffic
	topicPath := fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
	_, err = client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: topicPath})
	if err != nil {
		closeErr := client.Close()
		if closeErr != nil {
			logger.Warn("Failed to close pubsub client", slog.Any("error", closeErr))
		}

		return nil, errors.Wrapf(err, "failed to get topic %s", topicID)
	}

	return &googlePubSubPublisher{
		client:    client,
		publisher: client.Publisher(topicID),
		logger:    logger,
	}, nil
}

func (p *googlePubSubPublisher) PublishMarketEvent(ctx context.Context, event *service.MarketEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal market event")
	}

	msg := &pubsub.Message{
		Data:       data,
		Attributes: eventAttributes(event),
	}

	result := p.publisher.Publish(ctx, msg)

	// Wait for publish confirmation
	msgID, err := result.Get(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to publish market event")
	}

	p.logger.Debug("[GooglePubSub] Published market event",
		slog.String("message_id", msgID),
		slog.String("type", event.Type),
		slog.String("listing_id", event.ListingID),
	)

	return nil
}

func (p *googlePubSubPublisher) Close() error {
	p.publisher.Stop()

	return p.client.Close()
}
