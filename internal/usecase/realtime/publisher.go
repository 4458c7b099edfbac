package realtime

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/workshop-backend/pkg/messaging"
)

type Publisher struct {
	client messaging.RedisClient
	origin string
	logger *zap.Logger
}

func NewPublisher(client messaging.RedisClient, origin string, logger *zap.Logger) *Publisher {
	return &Publisher{
		client: client,
		origin: origin,
		logger: logger,
	}
}

// Publish stamps the event with this instance's origin and sends it on the
// table's channel.
func (p *Publisher) Publish(ctx context.Context, event ChangeEvent) error {
	event.Origin = p.origin
	if err := p.client.Publish(ctx, ChannelFor(event.Table), event); err != nil {
		return fmt.Errorf("publish %s change for job %s: %w", event.Table, event.JobNumber, err)
	}
	p.logger.Debug("change published",
		zap.String("table", event.Table),
		zap.String("job_number", event.JobNumber),
		zap.String("channel", event.Channel))
	return nil
}

// Nop discards events. Used when redis is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, ChangeEvent) error { return nil }
