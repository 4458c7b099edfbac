package realtime

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wekeepgrowing/workshop-backend/pkg/messaging"
)

// Handler reacts to a change published by another instance.
type Handler interface {
	HandleChange(ctx context.Context, event ChangeEvent) error
}

// Listener subscribes to every table channel and hands foreign events to
// the handler. Events carrying this instance's origin are ignored.
type Listener struct {
	client  messaging.RedisClient
	origin  string
	handler Handler
	logger  *zap.Logger
}

func NewListener(client messaging.RedisClient, origin string, handler Handler, logger *zap.Logger) *Listener {
	return &Listener{
		client:  client,
		origin:  origin,
		handler: handler,
		logger:  logger,
	}
}

// Run blocks until ctx is done or a subscription fails.
func (l *Listener) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, table := range Tables {
		channel := ChannelFor(table)
		g.Go(func() error {
			return l.consume(ctx, channel)
		})
	}
	return g.Wait()
}

func (l *Listener) consume(ctx context.Context, channel string) error {
	messages, err := l.client.Subscribe(ctx, channel)
	if err != nil {
		l.logger.Error("realtime subscription failed", zap.String("channel", channel), zap.Error(err))
		return err
	}
	l.logger.Info("realtime subscription started", zap.String("channel", channel))

	for msg := range messages {
		l.dispatch(ctx, msg)
	}
	return nil
}

func (l *Listener) dispatch(ctx context.Context, msg messaging.Message) {
	var event ChangeEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		l.logger.Warn("dropping malformed change event",
			zap.String("channel", msg.Channel),
			zap.Error(err))
		return
	}
	if event.Origin == l.origin {
		return
	}
	if event.JobNumber == "" {
		l.logger.Debug("ignoring change event without job number", zap.String("table", event.Table))
		return
	}

	if err := l.handler.HandleChange(ctx, event); err != nil {
		l.logger.Warn("change event handling failed",
			zap.String("table", event.Table),
			zap.String("job_number", event.JobNumber),
			zap.Error(err))
	}
}
