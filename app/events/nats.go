package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"chirp/app/models"

	"github.com/nats-io/nats.go"
)

// NatsPublisher publishes post events as JSON on a NATS connection.
type NatsPublisher struct {
	nc *nats.Conn
}

func NewNatsPublisher(nc *nats.Conn) *NatsPublisher {
	return &NatsPublisher{nc: nc}
}

func (p *NatsPublisher) PublishPostCreated(ctx context.Context, post *models.Post) error {
	data, err := json.Marshal(NewPostCreatedEvent(post))
	if err != nil {
		return fmt.Errorf("marshal post event: %w", err)
	}

	msg := &nats.Msg{
		Subject: SubjectPostCreated,
		Data:    data,
		Header:  nats.Header{},
	}
	msg.Header.Set("Content-Type", "application/json")

	slog.DebugContext(ctx, "publishing event", "subject", msg.Subject, "post_id", post.ID)
	return p.nc.PublishMsg(msg)
}
