// internal/adapter/events/nats.go

package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"neighborly/internal/domain/event"
)

// Config contains NATS connection settings
type Config struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
	SubjectPrefix string
}

// Connect dials NATS with reconnect handlers that log through zap
func Connect(cfg Config, logger *zap.Logger) (*nats.Conn, error) {
	log := logger.Named("nats")
	nc, err := nats.Connect(cfg.URL,
		nats.Name("neighborly"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

// Publisher publishes domain events as JSON on <prefix>.<entity>.<type>.
// Meetup events are mirrored on <prefix>.meetup.<id>.activity for live feeds.
type Publisher struct {
	conn   *nats.Conn
	prefix string
	logger *zap.Logger
}

// NewPublisher creates a publisher on an open connection
func NewPublisher(conn *nats.Conn, prefix string, logger *zap.Logger) *Publisher {
	if prefix == "" {
		prefix = "neighborly"
	}
	return &Publisher{conn: conn, prefix: prefix, logger: logger.Named("events")}
}

// Subject returns the subject an event is published on
func (p *Publisher) Subject(e event.Event) string {
	return fmt.Sprintf("%s.%s.%s", p.prefix, e.Entity, e.Type)
}

// ActivitySubject returns the per-meetup live feed subject
func ActivitySubject(prefix, meetupID string) string {
	return fmt.Sprintf("%s.%s.%s.activity", prefix, event.EntityMeetup, meetupID)
}

// Publish implements event.Publisher
func (p *Publisher) Publish(ctx context.Context, e event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("error marshaling event: %w", err)
	}

	if err := p.conn.Publish(p.Subject(e), data); err != nil {
		return fmt.Errorf("error publishing event: %w", err)
	}
	if e.Entity == event.EntityMeetup && e.EntityID != "" {
		if err := p.conn.Publish(ActivitySubject(p.prefix, e.EntityID), data); err != nil {
			return fmt.Errorf("error publishing activity: %w", err)
		}
	}

	p.logger.Debug("event published",
		zap.String("subject", p.Subject(e)),
		zap.String("entity_id", e.EntityID),
	)
	return nil
}

// Prefix returns the subject prefix
func (p *Publisher) Prefix() string {
	return p.prefix
}

// Conn returns the underlying connection
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// SubscribeMeetup delivers every payload published on the meetup's activity
// subject to fn until the returned func is called
func (p *Publisher) SubscribeMeetup(meetupID string, fn func(data []byte)) (func(), error) {
	sub, err := p.conn.Subscribe(ActivitySubject(p.prefix, meetupID), func(msg *nats.Msg) {
		fn(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("error subscribing to meetup activity: %w", err)
	}

	return func() {
		if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			p.logger.Warn("failed to unsubscribe", zap.String("meetup_id", meetupID), zap.Error(err))
		}
	}, nil
}
