package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/yangonmaps/citymap/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	durable string
	subs    []*nats.Subscription
}

// NewSubscriber connects to NATS. With an empty durable name every
// subscription gets its own ephemeral consumer, so each process sees every
// event; a durable name shares one consumer between processes instead.
func NewSubscriber(url, durable string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureContentStream(js); err != nil {
		conn.Close()
		return nil, err
	}
	return &Subscriber{conn: conn, js: js, durable: durable}, nil
}

// SubscribeContentEvents delivers new content events to handler. Events the
// handler rejects are redelivered up to three times.
func (s *Subscriber) SubscribeContentEvents(ctx context.Context, handler func(ctx context.Context, event *domain.ContentEvent) error) error {
	opts := []nats.SubOpt{
		nats.BindStream(ContentStream),
		nats.DeliverNew(),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	}
	if s.durable != "" {
		opts = append(opts, nats.Durable(s.durable))
	}

	sub, err := s.js.Subscribe(ContentSubjects, func(msg *nats.Msg) {
		var event domain.ContentEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.Warn("dropping malformed content event", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &event); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	}, opts...)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
