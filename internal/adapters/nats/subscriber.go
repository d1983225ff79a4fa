package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeResolveRequests consumes the resolve work queue. Messages are
// redelivered up to three times when handler fails; undecodable messages
// are terminated.
func (s *Subscriber) SubscribeResolveRequests(ctx context.Context, handler func(ctx context.Context, jobID string) error) error {
	sub, err := s.js.Subscribe(SubjectResolveRequests, func(msg *nats.Msg) {
		var req ResolveRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil || req.JobID == "" {
			_ = msg.Term()
			return
		}
		if err := handler(ctx, req.JobID); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("resolver"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
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
