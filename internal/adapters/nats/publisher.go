package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/siteloc/internal/core/domain"
)

// Subjects and streams.
const (
	SubjectResolutionPrefix = "siteloc.resolution."
	SubjectResolutions      = "siteloc.resolution.>"
	SubjectResolveRequests  = "siteloc.jobs.resolve"

	StreamResolutions = "SITELOC_RESOLUTIONS"
	StreamRequests    = "SITELOC_REQUESTS"
)

// ResolutionSubject is the subject a job's resolution events go to.
func ResolutionSubject(jobID string) string {
	return SubjectResolutionPrefix + jobID
}

// ResolveRequest is the work-queue message asking for a job to be resolved.
type ResolveRequest struct {
	JobID       string    `json:"job_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:      StreamResolutions,
			Subjects:  []string{SubjectResolutions},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      StreamRequests,
			Subjects:  []string{SubjectResolveRequests},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist — try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishResolution announces a new resolution for its job.
func (p *Publisher) PublishResolution(ctx context.Context, res *domain.Resolution) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(ResolutionSubject(res.JobID), data, nats.Context(ctx))
	return err
}

// PublishResolveRequest queues a job for the resolver worker.
func (p *Publisher) PublishResolveRequest(ctx context.Context, jobID string) error {
	data, err := json.Marshal(ResolveRequest{JobID: jobID, RequestedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	// Deduplicate bursts of requests for the same job.
	_, err = p.js.Publish(SubjectResolveRequests, data, nats.Context(ctx), nats.MsgId("resolve-"+jobID+"-"+time.Now().UTC().Format("200601021504")))
	return err
}

// Ping reports whether the connection is up.
func (p *Publisher) Ping() error {
	if !p.conn.IsConnected() {
		return fmt.Errorf("nats disconnected: %s", p.conn.Status())
	}
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("siteloc"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
