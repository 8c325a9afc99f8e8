package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"photo-location-service/internal/api/dto"
	"photo-location-service/internal/domain"
	"photo-location-service/internal/platform/obs"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	StreamName    = "PHOTO_BATCHES"
	subjectPrefix = "photos.batches."
)

// jetStream is the slice of nats.JetStreamContext the publisher needs.
type jetStream interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// NATSPublisher implements ports.RecordPublisher using NATS JetStream.
type NATSPublisher struct {
	conn *nats.Conn
	js   jetStream
}

// NewNATSPublisher connects to NATS and makes sure the batch stream exists.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("photo-location-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := &nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{subjectPrefix + ">"},
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist; try update
		if _, err := js.UpdateStream(cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &NATSPublisher{conn: conn, js: js}, nil
}

// Subject returns the subject a batch is published on.
func Subject(batchID string) string {
	return subjectPrefix + batchID
}

// EncodeBatch renders the message body: the same JSON the HTTP API returns.
func EncodeBatch(batch *domain.RecordBatch) ([]byte, error) {
	if batch == nil {
		return nil, errors.New("encode batch: batch is nil")
	}
	return json.Marshal(dto.BatchFromDomain(batch))
}

func (p *NATSPublisher) PublishBatch(ctx context.Context, batch *domain.RecordBatch) (err error) {
	defer obs.Time(ctx, "publisher.nats.PublishBatch")(&err)

	data, err := EncodeBatch(batch)
	if err != nil {
		return fmt.Errorf("publish batch: %w", err)
	}

	// The batch id doubles as the JetStream dedup id.
	if _, err := p.js.Publish(Subject(batch.ID), data, nats.MsgId(batch.ID), nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish batch %s: %w", batch.ID, err)
	}
	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}
