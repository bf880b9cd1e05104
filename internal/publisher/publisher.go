// Package publisher appends completed records to the durable log and blocks
// for broker acknowledgment. It deliberately carries no retry: the
// submission orchestrator compensates on failure instead of retrying.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"caredays/internal/message"
)

// Topic is the append-only log topic for accepted care-days messages.
// Consumers key on the submission id.
const Topic = "dusseldorf.privat-omsorgsdager-melding-mottatt"

// SupportedVersion is the only envelope version this service produces.
const SupportedVersion = 1

// ErrUnsupportedVersion rejects an envelope before any I/O occurs, guarding
// against protocol drift.
var ErrUnsupportedVersion = errors.New("unsupported envelope version")

// Metadata is the envelope wrapped around every published record.
type Metadata struct {
	CorrelationID string `json:"correlationId"`
	RequestID     string `json:"requestId,omitempty"`
	Version       int    `json:"version"`
}

// entry is the wire payload: envelope metadata plus the record itself.
type entry struct {
	Metadata Metadata                `json:"metadata"`
	Data     message.CompletedRecord `json:"data"`
}

// producer is the minimal kgo.Client surface the publisher needs.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Publisher writes completed records to the durable log.
type Publisher struct {
	producer producer
	topic    string
	logger   *slog.Logger
}

// New builds a Publisher on top of a configured kgo client.
func New(client *kgo.Client, logger *slog.Logger) *Publisher {
	return &Publisher{producer: client, topic: Topic, logger: logger}
}

// Publish appends the record keyed by submission id and waits for the broker
// acknowledgment, returning the assigned offset. An envelope with the wrong
// version is rejected locally; broker errors surface as transport faults
// with no retry at this layer.
func (p *Publisher) Publish(ctx context.Context, record message.CompletedRecord, meta Metadata) (int64, error) {
	if meta.Version != SupportedVersion {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, meta.Version)
	}

	value, err := json.Marshal(entry{Metadata: meta, Data: record})
	if err != nil {
		return 0, fmt.Errorf("marshal record: %w", err)
	}

	results := p.producer.ProduceSync(ctx, &kgo.Record{
		Topic: p.topic,
		Key:   []byte(record.SubmissionID),
		Value: value,
	})
	if err := results.FirstErr(); err != nil {
		return 0, fmt.Errorf("produce to %s: %w", p.topic, err)
	}

	produced, err := results.First()
	if err != nil {
		return 0, fmt.Errorf("produce to %s: %w", p.topic, err)
	}
	p.logger.InfoContext(ctx, "record published",
		"submission_id", record.SubmissionID,
		"topic", p.topic,
		"partition", produced.Partition,
		"offset", produced.Offset,
	)
	return produced.Offset, nil
}
