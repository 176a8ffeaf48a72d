package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/rio-alert-service/internal/domain"
	"github.com/couchcryptid/storm-data-shared/retry"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	defaultAttempts   = 3
	defaultBackoff    = 200 * time.Millisecond
	defaultMaxBackoff = 2 * time.Second
)

// messageWriter is the subset of *kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces level updates to a Kafka topic.
// It implements domain.LevelPublisher.
type Publisher struct {
	writer     messageWriter
	logger     *slog.Logger
	attempts   int
	backoff    time.Duration
	maxBackoff time.Duration
}

// NewPublisher creates a Kafka producer for the level-update topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		MaxAttempts:  1,
		WriteTimeout: 5 * time.Second,
	}
	return newPublisher(w, logger)
}

func newPublisher(w messageWriter, logger *slog.Logger) *Publisher {
	return &Publisher{
		writer:     w,
		logger:     logger,
		attempts:   defaultAttempts,
		backoff:    defaultBackoff,
		maxBackoff: defaultMaxBackoff,
	}
}

// PublishLevel writes one update keyed by river id, retrying with
// exponential backoff until the attempts run out or ctx is done.
func (p *Publisher) PublishLevel(ctx context.Context, u domain.LevelUpdate) error {
	msg, err := serializeLevelUpdate(u)
	if err != nil {
		return err
	}

	backoff := p.backoff
	for attempt := 1; ; attempt++ {
		err = p.writer.WriteMessages(ctx, msg)
		if err == nil {
			return nil
		}
		if attempt >= p.attempts || ctx.Err() != nil {
			break
		}
		p.logger.Warn("publish level update failed, retrying",
			"error", err,
			"river_id", u.River.ID,
			"attempt", attempt,
			"backoff", backoff,
		)
		if !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, p.maxBackoff)
	}
	return fmt.Errorf("publish level update for %s: %w", u.River.ID, err)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeLevelUpdate marshals a LevelUpdate into a Kafka message.
func serializeLevelUpdate(u domain.LevelUpdate) (kafkago.Message, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize level update: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(u.River.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "alert_level", Value: []byte(u.River.AlertLevel)},
			{Key: "updated_at", Value: []byte(u.River.LastUpdate.UTC().Format(time.RFC3339))},
		},
	}, nil
}
