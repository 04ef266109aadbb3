// Package kafka archives delivered chat messages to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/huddlehq/huddle-server/internal/core"
)

// Record is the archived form of a chat message.
type Record struct {
	RoomID     string         `json:"roomId"`
	From       string         `json:"from,omitempty"`
	Content    string         `json:"content"`
	Fields     map[string]any `json:"fields,omitempty"`
	ArchivedAt time.Time      `json:"archivedAt"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Sink publishes messages keyed by room, so one room's history stays in one
// partition and in order.
type Sink struct {
	writer messageWriter
	now    func() time.Time
}

// New creates a sink writing to topic on brokers.
func New(brokers []string, topic string) *Sink {
	return &Sink{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
		now: time.Now,
	}
}

// Archive publishes msg.
func (s *Sink) Archive(ctx context.Context, msg core.Message) error {
	km, err := s.encode(msg)
	if err != nil {
		return err
	}
	if err := s.writer.WriteMessages(ctx, km); err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

func (s *Sink) encode(msg core.Message) (kafka.Message, error) {
	key := msg.Room.Key()
	value, err := json.Marshal(Record{
		RoomID:     key,
		From:       string(msg.From),
		Content:    msg.Content,
		Fields:     msg.Fields,
		ArchivedAt: s.now().UTC(),
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode record: %w", err)
	}
	return kafka.Message{Key: []byte(key), Value: value}, nil
}

// Close flushes pending writes.
func (s *Sink) Close() error {
	return s.writer.Close()
}

var _ core.MessageSink = (*Sink)(nil)
