package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fjod/go_petshop/internal/domain"
	"github.com/segmentio/kafka-go"
)

const (
	DefaultTopic  = "order-completed"
	eventTypeName = "order.completed"
)

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

// PublishOrderCompleted writes the event keyed by email so all events of one
// buyer land on the same partition.
func (p *KafkaPublisher) PublishOrderCompleted(ctx context.Context, event domain.OrderCompleted) error {
	msg, err := encodeEvent(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write order completed: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encodeEvent(event domain.OrderCompleted) (kafka.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal order completed: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.Email),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventTypeName)},
		},
	}, nil
}
