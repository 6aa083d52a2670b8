package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fjod/go_petshop/internal/domain"
	"github.com/fjod/go_petshop/internal/logger"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// CartClearer empties a buyer's cart once their order is complete.
type CartClearer interface {
	ClearCart(ctx context.Context, owner string) (int64, error)
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

const (
	minRetryDelay = time.Second
	maxRetryDelay = 30 * time.Second
)

type Poller struct {
	carts  CartClearer
	reader messageReader
	log    *logger.Logger

	retryDelay    time.Duration
	maxRetryDelay time.Duration
}

func NewPoller(carts CartClearer, log *logger.Logger, topic, groupID string, brokers ...string) *Poller {
	if topic == "" {
		topic = DefaultTopic
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return newPoller(carts, reader, log)
}

func newPoller(carts CartClearer, reader messageReader, log *logger.Logger) *Poller {
	if log == nil {
		log = logger.Nop()
	}
	return &Poller{
		carts:         carts,
		reader:        reader,
		log:           log,
		retryDelay:    minRetryDelay,
		maxRetryDelay: maxRetryDelay,
	}
}

// Run consumes order events until ctx is done or the reader is closed.
// Read errors are retried with a doubling delay.
func (p *Poller) Run(ctx context.Context) {
	delay := p.retryDelay
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := p.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			if errors.Is(err, io.EOF) {
				p.log.Info(ctx, "order events reader closed")
				return
			}
			p.log.Event(ctx, zerolog.ErrorLevel).Err(err).
				Dur("retry_in", delay).
				Msg("error reading message")
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay = min(delay*2, p.maxRetryDelay)
			continue
		}
		delay = p.retryDelay

		if err := p.handle(ctx, m); err != nil {
			p.log.Warn(ctx, "order completed message skipped", err)
		}
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.log.Error(context.Background(), "error closing reader", err)
	}
}

func (p *Poller) handle(ctx context.Context, m kafka.Message) error {
	var event domain.OrderCompleted
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return fmt.Errorf("parse message at offset %d: %w", m.Offset, err)
	}
	if event.Email == "" {
		return fmt.Errorf("message at offset %d: missing email", m.Offset)
	}

	ctx = p.log.WithOwner(ctx, event.Email)
	deleted, err := p.carts.ClearCart(ctx, event.Email)
	if err != nil {
		return fmt.Errorf("clear cart for order %s: %w", event.OrderID, err)
	}
	p.log.Event(ctx, zerolog.InfoLevel).
		Str("order_id", event.OrderID).
		Int64("deleted", deleted).
		Msg("cart cleared after order")
	return nil
}
