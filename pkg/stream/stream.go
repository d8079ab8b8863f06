// Package stream wraps kafka publishing and consuming for the exchange's
// trade and order-event feeds.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	kafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Time    time.Time
	Headers map[string]string
}

type ProducerConfig struct {
	Brokers      []string `yaml:"brokers"`
	BatchSize    int      `yaml:"batch_size"`
	BatchTimeout time.Duration
}

type Producer struct {
	w *kafka.Writer
}

func NewProducer(cfg ProducerConfig) *Producer {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireNone,
		Async:                  true,
	}
	return &Producer{w: w}
}

func (p *Producer) Publish(ctx context.Context, topic string, key, value []byte) error {
	if p == nil || p.w == nil {
		return errors.New("producer not initialized")
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
		Time:  time.Now(),
	})
}

func (p *Producer) PublishJSON(ctx context.Context, topic, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.Publish(ctx, topic, []byte(key), b)
}

func (p *Producer) Close() error {
	if p == nil || p.w == nil {
		return nil
	}
	return p.w.Close()
}

type ConsumerConfig struct {
	Brokers []string `yaml:"brokers"`
	GroupID string   `yaml:"group_id"`
	Topic   string   `yaml:"topic"`
}

type Consumer struct {
	r *kafka.Reader
}

func NewConsumer(cfg ConsumerConfig) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		StartOffset: kafka.FirstOffset,
		MaxWait:     500 * time.Millisecond,
		MinBytes:    1,
		MaxBytes:    10 << 20,
	})
	return &Consumer{r: r}
}

// Run fetches messages one at a time, committing only after the handler
// succeeds.
func (c *Consumer) Run(ctx context.Context, handler func(context.Context, Message) error) error {
	if c == nil || c.r == nil {
		return errors.New("consumer not initialized")
	}
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			zap.S().Warnf("fetch error: %v", err)
			time.Sleep(200 * time.Millisecond)
			continue
		}

		msg := Message{
			Topic: m.Topic,
			Key:   m.Key,
			Value: m.Value,
			Time:  m.Time,
		}
		if err := handler(ctx, msg); err != nil {
			zap.S().Warnf("handle message: %v", err)
			continue
		}
		if err := c.r.CommitMessages(ctx, m); err != nil {
			zap.S().Warnf("commit: %v", err)
		}
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.r == nil {
		return nil
	}
	return c.r.Close()
}
