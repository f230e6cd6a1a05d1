package chart

import (
	"context"
	"time"

	barv1 "github.com/muhammadchandra19/bar-replay/internal/domain/bar/v1"
	"github.com/muhammadchandra19/bar-replay/internal/domain/playback"
	playbackv1 "github.com/muhammadchandra19/bar-replay/internal/domain/playback/v1"
	"github.com/muhammadchandra19/bar-replay/pkg/config"
	"github.com/muhammadchandra19/bar-replay/pkg/errors"
	"github.com/muhammadchandra19/bar-replay/pkg/logger"
	"github.com/muhammadchandra19/bar-replay/pkg/util"
	"github.com/segmentio/kafka-go"
)

//go:generate mockgen -source=publisher.go -destination=mock/publisher_mock.go -package=mock

// Writer is the part of kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var (
	_ playback.Renderer = (*Publisher)(nil)
	_ playback.Notifier = (*Publisher)(nil)
)

// Publisher is a rendering surface that publishes chart events to Kafka,
// keyed by session so a consumer sees each session in order.
type Publisher struct {
	writer  Writer
	timeout time.Duration
	logger  logger.Interface
}

// NewWriter creates a Kafka writer for chart events. Each message is flushed
// on its own so updates are not held back by batching.
func NewWriter(cfg config.ChartKafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    1,
		WriteTimeout: cfg.WriteTimeout,
		MaxAttempts:  cfg.MaxAttempts,
	}
}

// NewPublisher creates a new chart event publisher. A positive timeout caps
// each publish so a broker outage cannot stall playback.
func NewPublisher(writer Writer, timeout time.Duration, log logger.Interface) *Publisher {
	return &Publisher{
		writer:  writer,
		timeout: timeout,
		logger:  log,
	}
}

// SetData publishes a full redraw.
func (p *Publisher) SetData(ctx context.Context, bars []barv1.Bar) error {
	if bars == nil {
		bars = []barv1.Bar{}
	}
	return p.publish(ctx, Event{Type: EventSetData, Bars: bars})
}

// Update publishes a single point.
func (p *Publisher) Update(ctx context.Context, bar barv1.Bar) error {
	return p.publish(ctx, Event{Type: EventUpdate, Bar: &bar})
}

// Notify publishes a notice. Failures are only logged.
func (p *Publisher) Notify(ctx context.Context, notice playbackv1.Notice) {
	_ = p.publish(ctx, Event{Type: EventNotice, Notice: &notice})
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func (p *Publisher) publish(ctx context.Context, event Event) error {
	event.SessionID = util.GetSessionID(ctx)

	value, err := event.ToBytes()
	if err != nil {
		return errors.TracerFromError(err)
	}

	msg := kafka.Message{
		Key:   []byte(event.SessionID),
		Value: value,
	}

	writeCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		writeCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		p.logger.ErrorContext(ctx, err,
			logger.Field{Key: "type", Value: event.Type},
		)
		return errors.NewTracer("failed to publish chart event").Wrap(err)
	}
	return nil
}
