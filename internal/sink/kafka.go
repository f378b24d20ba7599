package sink

import (
	"context"
	"encoding/json"

	"codeberg.org/mutker/ventsim/internal/errors"
	"codeberg.org/mutker/ventsim/internal/eventlog"
	"codeberg.org/mutker/ventsim/internal/logger"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer messageWriter
	log    logger.Logger
}

type noopPublisher struct{}

// NewKafkaPublisher creates a writer keyed by fan ID so the entries of one
// fan stay ordered within a partition
func NewKafkaPublisher(cfg KafkaConfig, log logger.Logger) (EventPublisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		log.Debug().Msg("Kafka publishing disabled")
		return &noopPublisher{}, nil
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           cfg.Timeout,
		AllowAutoTopicCreation: true,
	}

	log.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.Topic).Msg("Kafka publisher initialized")

	return newKafkaPublisher(w, log), nil
}

func newKafkaPublisher(w messageWriter, log logger.Logger) *kafkaPublisher {
	return &kafkaPublisher{writer: w, log: log}
}

func (p *kafkaPublisher) Publish(ctx context.Context, e eventlog.Entry) error {
	msg, err := eventMessage(e)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.New().Wrap(ErrPublishFailed, err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return errors.New().Wrap(ErrPublishFailed, err)
	}
	return nil
}

func eventMessage(e eventlog.Entry) (kafka.Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, errors.New().Wrap(ErrEncodeFailed, err)
	}

	return kafka.Message{
		Key:   []byte(e.FanID),
		Value: value,
		Time:  e.Time,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(e.Kind)},
		},
	}, nil
}

func (*noopPublisher) Publish(_ context.Context, _ eventlog.Entry) error { return nil }

func (*noopPublisher) Close() error { return nil }
