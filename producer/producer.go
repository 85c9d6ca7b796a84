package producer

import (
	"context"
	"sync"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/heetch/topicproducer/common"
	"github.com/heetch/topicproducer/schema"
	"github.com/heetch/topicproducer/topic"
)

// ErrClosed is returned when sending with a closed Producer.
var ErrClosed = errors.New("producer is closed")

// Topic describes the topic a Producer is bound to.
type Topic struct {
	// Name of the topic. Required.
	Name string

	// KeySchema is the schema of message keys. Required.
	KeySchema *schema.Schema

	// ValueSchema is the schema of message bodies. Optional.
	ValueSchema *schema.Schema

	// NumPartitions and NumReplicas are only used when the topic has
	// to be created. Both default to 1.
	NumPartitions int32
	NumReplicas   int16
}

func (t Topic) spec() topic.Spec {
	return topic.Spec{
		Name:              t.Name,
		NumPartitions:     t.NumPartitions,
		ReplicationFactor: t.NumReplicas,
	}
}

func (t Topic) validate() error {
	if err := t.spec().Validate(); err != nil {
		return errors.Wrap(err, "producer")
	}
	if t.KeySchema == nil {
		return errors.Errorf("producer: key schema is required for topic %q", t.Name)
	}
	return nil
}

// Producer sends messages to a single Kafka topic.
// It embeds the sarama.SyncProducer type and shadows the SendMessage method to
// use our Message type.
type Producer struct {
	sarama.SyncProducer

	topic     Topic
	converter MessageConverter
	logger    *zap.Logger

	// mu guards SyncProducer against Close.
	mu sync.RWMutex
}

// New creates a Producer bound to the given topic.
//
// Unless the topic has already been registered in config.Registry, New
// first asks the cluster whether the topic exists and creates it if it
// doesn't. Failing to ask the cluster is an error; failing to create the
// topic is handled according to config.OnCreateFailure.
//
// The Producer is synchronous, this means that it will wait for all the replicas to
// acknowledge each message.
func New(ctx context.Context, config Config, t Topic) (*Producer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := t.validate(); err != nil {
		return nil, err
	}

	admins := topic.NewAdminFactory(&config.Config, config.Brokers...)
	if _, err := config.ensurer(admins).Ensure(ctx, t.spec()); err != nil {
		return nil, errors.Wrap(err, "producer")
	}

	p, err := sarama.NewSyncProducer(config.Brokers, &config.Config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create a producer")
	}

	return newProducer(config, t, p, schema.NewRegistry(config.SchemaRegistryURL)), nil
}

// NewFrom creates a Producer using the given administrative connection
// factory, SyncProducer and schema registry instead of connecting to the
// endpoints of config. The topic is ensured exactly as New does.
// Useful when wanting to create multiple producers sharing the same underlying connection.
func NewFrom(ctx context.Context, config Config, t Topic, admins topic.AdminFactory, producer sarama.SyncProducer, reg schema.Registry) (*Producer, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	if _, err := config.ensurer(admins).Ensure(ctx, t.spec()); err != nil {
		return nil, errors.Wrap(err, "producer")
	}
	return newProducer(config, t, producer, reg), nil
}

func newProducer(config Config, t Topic, p sarama.SyncProducer, reg schema.Registry) *Producer {
	converter := config.Converter
	if converter == nil {
		converter = AvroConverter(reg, t.KeySchema, t.ValueSchema)
	}
	return &Producer{
		SyncProducer: p,
		topic:        t,
		converter:    converter,
		logger:       common.OrNop(config.Logger).With(zap.String("topic", t.Name)),
	}
}

// Topic returns the name of the topic the producer is bound to.
func (p *Producer) Topic() string {
	return p.topic.Name
}

// Publish creates and sends a message to Kafka synchronously.
// A nil key sends a message without key.
// It returns the Message sent to the brokers.
func (p *Producer) Publish(ctx context.Context, key, value interface{}, opts ...Option) (*Message, error) {
	msg := NewMessage(p.topic.Name, value, append([]Option{Key(key)}, opts...)...)
	err := p.SendMessage(ctx, msg)
	return msg, err
}

// SendMessage sends the given message to Kafka synchronously.
// On success, the partition and offset of the message are filled.
func (p *Producer) SendMessage(ctx context.Context, msg *Message) error {
	if msg.Topic == "" {
		msg.Topic = p.topic.Name
	}
	if msg.Topic != p.topic.Name {
		return errors.Errorf("producer: cannot send to topic %q from a producer bound to %q", msg.Topic, p.topic.Name)
	}
	msg.prepare()

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.SyncProducer == nil {
		return ErrClosed
	}

	pmsg, err := p.converter.ToKafka(ctx, msg)
	if err != nil {
		messagesTotal.WithLabelValues(msg.Topic, "error").Inc()
		return errors.Wrap(err, "producer: failed to convert message")
	}

	msg.Partition, msg.Offset, err = p.SyncProducer.SendMessage(pmsg)
	if err != nil {
		messagesTotal.WithLabelValues(msg.Topic, "error").Inc()
		return errors.Wrap(err, "failed to send message")
	}
	messagesTotal.WithLabelValues(msg.Topic, "ok").Inc()
	return nil
}

// Close flushes the messages in flight and releases the underlying
// producer. Closing a producer that has already been closed does
// nothing.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.SyncProducer == nil {
		return nil
	}
	p.logger.Debug("flushing producer")
	err := p.SyncProducer.Close()
	p.SyncProducer = nil
	return errors.Wrap(err, "failed to close producer")
}

// TimeMillis returns the current wall clock time as milliseconds since
// the Unix epoch. It is a convenient default for message keys.
func (p *Producer) TimeMillis() int64 {
	return TimeMillis()
}
