package producer

import (
	"context"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"

	"github.com/heetch/topicproducer/codec"
	"github.com/heetch/topicproducer/schema"
)

// A MessageConverter transforms a Message into a sarama.ProducerMessage.
// The role of the converter is to decouple the conventions defined by users from
// the producer.
// Each converter defines the way it wants to encode the key and the body, and the
// way the headers are sent.
type MessageConverter interface {
	ToKafka(context.Context, *Message) (*sarama.ProducerMessage, error)
}

// AvroConverter encodes keys and bodies in Avro with the given schemas,
// registered with reg under the subjects of the message topic, and
// framed with the schema registry wire format. The ID of the message is
// sent as the Message-Id header, along with the message headers.
//
// The value schema may be nil, in which case every message with a body
// must carry its own schema, see the ValueSchema option.
func AvroConverter(reg schema.Registry, key, value *schema.Schema) MessageConverter {
	return &avroConverter{registry: reg, key: key, value: value}
}

type avroConverter struct {
	registry schema.Registry
	key      *schema.Schema
	value    *schema.Schema
}

func (c *avroConverter) ToKafka(ctx context.Context, m *Message) (*sarama.ProducerMessage, error) {
	pm := sarama.ProducerMessage{
		Topic:     m.Topic,
		Headers:   m.recordHeaders(),
		Timestamp: m.ProducedAt,
	}

	if m.Key != nil {
		if c.key == nil {
			return nil, errors.Wrap(schema.ErrNoSchema, "cannot encode message key")
		}
		enc, err := c.encode(ctx, schema.KeySubject(m.Topic), c.key, m.Key)
		if err != nil {
			return nil, err
		}
		pm.Key = enc
	}

	if m.Body != nil {
		s := m.ValueSchema
		if s == nil {
			s = c.value
		}
		if s == nil {
			return nil, errors.Wrap(schema.ErrNoSchema, "cannot encode message value")
		}
		enc, err := c.encode(ctx, schema.ValueSubject(m.Topic), s, m.Body)
		if err != nil {
			return nil, err
		}
		pm.Value = enc
	}

	return &pm, nil
}

// encode registers s and encodes v right away so that errors are
// reported before the message reaches sarama.
func (c *avroConverter) encode(ctx context.Context, subject string, s *schema.Schema, v interface{}) (sarama.Encoder, error) {
	id, err := c.registry.Register(ctx, subject, s)
	if err != nil {
		return nil, err
	}
	enc := codec.NewEncoder(codec.Framed(id, codec.Avro(s)), v)
	if _, err := enc.Encode(); err != nil {
		return nil, errors.Wrapf(err, "cannot encode %s", subject)
	}
	return enc, nil
}

// CodecConverter encodes keys and bodies with the given codecs, without
// any schema. A nil keyCodec defaults to codec.String and a nil
// valueCodec to codec.JSON. Headers are sent as with AvroConverter.
func CodecConverter(keyCodec, valueCodec codec.Codec) MessageConverter {
	if keyCodec == nil {
		keyCodec = codec.String()
	}
	if valueCodec == nil {
		valueCodec = codec.JSON()
	}
	return &codecConverter{key: keyCodec, value: valueCodec}
}

type codecConverter struct {
	key   codec.Codec
	value codec.Codec
}

func (c *codecConverter) ToKafka(ctx context.Context, m *Message) (*sarama.ProducerMessage, error) {
	pm := sarama.ProducerMessage{
		Topic:     m.Topic,
		Headers:   m.recordHeaders(),
		Timestamp: m.ProducedAt,
	}

	if m.Key != nil {
		pm.Key = codec.NewEncoder(c.key, m.Key)
		if _, err := pm.Key.Encode(); err != nil {
			return nil, errors.Wrap(err, "cannot encode message key")
		}
	}
	if m.Body != nil {
		pm.Value = codec.NewEncoder(c.value, m.Body)
		if _, err := pm.Value.Encode(); err != nil {
			return nil, errors.Wrap(err, "cannot encode message value")
		}
	}
	return &pm, nil
}
