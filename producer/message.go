package producer

import (
	"sort"
	"time"

	"github.com/Shopify/sarama"
	"github.com/rogpeppe/fastuuid"

	"github.com/heetch/topicproducer/schema"
)

var uuids = fastuuid.MustNewGenerator()

// MessageIDHeader is the header carrying the ID of every message.
const MessageIDHeader = "Message-Id"

// Message represents a message to be sent via Kafka.
// Before sending it, the producer will transform this structure into a
// sarama.ProducerMessage using the configured MessageConverter.
type Message struct {
	// The Kafka topic this Message applies to. Producers fill it with
	// their own topic when empty.
	Topic string

	// If specified, messages with the same key will be sent to the same Kafka partition.
	// It is the native value that the converter encodes, e.g. with the key schema.
	Key interface{}

	// Body of the Kafka message. A nil Body is sent as a null value.
	Body interface{}

	// The time at which this Message was produced.
	ProducedAt time.Time

	// Partition where this publication was stored.
	Partition int32

	// Offset where this publication was stored.
	Offset int64

	// Headers of the message.
	Headers map[string]string

	// Unique ID of the message. Defaults to an uuid.
	ID string

	// ValueSchema overrides the value schema of the producer for this
	// message only.
	ValueSchema *schema.Schema
}

// prepare makes sure the message contains a unique ID, a production time
// and that the Headers map memory is allocated.
func (m *Message) prepare() {
	if m.ID == "" {
		m.ID = uuids.Hex128()
	}

	if m.Headers == nil {
		m.Headers = make(map[string]string)
	}

	if m.ProducedAt.IsZero() {
		m.ProducedAt = time.Now()
	}
}

// recordHeaders returns the message headers plus the message ID header,
// sorted by key.
func (m *Message) recordHeaders() []sarama.RecordHeader {
	keys := make([]string, 0, len(m.Headers)+1)
	for k := range m.Headers {
		keys = append(keys, k)
	}
	if _, ok := m.Headers[MessageIDHeader]; !ok {
		keys = append(keys, MessageIDHeader)
	}
	sort.Strings(keys)

	headers := make([]sarama.RecordHeader, len(keys))
	for i, k := range keys {
		v, ok := m.Headers[k]
		if !ok {
			v = m.ID
		}
		headers[i] = sarama.RecordHeader{Key: []byte(k), Value: []byte(v)}
	}
	return headers
}

// NewMessage creates a configured message with a generated unique ID.
func NewMessage(topic string, body interface{}, opts ...Option) *Message {
	m := &Message{
		Topic:      topic,
		Body:       body,
		Headers:    make(map[string]string),
		ID:         uuids.Hex128(),
		ProducedAt: time.Now(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Option is a function type that receives a pointer to a Message and
// modifies it in place. Options are intended to customize a message
// before sending it. You can do this either by passing them as
// parameters to the NewMessage function, or by calling them directly against
// a Message.
type Option func(*Message)

// Header is an Option that adds a custom header to the message. You
// may pass as many Header options as you wish. If multiple
// Header's are defined for the same key, the value of the last one
// passed will be the value that appears on the Message.
func Header(k, v string) Option {
	return func(m *Message) {
		if m.Headers == nil {
			m.Headers = make(map[string]string)
		}
		m.Headers[k] = v
	}
}

// Key is an Option that specifies a key for the message. You should
// only pass this once, but if you pass it multiple
// times, the value set by the final one will be what is set
// on the Message.
func Key(key interface{}) Option {
	return func(m *Message) {
		m.Key = key
	}
}

// TimestampKey is an Option that uses the current time, in milliseconds
// since the Unix epoch, as the key of the message. It goes with a "long"
// key schema.
func TimestampKey() Option {
	return func(m *Message) {
		m.Key = TimeMillis()
	}
}

// ValueSchema is an Option that overrides the value schema of the
// producer for this message.
func ValueSchema(s *schema.Schema) Option {
	return func(m *Message) {
		m.ValueSchema = s
	}
}

// TimeMillis returns the current wall clock time as milliseconds since
// the Unix epoch.
func TimeMillis() int64 {
	return time.Now().UnixMilli()
}
