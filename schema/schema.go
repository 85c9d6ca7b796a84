package schema

import (
	"github.com/linkedin/goavro/v2"
	"github.com/pkg/errors"
)

// ErrNoSchema is returned when a payload has to be encoded but no schema
// was given for it.
var ErrNoSchema = errors.New("no schema available")

// Schema is a parsed Avro schema.
type Schema struct {
	codec *goavro.Codec
}

// Parse parses an Avro schema definition, as JSON.
func Parse(definition string) (*Schema, error) {
	c, err := goavro.NewCodec(definition)
	if err != nil {
		return nil, errors.Wrap(err, "invalid avro schema")
	}
	return &Schema{codec: c}, nil
}

// MustParse is like Parse but panics on error. It is meant for schemas
// declared as package variables.
func MustParse(definition string) *Schema {
	s, err := Parse(definition)
	if err != nil {
		panic(err)
	}
	return s
}

// String returns the canonical form of the schema, which is what gets
// registered.
func (s *Schema) String() string {
	return s.codec.CanonicalSchema()
}

// Codec returns the Avro codec for the schema.
func (s *Schema) Codec() *goavro.Codec {
	return s.codec
}

// KeySubject returns the registry subject of the key schema of topic.
func KeySubject(topic string) string {
	return topic + "-key"
}

// ValueSubject returns the registry subject of the value schema of topic.
func ValueSubject(topic string) string {
	return topic + "-value"
}
