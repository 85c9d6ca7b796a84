package codec

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/heetch/topicproducer/schema"
)

// A Codec can encode and decode values.
type Codec interface {
	Encode(v interface{}) ([]byte, error)
	Decode(data []byte, target interface{}) error
}

type codecFunc struct {
	encodeFn func(v interface{}) ([]byte, error)
	decodeFn func(data []byte, target interface{}) error
}

func (c *codecFunc) Encode(v interface{}) ([]byte, error) {
	return c.encodeFn(v)
}

func (c *codecFunc) Decode(data []byte, target interface{}) error {
	return c.decodeFn(data, target)
}

// String encodes and decodes strings or byte slices into themselves.
// The Encode method takes a byte slice, string, stringer or error and returns a byte slice.
// The Decode method turns data into v without touching it. v must be a pointer to byte slice or a pointer to string.
func String() Codec {
	return &codecFunc{
		func(v interface{}) ([]byte, error) {
			switch t := v.(type) {
			case string:
				return []byte(t), nil
			case []byte:
				return t, nil
			case fmt.Stringer:
				return []byte(t.String()), nil
			case error:
				return []byte(t.Error()), nil
			default:
				return nil, errors.Errorf("%v must be a string, a stringer, an error or a byte slice, got %T instead", v, v)
			}
		},
		func(data []byte, target interface{}) error {
			switch t := target.(type) {
			case *string:
				*t = string(data)
			case *[]byte:
				*t = data
			default:
				return errors.Errorf("target must be a pointer to string or to a byte slice, got %T instead", target)
			}

			return nil
		},
	}
}

// JSON Codec handles JSON encoding.
func JSON() Codec {
	return &codecFunc{json.Marshal, json.Unmarshal}
}

// Int64 Codec handles int64 encoding, as decimal text.
// Millisecond timestamps used as message keys go through it.
func Int64() Codec {
	return &codecFunc{
		func(v interface{}) ([]byte, error) {
			i, ok := v.(int64)
			if !ok {
				return nil, errors.Errorf("%v must be an int64, got %T instead", v, v)
			}

			return []byte(strconv.FormatInt(i, 10)), nil
		},
		func(data []byte, target interface{}) error {
			ptr, ok := target.(*int64)
			if !ok {
				return errors.Errorf("target must be a pointer to int64, got %T instead", target)
			}

			i, err := strconv.ParseInt(string(data), 10, 64)
			if err != nil {
				return err
			}

			*ptr = i
			return nil
		},
	}
}

// Avro Codec encodes native Go values to Avro binary using s.
// Records are map[string]interface{}, see github.com/linkedin/goavro
// for the full mapping. Decode expects a pointer to interface{}.
func Avro(s *schema.Schema) Codec {
	return &codecFunc{
		func(v interface{}) ([]byte, error) {
			data, err := s.Codec().BinaryFromNative(nil, v)
			if err != nil {
				return nil, errors.Wrap(err, "cannot encode avro value")
			}
			return data, nil
		},
		func(data []byte, target interface{}) error {
			ptr, ok := target.(*interface{})
			if !ok {
				return errors.Errorf("target must be a pointer to interface{}, got %T instead", target)
			}
			v, rest, err := s.Codec().NativeFromBinary(data)
			if err != nil {
				return errors.Wrap(err, "cannot decode avro value")
			}
			if len(rest) != 0 {
				return errors.Errorf("%d trailing bytes after avro value", len(rest))
			}
			*ptr = v
			return nil
		},
	}
}

// Framed wraps c so that encoded values are prefixed with the schema
// registry header referencing schema id. Decode rejects data framed
// with another id.
func Framed(id int, c Codec) Codec {
	return &codecFunc{
		func(v interface{}) ([]byte, error) {
			data, err := c.Encode(v)
			if err != nil {
				return nil, err
			}
			return schema.Frame(id, data), nil
		},
		func(data []byte, target interface{}) error {
			got, payload, err := schema.Unframe(data)
			if err != nil {
				return err
			}
			if got != id {
				return errors.Errorf("data framed with schema id %d, expected %d", got, id)
			}
			return c.Decode(payload, target)
		},
	}
}
