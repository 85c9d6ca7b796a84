package codec

// Encoder produces the bytes of a Kafka message key or value.
// It has the method set of sarama.Encoder.
type Encoder interface {
	Encode() ([]byte, error)
	Length() int
}

// NewEncoder returns an Encoder for v. The value is encoded with c on
// the first call to Length or Encode and the result, error included,
// is kept for later calls.
func NewEncoder(c Codec, v interface{}) Encoder {
	return &lazyEncoder{codec: c, v: v}
}

type lazyEncoder struct {
	codec Codec
	v     interface{}

	done bool
	data []byte
	err  error
}

func (e *lazyEncoder) encode() {
	if !e.done {
		e.data, e.err = e.codec.Encode(e.v)
		e.done = true
	}
}

// Length is called by sarama before Encode, when sizing the request.
// It cannot report an error, so an encoding failure shows up as a zero
// length and is returned by Encode.
func (e *lazyEncoder) Length() int {
	e.encode()
	return len(e.data)
}

func (e *lazyEncoder) Encode() ([]byte, error) {
	e.encode()
	if e.err != nil {
		return nil, e.err
	}
	return e.data, nil
}
