package schema

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	magicByte  = 0
	headerSize = 5
)

// Frame prefixes payload with the wire format header referencing the
// registered schema id.
func Frame(id int, payload []byte) []byte {
	out := make([]byte, headerSize, headerSize+len(payload))
	out[0] = magicByte
	binary.BigEndian.PutUint32(out[1:headerSize], uint32(id))
	return append(out, payload...)
}

// Unframe splits framed data into the schema id and the payload.
func Unframe(data []byte) (int, []byte, error) {
	if len(data) < headerSize {
		return 0, nil, errors.Errorf("framed data too short: %d bytes", len(data))
	}
	if data[0] != magicByte {
		return 0, nil, errors.Errorf("unknown magic byte %d", data[0])
	}
	return int(binary.BigEndian.Uint32(data[1:headerSize])), data[headerSize:], nil
}
