package protocols

import (
	"encoding/binary"
	"errors"
)

var errTruncatedArg = errors.New("truncated event argument")

// argReader walks a raw event body. Arguments are 32-bit words in host
// byte order on the wire; arrays carry a byte length prefix and are
// padded to a word boundary.
type argReader struct {
	data []byte
	off  int
}

func newArgReader(data []byte) *argReader {
	return &argReader{data: data}
}

func (r *argReader) uint32() (uint32, error) {
	if r.off+4 > len(r.data) {
		return 0, errTruncatedArg
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *argReader) array() ([]byte, error) {
	length, err := r.uint32()
	if err != nil {
		return nil, err
	}
	if r.off+int(length) > len(r.data) {
		return nil, errTruncatedArg
	}
	payload := r.data[r.off : r.off+int(length)]
	r.off += int(length)
	// Skip padding to the next word boundary
	r.off += (4 - int(length)%4) % 4
	return payload, nil
}
