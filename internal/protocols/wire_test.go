package protocols

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestArgReaderUint32(t *testing.T) {
	r := newArgReader([]byte{0x01, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff})

	v, err := r.uint32()
	if err != nil {
		t.Fatalf("uint32 failed: %v", err)
	}
	if v != 1 {
		t.Errorf("first word = %d, want 1", v)
	}

	v, err = r.uint32()
	if err != nil {
		t.Fatalf("uint32 failed: %v", err)
	}
	if v != 0xffffffff {
		t.Errorf("second word = %#x, want 0xffffffff", v)
	}

	if _, err := r.uint32(); !errors.Is(err, errTruncatedArg) {
		t.Errorf("read past end = %v, want errTruncatedArg", err)
	}
}

func TestArgReaderArray(t *testing.T) {
	// 5-byte array padded to the 8-byte word boundary, followed by one
	// more word.
	data := []byte{
		0x05, 0x00, 0x00, 0x00, // length
		'h', 'e', 'l', 'l', 'o', 0x00, 0x00, 0x00, // payload + padding
		0x2a, 0x00, 0x00, 0x00, // trailing word
	}
	r := newArgReader(data)

	payload, err := r.array()
	if err != nil {
		t.Fatalf("array failed: %v", err)
	}
	if !bytes.Equal(payload, []byte("hello")) {
		t.Errorf("payload = %q, want %q", payload, "hello")
	}

	// The padding must be consumed so the next argument lines up.
	v, err := r.uint32()
	if err != nil {
		t.Fatalf("uint32 after array failed: %v", err)
	}
	if v != 42 {
		t.Errorf("trailing word = %d, want 42", v)
	}
}

func TestArgReaderArrayWordAligned(t *testing.T) {
	// A length that is already word aligned carries no padding.
	data := []byte{
		0x04, 0x00, 0x00, 0x00,
		0x01, 0x02, 0x03, 0x04,
		0x07, 0x00, 0x00, 0x00,
	}
	r := newArgReader(data)

	if _, err := r.array(); err != nil {
		t.Fatalf("array failed: %v", err)
	}
	v, err := r.uint32()
	if err != nil {
		t.Fatalf("uint32 after array failed: %v", err)
	}
	if v != 7 {
		t.Errorf("trailing word = %d, want 7", v)
	}
}

func TestArgReaderArrayTruncated(t *testing.T) {
	// Length prefix claims more bytes than the body holds.
	data := []byte{0x10, 0x00, 0x00, 0x00, 0x01, 0x02}
	r := newArgReader(data)

	if _, err := r.array(); !errors.Is(err, errTruncatedArg) {
		t.Errorf("truncated array = %v, want errTruncatedArg", err)
	}

	// A missing length prefix is also truncation.
	r = newArgReader([]byte{0x01})
	if _, err := r.array(); !errors.Is(err, errTruncatedArg) {
		t.Errorf("missing length prefix = %v, want errTruncatedArg", err)
	}
}

func TestArgReaderEmptyArray(t *testing.T) {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, 0)
	r := newArgReader(data)

	payload, err := r.array()
	if err != nil {
		t.Fatalf("array failed: %v", err)
	}
	if len(payload) != 0 {
		t.Errorf("payload length = %d, want 0", len(payload))
	}
}
