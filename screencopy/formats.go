package screencopy

import (
	"encoding/binary"
	"fmt"
	"time"
)

// parseDmabufDevice decodes the dev_t byte array from a dmabuf_device
// event.
func parseDmabufDevice(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("dmabuf device payload is %d bytes, want 8", len(data))
	}
	return binary.LittleEndian.Uint64(data), nil
}

// parseDmabufModifiers decodes the packed 64-bit modifier words from a
// dmabuf_format event.
func parseDmabufModifiers(data []byte) ([]uint64, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("dmabuf modifiers payload is %d bytes, not a multiple of 8", len(data))
	}
	modifiers := make([]uint64, 0, len(data)/8)
	for off := 0; off < len(data); off += 8 {
		modifiers = append(modifiers, binary.LittleEndian.Uint64(data[off:]))
	}
	return modifiers, nil
}

// presentationTime combines the split 64-bit seconds and the
// nanoseconds of a presentation_time event.
func presentationTime(tvSecHi, tvSecLo, tvNsec uint32) time.Duration {
	secs := uint64(tvSecHi)<<32 | uint64(tvSecLo)
	return time.Duration(secs)*time.Second + time.Duration(tvNsec)*time.Nanosecond
}
