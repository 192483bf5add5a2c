package protocols

import (
	"bytes"
	"testing"

	"github.com/bnema/wlturbo/wl"
	"github.com/stretchr/testify/assert"
)

func TestToplevelManagerInterfaceName(t *testing.T) {
	if ToplevelManagerInterface != "zcosmic_toplevel_manager_v1" {
		t.Errorf("unexpected interface name %q", ToplevelManagerInterface)
	}
	if ToplevelManagerMaxVersion != 4 {
		t.Errorf("max version = %d, want 4", ToplevelManagerMaxVersion)
	}
}

func TestDeliverCapabilities(t *testing.T) {
	var got []byte
	manager := &ToplevelManager{}
	manager.SetCapabilitiesHandler(func(payload []byte) {
		got = append([]byte(nil), payload...)
	})

	// wl_array of two 32-bit words: 1 (close), 5 (minimize).
	data := []byte{
		0x08, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00,
		0x05, 0x00, 0x00, 0x00,
	}
	manager.deliverCapabilities(data)

	if !bytes.Equal(got, data[4:]) {
		t.Errorf("handler payload = %v, want %v", got, data[4:])
	}
}

func TestDeliverCapabilitiesNoHandler(t *testing.T) {
	manager := &ToplevelManager{}

	// No handler registered; a well-formed event is simply dropped.
	assert.NotPanics(t, func() {
		manager.deliverCapabilities([]byte{0x00, 0x00, 0x00, 0x00})
	})
}

func TestDeliverCapabilitiesMalformed(t *testing.T) {
	manager := &ToplevelManager{}

	// Array framing that runs past the event body is a protocol
	// violation and must not be silently dropped.
	assert.Panics(t, func() {
		manager.deliverCapabilities([]byte{0x10, 0x00, 0x00, 0x00, 0x01})
	})
}

func TestToplevelManagerDispatchUnknownOpcode(t *testing.T) {
	manager := &ToplevelManager{}

	assert.Panics(t, func() {
		manager.Dispatch(&wl.Event{Opcode: 3})
	})
}
