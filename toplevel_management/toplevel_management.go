// Package toplevel_management provides high-level Go bindings for the
// cosmic toplevel management Wayland protocol extension
// (zcosmic_toplevel_manager_v1).
//
// The manager global reports which window management operations the
// compositor supports as an asynchronous capability list; the list may
// be re-delivered whenever it changes, and every delivery is forwarded
// verbatim to the application's handler.
package toplevel_management

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/wlturbo/wl"

	"github.com/MalpenZibo/libwlcapture-go/internal/logger"
	"github.com/MalpenZibo/libwlcapture-go/internal/protocols"
)

// ErrUnsupported reports that the compositor does not advertise
// zcosmic_toplevel_manager_v1. The condition is permanent for the
// lifetime of the connection.
var ErrUnsupported = errors.New("zcosmic_toplevel_manager_v1 not advertised by compositor")

// Binder is the registry surface the state binds its global through.
// *client.Client implements it.
type Binder interface {
	Global(iface string) (name, version uint32, ok bool)
	Bind(name uint32, iface string, version uint32, proxy wl.Proxy) error
}

// Capability is one word of the compositor's capability list. Values
// the client does not recognize are preserved as-is rather than
// rejected, so a newer compositor's additions survive a round trip
// through older client code.
type Capability uint32

// Known capability values from the
// zcosmic_toplevel_manager_v1 capabilities enumeration.
const (
	CapabilityClose           Capability = 1
	CapabilityActivate        Capability = 2
	CapabilityMaximize        Capability = 3
	CapabilityMinimize        Capability = 4
	CapabilityFullscreen      Capability = 5
	CapabilityMoveToWorkspace Capability = 6
	CapabilitySticky          Capability = 7
)

// Known reports whether the value is one this client recognizes.
func (c Capability) Known() bool {
	return c >= CapabilityClose && c <= CapabilitySticky
}

// String returns a string representation of the capability
func (c Capability) String() string {
	switch c {
	case CapabilityClose:
		return "close"
	case CapabilityActivate:
		return "activate"
	case CapabilityMaximize:
		return "maximize"
	case CapabilityMinimize:
		return "minimize"
	case CapabilityFullscreen:
		return "fullscreen"
	case CapabilityMoveToWorkspace:
		return "move-to-workspace"
	case CapabilitySticky:
		return "sticky"
	default:
		return fmt.Sprintf("unrecognized(%d)", uint32(c))
	}
}

// ToplevelManagerHandler is the extension point for capability
// changes. Implementations hold the business meaning of capabilities;
// the state machine only parses and forwards.
type ToplevelManagerHandler interface {
	// Capabilities receives every capability list the compositor
	// delivers, in arrival order.
	Capabilities(capabilities []Capability)
}

// ToplevelManagerState owns the bound zcosmic_toplevel_manager_v1
// global for the lifetime of the connection.
type ToplevelManagerState struct {
	// Manager is the bound protocol proxy. Requests on it are valid
	// for the whole connection lifetime.
	Manager *protocols.ToplevelManager

	version uint32

	mu       sync.Mutex
	received bool
	latest   []Capability
}

// bindVersion picks the version to bind: the highest the compositor
// and this client both speak.
func bindVersion(advertised uint32) uint32 {
	if advertised > protocols.ToplevelManagerMaxVersion {
		return protocols.ToplevelManagerMaxVersion
	}
	return advertised
}

// NewToplevelManagerState binds the toplevel manager global at the
// highest mutually supported version (1 through 4) and routes its
// capability events to handler. Returns ErrUnsupported when the
// compositor does not advertise the interface; callers that can
// degrade should branch on it rather than fail.
func NewToplevelManagerState(ctx *wl.Context, b Binder, handler ToplevelManagerHandler) (*ToplevelManagerState, error) {
	name, advertised, ok := b.Global(protocols.ToplevelManagerInterface)
	if !ok {
		return nil, ErrUnsupported
	}

	version := bindVersion(advertised)

	manager := protocols.NewToplevelManager(ctx)
	if err := b.Bind(name, protocols.ToplevelManagerInterface, version, manager); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", protocols.ToplevelManagerInterface, err)
	}

	state := &ToplevelManagerState{
		Manager: manager,
		version: version,
	}
	manager.SetCapabilitiesHandler(func(payload []byte) {
		capabilities := parseCapabilities(payload)
		state.mu.Lock()
		state.received = true
		state.latest = capabilities
		state.mu.Unlock()
		if handler != nil {
			handler.Capabilities(capabilities)
		}
	})

	logger.Debug("toplevel manager bound", "version", version, "advertised", advertised)

	return state, nil
}

// MustToplevelManagerState is NewToplevelManagerState for call sites
// that have already verified the compositor advertises the protocol;
// absence panics.
func MustToplevelManagerState(ctx *wl.Context, b Binder, handler ToplevelManagerHandler) *ToplevelManagerState {
	state, err := NewToplevelManagerState(ctx, b, handler)
	if err != nil {
		panic(err)
	}
	return state
}

// Version returns the bound protocol version.
func (s *ToplevelManagerState) Version() uint32 {
	return s.version
}

// Capabilities returns the most recently delivered capability list and
// whether any delivery has happened yet.
func (s *ToplevelManagerState) Capabilities() ([]Capability, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Capability(nil), s.latest...), s.received
}

// parseCapabilities splits the raw event payload into 32-bit host-order
// capability words, one per 4-byte chunk, preserving chunk order. The
// protocol defines the payload as packed 32-bit words; a length that is
// not a multiple of 4 is a compositor contract violation and panics.
func parseCapabilities(payload []byte) []Capability {
	if len(payload)%4 != 0 {
		panic(fmt.Sprintf("capabilities payload is %d bytes, not a multiple of 4", len(payload)))
	}
	capabilities := make([]Capability, 0, len(payload)/4)
	for off := 0; off < len(payload); off += 4 {
		capabilities = append(capabilities, Capability(binary.LittleEndian.Uint32(payload[off:])))
	}
	return capabilities
}
