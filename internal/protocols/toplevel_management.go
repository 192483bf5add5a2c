package protocols

import (
	"fmt"

	"github.com/bnema/wlturbo/wl"
)

// ToplevelManagerInterface is the cosmic toplevel management global.
const ToplevelManagerInterface = "zcosmic_toplevel_manager_v1"

// ToplevelManagerMaxVersion is the highest protocol version this
// binding speaks.
const ToplevelManagerMaxVersion = 4

// ToplevelManager represents a zcosmic_toplevel_manager_v1 object. The
// only event defined for this interface is capabilities; the raw
// payload is forwarded to the registered handler.
type ToplevelManager struct {
	wl.BaseProxy
	capabilitiesHandler func(payload []byte)
}

// NewToplevelManager creates a new toplevel manager proxy
func NewToplevelManager(ctx *wl.Context) *ToplevelManager {
	manager := &ToplevelManager{}
	manager.SetContext(ctx)
	ctx.Register(manager)
	return manager
}

// SetCapabilitiesHandler sets the handler for capabilities events. The
// payload is the raw wl_array of 32-bit capability words.
func (m *ToplevelManager) SetCapabilitiesHandler(handler func(payload []byte)) {
	m.capabilitiesHandler = handler
}

// CloseToplevel asks the compositor to close the given toplevel.
func (m *ToplevelManager) CloseToplevel(toplevel wl.Object) error {
	// Opcode 0: close(toplevel)
	const opcode = 0
	return m.Context().SendRequest(m, opcode, toplevel)
}

// Activate asks the compositor to activate the toplevel on the seat.
func (m *ToplevelManager) Activate(toplevel, seat wl.Object) error {
	// Opcode 1: activate(toplevel, seat)
	const opcode = 1
	return m.Context().SendRequest(m, opcode, toplevel, seat)
}

// SetMaximized requests the maximized state for the toplevel.
func (m *ToplevelManager) SetMaximized(toplevel wl.Object) error {
	// Opcode 2: set_maximized(toplevel)
	const opcode = 2
	return m.Context().SendRequest(m, opcode, toplevel)
}

// UnsetMaximized removes the maximized state from the toplevel.
func (m *ToplevelManager) UnsetMaximized(toplevel wl.Object) error {
	// Opcode 3: unset_maximized(toplevel)
	const opcode = 3
	return m.Context().SendRequest(m, opcode, toplevel)
}

// SetMinimized requests the minimized state for the toplevel.
func (m *ToplevelManager) SetMinimized(toplevel wl.Object) error {
	// Opcode 4: set_minimized(toplevel)
	const opcode = 4
	return m.Context().SendRequest(m, opcode, toplevel)
}

// UnsetMinimized removes the minimized state from the toplevel.
func (m *ToplevelManager) UnsetMinimized(toplevel wl.Object) error {
	// Opcode 5: unset_minimized(toplevel)
	const opcode = 5
	return m.Context().SendRequest(m, opcode, toplevel)
}

// SetFullscreen requests fullscreen on the given output. A nil output
// lets the compositor choose.
func (m *ToplevelManager) SetFullscreen(toplevel wl.Object, output wl.Object) error {
	// Opcode 6: set_fullscreen(toplevel, output)
	const opcode = 6
	if output == nil {
		return m.Context().SendRequest(m, opcode, toplevel, nil)
	}
	return m.Context().SendRequest(m, opcode, toplevel, output)
}

// UnsetFullscreen removes the fullscreen state from the toplevel.
func (m *ToplevelManager) UnsetFullscreen(toplevel wl.Object) error {
	// Opcode 7: unset_fullscreen(toplevel)
	const opcode = 7
	return m.Context().SendRequest(m, opcode, toplevel)
}

// SetRectangle hints where the toplevel is represented on the given
// surface, for minimize animations.
func (m *ToplevelManager) SetRectangle(toplevel, surface wl.Object, x, y, width, height int32) error {
	// Opcode 8: set_rectangle(toplevel, surface, x, y, width, height)
	const opcode = 8
	return m.Context().SendRequest(m, opcode, toplevel, surface, x, y, width, height)
}

// Destroy destroys the manager
func (m *ToplevelManager) Destroy() error {
	// Opcode 9: destroy
	const opcode = 9
	err := m.Context().SendRequest(m, opcode)
	m.Context().Unregister(m)
	return err
}

// MoveToWorkspace moves the toplevel to a workspace on an output.
// Requires version 2.
func (m *ToplevelManager) MoveToWorkspace(toplevel, workspace, output wl.Object) error {
	// Opcode 10: move_to_workspace(toplevel, workspace, output)
	const opcode = 10
	return m.Context().SendRequest(m, opcode, toplevel, workspace, output)
}

// SetSticky requests the sticky state. Requires version 3.
func (m *ToplevelManager) SetSticky(toplevel wl.Object) error {
	// Opcode 11: set_sticky(toplevel)
	const opcode = 11
	return m.Context().SendRequest(m, opcode, toplevel)
}

// UnsetSticky removes the sticky state. Requires version 3.
func (m *ToplevelManager) UnsetSticky(toplevel wl.Object) error {
	// Opcode 12: unset_sticky(toplevel)
	const opcode = 12
	return m.Context().SendRequest(m, opcode, toplevel)
}

// Dispatch handles incoming events. Capabilities is the only event the
// protocol defines for this interface; anything else means the
// connection is out of sync with the compositor.
func (m *ToplevelManager) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // capabilities
		m.deliverCapabilities(event.Data())
	default:
		panic(fmt.Sprintf("unexpected event opcode %d on %s", event.Opcode, ToplevelManagerInterface))
	}
}

func (m *ToplevelManager) deliverCapabilities(data []byte) {
	r := newArgReader(data)
	payload, err := r.array()
	if err != nil {
		panic(fmt.Sprintf("malformed capabilities event on %s: %v", ToplevelManagerInterface, err))
	}
	if m.capabilitiesHandler != nil {
		m.capabilitiesHandler(payload)
	}
}
