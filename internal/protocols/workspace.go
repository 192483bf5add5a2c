package protocols

import (
	"github.com/bnema/wlturbo/wl"
)

// Protocol interface names
const (
	WorkspaceManagerInterface     = "ext_workspace_manager_v1"
	WorkspaceGroupHandleInterface = "ext_workspace_group_handle_v1"
	WorkspaceHandleInterface      = "ext_workspace_handle_v1"
)

// Workspace state bits from ext_workspace_handle_v1.state.
const (
	WorkspaceStateActive = 1 << 0
	WorkspaceStateUrgent = 1 << 1
	WorkspaceStateHidden = 1 << 2
)

// WorkspaceManager represents an ext_workspace_manager_v1 object.
type WorkspaceManager struct {
	wl.BaseProxy
	workspaceGroupHandler func(*WorkspaceGroupHandle)
	workspaceHandler      func(*WorkspaceHandle)
	doneHandler           func()
	finishedHandler       func()
}

// NewWorkspaceManager creates a new workspace manager proxy
func NewWorkspaceManager(ctx *wl.Context) *WorkspaceManager {
	manager := &WorkspaceManager{}
	manager.SetContext(ctx)
	ctx.Register(manager)
	return manager
}

// SetWorkspaceGroupHandler sets the handler for workspace_group events
func (m *WorkspaceManager) SetWorkspaceGroupHandler(handler func(*WorkspaceGroupHandle)) {
	m.workspaceGroupHandler = handler
}

// SetWorkspaceHandler sets the handler for workspace events
func (m *WorkspaceManager) SetWorkspaceHandler(handler func(*WorkspaceHandle)) {
	m.workspaceHandler = handler
}

// SetDoneHandler sets the handler for done events
func (m *WorkspaceManager) SetDoneHandler(handler func()) {
	m.doneHandler = handler
}

// SetFinishedHandler sets the handler for finished events
func (m *WorkspaceManager) SetFinishedHandler(handler func()) {
	m.finishedHandler = handler
}

// Commit atomically applies pending workspace requests.
func (m *WorkspaceManager) Commit() error {
	// Opcode 0: commit
	const opcode = 0
	return m.Context().SendRequest(m, opcode)
}

// Stop asks the compositor to stop sending workspace events.
func (m *WorkspaceManager) Stop() error {
	// Opcode 1: stop
	const opcode = 1
	return m.Context().SendRequest(m, opcode)
}

// Destroy destroys the manager
func (m *WorkspaceManager) Destroy() error {
	// Opcode 2: destroy
	const opcode = 2
	err := m.Context().SendRequest(m, opcode)
	m.Context().Unregister(m)
	return err
}

// Dispatch handles incoming events
func (m *WorkspaceManager) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // workspace_group
		groupID := event.Uint32()
		group := &WorkspaceGroupHandle{}
		group.SetContext(m.Context())
		group.SetID(groupID)
		m.Context().Register(group)
		if m.workspaceGroupHandler != nil {
			m.workspaceGroupHandler(group)
		}
	case 1: // workspace
		workspaceID := event.Uint32()
		workspace := &WorkspaceHandle{}
		workspace.SetContext(m.Context())
		workspace.SetID(workspaceID)
		m.Context().Register(workspace)
		if m.workspaceHandler != nil {
			m.workspaceHandler(workspace)
		}
	case 2: // done
		if m.doneHandler != nil {
			m.doneHandler()
		}
	case 3: // finished
		if m.finishedHandler != nil {
			m.finishedHandler()
		}
		m.Context().Unregister(m)
	}
}

// WorkspaceGroupHandle represents an ext_workspace_group_handle_v1
// object. Only the events needed for workspace bookkeeping are
// surfaced.
type WorkspaceGroupHandle struct {
	wl.BaseProxy
	workspaceEnterHandler func(workspaceID uint32)
	workspaceLeaveHandler func(workspaceID uint32)
	removedHandler        func()
}

// SetWorkspaceEnterHandler sets the handler for workspace_enter events
func (g *WorkspaceGroupHandle) SetWorkspaceEnterHandler(handler func(workspaceID uint32)) {
	g.workspaceEnterHandler = handler
}

// SetWorkspaceLeaveHandler sets the handler for workspace_leave events
func (g *WorkspaceGroupHandle) SetWorkspaceLeaveHandler(handler func(workspaceID uint32)) {
	g.workspaceLeaveHandler = handler
}

// SetRemovedHandler sets the handler for removed events
func (g *WorkspaceGroupHandle) SetRemovedHandler(handler func()) {
	g.removedHandler = handler
}

// Destroy destroys the group handle
func (g *WorkspaceGroupHandle) Destroy() error {
	// Opcode 1: destroy
	const opcode = 1
	err := g.Context().SendRequest(g, opcode)
	g.Context().Unregister(g)
	return err
}

// Dispatch handles incoming events
func (g *WorkspaceGroupHandle) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 3: // workspace_enter
		if g.workspaceEnterHandler != nil {
			g.workspaceEnterHandler(event.Uint32())
		}
	case 4: // workspace_leave
		if g.workspaceLeaveHandler != nil {
			g.workspaceLeaveHandler(event.Uint32())
		}
	case 5: // removed
		if g.removedHandler != nil {
			g.removedHandler()
		}
	}
}

// WorkspaceHandle represents an ext_workspace_handle_v1 object.
type WorkspaceHandle struct {
	wl.BaseProxy
	idHandler          func(string)
	nameHandler        func(string)
	coordinatesHandler func([]byte)
	stateHandler       func(uint32)
	removedHandler     func()
}

// SetIDHandler sets the handler for id events
func (w *WorkspaceHandle) SetIDHandler(handler func(string)) {
	w.idHandler = handler
}

// SetNameHandler sets the handler for name events
func (w *WorkspaceHandle) SetNameHandler(handler func(string)) {
	w.nameHandler = handler
}

// SetCoordinatesHandler sets the handler for coordinates events. The
// payload is the raw array of 32-bit coordinate words.
func (w *WorkspaceHandle) SetCoordinatesHandler(handler func([]byte)) {
	w.coordinatesHandler = handler
}

// SetStateHandler sets the handler for state events
func (w *WorkspaceHandle) SetStateHandler(handler func(uint32)) {
	w.stateHandler = handler
}

// SetRemovedHandler sets the handler for removed events
func (w *WorkspaceHandle) SetRemovedHandler(handler func()) {
	w.removedHandler = handler
}

// Destroy destroys the workspace handle
func (w *WorkspaceHandle) Destroy() error {
	// Opcode 0: destroy
	const opcode = 0
	err := w.Context().SendRequest(w, opcode)
	w.Context().Unregister(w)
	return err
}

// Activate requests activation of this workspace on the next commit.
func (w *WorkspaceHandle) Activate() error {
	// Opcode 1: activate
	const opcode = 1
	return w.Context().SendRequest(w, opcode)
}

// Deactivate requests deactivation of this workspace on the next commit.
func (w *WorkspaceHandle) Deactivate() error {
	// Opcode 2: deactivate
	const opcode = 2
	return w.Context().SendRequest(w, opcode)
}

// Dispatch handles incoming events
func (w *WorkspaceHandle) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // id
		if w.idHandler != nil {
			w.idHandler(event.String())
		}
	case 1: // name
		if w.nameHandler != nil {
			w.nameHandler(event.String())
		}
	case 2: // coordinates
		if w.coordinatesHandler != nil {
			r := newArgReader(event.Data())
			coords, err := r.array()
			if err != nil {
				return
			}
			w.coordinatesHandler(coords)
		}
	case 3: // state
		if w.stateHandler != nil {
			w.stateHandler(event.Uint32())
		}
	case 5: // removed
		if w.removedHandler != nil {
			w.removedHandler()
		}
	}
}
