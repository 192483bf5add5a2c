// Package workspaces provides high-level Go bindings for the
// ext-workspace Wayland protocol, tracking the compositor's workspaces.
//
// Handles obtained here feed screencopy.WorkspaceSource for per-
// workspace capture.
package workspaces

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/wlturbo/wl"

	"github.com/MalpenZibo/libwlcapture-go/internal/protocols"
)

// ErrUnsupported reports that the compositor does not advertise
// ext_workspace_manager_v1.
var ErrUnsupported = errors.New("ext_workspace_manager_v1 not advertised by compositor")

// Binder is the registry surface the state binds its global through.
// *client.Client implements it.
type Binder interface {
	Global(iface string) (name, version uint32, ok bool)
	Bind(name uint32, iface string, version uint32, proxy wl.Proxy) error
}

// WorkspaceInfo is the published metadata for one workspace.
type WorkspaceInfo struct {
	// ID is the compositor's stable workspace identifier.
	ID string
	// Name is the human-readable workspace name.
	Name string
	// Coordinates position the workspace within its group, ordered
	// from most to least significant axis.
	Coordinates []int32
	// State is the ext_workspace_handle_v1.state bitmask.
	State uint32
}

// Active reports whether the workspace is currently active.
func (i WorkspaceInfo) Active() bool {
	return i.State&protocols.WorkspaceStateActive != 0
}

// Urgent reports whether the workspace wants attention.
func (i WorkspaceInfo) Urgent() bool {
	return i.State&protocols.WorkspaceStateUrgent != 0
}

// Workspace tracks one workspace handle.
type Workspace struct {
	// Handle is the underlying ext_workspace_handle_v1 proxy, usable
	// as a screencopy capture source handle.
	Handle *protocols.WorkspaceHandle

	mu      sync.Mutex
	pending WorkspaceInfo
	current WorkspaceInfo
}

// Info returns the last published snapshot.
func (w *Workspace) Info() WorkspaceInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// WorkspaceGroup tracks one workspace group and which workspaces
// belong to it.
type WorkspaceGroup struct {
	// Handle is the underlying ext_workspace_group_handle_v1 proxy.
	Handle *protocols.WorkspaceGroupHandle

	mu      sync.Mutex
	members map[uint32]struct{}
}

// Contains reports whether the workspace currently belongs to this
// group.
func (g *WorkspaceGroup) Contains(w *Workspace) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.members[w.Handle.ID()]
	return ok
}

func (g *WorkspaceGroup) addMember(workspaceID uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.members[workspaceID] = struct{}{}
}

func (g *WorkspaceGroup) removeMember(workspaceID uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.members, workspaceID)
}

// WorkspaceHandlers contains callback functions for workspace events
type WorkspaceHandlers struct {
	// OnChanged is called after each done event with the full
	// workspace list.
	OnChanged func(workspaces []*Workspace)
	// OnRemoved is called when a workspace is removed. The handle is
	// destroyed after the callback returns.
	OnRemoved func(workspace *Workspace)
}

// WorkspaceState tracks the compositor's workspaces for the lifetime
// of the connection.
type WorkspaceState struct {
	// Manager is the bound protocol proxy.
	Manager *protocols.WorkspaceManager

	mu         sync.Mutex
	workspaces map[uint32]*Workspace
	groups     map[uint32]*WorkspaceGroup
	handlers   WorkspaceHandlers
}

// NewWorkspaceState binds ext_workspace_manager_v1 and starts tracking
// workspaces. Returns ErrUnsupported when the compositor does not
// advertise the interface.
func NewWorkspaceState(ctx *wl.Context, b Binder, handlers WorkspaceHandlers) (*WorkspaceState, error) {
	name, version, ok := b.Global(protocols.WorkspaceManagerInterface)
	if !ok {
		return nil, ErrUnsupported
	}
	if version > 1 {
		version = 1
	}

	manager := protocols.NewWorkspaceManager(ctx)
	if err := b.Bind(name, protocols.WorkspaceManagerInterface, version, manager); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", protocols.WorkspaceManagerInterface, err)
	}

	state := &WorkspaceState{
		Manager:    manager,
		workspaces: make(map[uint32]*Workspace),
		groups:     make(map[uint32]*WorkspaceGroup),
		handlers:   handlers,
	}
	manager.SetWorkspaceHandler(state.handleWorkspace)
	manager.SetWorkspaceGroupHandler(state.handleGroup)
	manager.SetDoneHandler(func() {
		state.publish()
		if state.handlers.OnChanged != nil {
			state.handlers.OnChanged(state.Workspaces())
		}
	})

	return state, nil
}

// Workspaces returns the currently tracked workspaces.
func (s *WorkspaceState) Workspaces() []*Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()

	workspaces := make([]*Workspace, 0, len(s.workspaces))
	for _, w := range s.workspaces {
		workspaces = append(workspaces, w)
	}
	return workspaces
}

func (s *WorkspaceState) handleWorkspace(handle *protocols.WorkspaceHandle) {
	workspace := &Workspace{Handle: handle}

	handle.SetIDHandler(func(id string) {
		workspace.mu.Lock()
		workspace.pending.ID = id
		workspace.mu.Unlock()
	})
	handle.SetNameHandler(func(name string) {
		workspace.mu.Lock()
		workspace.pending.Name = name
		workspace.mu.Unlock()
	})
	handle.SetCoordinatesHandler(func(raw []byte) {
		coords, err := parseCoordinates(raw)
		if err != nil {
			return
		}
		workspace.mu.Lock()
		workspace.pending.Coordinates = coords
		workspace.mu.Unlock()
	})
	handle.SetStateHandler(func(state uint32) {
		workspace.mu.Lock()
		workspace.pending.State = state
		workspace.mu.Unlock()
	})
	handle.SetRemovedHandler(func() {
		s.dropWorkspace(handle.ID(), workspace)
		_ = handle.Destroy()
	})

	s.mu.Lock()
	s.workspaces[handle.ID()] = workspace
	s.mu.Unlock()
}

// Groups returns the currently tracked workspace groups.
func (s *WorkspaceState) Groups() []*WorkspaceGroup {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := make([]*WorkspaceGroup, 0, len(s.groups))
	for _, g := range s.groups {
		groups = append(groups, g)
	}
	return groups
}

func (s *WorkspaceState) handleGroup(handle *protocols.WorkspaceGroupHandle) {
	group := &WorkspaceGroup{
		Handle:  handle,
		members: make(map[uint32]struct{}),
	}

	handle.SetWorkspaceEnterHandler(group.addMember)
	handle.SetWorkspaceLeaveHandler(group.removeMember)
	handle.SetRemovedHandler(func() {
		s.mu.Lock()
		delete(s.groups, handle.ID())
		s.mu.Unlock()
		_ = handle.Destroy()
	})

	s.mu.Lock()
	s.groups[handle.ID()] = group
	s.mu.Unlock()
}

// dropWorkspace stops tracking a removed workspace.
func (s *WorkspaceState) dropWorkspace(id uint32, workspace *Workspace) {
	s.mu.Lock()
	delete(s.workspaces, id)
	s.mu.Unlock()

	if s.handlers.OnRemoved != nil {
		s.handlers.OnRemoved(workspace)
	}
}

// publish flips every workspace's pending state to current. State is
// double-buffered so a done event always exposes a consistent set.
func (s *WorkspaceState) publish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.workspaces {
		w.mu.Lock()
		w.current = w.pending
		w.mu.Unlock()
	}
}

// Destroy stops tracking and destroys the manager proxy.
func (s *WorkspaceState) Destroy() error {
	if err := s.Manager.Stop(); err != nil {
		return err
	}
	return s.Manager.Destroy()
}

// parseCoordinates decodes the packed 32-bit coordinate words from a
// coordinates event.
func parseCoordinates(data []byte) ([]int32, error) {
	if len(data)%4 != 0 {
		return nil, errors.New("coordinates payload is not a multiple of 4 bytes")
	}
	coords := make([]int32, 0, len(data)/4)
	for off := 0; off < len(data); off += 4 {
		coords = append(coords, int32(binary.LittleEndian.Uint32(data[off:])))
	}
	return coords, nil
}
