package workspaces

import (
	"errors"
	"testing"

	"github.com/bnema/wlturbo/wl"

	"github.com/MalpenZibo/libwlcapture-go/internal/protocols"
)

// Unit tests that don't require a compositor

type emptyBinder struct{}

func (emptyBinder) Global(string) (uint32, uint32, bool)        { return 0, 0, false }
func (emptyBinder) Bind(uint32, string, uint32, wl.Proxy) error { return nil }

func newTestState(handlers WorkspaceHandlers) *WorkspaceState {
	return &WorkspaceState{
		workspaces: make(map[uint32]*Workspace),
		groups:     make(map[uint32]*WorkspaceGroup),
		handlers:   handlers,
	}
}

func TestNewWorkspaceStateUnsupported(t *testing.T) {
	_, err := NewWorkspaceState(nil, emptyBinder{}, WorkspaceHandlers{})
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("error = %v, want ErrUnsupported", err)
	}
}

func TestPublishIsDoubleBuffered(t *testing.T) {
	state := newTestState(WorkspaceHandlers{})

	workspace := &Workspace{}
	workspace.pending = WorkspaceInfo{ID: "ws-1", Name: "web", State: protocols.WorkspaceStateActive}
	state.workspaces[1] = workspace

	// Pending state is invisible until the manager's done event.
	if info := workspace.Info(); info.ID != "" || info.Active() {
		t.Errorf("Info() before publish = %+v, want zero value", info)
	}

	state.publish()

	info := workspace.Info()
	if info.ID != "ws-1" || info.Name != "web" {
		t.Errorf("Info() after publish = %+v, want pending state", info)
	}
	if !info.Active() {
		t.Error("published workspace should be active")
	}
	if info.Urgent() {
		t.Error("published workspace should not be urgent")
	}
}

func TestDropWorkspace(t *testing.T) {
	var removed []*Workspace
	state := newTestState(WorkspaceHandlers{
		OnRemoved: func(w *Workspace) { removed = append(removed, w) },
	})

	workspace := &Workspace{}
	state.workspaces[3] = workspace

	state.dropWorkspace(3, workspace)

	if len(state.Workspaces()) != 0 {
		t.Error("removed workspace should not be tracked")
	}
	if len(removed) != 1 || removed[0] != workspace {
		t.Errorf("OnRemoved fired %d times, want once with the removed workspace", len(removed))
	}
}

func TestHandleWorkspaceTracksHandle(t *testing.T) {
	state := newTestState(WorkspaceHandlers{})

	handle := &protocols.WorkspaceHandle{}
	handle.SetID(6)
	state.handleWorkspace(handle)

	list := state.Workspaces()
	if len(list) != 1 {
		t.Fatalf("tracked %d workspaces, want 1", len(list))
	}
	if list[0].Handle != handle {
		t.Error("tracked workspace should reference the protocol handle")
	}
}

func TestGroupMembership(t *testing.T) {
	state := newTestState(WorkspaceHandlers{})

	groupHandle := &protocols.WorkspaceGroupHandle{}
	groupHandle.SetID(10)
	state.handleGroup(groupHandle)

	groups := state.Groups()
	if len(groups) != 1 {
		t.Fatalf("tracked %d groups, want 1", len(groups))
	}
	group := groups[0]

	wsHandle := &protocols.WorkspaceHandle{}
	wsHandle.SetID(11)
	workspace := &Workspace{Handle: wsHandle}

	if group.Contains(workspace) {
		t.Error("workspace should not belong to the group before enter")
	}
	group.addMember(11)
	if !group.Contains(workspace) {
		t.Error("workspace should belong to the group after enter")
	}
	group.removeMember(11)
	if group.Contains(workspace) {
		t.Error("workspace should not belong to the group after leave")
	}
}

func TestParseCoordinates(t *testing.T) {
	data := []byte{
		0x02, 0x00, 0x00, 0x00,
		0xff, 0xff, 0xff, 0xff, // -1
	}

	coords, err := parseCoordinates(data)
	if err != nil {
		t.Fatalf("parseCoordinates failed: %v", err)
	}
	if len(coords) != 2 || coords[0] != 2 || coords[1] != -1 {
		t.Errorf("coords = %v, want [2 -1]", coords)
	}

	if coords, err := parseCoordinates(nil); err != nil || len(coords) != 0 {
		t.Errorf("empty payload should decode to no coordinates, got %v, %v", coords, err)
	}

	if _, err := parseCoordinates([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for misaligned payload")
	}
}

func TestWorkspaceStateBits(t *testing.T) {
	info := WorkspaceInfo{State: protocols.WorkspaceStateActive | protocols.WorkspaceStateUrgent}
	if !info.Active() || !info.Urgent() {
		t.Error("both state bits should be set")
	}

	info = WorkspaceInfo{State: protocols.WorkspaceStateHidden}
	if info.Active() || info.Urgent() {
		t.Error("hidden workspace should be neither active nor urgent")
	}
}
