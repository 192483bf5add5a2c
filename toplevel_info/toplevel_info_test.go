package toplevel_info

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

func newTestState(handlers ToplevelHandlers) *ToplevelInfoState {
	return &ToplevelInfoState{
		toplevels: make(map[uint32]*Toplevel),
		handlers:  handlers,
	}
}

func TestNewToplevelInfoStateUnsupported(t *testing.T) {
	_, err := NewToplevelInfoState(nil, emptyBinder{}, ToplevelHandlers{})
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("error = %v, want ErrUnsupported", err)
	}
}

func TestInfoZeroBeforePublication(t *testing.T) {
	toplevel := &Toplevel{}
	toplevel.pending = ToplevelInfo{Title: "Editor", AppID: "org.example.editor"}

	// Pending state must stay invisible until the done event.
	if info := toplevel.Info(); info != (ToplevelInfo{}) {
		t.Errorf("Info() before publication = %+v, want zero value", info)
	}
}

func TestPublishToplevel(t *testing.T) {
	var added, updated []*Toplevel
	state := newTestState(ToplevelHandlers{
		OnAdded:   func(tl *Toplevel) { added = append(added, tl) },
		OnUpdated: func(tl *Toplevel) { updated = append(updated, tl) },
	})

	toplevel := &Toplevel{}
	toplevel.pending = ToplevelInfo{Title: "Terminal", AppID: "org.example.term", Identifier: "t1"}

	state.publishToplevel(toplevel)

	if len(added) != 1 || len(updated) != 0 {
		t.Fatalf("after first publish: added=%d updated=%d, want 1, 0", len(added), len(updated))
	}
	info := toplevel.Info()
	if info.Title != "Terminal" || info.AppID != "org.example.term" || info.Identifier != "t1" {
		t.Errorf("Info() = %+v, want published pending state", info)
	}

	// A later done event publishes again as an update.
	toplevel.pending.Title = "Terminal - vim"
	state.publishToplevel(toplevel)

	if len(added) != 1 || len(updated) != 1 {
		t.Fatalf("after second publish: added=%d updated=%d, want 1, 1", len(added), len(updated))
	}
	if toplevel.Info().Title != "Terminal - vim" {
		t.Errorf("Info().Title = %q, want updated title", toplevel.Info().Title)
	}
}

func TestDropToplevel(t *testing.T) {
	var closed []*Toplevel
	state := newTestState(ToplevelHandlers{
		OnClosed: func(tl *Toplevel) { closed = append(closed, tl) },
	})

	toplevel := &Toplevel{}
	state.toplevels[9] = toplevel

	state.dropToplevel(9, toplevel)

	if len(state.Toplevels()) != 0 {
		t.Error("dropped toplevel should not be tracked")
	}
	if len(closed) != 1 || closed[0] != toplevel {
		t.Errorf("OnClosed fired %d times, want once with the dropped toplevel", len(closed))
	}
}

func TestHandleToplevelTracksHandle(t *testing.T) {
	state := newTestState(ToplevelHandlers{})

	handle := &protocols.ForeignToplevelHandle{}
	handle.SetID(4)
	state.handleToplevel(handle)

	toplevels := state.Toplevels()
	if len(toplevels) != 1 {
		t.Fatalf("tracked %d toplevels, want 1", len(toplevels))
	}
	if toplevels[0].Handle != handle {
		t.Error("tracked toplevel should reference the protocol handle")
	}
}
