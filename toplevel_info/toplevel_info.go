// Package toplevel_info provides high-level Go bindings for the
// ext-foreign-toplevel-list Wayland protocol, tracking the
// compositor's mapped toplevels and their metadata.
//
// Handles obtained here feed screencopy.ToplevelSource for per-window
// capture.
package toplevel_info

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/wlturbo/wl"

	"github.com/MalpenZibo/libwlcapture-go/internal/protocols"
)

// ErrUnsupported reports that the compositor does not advertise
// ext_foreign_toplevel_list_v1.
var ErrUnsupported = errors.New("ext_foreign_toplevel_list_v1 not advertised by compositor")

// Binder is the registry surface the state binds its global through.
// *client.Client implements it.
type Binder interface {
	Global(iface string) (name, version uint32, ok bool)
	Bind(name uint32, iface string, version uint32, proxy wl.Proxy) error
}

// ToplevelInfo is the published metadata for one toplevel. Fields
// update only on the protocol's done event, so a value is always a
// consistent snapshot.
type ToplevelInfo struct {
	Title      string
	AppID      string
	Identifier string
}

// Toplevel tracks one mapped toplevel window.
type Toplevel struct {
	// Handle is the underlying ext_foreign_toplevel_handle_v1 proxy,
	// usable as a screencopy capture source handle.
	Handle *protocols.ForeignToplevelHandle

	mu        sync.Mutex
	pending   ToplevelInfo
	current   ToplevelInfo
	published bool
}

// Info returns the last published snapshot. Zero until the first done
// event for this toplevel.
func (t *Toplevel) Info() ToplevelInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// ToplevelHandlers contains callback functions for toplevel events
type ToplevelHandlers struct {
	// OnAdded is called when a toplevel's initial state is complete.
	OnAdded func(toplevel *Toplevel)
	// OnUpdated is called when an existing toplevel's state changes.
	OnUpdated func(toplevel *Toplevel)
	// OnClosed is called when a toplevel is unmapped. The handle is
	// destroyed after the callback returns.
	OnClosed func(toplevel *Toplevel)
	// OnFinished is called when the compositor stops the list.
	OnFinished func()
}

// ToplevelInfoState tracks the compositor's toplevel list for the
// lifetime of the connection.
type ToplevelInfoState struct {
	// List is the bound protocol proxy.
	List *protocols.ForeignToplevelList

	mu        sync.Mutex
	toplevels map[uint32]*Toplevel
	handlers  ToplevelHandlers
}

// NewToplevelInfoState binds ext_foreign_toplevel_list_v1 and starts
// tracking toplevels. Returns ErrUnsupported when the compositor does
// not advertise the interface. The initial toplevel burst arrives on
// the next roundtrip.
func NewToplevelInfoState(ctx *wl.Context, b Binder, handlers ToplevelHandlers) (*ToplevelInfoState, error) {
	name, version, ok := b.Global(protocols.ForeignToplevelListInterface)
	if !ok {
		return nil, ErrUnsupported
	}
	if version > 1 {
		version = 1
	}

	list := protocols.NewForeignToplevelList(ctx)
	if err := b.Bind(name, protocols.ForeignToplevelListInterface, version, list); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", protocols.ForeignToplevelListInterface, err)
	}

	state := &ToplevelInfoState{
		List:      list,
		toplevels: make(map[uint32]*Toplevel),
		handlers:  handlers,
	}
	list.SetToplevelHandler(state.handleToplevel)
	list.SetFinishedHandler(func() {
		if state.handlers.OnFinished != nil {
			state.handlers.OnFinished()
		}
	})

	return state, nil
}

// Toplevels returns the currently tracked toplevels.
func (s *ToplevelInfoState) Toplevels() []*Toplevel {
	s.mu.Lock()
	defer s.mu.Unlock()

	toplevels := make([]*Toplevel, 0, len(s.toplevels))
	for _, t := range s.toplevels {
		toplevels = append(toplevels, t)
	}
	return toplevels
}

func (s *ToplevelInfoState) handleToplevel(handle *protocols.ForeignToplevelHandle) {
	toplevel := &Toplevel{Handle: handle}

	handle.SetTitleHandler(func(title string) {
		toplevel.mu.Lock()
		toplevel.pending.Title = title
		toplevel.mu.Unlock()
	})
	handle.SetAppIDHandler(func(appID string) {
		toplevel.mu.Lock()
		toplevel.pending.AppID = appID
		toplevel.mu.Unlock()
	})
	handle.SetIdentifierHandler(func(identifier string) {
		toplevel.mu.Lock()
		toplevel.pending.Identifier = identifier
		toplevel.mu.Unlock()
	})
	handle.SetDoneHandler(func() {
		s.publishToplevel(toplevel)
	})
	handle.SetClosedHandler(func() {
		s.dropToplevel(handle.ID(), toplevel)
		_ = handle.Destroy()
	})

	s.mu.Lock()
	s.toplevels[handle.ID()] = toplevel
	s.mu.Unlock()
}

// publishToplevel flips the toplevel's pending state to current and
// fires OnAdded on the first publication, OnUpdated on later ones.
func (s *ToplevelInfoState) publishToplevel(toplevel *Toplevel) {
	toplevel.mu.Lock()
	first := !toplevel.published
	toplevel.current = toplevel.pending
	toplevel.published = true
	toplevel.mu.Unlock()

	if first {
		if s.handlers.OnAdded != nil {
			s.handlers.OnAdded(toplevel)
		}
	} else if s.handlers.OnUpdated != nil {
		s.handlers.OnUpdated(toplevel)
	}
}

// dropToplevel stops tracking a closed toplevel.
func (s *ToplevelInfoState) dropToplevel(id uint32, toplevel *Toplevel) {
	s.mu.Lock()
	delete(s.toplevels, id)
	s.mu.Unlock()

	if s.handlers.OnClosed != nil {
		s.handlers.OnClosed(toplevel)
	}
}

// Destroy stops tracking and destroys the list proxy.
func (s *ToplevelInfoState) Destroy() error {
	if err := s.List.Stop(); err != nil {
		return err
	}
	return s.List.Destroy()
}
