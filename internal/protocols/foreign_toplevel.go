package protocols

import (
	"github.com/bnema/wlturbo/wl"
)

// Protocol interface names
const (
	ForeignToplevelListInterface   = "ext_foreign_toplevel_list_v1"
	ForeignToplevelHandleInterface = "ext_foreign_toplevel_handle_v1"
)

// ForeignToplevelList represents an ext_foreign_toplevel_list_v1
// object. The compositor announces one toplevel event per mapped
// window, each carrying a new handle.
type ForeignToplevelList struct {
	wl.BaseProxy
	toplevelHandler func(*ForeignToplevelHandle)
	finishedHandler func()
}

// NewForeignToplevelList creates a new foreign toplevel list proxy
func NewForeignToplevelList(ctx *wl.Context) *ForeignToplevelList {
	list := &ForeignToplevelList{}
	list.SetContext(ctx)
	ctx.Register(list)
	return list
}

// SetToplevelHandler sets the handler for toplevel events
func (l *ForeignToplevelList) SetToplevelHandler(handler func(*ForeignToplevelHandle)) {
	l.toplevelHandler = handler
}

// SetFinishedHandler sets the handler for finished events
func (l *ForeignToplevelList) SetFinishedHandler(handler func()) {
	l.finishedHandler = handler
}

// Stop asks the compositor to stop sending toplevel events.
func (l *ForeignToplevelList) Stop() error {
	// Opcode 0: stop
	const opcode = 0
	return l.Context().SendRequest(l, opcode)
}

// Destroy destroys the list
func (l *ForeignToplevelList) Destroy() error {
	// Opcode 1: destroy
	const opcode = 1
	err := l.Context().SendRequest(l, opcode)
	l.Context().Unregister(l)
	return err
}

// Dispatch handles incoming events
func (l *ForeignToplevelList) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // toplevel
		handleID := event.Uint32()
		handle := &ForeignToplevelHandle{}
		handle.SetContext(l.Context())
		handle.SetID(handleID)
		l.Context().Register(handle)
		if l.toplevelHandler != nil {
			l.toplevelHandler(handle)
		}
	case 1: // finished
		if l.finishedHandler != nil {
			l.finishedHandler()
		}
		l.Context().Unregister(l)
	}
}

// ForeignToplevelHandle represents an ext_foreign_toplevel_handle_v1
// object for a single mapped toplevel.
type ForeignToplevelHandle struct {
	wl.BaseProxy
	closedHandler     func()
	doneHandler       func()
	titleHandler      func(string)
	appIDHandler      func(string)
	identifierHandler func(string)
}

// SetClosedHandler sets the handler for closed events
func (h *ForeignToplevelHandle) SetClosedHandler(handler func()) {
	h.closedHandler = handler
}

// SetDoneHandler sets the handler for done events
func (h *ForeignToplevelHandle) SetDoneHandler(handler func()) {
	h.doneHandler = handler
}

// SetTitleHandler sets the handler for title events
func (h *ForeignToplevelHandle) SetTitleHandler(handler func(string)) {
	h.titleHandler = handler
}

// SetAppIDHandler sets the handler for app_id events
func (h *ForeignToplevelHandle) SetAppIDHandler(handler func(string)) {
	h.appIDHandler = handler
}

// SetIdentifierHandler sets the handler for identifier events
func (h *ForeignToplevelHandle) SetIdentifierHandler(handler func(string)) {
	h.identifierHandler = handler
}

// Destroy destroys the handle
func (h *ForeignToplevelHandle) Destroy() error {
	// Opcode 0: destroy
	const opcode = 0
	err := h.Context().SendRequest(h, opcode)
	h.Context().Unregister(h)
	return err
}

// Dispatch handles incoming events
func (h *ForeignToplevelHandle) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // closed
		if h.closedHandler != nil {
			h.closedHandler()
		}
	case 1: // done
		if h.doneHandler != nil {
			h.doneHandler()
		}
	case 2: // title
		if h.titleHandler != nil {
			h.titleHandler(event.String())
		}
	case 3: // app_id
		if h.appIDHandler != nil {
			h.appIDHandler(event.String())
		}
	case 4: // identifier
		if h.identifierHandler != nil {
			h.identifierHandler(event.String())
		}
	}
}
