// Package protocols contains the wire-level proxies for the capture
// related Wayland protocol extensions. Each proxy embeds wl.BaseProxy
// and speaks raw opcodes; the exported packages above wrap these in a
// typed API.
package protocols

import (
	"github.com/bnema/wlturbo/wl"
)

// Protocol interface names
const (
	ImageCaptureSourceInterface                   = "ext_image_capture_source_v1"
	OutputImageCaptureSourceManagerInterface      = "ext_output_image_capture_source_manager_v1"
	ForeignToplevelImageCaptureSourceManagerIface = "ext_foreign_toplevel_image_capture_source_manager_v1"
	WorkspaceImageCaptureSourceManagerInterface   = "zcosmic_workspace_image_capture_source_manager_v1"
)

// ImageCaptureSource represents an ext_image_capture_source_v1 object,
// a compositor-side token for "the thing to be captured".
type ImageCaptureSource struct {
	wl.BaseProxy
}

// Destroy sends the destroy request. The compositor sends no reply.
func (s *ImageCaptureSource) Destroy() error {
	// Opcode 0: destroy
	const opcode = 0
	err := s.Context().SendRequest(s, opcode)
	s.Context().Unregister(s)
	return err
}

// Dispatch handles incoming events (the capture source has no events)
func (s *ImageCaptureSource) Dispatch(_ *wl.Event) {
}

// newCaptureSource allocates and registers a fresh capture source proxy
// on the given context.
func newCaptureSource(ctx *wl.Context) *ImageCaptureSource {
	source := &ImageCaptureSource{}
	source.SetContext(ctx)
	source.SetID(ctx.AllocateID())
	ctx.Register(source)
	return source
}

// OutputImageCaptureSourceManager creates capture sources from wl_output
// objects.
type OutputImageCaptureSourceManager struct {
	wl.BaseProxy
}

// NewOutputImageCaptureSourceManager creates a new output capture source manager
func NewOutputImageCaptureSourceManager(ctx *wl.Context) *OutputImageCaptureSourceManager {
	manager := &OutputImageCaptureSourceManager{}
	manager.SetContext(ctx)
	ctx.Register(manager)
	return manager
}

// CreateSource requests a capture source for the given output. The
// request is fire and forget; the returned proxy is usable immediately.
func (m *OutputImageCaptureSourceManager) CreateSource(output wl.Object) (*ImageCaptureSource, error) {
	source := newCaptureSource(m.Context())

	// Opcode 0: create_source(new_id, output)
	const opcode = 0

	err := m.Context().SendRequest(m, opcode, source, output)
	if err != nil {
		m.Context().Unregister(source)
		return nil, err
	}

	return source, nil
}

// Destroy destroys the manager
func (m *OutputImageCaptureSourceManager) Destroy() error {
	// Opcode 1: destroy
	const opcode = 1
	err := m.Context().SendRequest(m, opcode)
	m.Context().Unregister(m)
	return err
}

// Dispatch handles incoming events (the manager has no events)
func (m *OutputImageCaptureSourceManager) Dispatch(_ *wl.Event) {
}

// ForeignToplevelImageCaptureSourceManager creates capture sources from
// ext_foreign_toplevel_handle_v1 objects.
type ForeignToplevelImageCaptureSourceManager struct {
	wl.BaseProxy
}

// NewForeignToplevelImageCaptureSourceManager creates a new toplevel capture source manager
func NewForeignToplevelImageCaptureSourceManager(ctx *wl.Context) *ForeignToplevelImageCaptureSourceManager {
	manager := &ForeignToplevelImageCaptureSourceManager{}
	manager.SetContext(ctx)
	ctx.Register(manager)
	return manager
}

// CreateSource requests a capture source for the given toplevel handle.
func (m *ForeignToplevelImageCaptureSourceManager) CreateSource(toplevel wl.Object) (*ImageCaptureSource, error) {
	source := newCaptureSource(m.Context())

	// Opcode 0: create_source(new_id, toplevel_handle)
	const opcode = 0

	err := m.Context().SendRequest(m, opcode, source, toplevel)
	if err != nil {
		m.Context().Unregister(source)
		return nil, err
	}

	return source, nil
}

// Destroy destroys the manager
func (m *ForeignToplevelImageCaptureSourceManager) Destroy() error {
	// Opcode 1: destroy
	const opcode = 1
	err := m.Context().SendRequest(m, opcode)
	m.Context().Unregister(m)
	return err
}

// Dispatch handles incoming events (the manager has no events)
func (m *ForeignToplevelImageCaptureSourceManager) Dispatch(_ *wl.Event) {
}

// WorkspaceImageCaptureSourceManager creates capture sources from
// ext_workspace_handle_v1 objects (cosmic extension).
type WorkspaceImageCaptureSourceManager struct {
	wl.BaseProxy
}

// NewWorkspaceImageCaptureSourceManager creates a new workspace capture source manager
func NewWorkspaceImageCaptureSourceManager(ctx *wl.Context) *WorkspaceImageCaptureSourceManager {
	manager := &WorkspaceImageCaptureSourceManager{}
	manager.SetContext(ctx)
	ctx.Register(manager)
	return manager
}

// CreateSource requests a capture source for the given workspace handle.
func (m *WorkspaceImageCaptureSourceManager) CreateSource(workspace wl.Object) (*ImageCaptureSource, error) {
	source := newCaptureSource(m.Context())

	// Opcode 0: create_source(new_id, workspace_handle)
	const opcode = 0

	err := m.Context().SendRequest(m, opcode, source, workspace)
	if err != nil {
		m.Context().Unregister(source)
		return nil, err
	}

	return source, nil
}

// Destroy destroys the manager
func (m *WorkspaceImageCaptureSourceManager) Destroy() error {
	// Opcode 1: destroy
	const opcode = 1
	err := m.Context().SendRequest(m, opcode)
	m.Context().Unregister(m)
	return err
}

// Dispatch handles incoming events (the manager has no events)
func (m *WorkspaceImageCaptureSourceManager) Dispatch(_ *wl.Event) {
}
