package screencopy

import (
	"fmt"
	"sync"

	"github.com/bnema/wlturbo/wl"
)

// CaptureSourceKind classifies what a capture source points at.
type CaptureSourceKind int

// Capture source kinds
const (
	CaptureSourceOutput CaptureSourceKind = iota
	CaptureSourceToplevel
	CaptureSourceWorkspace
)

// String returns a string representation of the kind
func (k CaptureSourceKind) String() string {
	switch k {
	case CaptureSourceOutput:
		return "output"
	case CaptureSourceToplevel:
		return "toplevel"
	case CaptureSourceWorkspace:
		return "workspace"
	default:
		return "unknown"
	}
}

// CaptureSourceError reports that the compositor does not implement the
// capture source manager for the requested kind. The condition is
// permanent for the lifetime of the connection; callers should disable
// the feature rather than retry.
type CaptureSourceError struct {
	Kind CaptureSourceKind
}

func (e *CaptureSourceError) Error() string {
	return fmt.Sprintf("capture kind '%s' unsupported by compositor", e.Kind)
}

// CaptureSource identifies the thing to be captured: an output, a
// foreign toplevel, or a workspace. Variants wrap a non-owning
// reference to a handle the application already holds; tracking the
// handle's validity against removal events stays with the application.
// Variants are comparable, so CaptureSource values work as map keys
// with handle identity semantics.
type CaptureSource interface {
	// Kind reports which manager this source needs.
	Kind() CaptureSourceKind
	handle() wl.Object
}

// OutputSource captures a wl_output.
type OutputSource struct {
	Output wl.Object
}

// Kind implements CaptureSource
func (s OutputSource) Kind() CaptureSourceKind { return CaptureSourceOutput }

func (s OutputSource) handle() wl.Object { return s.Output }

// ToplevelSource captures an ext_foreign_toplevel_handle_v1.
type ToplevelSource struct {
	Toplevel wl.Object
}

// Kind implements CaptureSource
func (s ToplevelSource) Kind() CaptureSourceKind { return CaptureSourceToplevel }

func (s ToplevelSource) handle() wl.Object { return s.Toplevel }

// WorkspaceSource captures an ext_workspace_handle_v1.
type WorkspaceSource struct {
	Workspace wl.Object
}

// Kind implements CaptureSource
func (s WorkspaceSource) Kind() CaptureSourceKind { return CaptureSourceWorkspace }

func (s WorkspaceSource) handle() wl.Object { return s.Workspace }

// destroyable is the slice of a capture source proxy the guard needs.
type destroyable interface {
	ID() uint32
	Destroy() error
}

// WlCaptureSource owns one live ext_image_capture_source_v1 object.
// The destroy request is sent to the compositor exactly once, on the
// first Destroy call; later calls are no-ops. There is no other path
// that destroys the wrapped object.
type WlCaptureSource struct {
	source destroyable
	once   sync.Once
}

func newWlCaptureSource(source destroyable) *WlCaptureSource {
	return &WlCaptureSource{source: source}
}

// ID returns the wrapped protocol object's id.
func (s *WlCaptureSource) ID() uint32 {
	return s.source.ID()
}

// Destroy releases the compositor-side object. Safe to call more than
// once; only the first call sends the destroy request.
func (s *WlCaptureSource) Destroy() error {
	var err error
	s.once.Do(func() {
		err = s.source.Destroy()
	})
	return err
}
