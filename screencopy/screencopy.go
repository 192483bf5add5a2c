// Package screencopy provides high-level Go bindings for the
// ext-image-capture-source and ext-image-copy-capture Wayland protocol
// extensions, plus the cosmic workspace capture source extension.
//
// A Capturer is built once per connection from the registry's global
// table; compositors may implement any subset of the capture source
// managers, and a missing manager surfaces as a typed
// CaptureSourceError when a source of that kind is requested.
package screencopy

import (
	"fmt"
	"sync"
	"time"

	"github.com/bnema/wlturbo/wl"

	"github.com/MalpenZibo/libwlcapture-go/internal/logger"
	"github.com/MalpenZibo/libwlcapture-go/internal/protocols"
)

// Binder is the registry surface the Capturer binds its globals
// through. *client.Client implements it.
type Binder interface {
	Global(iface string) (name, version uint32, ok bool)
	Bind(name uint32, iface string, version uint32, proxy wl.Proxy) error
}

// CaptureOptions is the ext_image_copy_capture_manager_v1.options
// bitmask passed when creating a session.
type CaptureOptions uint32

// PaintCursors asks the compositor to composite cursors into captured
// frames.
const PaintCursors CaptureOptions = 1

// FailureReason is the ext_image_copy_capture_frame_v1.failure_reason
// enumeration.
type FailureReason uint32

// Frame failure reasons
const (
	FailureUnknown           FailureReason = 0
	FailureBufferConstraints FailureReason = 1
	FailureStopped           FailureReason = 2
)

// createSourceFunc issues a create_source request against one bound
// manager and returns the new protocol object.
type createSourceFunc func(handle wl.Object) (destroyable, error)

// Capturer holds the optionally bound capture manager globals for one
// connection. Fields are populated at most once, during construction,
// and never rebound; reads are safe from any code path afterwards.
type Capturer struct {
	copyCaptureManager *protocols.ImageCopyCaptureManager
	outputManager      *protocols.OutputImageCaptureSourceManager
	toplevelManager    *protocols.ForeignToplevelImageCaptureSourceManager
	workspaceManager   *protocols.WorkspaceImageCaptureSourceManager

	// Dispatch table from source kind to bound factory. A kind the
	// compositor has no manager for simply has no entry.
	sources map[CaptureSourceKind]createSourceFunc
}

// bindVersion picks the version to bind: the highest the compositor
// and this client both speak.
func bindVersion(advertised, max uint32) uint32 {
	if advertised < max {
		return advertised
	}
	return max
}

// NewCapturer binds whichever capture manager globals the compositor
// advertises. A compositor may implement any subset, including none;
// absence is not an error. The only error path is a failed bind
// request on an advertised global.
func NewCapturer(ctx *wl.Context, b Binder) (*Capturer, error) {
	c := &Capturer{
		sources: make(map[CaptureSourceKind]createSourceFunc),
	}

	if name, version, ok := b.Global(protocols.ImageCopyCaptureManagerInterface); ok {
		manager := protocols.NewImageCopyCaptureManager(ctx)
		if err := b.Bind(name, protocols.ImageCopyCaptureManagerInterface, bindVersion(version, 1), manager); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", protocols.ImageCopyCaptureManagerInterface, err)
		}
		c.copyCaptureManager = manager
	}

	if name, version, ok := b.Global(protocols.OutputImageCaptureSourceManagerInterface); ok {
		manager := protocols.NewOutputImageCaptureSourceManager(ctx)
		if err := b.Bind(name, protocols.OutputImageCaptureSourceManagerInterface, bindVersion(version, 1), manager); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", protocols.OutputImageCaptureSourceManagerInterface, err)
		}
		c.outputManager = manager
		c.sources[CaptureSourceOutput] = func(handle wl.Object) (destroyable, error) {
			return manager.CreateSource(handle)
		}
	}

	if name, version, ok := b.Global(protocols.ForeignToplevelImageCaptureSourceManagerIface); ok {
		manager := protocols.NewForeignToplevelImageCaptureSourceManager(ctx)
		if err := b.Bind(name, protocols.ForeignToplevelImageCaptureSourceManagerIface, bindVersion(version, 1), manager); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", protocols.ForeignToplevelImageCaptureSourceManagerIface, err)
		}
		c.toplevelManager = manager
		c.sources[CaptureSourceToplevel] = func(handle wl.Object) (destroyable, error) {
			return manager.CreateSource(handle)
		}
	}

	if name, version, ok := b.Global(protocols.WorkspaceImageCaptureSourceManagerInterface); ok {
		manager := protocols.NewWorkspaceImageCaptureSourceManager(ctx)
		if err := b.Bind(name, protocols.WorkspaceImageCaptureSourceManagerInterface, bindVersion(version, 1), manager); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", protocols.WorkspaceImageCaptureSourceManagerInterface, err)
		}
		c.workspaceManager = manager
		c.sources[CaptureSourceWorkspace] = func(handle wl.Object) (destroyable, error) {
			return manager.CreateSource(handle)
		}
	}

	logger.Debug("capturer bound",
		"copy_capture", c.copyCaptureManager != nil,
		"output", c.outputManager != nil,
		"toplevel", c.toplevelManager != nil,
		"workspace", c.workspaceManager != nil)

	return c, nil
}

// SupportsKind reports whether the compositor advertises a capture
// source manager for the given kind.
func (c *Capturer) SupportsKind(kind CaptureSourceKind) bool {
	_, ok := c.sources[kind]
	return ok
}

// SupportsCopyCapture reports whether the compositor advertises the
// image copy capture manager.
func (c *Capturer) SupportsCopyCapture() bool {
	return c.copyCaptureManager != nil
}

// CreateSource translates a logical capture source into a live
// protocol object. The request is fire and forget: the returned guard
// is usable immediately, and transport errors surface on the
// connection, not here. The only error this call produces is a
// *CaptureSourceError for a kind the compositor has no manager for.
func (c *Capturer) CreateSource(src CaptureSource) (*WlCaptureSource, error) {
	create, ok := c.sources[src.Kind()]
	if !ok {
		return nil, &CaptureSourceError{Kind: src.Kind()}
	}
	source, err := create(src.handle())
	if err != nil {
		return nil, err
	}
	return newWlCaptureSource(source), nil
}

// Destroy destroys every bound manager. Call once, after all sessions
// are gone.
func (c *Capturer) Destroy() error {
	var firstErr error
	destroy := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.copyCaptureManager != nil {
		destroy(c.copyCaptureManager.Destroy())
	}
	if c.outputManager != nil {
		destroy(c.outputManager.Destroy())
	}
	if c.toplevelManager != nil {
		destroy(c.toplevelManager.Destroy())
	}
	if c.workspaceManager != nil {
		destroy(c.workspaceManager.Destroy())
	}
	return firstErr
}

// Rect is a rectangle in buffer coordinates.
type Rect struct {
	X      int32
	Y      int32
	Width  int32
	Height int32
}

// Formats describes the buffer constraints the compositor announced
// for a session.
type Formats struct {
	BufferWidth   uint32
	BufferHeight  uint32
	ShmFormats    []uint32
	DmabufDevice  uint64
	HasDmabuf     bool
	DmabufFormats []DmabufFormat
}

// DmabufFormat is one dmabuf format with its supported modifiers.
type DmabufFormat struct {
	Format    uint32
	Modifiers []uint64
}

// Frame carries the metadata accumulated for one captured frame.
type Frame struct {
	Transform   uint32
	Damage      []Rect
	PresentTime time.Duration
	Presented   bool
}

// SessionHandlers contains callback functions for session events. The
// struct mirrors the asynchronous protocol events: the compositor may
// re-announce constraints at any time, each batch ending in InitDone.
type SessionHandlers struct {
	// OnInitDone is called when a constraints batch is complete.
	OnInitDone func(session *CaptureSession, formats Formats)
	// OnStopped is called when the compositor ends the session. The
	// session object is destroyed after the callback returns.
	OnStopped func(session *CaptureSession)
}

// FrameHandlers contains callback functions for frame events.
type FrameHandlers struct {
	// OnReady is called when the attached buffer holds the captured
	// frame. The frame object is destroyed after the callback returns.
	OnReady func(frame Frame)
	// OnFailed is called when the capture failed. The frame object is
	// destroyed after the callback returns.
	OnFailed func(reason FailureReason)
}

// CaptureSession owns one live ext_image_copy_capture_session_v1
// object and accumulates the compositor's buffer constraints.
type CaptureSession struct {
	session *protocols.ImageCopyCaptureSession

	mu      sync.Mutex
	formats Formats

	once sync.Once
}

// CreateSession creates a capture source for src and opens a capture
// session on it. The intermediate source object is released before
// returning; the session keeps its own compositor-side reference.
//
// Requires the image copy capture manager; a compositor that
// advertises a capture source manager without it is out of contract,
// and that combination panics. Absence of the source manager for
// src's kind returns *CaptureSourceError as in CreateSource.
func (c *Capturer) CreateSession(src CaptureSource, options CaptureOptions, handlers SessionHandlers) (*CaptureSession, error) {
	source, err := c.CreateSource(src)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = source.Destroy()
	}()

	if c.copyCaptureManager == nil {
		panic("ext capture source with no image copy capture manager")
	}

	proto, err := c.copyCaptureManager.CreateSession(source.source.(*protocols.ImageCaptureSource), uint32(options))
	if err != nil {
		return nil, err
	}

	session := &CaptureSession{session: proto}
	wireSessionHandlers(session, proto, handlers)

	return session, nil
}

// wireSessionHandlers routes the session's constraint events into the
// accumulated Formats and forwards lifecycle callbacks.
func wireSessionHandlers(session *CaptureSession, proto *protocols.ImageCopyCaptureSession, handlers SessionHandlers) {
	proto.SetBufferSizeHandler(func(width, height uint32) {
		session.mu.Lock()
		session.formats.BufferWidth = width
		session.formats.BufferHeight = height
		session.mu.Unlock()
	})
	proto.SetShmFormatHandler(func(format uint32) {
		session.mu.Lock()
		session.formats.ShmFormats = append(session.formats.ShmFormats, format)
		session.mu.Unlock()
	})
	proto.SetDmabufDeviceHandler(func(device []byte) {
		dev, err := parseDmabufDevice(device)
		if err != nil {
			logger.Warn("dropping malformed dmabuf_device event", "err", err)
			return
		}
		session.mu.Lock()
		session.formats.DmabufDevice = dev
		session.formats.HasDmabuf = true
		session.mu.Unlock()
	})
	proto.SetDmabufFormatHandler(func(format uint32, modifiers []byte) {
		mods, err := parseDmabufModifiers(modifiers)
		if err != nil {
			logger.Warn("dropping malformed dmabuf_format event", "err", err)
			return
		}
		session.mu.Lock()
		session.formats.DmabufFormats = append(session.formats.DmabufFormats, DmabufFormat{Format: format, Modifiers: mods})
		session.mu.Unlock()
	})
	proto.SetDoneHandler(func() {
		if handlers.OnInitDone != nil {
			handlers.OnInitDone(session, session.Formats())
		}
	})
	proto.SetStoppedHandler(func() {
		if handlers.OnStopped != nil {
			handlers.OnStopped(session)
		}
		_ = session.Destroy()
	})
}

// Formats returns a snapshot of the constraints received so far.
// Meaningful once OnInitDone has fired.
func (s *CaptureSession) Formats() Formats {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.formats
	snapshot.ShmFormats = append([]uint32(nil), s.formats.ShmFormats...)
	snapshot.DmabufFormats = append([]DmabufFormat(nil), s.formats.DmabufFormats...)
	return snapshot
}

// Capture attaches the buffer, marks the damaged regions and asks the
// compositor to fill it. The frame completes asynchronously through
// the handlers.
func (s *CaptureSession) Capture(buffer wl.Object, bufferDamage []Rect, handlers FrameHandlers) (*CaptureFrame, error) {
	proto, err := s.session.CreateFrame()
	if err != nil {
		return nil, err
	}

	frame := &CaptureFrame{frame: proto}
	proto.SetTransformHandler(func(transform uint32) {
		frame.mu.Lock()
		frame.info.Transform = transform
		frame.mu.Unlock()
	})
	proto.SetDamageHandler(func(x, y, width, height int32) {
		frame.mu.Lock()
		frame.info.Damage = append(frame.info.Damage, Rect{X: x, Y: y, Width: width, Height: height})
		frame.mu.Unlock()
	})
	proto.SetPresentationTimeHandler(func(hi, lo, nsec uint32) {
		frame.mu.Lock()
		frame.info.PresentTime = presentationTime(hi, lo, nsec)
		frame.info.Presented = true
		frame.mu.Unlock()
	})
	proto.SetReadyHandler(func() {
		if handlers.OnReady != nil {
			frame.mu.Lock()
			info := frame.info
			frame.mu.Unlock()
			handlers.OnReady(info)
		}
		_ = frame.Destroy()
	})
	proto.SetFailedHandler(func(reason uint32) {
		if handlers.OnFailed != nil {
			handlers.OnFailed(FailureReason(reason))
		}
		_ = frame.Destroy()
	})

	if err := proto.AttachBuffer(buffer); err != nil {
		return nil, err
	}
	for _, rect := range bufferDamage {
		if err := proto.DamageBuffer(rect.X, rect.Y, rect.Width, rect.Height); err != nil {
			return nil, err
		}
	}
	if err := proto.Capture(); err != nil {
		return nil, err
	}

	return frame, nil
}

// Destroy releases the session. Safe to call more than once.
func (s *CaptureSession) Destroy() error {
	var err error
	s.once.Do(func() {
		err = s.session.Destroy()
	})
	return err
}

// CursorSessionHandlers contains callback functions for cursor session
// events. Position and hotspot are relative to the main capture source.
type CursorSessionHandlers struct {
	// OnEnter is called when the cursor enters the captured area.
	OnEnter func()
	// OnLeave is called when the cursor leaves the captured area.
	OnLeave func()
	// OnPosition is called when the cursor moves.
	OnPosition func(x, y int32)
	// OnHotspot is called when the cursor image hotspot changes.
	OnHotspot func(x, y int32)
}

// CaptureCursorSession owns one live
// ext_image_copy_capture_cursor_session_v1 object.
type CaptureCursorSession struct {
	session *protocols.ImageCopyCaptureCursorSession

	once sync.Once
}

// CreateCursorSession creates a capture source for src and opens a
// cursor capture session on it for the given pointer. Preconditions
// match CreateSession.
func (c *Capturer) CreateCursorSession(src CaptureSource, pointer wl.Object, handlers CursorSessionHandlers) (*CaptureCursorSession, error) {
	source, err := c.CreateSource(src)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = source.Destroy()
	}()

	if c.copyCaptureManager == nil {
		panic("ext capture source with no image copy capture manager")
	}

	proto, err := c.copyCaptureManager.CreatePointerCursorSession(source.source.(*protocols.ImageCaptureSource), pointer)
	if err != nil {
		return nil, err
	}

	proto.SetEnterHandler(handlers.OnEnter)
	proto.SetLeaveHandler(handlers.OnLeave)
	proto.SetPositionHandler(handlers.OnPosition)
	proto.SetHotspotHandler(handlers.OnHotspot)

	return &CaptureCursorSession{session: proto}, nil
}

// CaptureSession opens the capture session that delivers the cursor
// buffer itself, with the same lifecycle as a main capture session.
func (s *CaptureCursorSession) CaptureSession(handlers SessionHandlers) (*CaptureSession, error) {
	proto, err := s.session.GetCaptureSession()
	if err != nil {
		return nil, err
	}
	session := &CaptureSession{session: proto}
	wireSessionHandlers(session, proto, handlers)
	return session, nil
}

// Destroy releases the cursor session. Safe to call more than once.
func (s *CaptureCursorSession) Destroy() error {
	var err error
	s.once.Do(func() {
		err = s.session.Destroy()
	})
	return err
}

// CaptureFrame owns one live ext_image_copy_capture_frame_v1 object.
type CaptureFrame struct {
	frame *protocols.ImageCopyCaptureFrame

	mu   sync.Mutex
	info Frame

	once sync.Once
}

// Destroy releases the frame. Safe to call more than once; Ready and
// Failed destroy the frame themselves after the callback.
func (f *CaptureFrame) Destroy() error {
	var err error
	f.once.Do(func() {
		err = f.frame.Destroy()
	})
	return err
}
