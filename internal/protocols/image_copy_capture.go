package protocols

import (
	"github.com/bnema/wlturbo/wl"
)

// Protocol interface names
const (
	ImageCopyCaptureManagerInterface       = "ext_image_copy_capture_manager_v1"
	ImageCopyCaptureSessionInterface       = "ext_image_copy_capture_session_v1"
	ImageCopyCaptureFrameInterface         = "ext_image_copy_capture_frame_v1"
	ImageCopyCaptureCursorSessionInterface = "ext_image_copy_capture_cursor_session_v1"
)

// ImageCopyCaptureManager creates capture sessions from capture sources.
type ImageCopyCaptureManager struct {
	wl.BaseProxy
}

// NewImageCopyCaptureManager creates a new image copy capture manager
func NewImageCopyCaptureManager(ctx *wl.Context) *ImageCopyCaptureManager {
	manager := &ImageCopyCaptureManager{}
	manager.SetContext(ctx)
	ctx.Register(manager)
	return manager
}

// CreateSession requests a capture session for the given source.
// Options is the ext_image_copy_capture_manager_v1.options bitmask
// (bit 0: paint cursors onto captured frames).
func (m *ImageCopyCaptureManager) CreateSession(source *ImageCaptureSource, options uint32) (*ImageCopyCaptureSession, error) {
	session := &ImageCopyCaptureSession{}
	session.SetContext(m.Context())
	session.SetID(m.Context().AllocateID())
	m.Context().Register(session)

	// Opcode 0: create_session(new_id, source, options)
	const opcode = 0

	err := m.Context().SendRequest(m, opcode, session, source, options)
	if err != nil {
		m.Context().Unregister(session)
		return nil, err
	}

	return session, nil
}

// CreatePointerCursorSession requests a cursor capture session for the
// given source and pointer.
func (m *ImageCopyCaptureManager) CreatePointerCursorSession(source *ImageCaptureSource, pointer wl.Object) (*ImageCopyCaptureCursorSession, error) {
	session := &ImageCopyCaptureCursorSession{}
	session.SetContext(m.Context())
	session.SetID(m.Context().AllocateID())
	m.Context().Register(session)

	// Opcode 1: create_pointer_cursor_session(new_id, source, pointer)
	const opcode = 1

	err := m.Context().SendRequest(m, opcode, session, source, pointer)
	if err != nil {
		m.Context().Unregister(session)
		return nil, err
	}

	return session, nil
}

// Destroy destroys the manager
func (m *ImageCopyCaptureManager) Destroy() error {
	// Opcode 2: destroy
	const opcode = 2
	err := m.Context().SendRequest(m, opcode)
	m.Context().Unregister(m)
	return err
}

// Dispatch handles incoming events (the manager has no events)
func (m *ImageCopyCaptureManager) Dispatch(_ *wl.Event) {
}

// ImageCopyCaptureSession represents an ext_image_copy_capture_session_v1
// object. The compositor streams buffer constraints on it, ending each
// batch with a done event.
type ImageCopyCaptureSession struct {
	wl.BaseProxy
	bufferSizeHandler   func(width, height uint32)
	shmFormatHandler    func(format uint32)
	dmabufDeviceHandler func(device []byte)
	dmabufFormatHandler func(format uint32, modifiers []byte)
	doneHandler         func()
	stoppedHandler      func()
}

// SetBufferSizeHandler sets the handler for buffer_size events
func (s *ImageCopyCaptureSession) SetBufferSizeHandler(handler func(width, height uint32)) {
	s.bufferSizeHandler = handler
}

// SetShmFormatHandler sets the handler for shm_format events
func (s *ImageCopyCaptureSession) SetShmFormatHandler(handler func(format uint32)) {
	s.shmFormatHandler = handler
}

// SetDmabufDeviceHandler sets the handler for dmabuf_device events.
// The device argument is the raw dev_t byte array from the wire.
func (s *ImageCopyCaptureSession) SetDmabufDeviceHandler(handler func(device []byte)) {
	s.dmabufDeviceHandler = handler
}

// SetDmabufFormatHandler sets the handler for dmabuf_format events.
// The modifiers argument is the raw array of 64-bit modifier words.
func (s *ImageCopyCaptureSession) SetDmabufFormatHandler(handler func(format uint32, modifiers []byte)) {
	s.dmabufFormatHandler = handler
}

// SetDoneHandler sets the handler for done events
func (s *ImageCopyCaptureSession) SetDoneHandler(handler func()) {
	s.doneHandler = handler
}

// SetStoppedHandler sets the handler for stopped events
func (s *ImageCopyCaptureSession) SetStoppedHandler(handler func()) {
	s.stoppedHandler = handler
}

// CreateFrame requests a new frame object on this session.
func (s *ImageCopyCaptureSession) CreateFrame() (*ImageCopyCaptureFrame, error) {
	frame := &ImageCopyCaptureFrame{}
	frame.SetContext(s.Context())
	frame.SetID(s.Context().AllocateID())
	s.Context().Register(frame)

	// Opcode 0: create_frame(new_id)
	const opcode = 0

	err := s.Context().SendRequest(s, opcode, frame)
	if err != nil {
		s.Context().Unregister(frame)
		return nil, err
	}

	return frame, nil
}

// Destroy destroys the session
func (s *ImageCopyCaptureSession) Destroy() error {
	// Opcode 1: destroy
	const opcode = 1
	err := s.Context().SendRequest(s, opcode)
	s.Context().Unregister(s)
	return err
}

// Dispatch handles incoming events
func (s *ImageCopyCaptureSession) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // buffer_size
		if s.bufferSizeHandler != nil {
			width := event.Uint32()
			height := event.Uint32()
			s.bufferSizeHandler(width, height)
		}
	case 1: // shm_format
		if s.shmFormatHandler != nil {
			s.shmFormatHandler(event.Uint32())
		}
	case 2: // dmabuf_device
		if s.dmabufDeviceHandler != nil {
			r := newArgReader(event.Data())
			device, err := r.array()
			if err != nil {
				return
			}
			s.dmabufDeviceHandler(device)
		}
	case 3: // dmabuf_format
		if s.dmabufFormatHandler != nil {
			r := newArgReader(event.Data())
			format, err := r.uint32()
			if err != nil {
				return
			}
			modifiers, err := r.array()
			if err != nil {
				return
			}
			s.dmabufFormatHandler(format, modifiers)
		}
	case 4: // done
		if s.doneHandler != nil {
			s.doneHandler()
		}
	case 5: // stopped
		if s.stoppedHandler != nil {
			s.stoppedHandler()
		}
	}
}

// ImageCopyCaptureFrame represents an ext_image_copy_capture_frame_v1
// object tracking a single capture into a client buffer.
type ImageCopyCaptureFrame struct {
	wl.BaseProxy
	transformHandler        func(transform uint32)
	damageHandler           func(x, y, width, height int32)
	presentationTimeHandler func(tvSecHi, tvSecLo, tvNsec uint32)
	readyHandler            func()
	failedHandler           func(reason uint32)
}

// SetTransformHandler sets the handler for transform events
func (f *ImageCopyCaptureFrame) SetTransformHandler(handler func(transform uint32)) {
	f.transformHandler = handler
}

// SetDamageHandler sets the handler for damage events
func (f *ImageCopyCaptureFrame) SetDamageHandler(handler func(x, y, width, height int32)) {
	f.damageHandler = handler
}

// SetPresentationTimeHandler sets the handler for presentation_time events
func (f *ImageCopyCaptureFrame) SetPresentationTimeHandler(handler func(tvSecHi, tvSecLo, tvNsec uint32)) {
	f.presentationTimeHandler = handler
}

// SetReadyHandler sets the handler for ready events
func (f *ImageCopyCaptureFrame) SetReadyHandler(handler func()) {
	f.readyHandler = handler
}

// SetFailedHandler sets the handler for failed events
func (f *ImageCopyCaptureFrame) SetFailedHandler(handler func(reason uint32)) {
	f.failedHandler = handler
}

// Destroy destroys the frame
func (f *ImageCopyCaptureFrame) Destroy() error {
	// Opcode 0: destroy
	const opcode = 0
	err := f.Context().SendRequest(f, opcode)
	f.Context().Unregister(f)
	return err
}

// AttachBuffer attaches a wl_buffer to capture into.
func (f *ImageCopyCaptureFrame) AttachBuffer(buffer wl.Object) error {
	// Opcode 1: attach_buffer(buffer)
	const opcode = 1
	return f.Context().SendRequest(f, opcode, buffer)
}

// DamageBuffer marks a region of the attached buffer as needing repaint.
func (f *ImageCopyCaptureFrame) DamageBuffer(x, y, width, height int32) error {
	// Opcode 2: damage_buffer(x, y, width, height)
	const opcode = 2
	return f.Context().SendRequest(f, opcode, x, y, width, height)
}

// Capture asks the compositor to fill the attached buffer.
func (f *ImageCopyCaptureFrame) Capture() error {
	// Opcode 3: capture
	const opcode = 3
	return f.Context().SendRequest(f, opcode)
}

// Dispatch handles incoming events
func (f *ImageCopyCaptureFrame) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // transform
		if f.transformHandler != nil {
			f.transformHandler(event.Uint32())
		}
	case 1: // damage
		if f.damageHandler != nil {
			x := event.Int32()
			y := event.Int32()
			width := event.Int32()
			height := event.Int32()
			f.damageHandler(x, y, width, height)
		}
	case 2: // presentation_time
		if f.presentationTimeHandler != nil {
			hi := event.Uint32()
			lo := event.Uint32()
			nsec := event.Uint32()
			f.presentationTimeHandler(hi, lo, nsec)
		}
	case 3: // ready
		if f.readyHandler != nil {
			f.readyHandler()
		}
	case 4: // failed
		if f.failedHandler != nil {
			f.failedHandler(event.Uint32())
		}
	}
}

// ImageCopyCaptureCursorSession represents an
// ext_image_copy_capture_cursor_session_v1 object.
type ImageCopyCaptureCursorSession struct {
	wl.BaseProxy
	enterHandler    func()
	leaveHandler    func()
	positionHandler func(x, y int32)
	hotspotHandler  func(x, y int32)
}

// SetEnterHandler sets the handler for enter events
func (c *ImageCopyCaptureCursorSession) SetEnterHandler(handler func()) {
	c.enterHandler = handler
}

// SetLeaveHandler sets the handler for leave events
func (c *ImageCopyCaptureCursorSession) SetLeaveHandler(handler func()) {
	c.leaveHandler = handler
}

// SetPositionHandler sets the handler for position events
func (c *ImageCopyCaptureCursorSession) SetPositionHandler(handler func(x, y int32)) {
	c.positionHandler = handler
}

// SetHotspotHandler sets the handler for hotspot events
func (c *ImageCopyCaptureCursorSession) SetHotspotHandler(handler func(x, y int32)) {
	c.hotspotHandler = handler
}

// Destroy destroys the cursor session
func (c *ImageCopyCaptureCursorSession) Destroy() error {
	// Opcode 0: destroy
	const opcode = 0
	err := c.Context().SendRequest(c, opcode)
	c.Context().Unregister(c)
	return err
}

// GetCaptureSession requests the capture session feeding this cursor
// session.
func (c *ImageCopyCaptureCursorSession) GetCaptureSession() (*ImageCopyCaptureSession, error) {
	session := &ImageCopyCaptureSession{}
	session.SetContext(c.Context())
	session.SetID(c.Context().AllocateID())
	c.Context().Register(session)

	// Opcode 1: get_capture_session(new_id)
	const opcode = 1

	err := c.Context().SendRequest(c, opcode, session)
	if err != nil {
		c.Context().Unregister(session)
		return nil, err
	}

	return session, nil
}

// Dispatch handles incoming events
func (c *ImageCopyCaptureCursorSession) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // enter
		if c.enterHandler != nil {
			c.enterHandler()
		}
	case 1: // leave
		if c.leaveHandler != nil {
			c.leaveHandler()
		}
	case 2: // position
		if c.positionHandler != nil {
			x := event.Int32()
			y := event.Int32()
			c.positionHandler(x, y)
		}
	case 3: // hotspot
		if c.hotspotHandler != nil {
			x := event.Int32()
			y := event.Int32()
			c.hotspotHandler(x, y)
		}
	}
}
