package screencopy

import (
	"errors"
	"testing"
	"time"

	"github.com/bnema/wlturbo/wl"

	"github.com/MalpenZibo/libwlcapture-go/client"
	"github.com/MalpenZibo/libwlcapture-go/internal/protocols"
)

// Unit tests that don't require a compositor

// fakeObject stands in for any wl.Object handle.
type fakeObject uint32

func (o fakeObject) ID() uint32 { return uint32(o) }

// fakeSource counts destroy requests.
type fakeSource struct {
	id       uint32
	destroys int
}

func (s *fakeSource) ID() uint32     { return s.id }
func (s *fakeSource) Destroy() error { s.destroys++; return nil }

type bindCall struct {
	name    uint32
	iface   string
	version uint32
}

// fakeBinder is a Binder backed by a static global table.
type fakeBinder struct {
	globals map[string][2]uint32 // iface -> name, version
	binds   []bindCall
}

func (b *fakeBinder) Global(iface string) (uint32, uint32, bool) {
	g, ok := b.globals[iface]
	return g[0], g[1], ok
}

func (b *fakeBinder) Bind(name uint32, iface string, version uint32, proxy wl.Proxy) error {
	b.binds = append(b.binds, bindCall{name: name, iface: iface, version: version})
	return nil
}

func TestBindVersion(t *testing.T) {
	if v := bindVersion(3, 1); v != 1 {
		t.Errorf("bindVersion(3, 1) = %d, want 1", v)
	}
	if v := bindVersion(1, 1); v != 1 {
		t.Errorf("bindVersion(1, 1) = %d, want 1", v)
	}
	if v := bindVersion(1, 4); v != 1 {
		t.Errorf("bindVersion(1, 4) = %d, want 1", v)
	}
}

func TestNewCapturerNoGlobals(t *testing.T) {
	// A compositor without any capture manager globals. No bind is
	// issued, so a nil context is never touched.
	binder := &fakeBinder{globals: map[string][2]uint32{}}
	capturer, err := NewCapturer(nil, binder)
	if err != nil {
		t.Fatalf("NewCapturer failed: %v", err)
	}
	if len(binder.binds) != 0 {
		t.Errorf("issued %d binds, want 0", len(binder.binds))
	}

	if capturer.SupportsCopyCapture() {
		t.Error("SupportsCopyCapture should be false without the manager global")
	}

	kinds := []CaptureSourceKind{CaptureSourceOutput, CaptureSourceToplevel, CaptureSourceWorkspace}
	for _, kind := range kinds {
		if capturer.SupportsKind(kind) {
			t.Errorf("SupportsKind(%s) should be false", kind)
		}
	}

	sources := []CaptureSource{
		OutputSource{Output: fakeObject(10)},
		ToplevelSource{Toplevel: fakeObject(11)},
		WorkspaceSource{Workspace: fakeObject(12)},
	}
	for _, src := range sources {
		_, err := capturer.CreateSource(src)
		var capErr *CaptureSourceError
		if !errors.As(err, &capErr) {
			t.Fatalf("CreateSource(%s) error = %v, want *CaptureSourceError", src.Kind(), err)
		}
		if capErr.Kind != src.Kind() {
			t.Errorf("CaptureSourceError.Kind = %s, want %s", capErr.Kind, src.Kind())
		}
	}
}

func TestCaptureSourceErrorMessage(t *testing.T) {
	err := &CaptureSourceError{Kind: CaptureSourceWorkspace}
	expected := "capture kind 'workspace' unsupported by compositor"
	if err.Error() != expected {
		t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
	}
}

func TestCreateSourceDispatch(t *testing.T) {
	var gotHandle wl.Object
	capturer := &Capturer{
		sources: map[CaptureSourceKind]createSourceFunc{
			CaptureSourceOutput: func(handle wl.Object) (destroyable, error) {
				gotHandle = handle
				return &fakeSource{id: 42}, nil
			},
		},
	}

	source, err := capturer.CreateSource(OutputSource{Output: fakeObject(7)})
	if err != nil {
		t.Fatalf("CreateSource failed: %v", err)
	}
	if source.ID() != 42 {
		t.Errorf("source.ID() = %d, want 42", source.ID())
	}
	if gotHandle == nil || gotHandle.ID() != 7 {
		t.Errorf("factory received handle %v, want id 7", gotHandle)
	}

	// The output factory must not serve toplevel sources.
	_, err = capturer.CreateSource(ToplevelSource{Toplevel: fakeObject(8)})
	var capErr *CaptureSourceError
	if !errors.As(err, &capErr) || capErr.Kind != CaptureSourceToplevel {
		t.Errorf("CreateSource(toplevel) error = %v, want toplevel CaptureSourceError", err)
	}
}

func TestCreateSourceFactoryError(t *testing.T) {
	wireErr := errors.New("connection closed")
	capturer := &Capturer{
		sources: map[CaptureSourceKind]createSourceFunc{
			CaptureSourceOutput: func(wl.Object) (destroyable, error) {
				return nil, wireErr
			},
		},
	}

	_, err := capturer.CreateSource(OutputSource{Output: fakeObject(1)})
	if !errors.Is(err, wireErr) {
		t.Errorf("CreateSource error = %v, want %v", err, wireErr)
	}
}

func TestWlCaptureSourceDestroyOnce(t *testing.T) {
	fake := &fakeSource{id: 5}
	source := newWlCaptureSource(fake)

	for i := 0; i < 3; i++ {
		if err := source.Destroy(); err != nil {
			t.Fatalf("Destroy call %d failed: %v", i+1, err)
		}
	}
	if fake.destroys != 1 {
		t.Errorf("destroy request sent %d times, want exactly 1", fake.destroys)
	}
}

func TestCaptureSourceComparability(t *testing.T) {
	a := OutputSource{Output: fakeObject(1)}
	b := OutputSource{Output: fakeObject(1)}
	c := OutputSource{Output: fakeObject(2)}

	if a != b {
		t.Error("sources with the same handle should compare equal")
	}
	if a == c {
		t.Error("sources with different handles should not compare equal")
	}

	// Variants must work as map keys.
	seen := map[CaptureSource]int{}
	seen[a]++
	seen[b]++
	seen[ToplevelSource{Toplevel: fakeObject(1)}]++
	if seen[a] != 2 {
		t.Errorf("map lookup via equal key = %d, want 2", seen[a])
	}
	if len(seen) != 2 {
		t.Errorf("map has %d keys, want 2", len(seen))
	}
}

func TestCaptureSourceKindString(t *testing.T) {
	cases := map[CaptureSourceKind]string{
		CaptureSourceOutput:    "output",
		CaptureSourceToplevel:  "toplevel",
		CaptureSourceWorkspace: "workspace",
	}
	for kind, want := range cases {
		if kind.String() != want {
			t.Errorf("%d.String() = %q, want %q", kind, kind.String(), want)
		}
	}
}

func TestSessionInitDoneDelivery(t *testing.T) {
	proto := &protocols.ImageCopyCaptureSession{}
	session := &CaptureSession{session: proto}

	var fired int
	var gotSession *CaptureSession
	wireSessionHandlers(session, proto, SessionHandlers{
		OnInitDone: func(s *CaptureSession, formats Formats) {
			fired++
			gotSession = s
		},
	})

	// Opcode 4 is the session's done event.
	proto.Dispatch(&wl.Event{Opcode: 4})

	if fired != 1 {
		t.Fatalf("OnInitDone fired %d times, want 1", fired)
	}
	if gotSession != session {
		t.Error("OnInitDone should receive its own session")
	}
}

func TestFormatsSnapshotIsIndependent(t *testing.T) {
	session := &CaptureSession{}
	session.formats = Formats{
		BufferWidth:   800,
		BufferHeight:  600,
		ShmFormats:    []uint32{1, 2},
		DmabufFormats: []DmabufFormat{{Format: 3, Modifiers: []uint64{7}}},
	}

	snapshot := session.Formats()
	snapshot.ShmFormats[0] = 99
	snapshot.DmabufFormats[0].Format = 99

	if session.formats.ShmFormats[0] != 1 {
		t.Error("snapshot mutation leaked into session shm formats")
	}
	if session.formats.DmabufFormats[0].Format != 3 {
		t.Error("snapshot mutation leaked into session dmabuf formats")
	}
}

func TestNewCapturerLiveCompositor(t *testing.T) {
	c, err := client.NewClient()
	if err != nil {
		t.Skipf("Cannot test without Wayland: %v", err)
	}
	defer c.Close()

	capturer, err := NewCapturer(c.Context(), c)
	if err != nil {
		t.Fatalf("NewCapturer failed: %v", err)
	}
	defer capturer.Destroy()

	// Supported kinds must agree with the registry's global table.
	globals := c.Globals()
	checks := map[CaptureSourceKind]string{
		CaptureSourceOutput:    "ext_output_image_capture_source_manager_v1",
		CaptureSourceToplevel:  "ext_foreign_toplevel_image_capture_source_manager_v1",
		CaptureSourceWorkspace: "zcosmic_workspace_image_capture_source_manager_v1",
	}
	for kind, iface := range checks {
		_, advertised := globals[iface]
		if capturer.SupportsKind(kind) != advertised {
			t.Errorf("SupportsKind(%s) = %v, but global advertised = %v", kind, !advertised, advertised)
		}
	}
}

func TestParseDmabufDevice(t *testing.T) {
	dev, err := parseDmabufDevice([]byte{0x01, 0x02, 0, 0, 0, 0, 0, 0})
	if err != nil {
		t.Fatalf("parseDmabufDevice failed: %v", err)
	}
	if dev != 0x0201 {
		t.Errorf("device = %#x, want 0x0201", dev)
	}

	if _, err := parseDmabufDevice([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for short payload")
	}
}

func TestParseDmabufModifiers(t *testing.T) {
	data := make([]byte, 16)
	data[0] = 0x10 // first modifier 0x10
	data[8] = 0x20 // second modifier 0x20

	mods, err := parseDmabufModifiers(data)
	if err != nil {
		t.Fatalf("parseDmabufModifiers failed: %v", err)
	}
	if len(mods) != 2 || mods[0] != 0x10 || mods[1] != 0x20 {
		t.Errorf("modifiers = %v, want [0x10 0x20]", mods)
	}

	if mods, err := parseDmabufModifiers(nil); err != nil || len(mods) != 0 {
		t.Errorf("empty payload should decode to no modifiers, got %v, %v", mods, err)
	}

	if _, err := parseDmabufModifiers(make([]byte, 12)); err == nil {
		t.Error("expected error for misaligned payload")
	}
}

func TestPresentationTime(t *testing.T) {
	got := presentationTime(0, 2, 500)
	want := 2*time.Second + 500*time.Nanosecond
	if got != want {
		t.Errorf("presentationTime(0, 2, 500) = %v, want %v", got, want)
	}

	// High word carries the upper 32 bits of the seconds count.
	got = presentationTime(1, 0, 0)
	want = time.Duration(uint64(1)<<32) * time.Second
	if got != want {
		t.Errorf("presentationTime(1, 0, 0) = %v, want %v", got, want)
	}
}
