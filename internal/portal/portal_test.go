package portal

import "testing"

func TestScreenCastInfoSourceTypes(t *testing.T) {
	info := ScreenCastInfo{SourceTypes: SourceTypeMonitor | SourceTypeVirtual}
	if !info.SupportsMonitor() {
		t.Error("monitor bit should be reported")
	}
	if info.SupportsWindow() {
		t.Error("window bit should not be reported")
	}

	info = ScreenCastInfo{}
	if info.SupportsMonitor() || info.SupportsWindow() {
		t.Error("zero value should report no source types")
	}
}

func TestProbeScreenCast(t *testing.T) {
	info, err := ProbeScreenCast()
	if err != nil {
		t.Skipf("Cannot test without a screencast portal: %v", err)
	}
	if info.Version == 0 {
		t.Error("a live portal should report a nonzero version")
	}
}
