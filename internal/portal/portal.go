// Package portal probes the xdg-desktop-portal ScreenCast interface
// over the session bus. When a compositor implements none of the
// capture protocol extensions, the portal is the usual fallback path
// for screen capture; this package only detects it, it does not
// capture through it.
package portal

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	portalService   = "org.freedesktop.portal.Desktop"
	portalPath      = "/org/freedesktop/portal/desktop"
	screenCastIface = "org.freedesktop.portal.ScreenCast"
)

// Source type bits from org.freedesktop.portal.ScreenCast.AvailableSourceTypes.
const (
	SourceTypeMonitor = 1 << 0
	SourceTypeWindow  = 1 << 1
	SourceTypeVirtual = 1 << 2
)

// ScreenCastInfo describes the portal's screen cast support.
type ScreenCastInfo struct {
	Version     uint32
	SourceTypes uint32
	CursorModes uint32
}

// SupportsMonitor reports whether full-output capture is offered.
func (i ScreenCastInfo) SupportsMonitor() bool {
	return i.SourceTypes&SourceTypeMonitor != 0
}

// SupportsWindow reports whether per-window capture is offered.
func (i ScreenCastInfo) SupportsWindow() bool {
	return i.SourceTypes&SourceTypeWindow != 0
}

// ProbeScreenCast checks whether the ScreenCast portal is reachable on
// the session bus and returns its advertised support. A missing portal
// is reported through the error; callers treat it the same way as a
// missing Wayland global.
func ProbeScreenCast() (*ScreenCastInfo, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	obj := conn.Object(portalService, portalPath)

	var version uint32
	if err := obj.StoreProperty(screenCastIface+".version", &version); err != nil {
		return nil, fmt.Errorf("screencast portal not available: %w", err)
	}

	info := &ScreenCastInfo{Version: version}

	// Optional properties; older portals omit them.
	var sourceTypes uint32
	if err := obj.StoreProperty(screenCastIface+".AvailableSourceTypes", &sourceTypes); err == nil {
		info.SourceTypes = sourceTypes
	}
	var cursorModes uint32
	if err := obj.StoreProperty(screenCastIface+".AvailableCursorModes", &cursorModes); err == nil {
		info.CursorModes = cursorModes
	}

	return info, nil
}
