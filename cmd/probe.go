package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/MalpenZibo/libwlcapture-go/client"
	"github.com/MalpenZibo/libwlcapture-go/internal/config"
	"github.com/MalpenZibo/libwlcapture-go/internal/logger"
	"github.com/MalpenZibo/libwlcapture-go/internal/portal"
	"github.com/MalpenZibo/libwlcapture-go/screencopy"
	"github.com/MalpenZibo/libwlcapture-go/toplevel_management"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Report compositor capture and toplevel management support",
	Long: `Probe connects to the Wayland compositor, enumerates the advertised
globals, and reports which capture source kinds are supported, whether
image copy capture sessions are available, and which toplevel management
capabilities the compositor exposes.`,
	RunE: runProbe,
}

// connect establishes the Wayland connection using the configured display.
func connect() (*client.Client, error) {
	cfg := config.Get()
	if cfg.Wayland.Display != "" {
		if err := os.Setenv("WAYLAND_DISPLAY", cfg.Wayland.Display); err != nil {
			return nil, fmt.Errorf("failed to set WAYLAND_DISPLAY: %w", err)
		}
	}
	return client.NewClient()
}

// settle runs the configured number of roundtrips so initial protocol
// state (capabilities, toplevel lists, workspace state) arrives.
func settle(c *client.Client) error {
	for i := 0; i < config.Get().Wayland.RoundtripLimit; i++ {
		if err := c.Roundtrip(); err != nil {
			return fmt.Errorf("roundtrip %d failed: %w", i+1, err)
		}
	}
	return nil
}

type capabilityLogger struct{}

func (capabilityLogger) Capabilities(caps []toplevel_management.Capability) {
	logger.Debug("toplevel capabilities received", "count", len(caps))
}

func runProbe(cmd *cobra.Command, args []string) error {
	c, err := connect()
	if err != nil {
		return fmt.Errorf("failed to connect to Wayland display: %w", err)
	}
	defer c.Close()

	capturer, err := screencopy.NewCapturer(c.Context(), c)
	if err != nil {
		return fmt.Errorf("failed to bind capture managers: %w", err)
	}
	defer capturer.Destroy()

	kinds := []screencopy.CaptureSourceKind{
		screencopy.CaptureSourceOutput,
		screencopy.CaptureSourceToplevel,
		screencopy.CaptureSourceWorkspace,
	}

	fmt.Println("Capture source kinds:")
	anySupported := false
	for _, kind := range kinds {
		supported := capturer.SupportsKind(kind)
		anySupported = anySupported || supported
		fmt.Printf("  %-10s %v\n", kind, supported)
	}
	fmt.Printf("Image copy capture: %v\n", capturer.SupportsCopyCapture())

	mgr, err := toplevel_management.NewToplevelManagerState(c.Context(), c, capabilityLogger{})
	switch {
	case errors.Is(err, toplevel_management.ErrUnsupported):
		fmt.Println("Toplevel management: not supported")
	case err != nil:
		return fmt.Errorf("failed to bind toplevel manager: %w", err)
	default:
		if err := settle(c); err != nil {
			return err
		}
		fmt.Printf("Toplevel management: version %d\n", mgr.Version())
		if caps, ok := mgr.Capabilities(); ok {
			for _, cap := range caps {
				fmt.Printf("  %s\n", cap)
			}
		} else {
			fmt.Println("  (capabilities event not yet received)")
		}
	}

	// When the compositor advertises no capture managers at all, the
	// xdg-desktop-portal ScreenCast interface may still offer capture.
	if !anySupported && !capturer.SupportsCopyCapture() {
		info, err := portal.ProbeScreenCast()
		if err != nil {
			logger.Debug("portal probe failed", "error", err)
			fmt.Println("Portal ScreenCast: unavailable")
			return nil
		}
		fmt.Printf("Portal ScreenCast: version %d (monitor=%v window=%v)\n",
			info.Version, info.SupportsMonitor(), info.SupportsWindow())
	}

	return nil
}
