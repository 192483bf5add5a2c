package cmd

import (
	"fmt"

	"github.com/bnema/wlturbo/wl"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MalpenZibo/libwlcapture-go/internal/config"
	"github.com/MalpenZibo/libwlcapture-go/screencopy"
)

var paintCursors bool

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "Negotiate a capture session on an output and print its buffer constraints",
	Long: `Formats opens an image copy capture session on the first advertised
output and prints the buffer constraints the compositor announces:
buffer size, shm formats, and the dmabuf device and format table when
dmabuf capture is offered.`,
	RunE: runFormats,
}

func init() {
	formatsCmd.Flags().BoolVar(&paintCursors, "cursors", false, "Composite the cursor into captured frames")
	viper.BindPFlag("capture.paint_cursors", formatsCmd.Flags().Lookup("cursors"))
}

func runFormats(cmd *cobra.Command, args []string) error {
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

	if !capturer.SupportsKind(screencopy.CaptureSourceOutput) || !capturer.SupportsCopyCapture() {
		return fmt.Errorf("compositor does not support output capture sessions")
	}

	name, version, ok := c.Global("wl_output")
	if !ok {
		return fmt.Errorf("compositor advertises no wl_output")
	}
	output := &wl.Output{}
	if err := c.Bind(name, "wl_output", version, output); err != nil {
		return fmt.Errorf("failed to bind wl_output: %w", err)
	}

	var options screencopy.CaptureOptions
	if config.Get().Capture.PaintCursors {
		options |= screencopy.PaintCursors
	}

	done := make(chan screencopy.Formats, 1)
	session, err := capturer.CreateSession(
		screencopy.OutputSource{Output: output},
		options,
		screencopy.SessionHandlers{
			OnInitDone: func(_ *screencopy.CaptureSession, formats screencopy.Formats) {
				select {
				case done <- formats:
				default:
				}
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create capture session: %w", err)
	}
	defer session.Destroy()

	if err := settle(c); err != nil {
		return err
	}

	select {
	case formats := <-done:
		fmt.Printf("Buffer size: %dx%d\n", formats.BufferWidth, formats.BufferHeight)
		fmt.Printf("Shm formats: %d\n", len(formats.ShmFormats))
		for _, f := range formats.ShmFormats {
			fmt.Printf("  0x%08x\n", f)
		}
		if formats.HasDmabuf {
			fmt.Printf("Dmabuf device: %#x\n", formats.DmabufDevice)
			for _, f := range formats.DmabufFormats {
				fmt.Printf("  format 0x%08x, %d modifiers\n", f.Format, len(f.Modifiers))
			}
		} else {
			fmt.Println("Dmabuf: not offered")
		}
	default:
		return fmt.Errorf("compositor sent no buffer constraints")
	}

	return nil
}
