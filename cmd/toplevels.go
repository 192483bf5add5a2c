package cmd

import (
	"errors"
	"fmt"

	"github.com/MalpenZibo/libwlcapture-go/toplevel_info"
	"github.com/spf13/cobra"
)

var toplevelsCmd = &cobra.Command{
	Use:   "toplevels",
	Short: "List toplevel windows known to the compositor",
	RunE:  runToplevels,
}

func runToplevels(cmd *cobra.Command, args []string) error {
	c, err := connect()
	if err != nil {
		return fmt.Errorf("failed to connect to Wayland display: %w", err)
	}
	defer c.Close()

	state, err := toplevel_info.NewToplevelInfoState(c.Context(), c, toplevel_info.ToplevelHandlers{})
	if errors.Is(err, toplevel_info.ErrUnsupported) {
		return fmt.Errorf("compositor does not advertise ext_foreign_toplevel_list_v1")
	}
	if err != nil {
		return fmt.Errorf("failed to bind foreign toplevel list: %w", err)
	}
	defer state.Destroy()

	if err := settle(c); err != nil {
		return err
	}

	toplevels := state.Toplevels()
	if len(toplevels) == 0 {
		fmt.Println("No toplevels reported")
		return nil
	}
	for _, t := range toplevels {
		info := t.Info()
		fmt.Printf("%-20s %-30s %s\n", info.AppID, info.Title, info.Identifier)
	}
	return nil
}
