package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MalpenZibo/libwlcapture-go/workspaces"
	"github.com/spf13/cobra"
)

var workspacesCmd = &cobra.Command{
	Use:   "workspaces",
	Short: "List workspaces known to the compositor",
	RunE:  runWorkspaces,
}

func runWorkspaces(cmd *cobra.Command, args []string) error {
	c, err := connect()
	if err != nil {
		return fmt.Errorf("failed to connect to Wayland display: %w", err)
	}
	defer c.Close()

	state, err := workspaces.NewWorkspaceState(c.Context(), c, workspaces.WorkspaceHandlers{})
	if errors.Is(err, workspaces.ErrUnsupported) {
		return fmt.Errorf("compositor does not advertise ext_workspace_manager_v1")
	}
	if err != nil {
		return fmt.Errorf("failed to bind workspace manager: %w", err)
	}
	defer state.Destroy()

	if err := settle(c); err != nil {
		return err
	}

	list := state.Workspaces()
	if len(list) == 0 {
		fmt.Println("No workspaces reported")
		return nil
	}
	for _, w := range list {
		info := w.Info()
		var flags []string
		if info.Active() {
			flags = append(flags, "active")
		}
		if info.Urgent() {
			flags = append(flags, "urgent")
		}
		fmt.Printf("%-10s %-20s %s\n", info.ID, info.Name, strings.Join(flags, ","))
	}
	return nil
}
