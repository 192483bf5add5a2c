package cmd

import (
	"github.com/MalpenZibo/libwlcapture-go/internal/config"
	"github.com/MalpenZibo/libwlcapture-go/internal/logger"
	"github.com/spf13/cobra"
)

var (
	// Version is set during build
	Version = "0.1.0-dev"

	configPath string

	rootCmd = &cobra.Command{
		Use:   "wlcapture",
		Short: "wlcapture - Wayland capture source inspector",
		Long: `wlcapture inspects the image capture protocols advertised by a Wayland
compositor. It reports which capture source kinds (outputs, toplevels,
workspaces) can be captured, lists toplevel windows and workspaces, and
queries the toplevel management capabilities of the compositor.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				config.SetConfigPath(configPath)
			}
			if err := config.Init(); err != nil {
				return err
			}
			if lvl := config.Get().Logging.LogLevel; lvl != "" {
				logger.SetLevel(lvl)
			}
			return nil
		},
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")

	// Add commands
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(formatsCmd)
	rootCmd.AddCommand(toplevelsCmd)
	rootCmd.AddCommand(workspacesCmd)
}
