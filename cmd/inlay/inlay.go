// Package inlaycmder
package inlaycmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/inlay/cmd/inlay/config"
	hostcmder "github.com/papercomputeco/inlay/cmd/inlay/host"
	servecmder "github.com/papercomputeco/inlay/cmd/inlay/serve"
	showcmder "github.com/papercomputeco/inlay/cmd/inlay/show"
	versioncmder "github.com/papercomputeco/inlay/cmd/version"
)

const inlayLongDesc string = `Inlay annotates editor selections with per-line authorship.

Run services using:
  inlay serve          Run the attribution API server
  inlay host           Run the editor host engine over stdio

Inspect and configure using:
  inlay show           Show stored attribution for a document
  inlay config         Manage persistent configuration`

const inlayShortDesc string = "Inlay - Line Authorship Annotations"

func NewInlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inlay",
		Short: inlayShortDesc,
		Long:  inlayLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .inlay/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(hostcmder.NewHostCmd())
	cmd.AddCommand(showcmder.NewShowCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
