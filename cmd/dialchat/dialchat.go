// Package dialchatcmder
package dialchatcmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/dialchat/cmd/dialchat/chat"
	configcmder "github.com/papercomputeco/dialchat/cmd/dialchat/config"
	versioncmder "github.com/papercomputeco/dialchat/cmd/version"
)

const dialchatLongDesc string = `dialchat is a console chat client for DIAL model deployments.

Start a conversation using:
  dialchat chat            Chat with the configured deployment
  dialchat config list     Show the effective configuration`

const dialchatShortDesc string = "dialchat - console chat for DIAL deployments"

func NewDialchatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "dialchat",
		Short:        dialchatShortDesc,
		Long:         dialchatLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory holding config.toml (default ./.dialchat or ~/.dialchat)")

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
