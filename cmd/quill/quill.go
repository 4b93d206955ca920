// Package quillcmder
package quillcmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/quillhq/quill/cmd/quill/auth"
	chatcmder "github.com/quillhq/quill/cmd/quill/chat"
	configcmder "github.com/quillhq/quill/cmd/quill/config"
	versioncmder "github.com/quillhq/quill/cmd/version"
)

const quillLongDesc string = `Quill is a writing assistant in your terminal.

Start chatting using:
  quill auth             Store your API token
  quill chat             Start an interactive session
  quill chat --new       Start a fresh conversation`

const quillShortDesc string = "Quill - Terminal Writing Assistant"

func NewQuillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quill",
		Short: quillShortDesc,
		Long:  quillLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .quill/ config directory")

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
