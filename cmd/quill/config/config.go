// Package configcmder provides the config command for managing persistent
// quill configuration stored in the .quill/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent quill configuration.

Configuration is stored as config.toml in the .quill/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  client.api_target, client.assistant, client.request_timeout,
  chat.include_history

Use subcommands to get, set, or list configuration values:
  quill config set <key> <value>    Set a configuration value
  quill config get <key>            Get a configuration value
  quill config list                 List all configuration values

Examples:
  quill config set client.assistant editor
  quill config set client.request_timeout 60
  quill config get client.api_target
  quill config list`

const configShortDesc string = "Manage persistent quill configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
