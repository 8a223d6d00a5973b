// Package configcmder provides the config command for managing persistent
// inlay configuration stored in the .inlay/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent inlay configuration.

Configuration is stored as config.toml in the .inlay/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  storage.provider, storage.sqlite_path, storage.postgres_dsn,
  api.listen, client.api_target,
  host.watch_paths, host.prefetch, host.prefetch_workers,
  events.provider, events.brokers, events.topic

Use subcommands to get, set, or list configuration values:
  inlay config set <key> <value>    Set a configuration value
  inlay config get <key>            Get a configuration value
  inlay config list                 List all configuration values

Examples:
  inlay config set client.api_target http://localhost:8082
  inlay config set events.provider kafka
  inlay config get storage.provider
  inlay config list`

const configShortDesc string = "Manage persistent inlay configuration"

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
