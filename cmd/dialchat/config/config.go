// Package configcmder provides the config command for managing persistent
// dialchat configuration stored in the .dialchat/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/dialchat/pkg/cliui"
	"github.com/papercomputeco/dialchat/pkg/config"
)

const configLongDesc string = `Manage persistent dialchat configuration.

Configuration is stored as config.toml in the .dialchat/ directory and provides
default values for command flags. CLI flags and DIALCHAT_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  dial.endpoint, dial.deployment, dial.api_key_env, dial.timeout,
  chat.stream, chat.markdown, chat.system_prompt

Use subcommands to get, set, or list configuration values:
  dialchat config set <key> <value>    Set a configuration value
  dialchat config get <key>            Get a configuration value
  dialchat config list                 List all configuration values

Examples:
  dialchat config set dial.deployment gpt-4o-mini
  dialchat config set chat.stream false
  dialchat config get dial.endpoint
  dialchat config list`

const configShortDesc string = "Manage persistent dialchat configuration"

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

// completeKeys offers config keys for the first positional argument.
func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func unknownKeyError(key string) error {
	return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
		key, strings.Join(config.ValidConfigKeys(), ", "))
}

func printTarget(w io.Writer, cfger *config.Configer) {
	if target := cfger.GetTarget(); target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
		return
	}
	fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
}
