package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands and help text inline, so a flag reads the same wherever it is
// registered.
type Flag struct {
	// Name is the long flag name (e.g. "deployment").
	Name string

	// Shorthand is the one-letter short flag (e.g. "m"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "dial.deployment").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddBoolFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagEndpoint     = "endpoint"
	FlagDeployment   = "deployment"
	FlagAPIKeyEnv    = "api-key-env"
	FlagTimeout      = "timeout"
	FlagStream       = "stream"
	FlagMarkdown     = "markdown"
	FlagSystemPrompt = "system-prompt"
)

// ChatFlags holds the flags of the chat command, each bound to a config key.
var ChatFlags = FlagSet{
	FlagEndpoint: {
		Name:        "endpoint",
		Shorthand:   "e",
		ViperKey:    "dial.endpoint",
		Description: "DIAL service base URL",
	},
	FlagDeployment: {
		Name:        "deployment",
		Shorthand:   "m",
		ViperKey:    "dial.deployment",
		Description: "Model deployment to chat with",
	},
	FlagAPIKeyEnv: {
		Name:        "api-key-env",
		ViperKey:    "dial.api_key_env",
		Description: "Environment variable holding the API key",
	},
	FlagTimeout: {
		Name:        "timeout",
		ViperKey:    "dial.timeout",
		Description: "Per-request timeout (e.g. 30s, 5m)",
	},
	FlagStream: {
		Name:        "stream",
		ViperKey:    "chat.stream",
		Description: "Stream replies as they are generated",
	},
	FlagMarkdown: {
		Name:        "markdown",
		ViperKey:    "chat.markdown",
		Description: "Render whole replies as markdown",
	},
	FlagSystemPrompt: {
		Name:        "system-prompt",
		Shorthand:   "s",
		ViperKey:    "chat.system_prompt",
		Description: "System prompt (skips the startup question)",
	},
}

// ChatFlagKeys returns the registry keys of every chat flag, in help order.
func ChatFlagKeys() []string {
	return []string{
		FlagEndpoint,
		FlagDeployment,
		FlagAPIKeyEnv,
		FlagTimeout,
		FlagStream,
		FlagMarkdown,
		FlagSystemPrompt,
	}
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultBool returns the default bool value for a viper key from NewDefaultConfig.
func defaultBool(viperKey string) bool {
	v := viper.New()
	setViperDefaults(v)
	return v.GetBool(viperKey)
}
