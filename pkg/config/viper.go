package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/dialchat/pkg/dotdir"
)

// EnvPrefix prefixes every environment variable viper binds.
const EnvPrefix = "DIALCHAT"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the DIALCHAT_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (DIALCHAT_DIAL_DEPLOYMENT, DIALCHAT_CHAT_STREAM, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper materializes the effective configuration after flags, env and
// file have been layered.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Dial: DialConfig{
			Endpoint:   v.GetString("dial.endpoint"),
			Deployment: v.GetString("dial.deployment"),
			APIKeyEnv:  v.GetString("dial.api_key_env"),
			Timeout:    v.GetString("dial.timeout"),
		},
		Chat: ChatConfig{
			Stream:       v.GetBool("chat.stream"),
			Markdown:     v.GetBool("chat.markdown"),
			SystemPrompt: v.GetString("chat.system_prompt"),
		},
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Dial
	v.SetDefault("dial.endpoint", d.Dial.Endpoint)
	v.SetDefault("dial.deployment", d.Dial.Deployment)
	v.SetDefault("dial.api_key_env", d.Dial.APIKeyEnv)
	v.SetDefault("dial.timeout", d.Dial.Timeout)

	// Chat
	v.SetDefault("chat.stream", d.Chat.Stream)
	v.SetDefault("chat.markdown", d.Chat.Markdown)
	v.SetDefault("chat.system_prompt", d.Chat.SystemPrompt)
}
