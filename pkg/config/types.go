package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent dialchat configuration stored as
// config.toml in the .dialchat/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version int        `toml:"version"`
	Dial    DialConfig `toml:"dial"`
	Chat    ChatConfig `toml:"chat"`
}

// DialConfig addresses the completion deployment.
type DialConfig struct {
	Endpoint   string `toml:"endpoint,omitempty"`
	Deployment string `toml:"deployment,omitempty"`

	// APIKeyEnv names the environment variable holding the API key. The key
	// itself is never written to config.toml.
	APIKeyEnv string `toml:"api_key_env,omitempty"`

	// Timeout is a Go duration string, e.g. "5m".
	Timeout string `toml:"timeout,omitempty"`
}

// ChatConfig holds settings for the interactive chat session.
type ChatConfig struct {
	Stream       bool   `toml:"stream"`
	Markdown     bool   `toml:"markdown"`
	SystemPrompt string `toml:"system_prompt,omitempty"`
}

// TimeoutDuration parses Dial.Timeout. An empty value means no timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Dial.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Dial.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid dial.timeout: %w", err)
	}
	return d, nil
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"dial.endpoint": {
		get: func(c *Config) string { return c.Dial.Endpoint },
		set: func(c *Config, v string) error { c.Dial.Endpoint = v; return nil },
	},
	"dial.deployment": {
		get: func(c *Config) string { return c.Dial.Deployment },
		set: func(c *Config, v string) error { c.Dial.Deployment = v; return nil },
	},
	"dial.api_key_env": {
		get: func(c *Config) string { return c.Dial.APIKeyEnv },
		set: func(c *Config, v string) error { c.Dial.APIKeyEnv = v; return nil },
	},
	"dial.timeout": {
		get: func(c *Config) string { return c.Dial.Timeout },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for dial.timeout: %w", err)
			}
			c.Dial.Timeout = v
			return nil
		},
	},
	"chat.stream": {
		get: func(c *Config) string { return strconv.FormatBool(c.Chat.Stream) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for chat.stream: %w", err)
			}
			c.Chat.Stream = b
			return nil
		},
	},
	"chat.markdown": {
		get: func(c *Config) string { return strconv.FormatBool(c.Chat.Markdown) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for chat.markdown: %w", err)
			}
			c.Chat.Markdown = b
			return nil
		},
	},
	"chat.system_prompt": {
		get: func(c *Config) string { return c.Chat.SystemPrompt },
		set: func(c *Config, v string) error { c.Chat.SystemPrompt = v; return nil },
	},
}
