package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent quill configuration stored as config.toml
// in the .quill/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int          `toml:"version"`
	Client  ClientConfig `toml:"client"`
	Chat    ChatConfig   `toml:"chat"`
}

// ClientConfig holds settings for talking to the assistant API.
type ClientConfig struct {
	// APITarget is the full base URL of the assistant API (scheme + host + port).
	APITarget string `toml:"api_target,omitempty"`

	// Assistant is the default assistant id used when no --assistant flag is given.
	Assistant string `toml:"assistant,omitempty"`

	// RequestTimeout bounds a single exchange, in seconds. The stream decoder
	// has no deadline of its own; the chat command arms the cancellation
	// function after this long. Zero means wait indefinitely.
	RequestTimeout uint `toml:"request_timeout,omitempty"`
}

// ChatConfig holds chat command behavior.
type ChatConfig struct {
	// IncludeHistory asks the server to prepend prior conversation turns.
	// The tag carries no omitempty so an explicit false survives a save.
	IncludeHistory bool `toml:"include_history"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"client.api_target": {
		get: func(c *Config) string { return c.Client.APITarget },
		set: func(c *Config, v string) error { c.Client.APITarget = v; return nil },
	},
	"client.assistant": {
		get: func(c *Config) string { return c.Client.Assistant },
		set: func(c *Config, v string) error { c.Client.Assistant = v; return nil },
	},
	"client.request_timeout": {
		get: func(c *Config) string {
			if c.Client.RequestTimeout == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Client.RequestTimeout), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for client.request_timeout: %w", err)
			}
			c.Client.RequestTimeout = uint(n)
			return nil
		},
	},
	"chat.include_history": {
		get: func(c *Config) string { return strconv.FormatBool(c.Chat.IncludeHistory) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for chat.include_history: %w", err)
			}
			c.Chat.IncludeHistory = b
			return nil
		},
	},
}
