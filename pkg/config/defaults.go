package config

const (
	defaultAPITarget      = "https://api.quill.dev"
	defaultAssistant      = "writer"
	defaultRequestTimeout = 300

	defaultIncludeHistory = true
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Client: ClientConfig{
			APITarget:      defaultAPITarget,
			Assistant:      defaultAssistant,
			RequestTimeout: defaultRequestTimeout,
		},
		Chat: ChatConfig{
			IncludeHistory: defaultIncludeHistory,
		},
	}
}
