package config

const (
	defaultEndpoint   = "https://ai-proxy.lab.epam.com"
	defaultDeployment = "gpt-4o"
	defaultAPIKeyEnv  = "DIAL_API_KEY"
	defaultTimeout    = "5m"

	// DefaultSystemPrompt is used when the user gives no system prompt.
	DefaultSystemPrompt = "You are an assistant who answers concisely and informatively."
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Dial: DialConfig{
			Endpoint:   defaultEndpoint,
			Deployment: defaultDeployment,
			APIKeyEnv:  defaultAPIKeyEnv,
			Timeout:    defaultTimeout,
		},
		Chat: ChatConfig{
			Stream: true,
		},
	}
}
