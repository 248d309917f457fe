package config

// AppConfig is the main client configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - http.go: Backend endpoint and HTTP client configuration
//   - storage.go: Durable local storage configuration
//   - access.go: Access gate and override policy configuration
//   - replay.go: Offline queue replay configuration
type AppConfig struct {
	// IsDev controls development mode behavior (verbose logging, relaxed
	// endpoint checks). Set DEV=true for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Backend endpoint and HTTP client configuration
	HTTP HTTPConfig

	// Durable local storage configuration
	Storage StorageConfig `envPrefix:"STORAGE_"`
	Redis   RedisConfig   `envPrefix:"REDIS_"`

	// Session behavior configuration
	Session SessionConfig `envPrefix:"SESSION_"`

	// Access gate configuration
	Access AccessConfig `envPrefix:"ACCESS_"`

	// Offline queue replay configuration
	Replay ReplayConfig `envPrefix:"REPLAY_"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Session.Sanitize()
	c.Replay.Sanitize()
}
