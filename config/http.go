package config

import "time"

// HTTPConfig contains backend endpoint and HTTP client configuration.
type HTTPConfig struct {
	// BaseURL is the base URL of the VitaTrack backend API.
	BaseURL string `env:"VITATRACK_BASE_URL" envDefault:"http://localhost:8000"`

	// Timeout bounds each outbound request end to end.
	Timeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
}

// Sanitize applies guardrails to HTTP client configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.Timeout <= 0 {
		h.Timeout = 30 * time.Second
	}
}
