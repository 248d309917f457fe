package config

import "time"

// SessionConfig controls session lifecycle behavior.
type SessionConfig struct {
	// RedirectDelay is how long the forced-logout notice stays visible
	// before the client navigates to the login screen. The credential clear
	// always completes before this delay starts.
	RedirectDelay time.Duration `env:"REDIRECT_DELAY" envDefault:"1s"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.RedirectDelay < 0 {
		s.RedirectDelay = time.Second
	}
}
