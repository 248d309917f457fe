package config

import "time"

// ReplayConfig controls the offline queue replay schedule.
type ReplayConfig struct {
	// Interval is how often the scheduler attempts a replay pass.
	Interval time.Duration `env:"INTERVAL" envDefault:"30s"`

	// Concurrency bounds how many queued entries replay in parallel.
	Concurrency int `env:"CONCURRENCY" envDefault:"4"`
}

// Sanitize applies guardrails to replay configuration values.
func (r *ReplayConfig) Sanitize() {
	if r.Interval < time.Second {
		r.Interval = time.Second
	}
	if r.Concurrency < 1 {
		r.Concurrency = 1
	}
	if r.Concurrency > 16 {
		r.Concurrency = 16
	}
}
