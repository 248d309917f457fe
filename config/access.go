package config

// AccessConfig contains access gate configuration.
type AccessConfig struct {
	// OverrideEmails lists identities admitted to protected routes without
	// consulting the entitlement authority. The default carries forward the
	// identity the backend has always special-cased.
	//
	// TODO(access): move this list server-side behind a role claim so the
	// client stops embedding it.
	OverrideEmails []string `env:"OVERRIDE_EMAILS" envDefault:"hello@vitatrack.app" envSeparator:";"`
}
