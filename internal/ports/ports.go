package ports

// Package ports defines interfaces (hexagonal ports) for the client core.
// Implementations live in internal/adapters and internal/api; orchestration
// in internal/service.

import (
	"context"
	"errors"

	"github.com/vitatrack/client-core/internal/domain/access"
	"github.com/vitatrack/client-core/internal/domain/queue"
	"github.com/vitatrack/client-core/internal/domain/session"
)

// ErrNoCredentials is returned by CredentialStore.Get when nothing is stored.
var ErrNoCredentials = errors.New("no credentials stored")

// CredentialStore persists the current bearer token and cached user snapshot
// under fixed keys, scoped to the client context. Token and user are written
// and removed together; no caller ever observes one without the other.
type CredentialStore interface {
	Get(ctx context.Context) (session.Credentials, error)
	Set(ctx context.Context, creds session.Credentials) error
	Clear(ctx context.Context) error
}

// QueueStore is the durable home of deferred writes. Entries are immutable
// once appended and unordered for replay purposes.
type QueueStore interface {
	Append(ctx context.Context, entry queue.Entry) error
	List(ctx context.Context) ([]queue.Entry, error)
	Remove(ctx context.Context, id string) error
}

// AuthAPI is the slice of the backend the session controller talks to.
type AuthAPI interface {
	// Login exchanges credentials for a bearer token and user snapshot.
	Login(ctx context.Context, email, password string) (session.Credentials, error)
	// Register creates an account and returns a bearer token and user snapshot.
	Register(ctx context.Context, profile RegisterInput) (session.Credentials, error)
	// Me validates the current token and returns the user it belongs to.
	Me(ctx context.Context) (session.UserSnapshot, error)
}

// RegisterInput carries the fields the backend needs to create an account.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
	IsDoctor bool   `json:"is_doctor,omitempty"`
}

// EntitlementSource is the external authority for subscription/trial access.
type EntitlementSource interface {
	Check(ctx context.Context) (access.Entitlement, error)
}

// Navigator receives the redirects the subsystem decides on. The UI layer
// implements it; tests substitute a recording fake.
type Navigator interface {
	// RedirectToLogin navigates to the login screen. fromPath is the
	// originally requested path, preserved for post-login redirect.
	RedirectToLogin(fromPath string)
}

// Notifier surfaces user-visible notices outside any one form, such as the
// "session expired" message shown before the forced login redirect.
type Notifier interface {
	Notify(message string)
}

// ReplayTrigger requests a deferred-replay pass. Kick never blocks; if a
// pass is already pending the request coalesces with it.
type ReplayTrigger interface {
	Kick()
}
