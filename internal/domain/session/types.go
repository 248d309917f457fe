package session

// Package session contains domain-level types for the client's
// authentication state. It is pure and free of transport/adapter concerns.

// Status represents the client's belief about whether, and as whom,
// the user is authenticated.
type Status string

const (
	// StatusAnonymous means no credentials are held.
	StatusAnonymous Status = "anonymous"
	// StatusAuthenticating means a stored token is being validated or a
	// login/register call is in flight.
	StatusAuthenticating Status = "authenticating"
	// StatusAuthenticated means a token and user snapshot are held.
	StatusAuthenticated Status = "authenticated"
	// StatusExpired is the transient state entered when the backend
	// reports the credentials are no longer valid. The controller clears
	// it back to anonymous immediately after the side effects run.
	StatusExpired Status = "expired"
)

// Role is the application role reported by the backend.
// Keep string form for easy persistence.
type Role string

const (
	RoleUser       Role = "USER"
	RoleDoctor     Role = "DOCTOR"
	RoleAdmin      Role = "ADMIN"
	RoleSuperadmin Role = "SUPERADMIN"
)

// UserSnapshot is the cached identity returned by the backend at login or
// who-am-i time. It is owned by the session controller; other components
// read it but never mutate it.
type UserSnapshot struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	Role          Role    `json:"role"`
	IsDoctor      bool    `json:"is_doctor"`
	CreditBalance float64 `json:"credit_balance"`
}

// Credentials is the durable pair persisted by a credential store.
// Token and User are always stored and cleared together.
type Credentials struct {
	Token string       `json:"token"`
	User  UserSnapshot `json:"user"`
}

// Snapshot is a point-in-time view of the session state.
// Token and User are set only when Status is StatusAuthenticated.
type Snapshot struct {
	Status Status
	Token  string
	User   *UserSnapshot
}

// Authenticated reports whether the snapshot carries a usable identity.
func (s Snapshot) Authenticated() bool { return s.Status == StatusAuthenticated }
