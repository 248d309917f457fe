package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vitatrack/client-core/internal/domain/session"
	apperrors "github.com/vitatrack/client-core/internal/errors"
	"github.com/vitatrack/client-core/internal/ports"
)

// SessionControllerOptions groups dependencies for SessionController.
type SessionControllerOptions struct {
	API         ports.AuthAPI
	Credentials ports.CredentialStore
	Navigator   ports.Navigator
	Notifier    ports.Notifier
	// RedirectDelay is how long the expiry notice stays visible before the
	// forced navigation to the login screen.
	RedirectDelay time.Duration
	Logger        *slog.Logger
}

// SessionController owns the session state machine and is the single source
// of truth for "who is the current user". It moves between anonymous,
// authenticating, authenticated, and expired; the bearer token and user
// snapshot are set and cleared together, always under the same lock.
type SessionController struct {
	api           ports.AuthAPI
	creds         ports.CredentialStore
	nav           ports.Navigator
	notifier      ports.Notifier
	redirectDelay time.Duration
	logger        *slog.Logger

	mu     sync.Mutex
	status session.Status
	token  string
	user   *session.UserSnapshot
}

// AuthResult is the discriminated outcome of a login or register call.
// These operations never panic and never return a Go error for a rejected
// attempt; callers render Error inline.
type AuthResult struct {
	Success bool
	Error   string
}

// NewSessionController constructs a session controller starting anonymous.
func NewSessionController(opts SessionControllerOptions) (*SessionController, error) {
	if opts.API == nil {
		return nil, errors.New("auth API is required")
	}
	if opts.Credentials == nil {
		return nil, errors.New("credential store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionController{
		api:           opts.API,
		creds:         opts.Credentials,
		nav:           opts.Navigator,
		notifier:      opts.Notifier,
		redirectDelay: opts.RedirectDelay,
		logger:        logger,
		status:        session.StatusAnonymous,
	}, nil
}

// Snapshot returns a point-in-time view of the session state.
func (c *SessionController) Snapshot() session.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := session.Snapshot{Status: c.status}
	if c.status == session.StatusAuthenticated {
		snap.Token = c.token
		user := *c.user
		snap.User = &user
	}
	return snap
}

// CurrentUser returns the cached user snapshot, if authenticated.
func (c *SessionController) CurrentUser() (session.UserSnapshot, bool) {
	snap := c.Snapshot()
	if snap.User == nil {
		return session.UserSnapshot{}, false
	}
	return *snap.User, true
}

// Resume restores the session at startup. With a stored token present the
// controller authenticates against the who-am-i endpoint; validation
// failure of any kind clears the stored pair and lands back at anonymous.
func (c *SessionController) Resume(ctx context.Context) session.Snapshot {
	stored, err := c.creds.Get(ctx)
	if err != nil {
		if !errors.Is(err, ports.ErrNoCredentials) {
			c.logger.WarnContext(ctx, "read stored credentials failed", "error", err)
		}
		return c.Snapshot()
	}

	c.setStatus(session.StatusAuthenticating)

	user, err := c.api.Me(ctx)
	if err != nil {
		c.logger.InfoContext(ctx, "stored token validation failed", "error", err)
		if clearErr := c.creds.Clear(ctx); clearErr != nil {
			c.logger.WarnContext(ctx, "clear stale credentials failed", "error", clearErr)
		}
		c.clearState()
		return c.Snapshot()
	}

	c.setAuthenticated(stored.Token, user)
	return c.Snapshot()
}

// Login authenticates with email and password. A rejected attempt comes
// back as a structured failure, not an error.
func (c *SessionController) Login(ctx context.Context, email, password string) AuthResult {
	return c.authenticate(ctx, func() (session.Credentials, error) {
		return c.api.Login(ctx, email, password)
	})
}

// Register creates an account and signs the new user in.
func (c *SessionController) Register(ctx context.Context, profile ports.RegisterInput) AuthResult {
	return c.authenticate(ctx, func() (session.Credentials, error) {
		return c.api.Register(ctx, profile)
	})
}

func (c *SessionController) authenticate(ctx context.Context, call func() (session.Credentials, error)) AuthResult {
	if !c.beginAuthenticating() {
		return AuthResult{Success: false, Error: "another sign-in is already in progress"}
	}

	creds, err := call()
	if err != nil {
		c.clearState()
		return AuthResult{Success: false, Error: authErrorMessage(err)}
	}

	if saveErr := c.creds.Set(ctx, creds); saveErr != nil {
		c.logger.ErrorContext(ctx, "persist credentials failed", "error", saveErr)
		c.clearState()
		return AuthResult{Success: false, Error: "could not save the session; please try again"}
	}

	c.setAuthenticated(creds.Token, creds.User)
	return AuthResult{Success: true}
}

// Logout clears the stored credentials and returns to anonymous.
func (c *SessionController) Logout(ctx context.Context) error {
	if err := c.creds.Clear(ctx); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	c.clearState()
	return nil
}

// ForceExpire runs the forced-logout sequence after the gateway observes
// an auth-failure status: clear the stored pair, pass through expired back
// to anonymous, surface a notice, and only then schedule the navigation to
// the login screen. The clear always completes before the redirect fires,
// so a re-render of the login screen never sees a stale authenticated
// snapshot. Safe to call redundantly for responses already in flight at
// logout time.
func (c *SessionController) ForceExpire() {
	ctx := context.Background()

	c.mu.Lock()
	c.status = session.StatusExpired
	c.token = ""
	c.user = nil
	c.mu.Unlock()

	if err := c.creds.Clear(ctx); err != nil {
		c.logger.ErrorContext(ctx, "clear credentials on expiry failed", "error", err)
	}
	c.setStatus(session.StatusAnonymous)

	if c.notifier != nil {
		c.notifier.Notify("Your session has expired. Please sign in again.")
	}
	if c.nav != nil {
		time.AfterFunc(c.redirectDelay, func() {
			c.nav.RedirectToLogin("")
		})
	}
}

func (c *SessionController) beginAuthenticating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == session.StatusAuthenticating {
		return false
	}
	c.status = session.StatusAuthenticating
	c.token = ""
	c.user = nil
	return true
}

func (c *SessionController) setAuthenticated(token string, user session.UserSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = session.StatusAuthenticated
	c.token = token
	c.user = &user
}

func (c *SessionController) setStatus(status session.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
}

func (c *SessionController) clearState() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = session.StatusAnonymous
	c.token = ""
	c.user = nil
}

// authErrorMessage maps a backend error onto the inline message a form
// renders. Contract violations never leak raw details to the user.
func authErrorMessage(err error) string {
	switch {
	case apperrors.IsValidation(err):
		var appErr *apperrors.AppError
		errors.As(err, &appErr)
		return appErr.Message
	case apperrors.IsServerContract(err):
		return "the server returned an unexpected response; please try again"
	case apperrors.IsTransport(err) || apperrors.IsTransportFailure(err):
		return "could not reach the server; check your connection"
	case apperrors.IsAuthExpired(err):
		return "invalid credentials"
	default:
		return "sign-in failed; please try again"
	}
}
