package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vitatrack/client-core/internal/domain/access"
	"github.com/vitatrack/client-core/internal/domain/session"
	"github.com/vitatrack/client-core/internal/ports"
)

// SessionReader is the slice of the session controller the gate needs.
type SessionReader interface {
	Snapshot() session.Snapshot
}

// OverridePolicy names the identities admitted to protected routes without
// consulting the entitlement authority. The historical behavior was a
// literal identity check buried in the gate; keeping it behind a policy
// type means it can be removed without touching the gate's control flow.
type OverridePolicy struct {
	emails map[string]struct{}
}

// NewOverridePolicy builds a policy from a list of email addresses.
func NewOverridePolicy(emails []string) OverridePolicy {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return OverridePolicy{emails: set}
}

// Allows reports whether the identity bypasses the entitlement check.
func (p OverridePolicy) Allows(email string) bool {
	_, ok := p.emails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// AccessGateOptions groups dependencies for AccessGate.
type AccessGateOptions struct {
	Sessions     SessionReader
	Entitlements ports.EntitlementSource
	Navigator    ports.Navigator
	Override     OverridePolicy
	Logger       *slog.Logger
}

// AccessGate computes the admission decision for one protected navigation.
// Decisions are ephemeral: recomputed every time, never cached or persisted,
// and protected content is never rendered while one is pending.
type AccessGate struct {
	sessions     SessionReader
	entitlements ports.EntitlementSource
	nav          ports.Navigator
	override     OverridePolicy
	logger       *slog.Logger
}

// NewAccessGate constructs an access gate.
func NewAccessGate(opts AccessGateOptions) (*AccessGate, error) {
	if opts.Sessions == nil {
		return nil, errors.New("session reader is required")
	}
	if opts.Entitlements == nil {
		return nil, errors.New("entitlement source is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AccessGate{
		sessions:     opts.Sessions,
		entitlements: opts.Entitlements,
		nav:          opts.Navigator,
		override:     opts.Override,
		logger:       logger,
	}, nil
}

// Evaluate produces the admission decision for a route. Without an
// authenticated session it decides no-session and issues the login
// redirect, preserving the requested path. Otherwise override identities
// are admitted unconditionally, unsubscribed routes are granted, and
// everything else adopts the entitlement authority's verdict verbatim.
// An error from the authority is returned as-is: the gate never fails
// open, and the caller keeps rendering its loading state.
func (g *AccessGate) Evaluate(ctx context.Context, route access.Route) (access.Decision, error) {
	snap := g.sessions.Snapshot()
	if !snap.Authenticated() {
		if g.nav != nil {
			g.nav.RedirectToLogin(route.Path)
		}
		return access.Decision{Allowed: false, Reason: access.ReasonNoSession}, nil
	}

	if g.override.Allows(snap.User.Email) {
		g.logger.InfoContext(ctx, "access override applied",
			"email", snap.User.Email, "path", route.Path)
		return access.Decision{Allowed: true, Reason: access.ReasonOverride}, nil
	}

	if !route.RequiresSubscription {
		return access.Decision{Allowed: true, Reason: access.ReasonGranted}, nil
	}

	ent, err := g.entitlements.Check(ctx)
	if err != nil {
		return access.Decision{}, fmt.Errorf("entitlement check: %w", err)
	}

	decision := access.Decision{
		Allowed: ent.HasAccess,
		Trial:   ent.Trial,
	}
	switch {
	case ent.HasAccess:
		decision.Reason = access.ReasonGranted
	case !ent.Trial.InTrial && ent.Trial.TrialUsed:
		decision.Reason = access.ReasonTrialExpired
	default:
		decision.Reason = access.ReasonSubscriptionInactive
	}
	return decision, nil
}
