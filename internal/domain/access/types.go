package access

// Package access contains domain-level types for subscription-gated
// admission decisions. Decisions are ephemeral: recomputed on every
// protected navigation and never persisted.

import "time"

// Reason explains why an admission decision came out the way it did.
type Reason string

const (
	// ReasonNoSession means there is no authenticated session.
	ReasonNoSession Reason = "no_session"
	// ReasonTrialExpired means the trial window was used up and no
	// subscription is active.
	ReasonTrialExpired Reason = "trial_expired"
	// ReasonSubscriptionInactive means no subscription is active and the
	// user is not in a trial.
	ReasonSubscriptionInactive Reason = "subscription_inactive"
	// ReasonGranted means the entitlement authority granted access, or the
	// route does not require a subscription.
	ReasonGranted Reason = "granted"
	// ReasonOverride means a privileged-identity override granted access
	// regardless of entitlement.
	ReasonOverride Reason = "override"
)

// TrialDetails describes the trial window as reported by the entitlement
// authority. Pointer fields are absent when the authority omits them.
type TrialDetails struct {
	InTrial        bool
	TrialStart     *time.Time
	TrialEnd       *time.Time
	TrialUsed      bool
	RemainingHours *float64
}

// Entitlement is the entitlement authority's verdict for the current user.
type Entitlement struct {
	HasAccess bool
	Email     string
	Trial     TrialDetails
}

// Decision is the admission decision for one protected navigation.
// Invariant: Allowed is true only when Reason is granted or override.
type Decision struct {
	Allowed bool
	Reason  Reason
	Trial   TrialDetails
}

// Outcome is the terminal UI state a decision maps to.
type Outcome string

const (
	// OutcomeRedirectLogin sends the user to the login screen, preserving
	// the originally requested path.
	OutcomeRedirectLogin Outcome = "redirect_login"
	// OutcomeDeniedWithUpsell renders trial/subscription details and a path
	// into the subscription flow.
	OutcomeDeniedWithUpsell Outcome = "denied_with_upsell"
	// OutcomeRenderChildren renders the protected content.
	OutcomeRenderChildren Outcome = "render_children"
)

// Outcome maps the decision to its terminal UI state.
func (d Decision) Outcome() Outcome {
	switch {
	case d.Allowed:
		return OutcomeRenderChildren
	case d.Reason == ReasonNoSession:
		return OutcomeRedirectLogin
	default:
		return OutcomeDeniedWithUpsell
	}
}

// Route describes a navigation target as far as admission is concerned.
type Route struct {
	// Path is the route being navigated to, preserved for post-login redirect.
	Path string
	// RequiresSubscription marks routes gated behind the entitlement check.
	RequiresSubscription bool
}
