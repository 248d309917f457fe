package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitatrack/client-core/internal/domain/access"
	"github.com/vitatrack/client-core/internal/domain/session"
	"github.com/vitatrack/client-core/internal/mocks"
	"github.com/vitatrack/client-core/internal/testutil"
)

// staticSession returns a fixed snapshot regardless of calls.
type staticSession struct {
	snap session.Snapshot
}

func (s staticSession) Snapshot() session.Snapshot { return s.snap }

func authenticatedSession(email string) staticSession {
	return staticSession{snap: session.Snapshot{
		Status: session.StatusAuthenticated,
		Token:  "tok",
		User:   &session.UserSnapshot{ID: "u-1", Email: email, Role: session.RoleUser},
	}}
}

func newTestGate(t *testing.T, sessions SessionReader, ents *mocks.MockEntitlementSource, nav *mocks.RecordingNavigator, override OverridePolicy) *AccessGate {
	t.Helper()
	gate, err := NewAccessGate(AccessGateOptions{
		Sessions:     sessions,
		Entitlements: ents,
		Navigator:    nav,
		Override:     override,
		Logger:       testutil.DiscardLogger(),
	})
	require.NoError(t, err)
	return gate
}

func TestAccessGate_NoSessionRedirectsPreservingPath(t *testing.T) {
	nav := &mocks.RecordingNavigator{}
	gate := newTestGate(t, staticSession{snap: session.Snapshot{Status: session.StatusAnonymous}},
		&mocks.MockEntitlementSource{}, nav, OverridePolicy{})

	decision, err := gate.Evaluate(context.Background(), access.Route{
		Path: "/meals/today", RequiresSubscription: true,
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, access.ReasonNoSession, decision.Reason)
	assert.Equal(t, access.OutcomeRedirectLogin, decision.Outcome())
	assert.Equal(t, []string{"/meals/today"}, nav.Redirects())
}

func TestAccessGate_OverrideBypassesEntitlement(t *testing.T) {
	checkCalled := false
	ents := &mocks.MockEntitlementSource{
		CheckFunc: func(context.Context) (access.Entitlement, error) {
			checkCalled = true
			return access.Entitlement{HasAccess: false}, nil
		},
	}
	gate := newTestGate(t, authenticatedSession("Hello@VitaTrack.app"), ents, nil,
		NewOverridePolicy([]string{"hello@vitatrack.app"}))

	decision, err := gate.Evaluate(context.Background(), access.Route{
		Path: "/reports", RequiresSubscription: true,
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, access.ReasonOverride, decision.Reason)
	assert.Equal(t, access.OutcomeRenderChildren, decision.Outcome())
	assert.False(t, checkCalled, "override identities skip the entitlement authority")
}

func TestAccessGate_UnsubscribedRouteGrantedWithoutCheck(t *testing.T) {
	checkCalled := false
	ents := &mocks.MockEntitlementSource{
		CheckFunc: func(context.Context) (access.Entitlement, error) {
			checkCalled = true
			return access.Entitlement{}, nil
		},
	}
	gate := newTestGate(t, authenticatedSession("jane@example.com"), ents, nil, OverridePolicy{})

	decision, err := gate.Evaluate(context.Background(), access.Route{Path: "/settings"})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, access.ReasonGranted, decision.Reason)
	assert.False(t, checkCalled)
}

func TestAccessGate_EntitlementGranted(t *testing.T) {
	ents := &mocks.MockEntitlementSource{
		Entitlement: access.Entitlement{HasAccess: true, Trial: access.TrialDetails{InTrial: true}},
	}
	gate := newTestGate(t, authenticatedSession("jane@example.com"), ents, nil, OverridePolicy{})

	decision, err := gate.Evaluate(context.Background(), access.Route{
		Path: "/reports", RequiresSubscription: true,
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, access.ReasonGranted, decision.Reason)
	assert.True(t, decision.Trial.InTrial)
}

func TestAccessGate_TrialExpired(t *testing.T) {
	ents := &mocks.MockEntitlementSource{
		Entitlement: access.Entitlement{
			HasAccess: false,
			Trial:     access.TrialDetails{InTrial: false, TrialUsed: true},
		},
	}
	gate := newTestGate(t, authenticatedSession("jane@example.com"), ents, nil, OverridePolicy{})

	decision, err := gate.Evaluate(context.Background(), access.Route{
		Path: "/reports", RequiresSubscription: true,
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, access.ReasonTrialExpired, decision.Reason)
	assert.Equal(t, access.OutcomeDeniedWithUpsell, decision.Outcome())
}

func TestAccessGate_SubscriptionInactive(t *testing.T) {
	ents := &mocks.MockEntitlementSource{
		Entitlement: access.Entitlement{HasAccess: false},
	}
	gate := newTestGate(t, authenticatedSession("jane@example.com"), ents, nil, OverridePolicy{})

	decision, err := gate.Evaluate(context.Background(), access.Route{
		Path: "/reports", RequiresSubscription: true,
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, access.ReasonSubscriptionInactive, decision.Reason)
}

func TestAccessGate_EntitlementErrorNeverFailsOpen(t *testing.T) {
	ents := &mocks.MockEntitlementSource{
		CheckFunc: func(context.Context) (access.Entitlement, error) {
			return access.Entitlement{}, errors.New("upstream unavailable")
		},
	}
	gate := newTestGate(t, authenticatedSession("jane@example.com"), ents, nil, OverridePolicy{})

	decision, err := gate.Evaluate(context.Background(), access.Route{
		Path: "/reports", RequiresSubscription: true,
	})
	require.Error(t, err)
	assert.False(t, decision.Allowed)
}

func TestOverridePolicy(t *testing.T) {
	policy := NewOverridePolicy([]string{" Hello@VitaTrack.app ", "", "ops@vitatrack.app"})

	assert.True(t, policy.Allows("hello@vitatrack.app"))
	assert.True(t, policy.Allows("HELLO@vitatrack.APP"))
	assert.True(t, policy.Allows("ops@vitatrack.app"))
	assert.False(t, policy.Allows("someone@example.com"))
	assert.False(t, policy.Allows(""))

	empty := OverridePolicy{}
	assert.False(t, empty.Allows("hello@vitatrack.app"))
}
