package gateway

import (
	"time"

	"github.com/tidwall/gjson"

	"github.com/vitatrack/client-core/internal/domain/access"
	"github.com/vitatrack/client-core/internal/domain/session"
	apperrors "github.com/vitatrack/client-core/internal/errors"
)

// The backend's response shapes are loosely typed: fields come and go.
// Everything crossing the gateway boundary goes through an explicit
// parse/validate step here. A 2xx body missing a required field is a
// ServerContractError, never an optimistic success.

// ParseCredentials validates a login/register success body. Both the token
// and the user object are required; a response with one but not the other
// must not be treated as success.
func ParseCredentials(body []byte) (session.Credentials, error) {
	root := gjson.ParseBytes(body)

	token := root.Get("token")
	if !token.Exists() || token.String() == "" {
		return session.Credentials{}, apperrors.ServerContract("auth response missing token")
	}
	userField := root.Get("user")
	if !userField.Exists() || !userField.IsObject() {
		return session.Credentials{}, apperrors.ServerContract("auth response missing user")
	}

	user, err := parseUser(userField)
	if err != nil {
		return session.Credentials{}, err
	}
	return session.Credentials{Token: token.String(), User: user}, nil
}

// ParseUserSnapshot validates a who-am-i body.
func ParseUserSnapshot(body []byte) (session.UserSnapshot, error) {
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return session.UserSnapshot{}, apperrors.ServerContract("user response is not an object")
	}
	return parseUser(root)
}

func parseUser(res gjson.Result) (session.UserSnapshot, error) {
	id := res.Get("id")
	if !id.Exists() || id.String() == "" {
		return session.UserSnapshot{}, apperrors.ServerContract("user object missing id")
	}
	email := res.Get("email")
	if !email.Exists() || email.String() == "" {
		return session.UserSnapshot{}, apperrors.ServerContract("user object missing email")
	}

	role := session.Role(res.Get("role").String())
	if role == "" {
		role = session.RoleUser
	}

	balance := res.Get("credit_balance").Float()
	if balance < 0 {
		return session.UserSnapshot{}, apperrors.ServerContractf(
			"user object has negative credit balance %v", balance)
	}

	return session.UserSnapshot{
		ID:            id.String(),
		Email:         email.String(),
		Role:          role,
		IsDoctor:      res.Get("is_doctor").Bool(),
		CreditBalance: balance,
	}, nil
}

// ParseEntitlement validates a subscription-check body. has_access is
// required; trial details are adopted as far as they are present.
func ParseEntitlement(body []byte) (access.Entitlement, error) {
	root := gjson.ParseBytes(body)

	hasAccess := root.Get("has_access")
	if !hasAccess.Exists() {
		return access.Entitlement{}, apperrors.ServerContract("entitlement response missing has_access")
	}

	ent := access.Entitlement{
		HasAccess: hasAccess.Bool(),
		Email:     root.Get("email").String(),
	}

	trial := root.Get("trial_details")
	if trial.Exists() {
		ent.Trial = access.TrialDetails{
			InTrial:        trial.Get("in_trial").Bool(),
			TrialUsed:      trial.Get("trial_used").Bool(),
			TrialStart:     parseTimestamp(trial.Get("trial_start")),
			TrialEnd:       parseTimestamp(trial.Get("trial_end")),
			RemainingHours: parseNumber(trial.Get("trial_remaining_hours")),
		}
	}
	return ent, nil
}

// ParseErrorMessage pulls a human-readable message out of an error body.
// Falls back through the backend's two conventions, then empty.
func ParseErrorMessage(body []byte) string {
	root := gjson.ParseBytes(body)
	if msg := root.Get("error"); msg.Exists() {
		return msg.String()
	}
	return root.Get("message").String()
}

func parseTimestamp(res gjson.Result) *time.Time {
	if !res.Exists() || res.String() == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, res.String())
	if err != nil {
		return nil
	}
	return &ts
}

func parseNumber(res gjson.Result) *float64 {
	if !res.Exists() {
		return nil
	}
	v := res.Float()
	return &v
}
