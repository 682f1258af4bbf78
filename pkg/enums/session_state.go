package enums

import "fmt"

// SessionState is the role-resolution state of a storefront session.
type SessionState string

const (
	SessionUnauthenticated SessionState = "unauthenticated"
	SessionResolving       SessionState = "resolving"
	SessionShopper         SessionState = "shopper"
	SessionOwner           SessionState = "owner"
)

var validSessionStates = []SessionState{
	SessionUnauthenticated,
	SessionResolving,
	SessionShopper,
	SessionOwner,
}

func (s SessionState) String() string {
	return string(s)
}

func (s SessionState) IsValid() bool {
	for _, candidate := range validSessionStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// Role returns the settled role for shopper/owner states.
func (s SessionState) Role() (Role, bool) {
	switch s {
	case SessionOwner:
		return RoleOwner, true
	case SessionShopper:
		return RoleShopper, true
	default:
		return "", false
	}
}

func SessionStateForRole(role Role) SessionState {
	if role == RoleOwner {
		return SessionOwner
	}
	return SessionShopper
}

func ParseSessionState(value string) (SessionState, error) {
	for _, candidate := range validSessionStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid session state %q", value)
}
