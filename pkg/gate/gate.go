// Package gate decides whether the current visitor is an authorized operator.
// The decision is a pure function of the session lookup and the operator
// registry lookup; callers recompute it on every entry to the gated surface
// instead of trusting a cached flag, so revoked privilege is re-observed.
package gate

// State is the access state of the gated dashboard surface.
type State uint8

const (
	// Unknown means the checks have not completed yet (loading).
	Unknown State = iota
	// Denied covers no session, a non-privileged session, and lookup failure.
	Denied
	// Granted means a session exists and its principal is a listed operator.
	Granted
)

func (s State) String() string {
	switch s {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}

// Resolve recomputes the access state from scratch. A session alone is
// insufficient: the principal must also be listed in the operator registry.
// Any lookup error fails closed.
func Resolve(hasSession, operatorListed bool, lookupErr error) State {
	if lookupErr != nil {
		return Denied
	}
	if !hasSession {
		return Denied
	}
	if !operatorListed {
		return Denied
	}
	return Granted
}

// AfterLogout is the state after an explicit logout. The remote sign-out
// call's outcome does not matter; logout always denies.
func AfterLogout(signOutErr error) State {
	_ = signOutErr
	return Denied
}
