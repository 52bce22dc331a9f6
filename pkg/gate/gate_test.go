package gate

import (
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name       string
		hasSession bool
		listed     bool
		err        error
		want       State
	}{
		{"no session", false, false, nil, Denied},
		{"session without operator row", true, false, nil, Denied},
		{"session with operator row", true, true, nil, Granted},
		{"lookup error fails closed", true, true, errors.New("timeout"), Denied},
		{"no session but listed somehow", false, true, nil, Denied},
	}
	for _, tc := range cases {
		if got := Resolve(tc.hasSession, tc.listed, tc.err); got != tc.want {
			t.Errorf("%s: Resolve = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAfterLogoutAlwaysDenied(t *testing.T) {
	if got := AfterLogout(nil); got != Denied {
		t.Fatalf("logout without error: got %v", got)
	}
	if got := AfterLogout(errors.New("sign-out failed")); got != Denied {
		t.Fatalf("logout with error: got %v", got)
	}
}

func TestStateString(t *testing.T) {
	if Unknown.String() != "unknown" || Denied.String() != "denied" || Granted.String() != "granted" {
		t.Fatalf("unexpected state strings: %v %v %v", Unknown, Denied, Granted)
	}
}
