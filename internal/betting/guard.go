package betting

import "fmt"

// AccountID is an opaque verified caller identity. The host authenticates
// requests; this package only compares identities for equality.
type AccountID string

// Authorize checks the verified caller against the identity recorded for a
// role ("authority" or "bettor"). It must pass before any mutation.
func Authorize(role string, want, caller AccountID) error {
	if want == "" || caller != want {
		return fmt.Errorf("%s check: %w", role, ErrUnauthorized)
	}

	return nil
}

func (m *Market) authorize(caller AccountID) error {
	return Authorize("authority", m.Authority, caller)
}
