package security

import "time"

// KeyRotationWindow bounds the lifetime of one application-key version.
// Outside the window the version may still decrypt existing OAuth token
// envelopes but must not issue new ones.
type KeyRotationWindow struct {
	NotBefore time.Time
	NotAfter  time.Time
}

// Allows reports whether the version may encrypt at the given instant.
// Zero bounds are open ended, so the zero window always allows.
func (w KeyRotationWindow) Allows(at time.Time) bool {
	ts := at.UTC()
	if !w.NotBefore.IsZero() && ts.Before(w.NotBefore.UTC()) {
		return false
	}
	if !w.NotAfter.IsZero() && ts.After(w.NotAfter.UTC()) {
		return false
	}
	return true
}
