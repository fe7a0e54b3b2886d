// Package relationship derives the overall application state a client
// should be in from the three inputs that decide it: the authenticated
// identity, its profile, and its active couple.
package relationship

import "couply-backend/internal/models"

// State is the top-level experience a client should show
type State string

const (
	// StateLoading means one of the three inputs has not been resolved yet
	StateLoading State = "loading"
	// StateUnauthenticated means no identity, or an unverified email
	StateUnauthenticated State = "unauthenticated"
	// StateProfileMissing means profile resolution failed for a verified
	// identity; clients treat this as an error, not a route forward
	StateProfileMissing State = "profile_missing"
	// StateOnboarding means identity and profile exist but no active couple
	StateOnboarding State = "onboarding"
	// StateLinked means identity, profile and active couple are all present
	StateLinked State = "linked"
)

// Identity is a read-only copy of the authenticated account for the
// lifetime of a session
type Identity struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// Snapshot holds the latest resolution of all three inputs. Each Checked
// flag records that the corresponding fetch has been attempted; deriving is
// gated on all three so partial data never flashes a wrong state.
type Snapshot struct {
	SessionChecked bool
	Identity       *Identity

	ProfileChecked bool
	Profile        *models.Profile
	ProfileFailed  bool

	CoupleChecked bool
	Couple        *models.CoupleDetail
}

// Derive computes the state for a snapshot. It is a pure function: there is
// no stored previous state, every relevant change re-derives from scratch.
func Derive(s Snapshot) State {
	if !s.SessionChecked {
		return StateLoading
	}
	if s.Identity == nil || !s.Identity.EmailVerified {
		return StateUnauthenticated
	}
	if !s.ProfileChecked {
		return StateLoading
	}
	if s.ProfileFailed || s.Profile == nil {
		return StateProfileMissing
	}
	if !s.CoupleChecked {
		return StateLoading
	}
	if s.Couple == nil {
		return StateOnboarding
	}
	return StateLinked
}
