package relationship

import (
	"testing"

	"couply-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func verifiedIdentity() *Identity {
	return &Identity{UserID: "u1", Email: "a@b.c", EmailVerified: true}
}

func TestDerive(t *testing.T) {
	profile := &models.Profile{ID: "p1", UserID: "u1"}
	couple := &models.CoupleDetail{Couple: models.Couple{ID: "c1", Status: models.CoupleStatusActive}}

	tests := []struct {
		name string
		snap Snapshot
		want State
	}{
		{
			name: "zero snapshot is loading",
			snap: Snapshot{},
			want: StateLoading,
		},
		{
			name: "no identity is unauthenticated",
			snap: Snapshot{SessionChecked: true},
			want: StateUnauthenticated,
		},
		{
			name: "unverified email is unauthenticated",
			snap: Snapshot{
				SessionChecked: true,
				Identity:       &Identity{UserID: "u1", EmailVerified: false},
			},
			want: StateUnauthenticated,
		},
		{
			name: "profile not yet checked is loading",
			snap: Snapshot{
				SessionChecked: true,
				Identity:       verifiedIdentity(),
			},
			want: StateLoading,
		},
		{
			name: "profile fetch failure is profile_missing",
			snap: Snapshot{
				SessionChecked: true,
				Identity:       verifiedIdentity(),
				ProfileChecked: true,
				ProfileFailed:  true,
				CoupleChecked:  true,
			},
			want: StateProfileMissing,
		},
		{
			name: "checked but absent profile is profile_missing",
			snap: Snapshot{
				SessionChecked: true,
				Identity:       verifiedIdentity(),
				ProfileChecked: true,
				CoupleChecked:  true,
			},
			want: StateProfileMissing,
		},
		{
			name: "couple not yet checked is loading",
			snap: Snapshot{
				SessionChecked: true,
				Identity:       verifiedIdentity(),
				ProfileChecked: true,
				Profile:        profile,
			},
			want: StateLoading,
		},
		{
			name: "no couple is onboarding",
			snap: Snapshot{
				SessionChecked: true,
				Identity:       verifiedIdentity(),
				ProfileChecked: true,
				Profile:        profile,
				CoupleChecked:  true,
			},
			want: StateOnboarding,
		},
		{
			name: "active couple is linked",
			snap: Snapshot{
				SessionChecked: true,
				Identity:       verifiedIdentity(),
				ProfileChecked: true,
				Profile:        profile,
				CoupleChecked:  true,
				Couple:         couple,
			},
			want: StateLinked,
		},
		{
			name: "identity wins over stale profile data",
			snap: Snapshot{
				SessionChecked: true,
				ProfileChecked: true,
				Profile:        profile,
				CoupleChecked:  true,
				Couple:         couple,
			},
			want: StateUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Derive(tt.snap))
		})
	}
}

func TestDeriveIsPure(t *testing.T) {
	snap := Snapshot{
		SessionChecked: true,
		Identity:       verifiedIdentity(),
		ProfileChecked: true,
		Profile:        &models.Profile{ID: "p1"},
		CoupleChecked:  true,
	}

	first := Derive(snap)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Derive(snap))
	}
}
