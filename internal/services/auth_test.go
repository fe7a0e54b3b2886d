package services

import (
	"context"
	"testing"
	"time"

	"couply-backend/internal/relationship"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret"

func newAuthService(users *fakeUserStore) (*AuthService, *relationship.Store) {
	store := relationship.NewStore()
	return NewAuthService(users, store, testJWTSecret), store
}

func TestSignUp(t *testing.T) {
	users := newFakeUserStore()
	svc, _ := newAuthService(users)

	user, err := svc.SignUp(context.Background(), "  Dana@Example.COM ", "password123", "Dana")
	require.NoError(t, err)

	assert.Equal(t, "dana@example.com", user.Email)
	assert.Equal(t, "Dana", user.Name)
	assert.False(t, user.Verified())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))

	// a verification token was issued
	assert.Len(t, users.tokens, 1)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	users := newFakeUserStore()
	svc, _ := newAuthService(users)

	_, err := svc.SignUp(context.Background(), "dana@example.com", "password123", "Dana")
	require.NoError(t, err)

	_, err = svc.SignUp(context.Background(), "dana@example.com", "otherpassword", "Dana Two")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignIn(t *testing.T) {
	users := newFakeUserStore()
	svc, _ := newAuthService(users)

	created, err := svc.SignUp(context.Background(), "dana@example.com", "password123", "Dana")
	require.NoError(t, err)

	user, token, err := svc.SignIn(context.Background(), "dana@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.NotEmpty(t, token)

	identity, err := svc.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, identity.UserID)
	assert.Equal(t, "dana@example.com", identity.Email)
	assert.False(t, identity.EmailVerified)
}

func TestSignInWrongPassword(t *testing.T) {
	users := newFakeUserStore()
	svc, _ := newAuthService(users)

	_, err := svc.SignUp(context.Background(), "dana@example.com", "password123", "Dana")
	require.NoError(t, err)

	_, _, err = svc.SignIn(context.Background(), "dana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignInUnknownEmail(t *testing.T) {
	users := newFakeUserStore()
	svc, _ := newAuthService(users)

	_, _, err := svc.SignIn(context.Background(), "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyEmail(t *testing.T) {
	users := newFakeUserStore()
	svc, _ := newAuthService(users)

	created, err := svc.SignUp(context.Background(), "dana@example.com", "password123", "Dana")
	require.NoError(t, err)

	var token string
	for tok := range users.tokens {
		token = tok
	}

	user, err := svc.VerifyEmail(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.True(t, user.Verified())

	// a verified account's session token carries the verified claim
	jwt, err := svc.GenerateJWT(user)
	require.NoError(t, err)
	identity, err := svc.ValidateJWT(jwt)
	require.NoError(t, err)
	assert.True(t, identity.EmailVerified)
}

func TestVerifyEmailTokenReuse(t *testing.T) {
	users := newFakeUserStore()
	svc, _ := newAuthService(users)

	_, err := svc.SignUp(context.Background(), "dana@example.com", "password123", "Dana")
	require.NoError(t, err)

	var token string
	for tok := range users.tokens {
		token = tok
	}

	_, err = svc.VerifyEmail(context.Background(), token)
	require.NoError(t, err)

	_, err = svc.VerifyEmail(context.Background(), token)
	assert.ErrorIs(t, err, ErrVerificationUsed)
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	users := newFakeUserStore()
	svc, _ := newAuthService(users)

	_, err := svc.SignUp(context.Background(), "dana@example.com", "password123", "Dana")
	require.NoError(t, err)

	for _, vt := range users.tokens {
		vt.ExpiresAt = time.Now().Add(-time.Hour)
	}
	var token string
	for tok := range users.tokens {
		token = tok
	}

	_, err = svc.VerifyEmail(context.Background(), token)
	assert.ErrorIs(t, err, ErrVerificationExpired)
}

func TestSignOutClearsSnapshot(t *testing.T) {
	users := newFakeUserStore()
	svc, store := newAuthService(users)

	store.Publish("u1", relationship.Snapshot{
		SessionChecked: true,
		Identity:       &relationship.Identity{UserID: "u1", EmailVerified: true},
		ProfileChecked: true,
		CoupleChecked:  true,
	})

	svc.SignOut(context.Background(), "u1")

	snap := store.Get("u1")
	assert.Nil(t, snap.Identity)
	assert.Equal(t, relationship.StateUnauthenticated, relationship.Derive(snap))
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	users := newFakeUserStore()
	svc, _ := newAuthService(users)

	_, err := svc.ValidateJWT("not-a-token")
	assert.Error(t, err)
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	users := newFakeUserStore()
	svc, _ := newAuthService(users)

	other := NewAuthService(users, relationship.NewStore(), "other-secret")
	user, err := svc.SignUp(context.Background(), "dana@example.com", "password123", "Dana")
	require.NoError(t, err)

	token, err := other.GenerateJWT(user)
	require.NoError(t, err)

	_, err = svc.ValidateJWT(token)
	assert.Error(t, err)
}

func TestRegisterDevice(t *testing.T) {
	users := newFakeUserStore()
	svc, _ := newAuthService(users)

	require.NoError(t, svc.RegisterDevice(context.Background(), "u1", "device-token-1"))
	require.NoError(t, svc.RegisterDevice(context.Background(), "u1", "device-token-1"))

	assert.Equal(t, []string{"device-token-1"}, users.devices["u1"])
}
