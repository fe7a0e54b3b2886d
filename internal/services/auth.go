package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"couply-backend/internal/models"
	"couply-backend/internal/relationship"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtExpDays      = 365
	verificationTTL = 24 * time.Hour
)

// userStore is the account persistence the auth service depends on
type userStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	MarkVerified(ctx context.Context, userID string, at time.Time) error
	CreateVerificationToken(ctx context.Context, token *models.VerificationToken) error
	GetVerificationToken(ctx context.Context, token string) (*models.VerificationToken, error)
	MarkTokenUsed(ctx context.Context, token string, at time.Time) error
	UpsertDeviceToken(ctx context.Context, dt *models.DeviceToken) error
}

// AuthService handles accounts, email verification and session tokens
type AuthService struct {
	users     userStore
	store     *relationship.Store
	jwtSecret string
}

// NewAuthService creates a new auth service
func NewAuthService(users userStore, store *relationship.Store, jwtSecret string) *AuthService {
	return &AuthService{
		users:     users,
		store:     store,
		jwtSecret: jwtSecret,
	}
}

// SignUp registers a new account and issues an email verification token.
// The account starts unverified; until verification it resolves to the
// unauthenticated state.
func (s *AuthService) SignUp(ctx context.Context, email, password, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.issueVerification(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SignIn checks credentials and returns the account with a session token.
// An unverified account still signs in; its token carries verified=false so
// every downstream check routes it to re-verification.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if isNoRows(err) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.GenerateJWT(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// SignOut clears the user's relationship snapshot so no profile or couple
// data survives into the next state evaluation
func (s *AuthService) SignOut(ctx context.Context, userID string) {
	s.store.Clear(userID)
}

// VerifyEmail consumes a verification token and marks the account verified
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	vt, err := s.users.GetVerificationToken(ctx, token)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrVerificationExpired
		}
		return nil, fmt.Errorf("failed to get verification token: %w", err)
	}

	if vt.UsedAt != nil {
		return nil, ErrVerificationUsed
	}
	if time.Now().After(vt.ExpiresAt) {
		return nil, ErrVerificationExpired
	}

	now := time.Now()
	if err := s.users.MarkVerified(ctx, vt.UserID, now); err != nil {
		return nil, fmt.Errorf("failed to mark user verified: %w", err)
	}
	if err := s.users.MarkTokenUsed(ctx, token, now); err != nil {
		return nil, fmt.Errorf("failed to mark token used: %w", err)
	}

	user, err := s.users.GetByID(ctx, vt.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	log.Info().Str("user_id", user.ID).Msg("Email verified")
	return user, nil
}

// ResendVerification issues a fresh verification token for an unverified
// account
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if isNoRows(err) {
			// no account enumeration: pretend success
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.Verified() {
		return nil
	}

	return s.issueVerification(ctx, user)
}

func (s *AuthService) issueVerification(ctx context.Context, user *models.User) error {
	vt := &models.VerificationToken{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(verificationTTL),
		CreatedAt: time.Now(),
	}
	if err := s.users.CreateVerificationToken(ctx, vt); err != nil {
		return fmt.Errorf("failed to create verification token: %w", err)
	}

	// delivery is handled by the mail pipeline watching this log stream
	log.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Str("token", vt.Token).
		Msg("Verification token issued")
	return nil
}

// RegisterDevice stores an APNs device token for push delivery
func (s *AuthService) RegisterDevice(ctx context.Context, userID, deviceToken string) error {
	dt := &models.DeviceToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     deviceToken,
		CreatedAt: time.Now(),
	}
	if err := s.users.UpsertDeviceToken(ctx, dt); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

// GenerateJWT generates a session token for an account. The verified flag
// is baked into the claims; re-verifying requires signing in again.
func (s *AuthService) GenerateJWT(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"email":    user.Email,
		"verified": user.Verified(),
		"exp":      time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a session token and returns the identity it carries
func (s *AuthService) ValidateJWT(tokenString string) (*relationship.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, fmt.Errorf("user_id not found in token")
	}
	email, _ := claims["email"].(string)
	verified, _ := claims["verified"].(bool)

	return &relationship.Identity{
		UserID:        userID,
		Email:         email,
		EmailVerified: verified,
	}, nil
}
