package services

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Business-rule outcomes surfaced to clients as specific messages; none of
// these are treated as internal failures.
var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrEmailNotVerified     = errors.New("email not verified")
	ErrVerificationExpired  = errors.New("verification token expired")
	ErrVerificationUsed     = errors.New("verification token already used")
	ErrNotLinked            = errors.New("no active couple")
	ErrAlreadyLinked        = errors.New("profile is already in a couple")
	ErrPartnerNotFound      = errors.New("partner not found")
	ErrPartnerAlreadyLinked = errors.New("partner is already in a couple")
	ErrSelfPair             = errors.New("cannot create couple with yourself")
	ErrNotInvitee           = errors.New("invitation addressed to a different email")
	ErrInviteExpired        = errors.New("invitation expired")
	ErrInviteNotPending     = errors.New("invitation no longer pending")
	ErrNotMember            = errors.New("not a member")
)

// isNoRows reports whether err wraps a pgx empty-result error
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// isUniqueViolation reports whether err wraps a PostgreSQL unique-constraint
// violation (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
