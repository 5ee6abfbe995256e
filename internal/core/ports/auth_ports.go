package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spine/api/internal/core/domain"
)

// TokenCodec signs and verifies compact tokens carrying a subject id, a
// kind and an absolute expiry. Every signed token is unique even for the
// same subject and TTL. Verify rejects a token of the wrong kind and
// distinguishes a bad signature (domain.ErrTokenMalformed) from a valid but
// stale one (domain.ErrTokenExpired) so callers branch on data, not control
// flow.
type TokenCodec interface {
	Sign(subjectID uuid.UUID, kind domain.TokenKind, ttl time.Duration) (string, error)
	Verify(tokenString string, kind domain.TokenKind) (uuid.UUID, error)
}

// PasswordHasher produces and checks one-way salted password digests.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Compare returns (false, nil) on a plain mismatch; an error only for
	// malformed digests.
	Compare(plaintext, digest string) (bool, error)
}

// RefreshTokenRepository is the durable ledger of issued refresh tokens.
// The backing store must support an atomic "update iff not yet revoked"
// write; Revoke relies on it as the single-use lock for rotation.
type RefreshTokenRepository interface {
	Store(ctx context.Context, token *domain.RefreshToken) error
	// GetRedeemable returns the record for tokenHash only if it exists,
	// is not revoked and has not expired; (nil, nil) otherwise.
	GetRedeemable(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	// Revoke conditionally sets the revocation time and reports whether
	// this call performed the transition; false means the record was
	// absent or already revoked.
	Revoke(ctx context.Context, id uuid.UUID) (bool, error)
	// RevokeByHash revokes the record for tokenHash if present and not
	// already revoked; no-op otherwise.
	RevokeByHash(ctx context.Context, tokenHash string) error
}

type SignupInput struct {
	Email    string
	Username string
	Password string
}

type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*domain.TokenPair, error)
	Login(ctx context.Context, identifier, password string) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	VerifyAccess(ctx context.Context, accessToken string) (*domain.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
}
