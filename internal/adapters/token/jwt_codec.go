package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spine/api/internal/core/domain"
	"github.com/spine/api/internal/core/ports"
)

type claims struct {
	jwt.RegisteredClaims
	Kind domain.TokenKind `json:"kind,omitempty"`
}

// JWTCodec signs HS256 tokens with a single symmetric key handed in at
// construction time. The key comes from configuration; nothing here reads
// the environment.
type JWTCodec struct {
	secret []byte
}

func NewJWTCodec(secret []byte) ports.TokenCodec {
	return &JWTCodec{secret: secret}
}

func (c *JWTCodec) Sign(subjectID uuid.UUID, kind domain.TokenKind, ttl time.Duration) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			// The jti keeps tokens distinct even when subject, kind and
			// expiry coincide; iat/exp carry one-second precision.
			ID:        uuid.NewString(),
			Subject:   subjectID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind: kind,
	})
	return t.SignedString(c.secret)
}

func (c *JWTCodec) Verify(tokenString string, kind domain.TokenKind) (uuid.UUID, error) {
	parsed := &claims{}
	_, err := jwt.ParseWithClaims(tokenString, parsed, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil {
		// Expiry is a benign client-side condition; everything else is
		// tampering or a client bug.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, domain.ErrTokenExpired
		}
		return uuid.Nil, domain.ErrTokenMalformed
	}

	// A token of the wrong kind is no more valid than a forged one.
	if parsed.Kind != kind {
		return uuid.Nil, domain.ErrTokenMalformed
	}

	subjectID, err := uuid.Parse(parsed.Subject)
	if err != nil {
		return uuid.Nil, domain.ErrTokenMalformed
	}
	return subjectID, nil
}
