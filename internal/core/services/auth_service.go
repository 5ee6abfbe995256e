package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spine/api/internal/core/domain"
	"github.com/spine/api/internal/core/ports"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 30 * 24 * time.Hour
)

type AuthService struct {
	userRepo   ports.UserRepository
	tokenRepo  ports.RefreshTokenRepository
	codec      ports.TokenCodec
	hasher     ports.PasswordHasher
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(userRepo ports.UserRepository, tokenRepo ports.RefreshTokenRepository, codec ports.TokenCodec, hasher ports.PasswordHasher) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		codec:      codec,
		hasher:     hasher,
		accessTTL:  AccessTokenTTL,
		refreshTTL: RefreshTokenTTL,
	}
}

// WithTTLs overrides the default token lifetimes. Used by configuration
// and by tests that need short-lived tokens.
func (s *AuthService) WithTTLs(access, refresh time.Duration) *AuthService {
	if access > 0 {
		s.accessTTL = access
	}
	if refresh > 0 {
		s.refreshTTL = refresh
	}
	return s
}

func (s *AuthService) Signup(ctx context.Context, input ports.SignupInput) (*domain.TokenPair, error) {
	if input.Email == "" || input.Username == "" {
		return nil, domain.ErrInvalidInput
	}

	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing == nil {
		existing, err = s.userRepo.GetByUsername(ctx, input.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
	}
	if existing != nil {
		return nil, domain.ErrDuplicateIdentity
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: passwordHash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issuePair(ctx, user.ID)
}

func (s *AuthService) Login(ctx context.Context, identifier, password string) (*domain.TokenPair, error) {
	user, err := s.userRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	// Unknown identifier and wrong password collapse into one error so the
	// response does not reveal whether the account exists.
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := s.hasher.Compare(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issuePair(ctx, user.ID)
}

// Refresh redeems a refresh token for a fresh pair. The presented token is
// revoked before the replacement is issued; if issuance then fails the
// token stays revoked and the caller has to log in again. Fail-closed beats
// replayable.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if _, err := s.codec.Verify(refreshToken, domain.TokenKindRefresh); err != nil {
		return nil, domain.ErrInvalidToken
	}

	record, err := s.tokenRepo.GetRedeemable(ctx, hashToken(refreshToken))
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	// Absent, revoked and expired all look the same to the caller.
	if record == nil {
		return nil, domain.ErrInvalidToken
	}

	revoked, err := s.tokenRepo.Revoke(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	// A concurrent redeem won the conditional update.
	if !revoked {
		return nil, domain.ErrInvalidToken
	}

	return s.issuePair(ctx, record.UserID)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.tokenRepo.RevokeByHash(ctx, hashToken(refreshToken)); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

func (s *AuthService) VerifyAccess(ctx context.Context, accessToken string) (*domain.User, error) {
	// Only a token minted as an access token authenticates a request; a
	// refresh token presented here is rejected regardless of ledger state.
	subjectID, err := s.codec.Verify(accessToken, domain.TokenKindAccess)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.userRepo.GetByID(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	// A deleted subject makes every outstanding access token dead without
	// touching the ledger.
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return domain.ErrInvalidCredentials
	}

	ok, err := s.hasher.Compare(currentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return domain.ErrInvalidCredentials
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// issuePair signs an access/refresh token pair and records the refresh
// token. The ledger write commits before the pair leaves this function; a
// refresh token the ledger does not know about must never reach a client.
func (s *AuthService) issuePair(ctx context.Context, userID uuid.UUID) (*domain.TokenPair, error) {
	accessToken, err := s.codec.Sign(userID, domain.TokenKindAccess, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIssuanceFailed, err)
	}

	refreshToken, err := s.codec.Sign(userID, domain.TokenKindRefresh, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIssuanceFailed, err)
	}

	record := &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: time.Now().Add(s.refreshTTL),
	}
	if err := s.tokenRepo.Store(ctx, record); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIssuanceFailed, err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
