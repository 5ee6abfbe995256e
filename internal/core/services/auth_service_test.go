package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spine/api/internal/adapters/hash"
	"github.com/spine/api/internal/adapters/token"
	"github.com/spine/api/internal/core/domain"
	"github.com/spine/api/internal/core/ports"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == identifier || u.Username == identifier {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *memUserRepo) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Name = name
	return nil
}

// memTokenRepo mirrors the semantics of the postgres ledger: Revoke
// transitions a record exactly once under a lock and Store enforces the
// token_hash unique constraint.
type memTokenRepo struct {
	mu       sync.Mutex
	tokens   map[uuid.UUID]*domain.RefreshToken
	failNext bool
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: make(map[uuid.UUID]*domain.RefreshToken)}
}

func (r *memTokenRepo) Store(ctx context.Context, t *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return errors.New("storage unavailable")
	}
	for _, existing := range r.tokens {
		if existing.TokenHash == t.TokenHash {
			return errors.New("duplicate token hash")
		}
	}
	copied := *t
	copied.CreatedAt = time.Now()
	r.tokens[t.ID] = &copied
	return nil
}

func (r *memTokenRepo) GetRedeemable(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == tokenHash && t.Redeemable(time.Now()) {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memTokenRepo) Revoke(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok || t.RevokedAt != nil {
		return false, nil
	}
	now := time.Now()
	t.RevokedAt = &now
	return true, nil
}

func (r *memTokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == tokenHash && t.RevokedAt == nil {
			now := time.Now()
			t.RevokedAt = &now
		}
	}
	return nil
}

func newTestAuthService(t *testing.T) (*AuthService, *memUserRepo, *memTokenRepo) {
	t.Helper()
	userRepo := newMemUserRepo()
	tokenRepo := newMemTokenRepo()
	codec := token.NewJWTCodec([]byte("test-secret"))
	svc := NewAuthService(userRepo, tokenRepo, codec, hash.NewBcryptHasher())
	return svc, userRepo, tokenRepo
}

func signupInput() ports.SignupInput {
	return ports.SignupInput{Email: "a@x.com", Username: "alice", Password: "pw123456"}
}

func TestSignupIssuesRedeemablePair(t *testing.T) {
	svc, _, tokenRepo := newTestAuthService(t)
	ctx := context.Background()

	pair, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	record, err := tokenRepo.GetRedeemable(ctx, hashToken(pair.RefreshToken))
	require.NoError(t, err)
	require.NotNil(t, record, "refresh record should be redeemable right after signup")
}

func TestSignupDuplicateIdentity(t *testing.T) {
	svc, userRepo, tokenRepo := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	// Same email, different username.
	_, err = svc.Signup(ctx, ports.SignupInput{Email: "a@x.com", Username: "bob", Password: "pw123456"})
	assert.ErrorIs(t, err, domain.ErrDuplicateIdentity)

	// Same username, different email.
	_, err = svc.Signup(ctx, ports.SignupInput{Email: "b@x.com", Username: "alice", Password: "pw123456"})
	assert.ErrorIs(t, err, domain.ErrDuplicateIdentity)

	assert.Len(t, userRepo.users, 1)
	assert.Len(t, tokenRepo.tokens, 1)
}

func TestLoginByEmailAndUsername(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	for _, identifier := range []string{"a@x.com", "alice"} {
		pair, err := svc.Login(ctx, identifier, "pw123456")
		require.NoError(t, err)
		assert.NotEmpty(t, pair.RefreshToken)
	}
}

func TestLoginFailsUniformly(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "alice", "wrong-password")
	_, unknownUser := svc.Login(ctx, "nobody", "pw123456")

	assert.ErrorIs(t, wrongPassword, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, domain.ErrInvalidCredentials)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	p1, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	p2, err := svc.Refresh(ctx, p1.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, p1.RefreshToken, p2.RefreshToken)

	// The consumed token is gone for good.
	_, err = svc.Refresh(ctx, p1.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	// The replacement still works.
	_, err = svc.Refresh(ctx, p2.RefreshToken)
	require.NoError(t, err)
}

func TestBackToBackIssuanceYieldsDistinctTokens(t *testing.T) {
	// Two pairs issued within the same second must not collide on the
	// ledger's unique token hash; both must stay independently redeemable.
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	p1, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)
	p2, err := svc.Login(ctx, "alice", "pw123456")
	require.NoError(t, err)

	require.NotEqual(t, p1.RefreshToken, p2.RefreshToken)
	require.NotEqual(t, p1.AccessToken, p2.AccessToken)

	_, err = svc.Refresh(ctx, p1.RefreshToken)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, p2.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	pair, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestRefreshGarbageToken(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestRefreshUnknownButValidToken(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	// Correctly signed but never recorded in the ledger.
	codec := token.NewJWTCodec([]byte("test-secret"))
	orphan, err := codec.Sign(uuid.New(), domain.TokenKindRefresh, time.Hour)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, orphan)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestRefreshExpiredToken(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	svc.WithTTLs(15*time.Minute, 50*time.Millisecond)
	ctx := context.Background()

	pair, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestConcurrentRefreshSingleWinner(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	pair, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	const workers = 8
	start := make(chan struct{})
	results := make(chan error, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Refresh(ctx, pair.RefreshToken)
			results <- err
		}()
	}

	close(start)
	wg.Wait()
	close(results)

	success := 0
	for err := range results {
		switch {
		case err == nil:
			success++
		case errors.Is(err, domain.ErrInvalidToken):
		default:
			t.Fatalf("unexpected refresh error: %v", err)
		}
	}
	assert.Equal(t, 1, success, "exactly one concurrent refresh should win")

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestRefreshFailsClosedWhenIssuanceFails(t *testing.T) {
	svc, _, tokenRepo := newTestAuthService(t)
	ctx := context.Background()

	pair, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	tokenRepo.failNext = true
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrIssuanceFailed)

	// The presented token was revoked before issuance failed; it must not
	// be redeemable again.
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	pair, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))
	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))
	require.NoError(t, svc.Logout(ctx, "never-issued"))

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyAccess(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	pair, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	user, err := svc.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "alice", user.Username)
}

func TestVerifyAccessRejectsRefreshToken(t *testing.T) {
	// A refresh token authenticates nothing, live or revoked; otherwise a
	// logged-out session would keep a 30-day credential for protected
	// routes.
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	pair, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	_, err = svc.VerifyAccess(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))
	_, err = svc.VerifyAccess(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestVerifyAccessExpired(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	svc.WithTTLs(50*time.Millisecond, RefreshTokenTTL)
	ctx := context.Background()

	pair, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	_, err = svc.VerifyAccess(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestVerifyAccessDeletedUser(t *testing.T) {
	svc, userRepo, _ := newTestAuthService(t)
	ctx := context.Background()

	pair, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	userRepo.mu.Lock()
	for id := range userRepo.users {
		delete(userRepo.users, id)
	}
	userRepo.mu.Unlock()

	_, err = svc.VerifyAccess(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	pair, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)
	user, err := svc.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, "wrong-password", "new-pw-987")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// Old password still works after the failed attempt.
	_, err = svc.Login(ctx, "alice", "pw123456")
	require.NoError(t, err)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "pw123456", "new-pw-987"))

	_, err = svc.Login(ctx, "alice", "pw123456")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "alice", "new-pw-987")
	require.NoError(t, err)
}

func TestEndToEndLifecycle(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	p1, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	user, err := svc.VerifyAccess(ctx, p1.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "alice", user.Username)

	p2, err := svc.Refresh(ctx, p1.RefreshToken)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, p1.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	require.NoError(t, svc.Logout(ctx, p2.RefreshToken))

	_, err = svc.Refresh(ctx, p2.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
