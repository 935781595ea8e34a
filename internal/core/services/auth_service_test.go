package services_test

import (
	"context"
	"testing"
	"time"

	"liblend/internal/adapters/persistence/models"
	"liblend/internal/config"
	"liblend/internal/core/domain"
	"liblend/internal/core/services"
	"liblend/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserRepo is an in-memory UserRepository
type fakeUserRepo struct {
	users  map[string]*models.User // by username
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.nextID++
	user.ID = r.nextID
	r.users[user.Username] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := r.users[username]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, ok := r.users[username]
	return ok, nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.users[user.Username] = user
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, _, _ int) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

// fakeTokenRepo is an in-memory RefreshTokenRepository
type fakeTokenRepo struct {
	tokens map[string]*models.RefreshToken // by hash
	nextID uint
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: map[string]*models.RefreshToken{}}
}

func (r *fakeTokenRepo) Create(_ context.Context, token *models.RefreshToken) error {
	r.nextID++
	token.ID = r.nextID
	r.tokens[token.TokenHash] = token
	return nil
}

func (r *fakeTokenRepo) GetByTokenHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	if t, ok := r.tokens[hash]; ok {
		return t, nil
	}
	return nil, domain.ErrTokenInvalid
}

func (r *fakeTokenRepo) Revoke(_ context.Context, id uint) error {
	now := time.Now()
	for _, t := range r.tokens {
		if t.ID == id {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeTokenRepo) RevokeByTokenHash(_ context.Context, hash string) error {
	if t, ok := r.tokens[hash]; ok {
		now := time.Now()
		t.RevokedAt = &now
	}
	return nil
}

func (r *fakeTokenRepo) RevokeAllByUserID(_ context.Context, userID uint) error {
	now := time.Now()
	for _, t := range r.tokens {
		if t.UserID == userID {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeTokenRepo) DeleteExpired(_ context.Context) error { return nil }

func newAuthService() (*services.AuthService, *fakeUserRepo, *fakeTokenRepo) {
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
	userRepo := newFakeUserRepo()
	tokenRepo := newFakeTokenRepo()
	return services.NewAuthService(userRepo, tokenRepo, cfg), userRepo, tokenRepo
}

func TestRegister(t *testing.T) {
	t.Run("creates a librarian and issues tokens", func(t *testing.T) {
		svc, userRepo, _ := newAuthService()

		result, err := svc.Register(ctx, &services.RegisterInput{
			Username: "alice",
			Email:    "alice@liblend.local",
			Password: "supersecret1",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.Equal(t, "alice", result.User.Username)
		assert.Equal(t, string(domain.RoleLibrarian), result.User.Role)

		// Password is stored hashed
		stored, err := userRepo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.NotEqual(t, "supersecret1", stored.Password)
		assert.True(t, password.Verify("supersecret1", stored.Password))
	})

	t.Run("duplicate username", func(t *testing.T) {
		svc, _, _ := newAuthService()

		_, err := svc.Register(ctx, &services.RegisterInput{
			Username: "alice", Email: "alice@liblend.local", Password: "supersecret1",
		})
		require.NoError(t, err)

		_, err = svc.Register(ctx, &services.RegisterInput{
			Username: "alice", Email: "other@liblend.local", Password: "supersecret1",
		})
		assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	})
}

func TestLogin(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		svc, _, _ := newAuthService()
		_, err := svc.Register(ctx, &services.RegisterInput{
			Username: "alice", Email: "alice@liblend.local", Password: "supersecret1",
		})
		require.NoError(t, err)

		result, err := svc.Login(ctx, &services.LoginInput{Username: "alice", Password: "supersecret1"})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _, _ := newAuthService()
		_, err := svc.Register(ctx, &services.RegisterInput{
			Username: "alice", Email: "alice@liblend.local", Password: "supersecret1",
		})
		require.NoError(t, err)

		_, err = svc.Login(ctx, &services.LoginInput{Username: "alice", Password: "wrong-password"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _, _ := newAuthService()

		_, err := svc.Login(ctx, &services.LoginInput{Username: "nobody", Password: "whatever123"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		svc, userRepo, _ := newAuthService()
		_, err := svc.Register(ctx, &services.RegisterInput{
			Username: "alice", Email: "alice@liblend.local", Password: "supersecret1",
		})
		require.NoError(t, err)

		user, err := userRepo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		user.IsActive = false

		_, err = svc.Login(ctx, &services.LoginInput{Username: "alice", Password: "supersecret1"})
		assert.ErrorIs(t, err, domain.ErrUserInactive)
	})
}

func TestRefreshToken(t *testing.T) {
	t.Run("rotates the refresh token", func(t *testing.T) {
		svc, _, _ := newAuthService()
		registered, err := svc.Register(ctx, &services.RegisterInput{
			Username: "alice", Email: "alice@liblend.local", Password: "supersecret1",
		})
		require.NoError(t, err)

		refreshed, err := svc.RefreshToken(ctx, registered.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, refreshed.AccessToken)
		assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)

		// The old token is revoked after rotation
		_, err = svc.RefreshToken(ctx, registered.RefreshToken)
		assert.ErrorIs(t, err, domain.ErrTokenRevoked)
	})

	t.Run("garbage token", func(t *testing.T) {
		svc, _, _ := newAuthService()

		_, err := svc.RefreshToken(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})
}

func TestLogout(t *testing.T) {
	t.Run("revokes the refresh token", func(t *testing.T) {
		svc, _, _ := newAuthService()
		registered, err := svc.Register(ctx, &services.RegisterInput{
			Username: "alice", Email: "alice@liblend.local", Password: "supersecret1",
		})
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, registered.RefreshToken))

		_, err = svc.RefreshToken(ctx, registered.RefreshToken)
		assert.ErrorIs(t, err, domain.ErrTokenRevoked)
	})

	t.Run("logout all revokes every session", func(t *testing.T) {
		svc, userRepo, _ := newAuthService()
		registered, err := svc.Register(ctx, &services.RegisterInput{
			Username: "alice", Email: "alice@liblend.local", Password: "supersecret1",
		})
		require.NoError(t, err)
		login2, err := svc.Login(ctx, &services.LoginInput{Username: "alice", Password: "supersecret1"})
		require.NoError(t, err)

		user, err := userRepo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		require.NoError(t, svc.LogoutAll(ctx, user.ID))

		_, err = svc.RefreshToken(ctx, registered.RefreshToken)
		assert.ErrorIs(t, err, domain.ErrTokenRevoked)
		_, err = svc.RefreshToken(ctx, login2.RefreshToken)
		assert.ErrorIs(t, err, domain.ErrTokenRevoked)
	})
}
