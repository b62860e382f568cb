package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "lendly/internal/domain/auth"
	"lendly/internal/domain/user"
	"lendly/internal/infra/storage/memory"
)

// plainHasher avoids bcrypt cost in tests.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type seqTokens struct{ n int }

func (g *seqTokens) NewToken() (string, error) {
	g.n++
	return "tok-" + string(rune('0'+g.n)), nil
}

func newService(t *testing.T) (*Service, *memory.SessionStore) {
	t.Helper()
	sessions := memory.NewSessionStore()
	svc := &Service{
		UoWFactory: memory.Factory{
			ItemRepo:    memory.NewItemRepository(),
			BookingRepo: memory.NewBookingRepository(),
			UserRepo:    memory.NewUserRepository(),
		},
		Sessions:   sessions,
		Hasher:     plainHasher{},
		Tokens:     &seqTokens{},
		SessionTTL: time.Hour,
	}
	return svc, sessions
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an account", func(t *testing.T) {
		svc, _ := newService(t)
		account, err := svc.Register(ctx, "Ana@Example.com", "Ana", "correct horse battery")
		require.NoError(t, err)
		assert.NotEmpty(t, account.ID)
		assert.Equal(t, "ana@example.com", account.Email)
		assert.False(t, account.IsAdmin)
	})

	t.Run("short password", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Register(ctx, "ana@example.com", "Ana", "short")
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Register(ctx, "ana@example.com", "Ana", "correct horse battery")
		require.NoError(t, err)
		_, err = svc.Register(ctx, "ANA@example.com", "Other Ana", "correct horse battery")
		assert.ErrorIs(t, err, user.ErrEmailAlreadyUsed)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a session token", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Register(ctx, "ana@example.com", "Ana", "correct horse battery")
		require.NoError(t, err)

		res, err := svc.Login(ctx, "ana@example.com", "correct horse battery")
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, "ana@example.com", res.Account.Email)

		account, err := svc.ResolveToken(ctx, res.Token)
		require.NoError(t, err)
		assert.Equal(t, res.Account.ID, account.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Register(ctx, "ana@example.com", "Ana", "correct horse battery")
		require.NoError(t, err)

		_, err = svc.Login(ctx, "ana@example.com", "wrong password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Login(ctx, "ghost@example.com", "whatever else")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLogoutAndExpiry(t *testing.T) {
	ctx := context.Background()

	t.Run("logout invalidates the token", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Register(ctx, "ana@example.com", "Ana", "correct horse battery")
		require.NoError(t, err)
		res, err := svc.Login(ctx, "ana@example.com", "correct horse battery")
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, res.Token))
		_, err = svc.ResolveToken(ctx, res.Token)
		assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
	})

	t.Run("expired sessions are dropped on resolve", func(t *testing.T) {
		svc, sessions := newService(t)
		now := time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)
		svc.Now = func() time.Time { return now }

		_, err := svc.Register(ctx, "ana@example.com", "Ana", "correct horse battery")
		require.NoError(t, err)
		res, err := svc.Login(ctx, "ana@example.com", "correct horse battery")
		require.NoError(t, err)

		now = now.Add(2 * time.Hour)
		_, err = svc.ResolveToken(ctx, res.Token)
		assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)

		_, err = sessions.ByToken(ctx, domainauth.Token(res.Token))
		assert.ErrorIs(t, err, domainauth.ErrSessionNotFound, "expired session was deleted")
	})
}
