package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	handlersupport "lendly/internal/app/handlers/support"
	"lendly/internal/app/uow"
	domainauth "lendly/internal/domain/auth"
	"lendly/internal/domain/user"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordTooShort   = errors.New("auth: password must be at least 8 characters")
)

const minPasswordLength = 8

// PasswordHasher abstracts the hash scheme so tests can swap bcrypt for a
// cheap fake.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenGenerator interface {
	NewToken() (string, error)
}

type Service struct {
	UoWFactory uow.Factory
	Sessions   domainauth.SessionStore
	Hasher     PasswordHasher
	Tokens     TokenGenerator
	SessionTTL time.Duration
	Now        func() time.Time
}

type Account struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Account   Account   `json:"account"`
}

func (s *Service) Register(ctx context.Context, email, name, password string) (*Account, error) {
	if len(strings.TrimSpace(password)) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u, err := user.NewUser(user.CreateParams{
		ID:           user.ID(uuid.NewString()),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, err
	}
	err = handlersupport.WithUnit(ctx, s.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		existing, err := unit.Users().ByEmail(ctx, u.Email)
		if err != nil && !errors.Is(err, user.ErrNotFound) {
			return err
		}
		if existing != nil {
			return user.ErrEmailAlreadyUsed
		}
		return unit.Users().Save(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return accountOf(u), nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var u *user.User
	err := handlersupport.WithUnit(ctx, s.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		found, err := unit.Users().ByEmail(ctx, user.NormalizeEmail(email))
		if err != nil {
			return err
		}
		u = found
		return nil
	})
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.Hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := s.Tokens.NewToken()
	if err != nil {
		return nil, err
	}
	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:  domainauth.Token(token),
		UserID: u.ID,
		TTL:    s.SessionTTL,
		Now:    s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Put(ctx, session); err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:     string(session.Token),
		ExpiresAt: session.ExpiresAt,
		Account:   *accountOf(u),
	}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.Sessions.Delete(ctx, domainauth.Token(token))
}

// ResolveToken maps a bearer token to the account it belongs to. Expired
// sessions are dropped eagerly.
func (s *Service) ResolveToken(ctx context.Context, token string) (*Account, error) {
	session, err := s.Sessions.ByToken(ctx, domainauth.Token(token))
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		_ = s.Sessions.Delete(ctx, session.Token)
		return nil, domainauth.ErrSessionNotFound
	}
	var u *user.User
	err = handlersupport.WithUnit(ctx, s.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		found, err := unit.Users().ByID(ctx, session.UserID)
		if err != nil {
			return err
		}
		u = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accountOf(u), nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func accountOf(u *user.User) *Account {
	return &Account{ID: string(u.ID), Email: u.Email, Name: u.Name, IsAdmin: u.IsAdmin}
}
