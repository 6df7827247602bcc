package user

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/corvel/storefront/internal/domain/lifecycle"
)

// Service manages storefront accounts.
type Service struct {
	repo   Repository
	hasher PasswordHasher
}

// NewService creates a user Service.
func NewService(repo Repository, hasher PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// Register creates an account. Username and email are unique; both checks run
// before any write.
func (s *Service) Register(ctx context.Context, username, email, password, fullName string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	taken, err := s.repo.UsernameExists(ctx, username)
	if err != nil {
		return nil, errors.Wrap(err, "check username")
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	taken, err = s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, errors.Wrap(err, "check email")
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u := &User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Lifecycle:    lifecycle.Active,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	return u, nil
}

// Authenticate checks credentials for an active account. Wrong password,
// unknown username, and non-active accounts all return ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "get user")
	}

	if u.Lifecycle != lifecycle.Active {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Disable blocks an account from logging in without destroying it.
func (s *Service) Disable(ctx context.Context, id string) error {
	return s.transition(ctx, id, lifecycle.Disabled)
}

// Enable restores a disabled account.
func (s *Service) Enable(ctx context.Context, id string) error {
	return s.transition(ctx, id, lifecycle.Active)
}

// Delete tombstones an account. Deleted accounts cannot come back.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.transition(ctx, id, lifecycle.Deleted)
}

func (s *Service) transition(ctx context.Context, id string, target lifecycle.State) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	next, err := u.Lifecycle.Transition(target)
	if err != nil {
		return err
	}
	return s.repo.SetLifecycle(ctx, id, next)
}
