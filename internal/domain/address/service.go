package address

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Service maintains the default-address invariant: whenever a user has at
// least one address, exactly one of them is the default.
type Service struct {
	repo Repository
}

// NewService creates an address Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the user's addresses, default first as stored ordering.
func (s *Service) List(ctx context.Context, userID string) ([]Address, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Add creates an address for the user. The first address always becomes the
// default regardless of the requested flag; a later address requesting
// default demotes all siblings first.
func (s *Service) Add(ctx context.Context, a Address) (*Address, error) {
	if !a.complete() {
		return nil, ErrIncomplete
	}

	existing, err := s.repo.ListByUser(ctx, a.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "list addresses")
	}

	if len(existing) == 0 {
		a.IsDefault = true
	} else if a.IsDefault {
		if err := s.repo.ClearDefaults(ctx, a.UserID); err != nil {
			return nil, errors.Wrap(err, "clear defaults")
		}
	}

	a.ID = uuid.New().String()
	if err := s.repo.Create(ctx, &a); err != nil {
		return nil, errors.Wrap(err, "create address")
	}
	return &a, nil
}

// Update modifies an address owned by the user. Demoting the default while
// other addresses exist promotes the most-recently-created sibling, so the
// user is never left defaultless.
func (s *Service) Update(ctx context.Context, a Address) (*Address, error) {
	if !a.complete() {
		return nil, ErrIncomplete
	}

	current, err := s.repo.GetByID(ctx, a.UserID, a.ID)
	if err != nil {
		return nil, err
	}

	switch {
	case a.IsDefault && !current.IsDefault:
		if err := s.repo.ClearDefaults(ctx, a.UserID); err != nil {
			return nil, errors.Wrap(err, "clear defaults")
		}
	case !a.IsDefault && current.IsDefault:
		if err := s.promoteSibling(ctx, a.UserID, a.ID); err != nil {
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
			// No sibling exists: the sole address stays default.
			a.IsDefault = true
		}
	}

	a.CreatedAt = current.CreatedAt
	if err := s.repo.Update(ctx, &a); err != nil {
		return nil, errors.Wrap(err, "update address")
	}
	return &a, nil
}

// Delete removes an address owned by the user, promoting the most recent
// sibling to default first when the deleted address was the default.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	current, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	if current.IsDefault {
		if err := s.promoteSibling(ctx, userID, id); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}

	return s.repo.Delete(ctx, userID, id)
}

// MakeDefault marks the given address as the user's default.
func (s *Service) MakeDefault(ctx context.Context, userID, id string) error {
	if _, err := s.repo.GetByID(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.ClearDefaults(ctx, userID); err != nil {
		return errors.Wrap(err, "clear defaults")
	}
	return s.repo.SetDefault(ctx, userID, id)
}

// Default returns the user's default address, or ErrNotFound when the user
// has no addresses.
func (s *Service) Default(ctx context.Context, userID string) (*Address, error) {
	all, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list addresses")
	}
	for i := range all {
		if all[i].IsDefault {
			return &all[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *Service) promoteSibling(ctx context.Context, userID, excludeID string) error {
	next, err := s.repo.MostRecent(ctx, userID, excludeID)
	if err != nil {
		return err
	}
	if err := s.repo.ClearDefaults(ctx, userID); err != nil {
		return errors.Wrap(err, "clear defaults")
	}
	return s.repo.SetDefault(ctx, userID, next.ID)
}
