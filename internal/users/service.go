package users

import (
	"context"
	"fmt"

	"github.com/lexora-app/lexora/internal/authz"
	"github.com/lexora-app/lexora/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	List(ctx context.Context, filter authz.PermitFilter, p shared.Pagination) ([]User, error)
	Get(ctx context.Context, id int64) (User, error)
	UpdateName(ctx context.Context, id int64, name string) (User, error)
}

// Authorizer is the slice of the access engine this module consumes.
type Authorizer interface {
	PermitFilter(ctx context.Context, id authz.Identity, ent authz.Entity, action authz.Action) (authz.PermitFilter, error)
	Permitted(ctx context.Context, id authz.Identity, ent authz.Entity, rec authz.Record, action authz.Action) (bool, error)
}

// Service handles directory business logic.
type Service struct {
	repo  RepositoryPort
	authz Authorizer
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, az Authorizer) *Service {
	return &Service{repo: repo, authz: az}
}

// List returns the users the acting user may see.
func (s *Service) List(ctx context.Context, id authz.Identity, p shared.Pagination) ([]User, error) {
	filter, err := s.authz.PermitFilter(ctx, id, Descriptor(), authz.ActionView)
	if err != nil {
		return nil, fmt.Errorf("users: resolve filter: %w", err)
	}
	if filter.IsDenied() {
		return []User{}, nil
	}
	return s.repo.List(ctx, filter, p)
}

// Get loads one directory entry, hiding invisible users as not found.
func (s *Service) Get(ctx context.Context, id authz.Identity, userID int64) (User, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return User{}, err
	}
	ok, err := s.authz.Permitted(ctx, id, Descriptor(), u.record(), authz.ActionView)
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

// Rename updates a user's display name. Only the user themselves (or a
// grant holder) may edit the row.
func (s *Service) Rename(ctx context.Context, id authz.Identity, userID int64, name string) (User, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return User{}, err
	}
	ok, err := s.authz.Permitted(ctx, id, Descriptor(), u.record(), authz.ActionEdit)
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, shared.ErrForbidden
	}
	return s.repo.UpdateName(ctx, userID, name)
}
