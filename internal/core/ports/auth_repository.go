package ports

import (
	"context"

	"github.com/stackit/qa-api/internal/core/domain"
)

// UserRepository is the credential store. Uniqueness of username and email is
// enforced by the backing store and reported as domain.ErrConflict.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	Delete(ctx context.Context, id string) error
}
