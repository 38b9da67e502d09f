package ports

import (
	"context"
	"time"

	"github.com/stackit/qa-api/internal/core/domain"
)

// PasswordHasher produces and checks salted one-way password hashes.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenManager issues and verifies signed, time-bound bearer tokens whose
// subject is an identity id.
type TokenManager interface {
	Issue(subject string) (string, error)
	IssueWithTTL(subject string, ttl time.Duration) (string, error)
	Verify(token string) (string, error)
}

// RegisterInput carries the fields needed to create an identity.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     domain.Role // zero value means domain.RoleUser
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	// Resolve turns a raw Authorization header into the identity it names.
	Resolve(ctx context.Context, authorization string) (*domain.User, error)
}

// UserService covers identity administration.
type UserService interface {
	List(ctx context.Context, actor *domain.User) ([]*domain.User, error)
	SetRole(ctx context.Context, actor *domain.User, id string, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
}
