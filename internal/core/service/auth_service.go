package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/stackit/qa-api/internal/core/domain"
	"github.com/stackit/qa-api/internal/core/ports"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
	maxEmailLength    = 120
)

// dummyPassword feeds the timing-equalising comparison run for unknown usernames.
const dummyPassword = "stackit-login-timing-equaliser"

// AuthService implements registration, login and per-request identity resolution.
type AuthService struct {
	users     ports.UserRepository
	hasher    ports.PasswordHasher
	tokens    ports.TokenManager
	activity  ports.ActivityPublisher
	log       zerolog.Logger
	dummyHash string
}

func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenManager,
	activity ports.ActivityPublisher,
	log zerolog.Logger,
) *AuthService {
	if activity == nil {
		activity = noopPublisher{}
	}
	s := &AuthService{users: users, hasher: hasher, tokens: tokens, activity: activity, log: log}
	if h, err := hasher.Hash(dummyPassword); err == nil {
		s.dummyHash = h
	}
	return s
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return nil, domain.Invalidf("username must be %d-%d characters", minUsernameLength, maxUsernameLength)
	}
	if email == "" || len(email) > maxEmailLength {
		return nil, domain.Invalidf("email is required and must be at most %d characters", maxEmailLength)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.Invalidf("email must be a valid address")
	}
	if in.Password == "" {
		return nil, domain.Invalidf("password is required")
	}
	if len(in.Password) > MaxPasswordBytes {
		return nil, domain.Invalidf("password must be at most %d bytes", MaxPasswordBytes)
	}

	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, domain.Invalidf("unknown role %q", role)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.activity.Publish(domain.ActivityEvent{
		Kind:       domain.ActivityUserRegistered,
		ActorID:    created.ID,
		Actor:      created.Username,
		TargetID:   created.ID,
		OccurredAt: time.Now().UTC(),
	})
	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

// Login verifies credentials and returns a signed access token. Unknown
// usernames and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("login: %w", err)
		}
		if s.dummyHash != "" {
			s.hasher.Verify(password, s.dummyHash)
		}
		s.loginFailed("", username)
		return "", domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.loginFailed(user.ID, username)
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", err
	}

	s.activity.Publish(domain.ActivityEvent{
		Kind:       domain.ActivityLoginSucceeded,
		ActorID:    user.ID,
		Actor:      user.Username,
		OccurredAt: time.Now().UTC(),
	})
	return token, nil
}

func (s *AuthService) loginFailed(userID, username string) {
	s.log.Debug().Str("username", username).Msg("login rejected")
	s.activity.Publish(domain.ActivityEvent{
		Kind:       domain.ActivityLoginFailed,
		ActorID:    userID,
		Actor:      username,
		OccurredAt: time.Now().UTC(),
	})
}

// Resolve extracts the bearer token from an Authorization header value,
// verifies it and loads the identity it names. Nothing is cached; a deleted
// identity or a changed role is visible on the very next request.
func (s *AuthService) Resolve(ctx context.Context, authorization string) (*domain.User, error) {
	authorization = strings.TrimSpace(authorization)
	if authorization == "" {
		return nil, domain.ErrMissingToken
	}

	scheme, token, ok := strings.Cut(authorization, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return nil, &domain.TokenRejectedError{
			Reason: domain.TokenMalformed,
			Err:    errors.New("authorization scheme must be Bearer"),
		}
	}

	subject, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	return user, nil
}

// EnsureAdmin creates the admin identity unless one with that username exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) (*domain.User, bool, error) {
	existing, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("seed admin: %w", err)
	}

	created, err := s.Register(ctx, ports.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
		Role:     domain.RoleAdmin,
	})
	if errors.Is(err, domain.ErrConflict) {
		// Another process seeded concurrently.
		existing, ferr := s.users.FindByUsername(ctx, username)
		if ferr != nil {
			return nil, false, fmt.Errorf("seed admin: %w", ferr)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(domain.ActivityEvent) {}
