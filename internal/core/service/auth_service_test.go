package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/stackit/qa-api/internal/core/domain"
	"github.com/stackit/qa-api/internal/core/ports"
)

// countingHasher records how many verifications ran.
type countingHasher struct {
	*BcryptHasher
	verifies atomic.Int32
}

func (h *countingHasher) Verify(plaintext, hash string) bool {
	h.verifies.Add(1)
	return h.BcryptHasher.Verify(plaintext, hash)
}

type authFixture struct {
	svc    *AuthService
	repo   *stubUserRepo
	hasher *countingHasher
	tokens *TokenManager
	events *recordingPublisher
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		repo:   newStubUserRepo(),
		hasher: &countingHasher{BcryptHasher: NewBcryptHasher(bcrypt.MinCost)},
		tokens: NewTokenManager([]byte("secret"), time.Hour),
		events: &recordingPublisher{},
	}
	f.svc = NewAuthService(f.repo, f.hasher, f.tokens, f.events, zerolog.Nop())
	return f
}

func (f *authFixture) register(t *testing.T, username, password string) *domain.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: password,
	})
	if err != nil {
		t.Fatalf("Register(%s) returned error: %v", username, err)
	}
	return u
}

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture()

	user := f.register(t, "alice", "pass123")
	if user.ID == "" {
		t.Fatalf("expected id to be assigned")
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected default role USER, got %s", user.Role)
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if kinds := f.events.kinds(); len(kinds) != 1 || kinds[0] != domain.ActivityUserRegistered {
		t.Fatalf("unexpected events: %v", kinds)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newAuthFixture()

	cases := map[string]ports.RegisterInput{
		"short username": {Username: "al", Email: "al@example.com", Password: "p"},
		"long username":  {Username: strings.Repeat("a", 51), Email: "a@example.com", Password: "p"},
		"missing email":  {Username: "alice", Password: "p"},
		"bad email":      {Username: "alice", Email: "not-an-email", Password: "p"},
		"long email":     {Username: "alice", Email: strings.Repeat("a", 110) + "@example.com", Password: "p"},
		"empty password": {Username: "alice", Email: "alice@example.com"},
		"long password":  {Username: "alice", Email: "alice@example.com", Password: strings.Repeat("p", 73)},
		"unknown role":   {Username: "alice", Email: "alice@example.com", Password: "p", Role: "ROOT"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := f.svc.Register(context.Background(), in); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "alice", "pass123")

	_, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice", Email: "other@example.com", Password: "x",
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate username, got %v", err)
	}

	_, err = f.svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice2", Email: "alice@example.com", Password: "x",
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate email, got %v", err)
	}
}

func TestAuthService_Register_ConcurrentDuplicates(t *testing.T) {
	f := newAuthFixture()

	const n = 8
	var (
		wg        sync.WaitGroup
		ok        atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Register(context.Background(), ports.RegisterInput{
				Username: "race", Email: "race@example.com", Password: "pw",
			})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrConflict):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok.Load() != 1 || conflicts.Load() != n-1 {
		t.Fatalf("got %d successes and %d conflicts", ok.Load(), conflicts.Load())
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture()
	user := f.register(t, "alice", "pass123")

	token, err := f.svc.Login(context.Background(), "alice", "pass123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	sub, err := f.tokens.Verify(token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if sub != user.ID {
		t.Fatalf("token subject = %q, want %q", sub, user.ID)
	}
}

func TestAuthService_Login_IndistinguishableFailures(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "alice", "pass123")

	_, wrongPw := f.svc.Login(context.Background(), "alice", "nope")
	before := f.hasher.verifies.Load()
	_, unknown := f.svc.Login(context.Background(), "bob", "nope")

	if !errors.Is(wrongPw, domain.ErrInvalidCredentials) || !errors.Is(unknown, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", wrongPw, unknown)
	}
	if wrongPw.Error() != unknown.Error() {
		t.Fatalf("failure messages differ: %q vs %q", wrongPw, unknown)
	}
	if f.hasher.verifies.Load() != before+1 {
		t.Fatalf("expected a hash comparison for the unknown user")
	}
}

func TestAuthService_Login_EmptyCredentials(t *testing.T) {
	f := newAuthFixture()
	if _, err := f.svc.Login(context.Background(), "", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_StoreFailure(t *testing.T) {
	f := newAuthFixture()
	boom := errors.New("connection reset")
	f.repo.findFn = func(string) (*domain.User, error) { return nil, boom }

	_, err := f.svc.Login(context.Background(), "alice", "pw")
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error to surface, got %v", err)
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("store failure must not look like bad credentials")
	}
}

func TestAuthService_Resolve(t *testing.T) {
	f := newAuthFixture()
	user := f.register(t, "alice", "pass123")
	token, _ := f.tokens.Issue(user.ID)
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		got, err := f.svc.Resolve(ctx, "Bearer "+token)
		if err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		if got.ID != user.ID || got.Username != "alice" {
			t.Fatalf("unexpected identity: %+v", got)
		}
	})

	t.Run("scheme is case-insensitive", func(t *testing.T) {
		if _, err := f.svc.Resolve(ctx, "bearer "+token); err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		if _, err := f.svc.Resolve(ctx, ""); !errors.Is(err, domain.ErrMissingToken) {
			t.Fatalf("expected ErrMissingToken, got %v", err)
		}
	})

	t.Run("wrong scheme", func(t *testing.T) {
		_, err := f.svc.Resolve(ctx, "Basic "+token)
		expectRejected(t, err, domain.TokenMalformed)
	})

	t.Run("no token", func(t *testing.T) {
		_, err := f.svc.Resolve(ctx, "Bearer")
		expectRejected(t, err, domain.TokenMalformed)
	})

	t.Run("tampered", func(t *testing.T) {
		_, err := f.svc.Resolve(ctx, "Bearer "+tamper(token))
		expectRejected(t, err, domain.TokenTampered)
	})
}

func TestAuthService_Resolve_DeletedIdentity(t *testing.T) {
	f := newAuthFixture()
	user := f.register(t, "alice", "pass123")
	token, _ := f.tokens.Issue(user.ID)

	if err := f.repo.Delete(context.Background(), user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err := f.svc.Resolve(context.Background(), "Bearer "+token)
	if !errors.Is(err, domain.ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
}

func TestAuthService_Resolve_SeesRoleChangeImmediately(t *testing.T) {
	f := newAuthFixture()
	user := f.register(t, "alice", "pass123")
	token, _ := f.tokens.Issue(user.ID)

	if err := f.repo.UpdateRole(context.Background(), user.ID, domain.RoleAdmin); err != nil {
		t.Fatalf("update role: %v", err)
	}

	got, err := f.svc.Resolve(context.Background(), "Bearer "+token)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got.Role != domain.RoleAdmin {
		t.Fatalf("expected fresh role ADMIN, got %s", got.Role)
	}
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	f := newAuthFixture()

	admin, created, err := f.svc.EnsureAdmin(context.Background(), "admin", "admin@example.com", "admin")
	if err != nil {
		t.Fatalf("EnsureAdmin returned error: %v", err)
	}
	if !created || admin.Role != domain.RoleAdmin {
		t.Fatalf("expected new ADMIN, got created=%v role=%s", created, admin.Role)
	}

	again, created, err := f.svc.EnsureAdmin(context.Background(), "admin", "admin@example.com", "admin")
	if err != nil {
		t.Fatalf("second EnsureAdmin returned error: %v", err)
	}
	if created || again.ID != admin.ID {
		t.Fatalf("expected existing admin to be returned")
	}

	if _, err := f.svc.Login(context.Background(), "admin", "admin"); err != nil {
		t.Fatalf("seeded admin cannot log in: %v", err)
	}
}
