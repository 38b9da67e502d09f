package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/stackit/qa-api/internal/api/handler"
	"github.com/stackit/qa-api/internal/core/domain"
)

type stubResolver struct {
	user *domain.User
	err  error
	got  string
}

func (s *stubResolver) Resolve(_ context.Context, authorization string) (*domain.User, error) {
	s.got = authorization
	return s.user, s.err
}

func newCtx(authorization string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	alice := &domain.User{ID: "u1", Username: "alice", Role: domain.RoleUser}
	resolver := &stubResolver{user: alice}
	c, rec := newCtx("Bearer abc")

	called := false
	h := Auth(resolver, zerolog.Nop())(func(c echo.Context) error {
		called = true
		me, err := handler.CurrentIdentity(c)
		if err != nil {
			t.Fatalf("identity not set: %v", err)
		}
		if me.Username != "alice" {
			t.Fatalf("unexpected identity: %+v", me)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if resolver.got != "Bearer abc" {
		t.Fatalf("resolver got %q", resolver.got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		reason string
	}{
		{"missing header", domain.ErrMissingToken, "missing"},
		{"malformed", &domain.TokenRejectedError{Reason: domain.TokenMalformed}, "malformed"},
		{"tampered", &domain.TokenRejectedError{Reason: domain.TokenTampered}, "tampered"},
		{"expired", &domain.TokenRejectedError{Reason: domain.TokenExpired}, "expired"},
		{"deleted identity", domain.ErrIdentityNotFound, "unknown_identity"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newCtx("Bearer x")
			h := Auth(&stubResolver{err: tc.err}, zerolog.Nop())(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})

			err := h(c)
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
			if got := rejectionReason(err); got != tc.reason {
				t.Fatalf("reason = %q, want %q", got, tc.reason)
			}
		})
	}
}

func TestAuthMiddleware_StoreFailureIsNotARejection(t *testing.T) {
	boom := errors.New("connection refused")
	c, _ := newCtx("Bearer x")
	h := Auth(&stubResolver{err: boom}, zerolog.Nop())(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	err := h(c)
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if rejectionReason(err) != "" {
		t.Fatalf("store failure must not be labelled as a rejection")
	}
}

func TestOptionalAuth(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		resolver := &stubResolver{err: domain.ErrMissingToken}
		c, _ := newCtx("")
		h := OptionalAuth(resolver)(func(c echo.Context) error {
			if handler.OptionalIdentity(c) != nil {
				t.Fatalf("expected no identity")
			}
			return nil
		})
		if err := h(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resolver.got != "" {
			t.Fatalf("resolver should not be called without a header")
		}
	})

	t.Run("bad token passes through", func(t *testing.T) {
		c, _ := newCtx("Bearer junk")
		h := OptionalAuth(&stubResolver{err: &domain.TokenRejectedError{Reason: domain.TokenTampered}})(func(c echo.Context) error {
			if handler.OptionalIdentity(c) != nil {
				t.Fatalf("expected no identity")
			}
			return nil
		})
		if err := h(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		c, _ := newCtx("Bearer ok")
		h := OptionalAuth(&stubResolver{user: &domain.User{ID: "u1"}})(func(c echo.Context) error {
			if me := handler.OptionalIdentity(c); me == nil || me.ID != "u1" {
				t.Fatalf("expected identity u1, got %+v", me)
			}
			return nil
		})
		if err := h(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
