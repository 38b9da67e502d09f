package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stackit/qa-api/internal/core/domain"
	"github.com/stackit/qa-api/internal/core/ports"
)

type stubActivityRepo struct {
	filter ports.ActivityFilter
}

func (r *stubActivityRepo) Record(context.Context, *domain.ActivityEvent) error { return nil }

func (r *stubActivityRepo) List(_ context.Context, f ports.ActivityFilter) ([]*domain.ActivityEvent, error) {
	r.filter = f
	return []*domain.ActivityEvent{{Kind: domain.ActivityLoginSucceeded}}, nil
}

func TestActivityService_List(t *testing.T) {
	repo := &stubActivityRepo{}
	svc := NewActivityService(repo)
	ctx := context.Background()

	if _, err := svc.List(ctx, testAlice, ports.ActivityFilter{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	events, err := svc.List(ctx, testAdmin, ports.ActivityFilter{Limit: 1000, ActorID: "alice"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if repo.filter.Limit != 50 || repo.filter.ActorID != "alice" {
		t.Fatalf("unexpected filter: %+v", repo.filter)
	}

	if _, err := svc.List(ctx, testAdmin, ports.ActivityFilter{Limit: 10}); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if repo.filter.Limit != 10 {
		t.Fatalf("limit = %d, want 10", repo.filter.Limit)
	}
}
