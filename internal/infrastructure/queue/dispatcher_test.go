package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/stackit/qa-api/internal/core/domain"
	"github.com/stackit/qa-api/internal/core/ports"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
}

func (r *recordingRepo) Record(_ context.Context, e *domain.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *e)
	return nil
}

func (r *recordingRepo) List(_ context.Context, _ ports.ActivityFilter) ([]*domain.ActivityEvent, error) {
	return nil, nil
}

func (r *recordingRepo) snapshot() []domain.ActivityEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ActivityEvent, len(r.events))
	copy(out, r.events)
	return out
}

func TestDispatcher_PreservesPerActorOrder(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(3, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	const n = 50
	for i := 0; i < n; i++ {
		d.Publish(domain.ActivityEvent{
			Kind:       domain.ActivityQuestionPosted,
			ActorID:    "alice",
			TargetID:   string(rune('a' + i%26)),
			OccurredAt: time.Unix(int64(i), 0),
		})
	}

	cancel()
	d.Wait()

	got := repo.snapshot()
	if len(got) != n {
		t.Fatalf("recorded %d events, want %d", len(got), n)
	}
	for i := range got {
		if got[i].OccurredAt.Unix() != int64(i) {
			t.Fatalf("event %d out of order: %v", i, got[i].OccurredAt)
		}
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(1, repo, zerolog.Nop())

	// Workers are not started, so the buffer fills up.
	for i := 0; i < channelBuffer+5; i++ {
		d.Publish(domain.ActivityEvent{Kind: domain.ActivityLoginFailed, ActorID: "x"})
	}

	if d.Dropped() != 5 {
		t.Fatalf("dropped = %d, want 5", d.Dropped())
	}
	if d.Depth() != channelBuffer {
		t.Fatalf("depth = %d, want %d", d.Depth(), channelBuffer)
	}
}

func TestDispatcher_StampsOccurredAt(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(1, repo, zerolog.Nop())
	d.Publish(domain.ActivityEvent{Kind: domain.ActivityVoteCast, ActorID: "bob"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()

	got := repo.snapshot()
	if len(got) != 1 {
		t.Fatalf("recorded %d events, want 1", len(got))
	}
	if got[0].OccurredAt.IsZero() {
		t.Fatal("expected OccurredAt to be set")
	}
}
