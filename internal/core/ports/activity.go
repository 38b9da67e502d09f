package ports

import (
	"context"

	"github.com/stackit/qa-api/internal/core/domain"
)

// ActivityFilter narrows an activity listing.
type ActivityFilter struct {
	ActorID string
	Kind    string
	Limit   int
}

// ActivityRepository persists audit events.
type ActivityRepository interface {
	Record(ctx context.Context, event *domain.ActivityEvent) error
	List(ctx context.Context, filter ActivityFilter) ([]*domain.ActivityEvent, error)
}

// ActivityPublisher hands events off without blocking the caller.
type ActivityPublisher interface {
	Publish(event domain.ActivityEvent)
}

type ActivityService interface {
	List(ctx context.Context, actor *domain.User, filter ActivityFilter) ([]*domain.ActivityEvent, error)
}
