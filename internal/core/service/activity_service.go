package service

import (
	"context"

	"github.com/stackit/qa-api/internal/core/domain"
	"github.com/stackit/qa-api/internal/core/ports"
)

const maxActivityLimit = 200

// ActivityService exposes the audit trail to administrators.
type ActivityService struct {
	repo ports.ActivityRepository
}

func NewActivityService(repo ports.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

func (s *ActivityService) List(ctx context.Context, actor *domain.User, filter ports.ActivityFilter) ([]*domain.ActivityEvent, error) {
	if err := Require(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 || filter.Limit > maxActivityLimit {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}
