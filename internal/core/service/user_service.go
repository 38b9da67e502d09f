package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/stackit/qa-api/internal/core/domain"
	"github.com/stackit/qa-api/internal/core/ports"
)

type UserService struct {
	users    ports.UserRepository
	activity ports.ActivityPublisher
	log      zerolog.Logger
}

func NewUserService(users ports.UserRepository, activity ports.ActivityPublisher, log zerolog.Logger) *UserService {
	if activity == nil {
		activity = noopPublisher{}
	}
	return &UserService{users: users, activity: activity, log: log}
}

func (s *UserService) List(ctx context.Context, actor *domain.User) ([]*domain.User, error) {
	if err := Require(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

func (s *UserService) SetRole(ctx context.Context, actor *domain.User, id string, role domain.Role) (*domain.User, error) {
	if err := Require(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, domain.Invalidf("unknown role %q", role)
	}
	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}

	s.activity.Publish(domain.ActivityEvent{
		Kind:       domain.ActivityRoleChanged,
		ActorID:    actor.ID,
		Actor:      actor.Username,
		TargetID:   id,
		Attributes: map[string]string{"role": string(role)},
		OccurredAt: time.Now().UTC(),
	})
	s.log.Info().Str("user_id", id).Str("role", string(role)).Str("by", actor.ID).Msg("role changed")
	return s.users.FindByID(ctx, id)
}

// Delete removes an identity; its posts and votes go with it.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if err := RequireSelfOrAdmin(actor, id); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.activity.Publish(domain.ActivityEvent{
		Kind:       domain.ActivityUserDeleted,
		ActorID:    actor.ID,
		Actor:      actor.Username,
		TargetID:   id,
		OccurredAt: time.Now().UTC(),
	})
	s.log.Info().Str("user_id", id).Str("by", actor.ID).Msg("user deleted")
	return nil
}
