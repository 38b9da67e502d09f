package service

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/stackit/qa-api/internal/core/domain"
	"github.com/stackit/qa-api/internal/core/ports"
)

type VoteService struct {
	votes     ports.VoteRepository
	questions ports.QuestionRepository
	activity  ports.ActivityPublisher
	log       zerolog.Logger
}

func NewVoteService(
	votes ports.VoteRepository,
	questions ports.QuestionRepository,
	activity ports.ActivityPublisher,
	log zerolog.Logger,
) *VoteService {
	if activity == nil {
		activity = noopPublisher{}
	}
	return &VoteService{votes: votes, questions: questions, activity: activity, log: log}
}

// Cast records a +1 or -1. A second vote by the same user on the same
// question fails with domain.ErrConflict from the store; it is not retried.
func (s *VoteService) Cast(ctx context.Context, actor *domain.User, questionID string, value int) error {
	if err := Require(actor, domain.RoleUser); err != nil {
		return err
	}
	if value != 1 && value != -1 {
		return domain.Invalidf("value must be 1 or -1")
	}
	if _, err := s.questions.FindByID(ctx, questionID); err != nil {
		return err
	}
	if err := s.votes.Create(ctx, &domain.Vote{
		Value:      value,
		UserID:     actor.ID,
		QuestionID: questionID,
	}); err != nil {
		return err
	}

	s.activity.Publish(domain.ActivityEvent{
		Kind:       domain.ActivityVoteCast,
		ActorID:    actor.ID,
		Actor:      actor.Username,
		TargetID:   questionID,
		Attributes: map[string]string{"value": strconv.Itoa(value)},
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

func (s *VoteService) Retract(ctx context.Context, actor *domain.User, questionID string) error {
	if err := Require(actor, domain.RoleUser); err != nil {
		return err
	}
	if err := s.votes.Delete(ctx, actor.ID, questionID); err != nil {
		return err
	}

	s.activity.Publish(domain.ActivityEvent{
		Kind:       domain.ActivityVoteRetracted,
		ActorID:    actor.ID,
		Actor:      actor.Username,
		TargetID:   questionID,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}
