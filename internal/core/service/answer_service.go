package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stackit/qa-api/internal/core/domain"
	"github.com/stackit/qa-api/internal/core/ports"
)

type AnswerService struct {
	answers   ports.AnswerRepository
	questions ports.QuestionRepository
	activity  ports.ActivityPublisher
	log       zerolog.Logger
}

func NewAnswerService(
	answers ports.AnswerRepository,
	questions ports.QuestionRepository,
	activity ports.ActivityPublisher,
	log zerolog.Logger,
) *AnswerService {
	if activity == nil {
		activity = noopPublisher{}
	}
	return &AnswerService{answers: answers, questions: questions, activity: activity, log: log}
}

func (s *AnswerService) Create(ctx context.Context, actor *domain.User, questionID, body string) (*domain.Answer, error) {
	if err := Require(actor, domain.RoleUser); err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.Invalidf("body is required")
	}
	if _, err := s.questions.FindByID(ctx, questionID); err != nil {
		return nil, err
	}

	a, err := s.answers.Create(ctx, &domain.Answer{
		Body:       body,
		AuthorID:   actor.ID,
		QuestionID: questionID,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	a.AuthorUsername = actor.Username

	s.activity.Publish(domain.ActivityEvent{
		Kind:       domain.ActivityAnswerPosted,
		ActorID:    actor.ID,
		Actor:      actor.Username,
		TargetID:   a.ID,
		Attributes: map[string]string{"question_id": questionID},
		OccurredAt: time.Now().UTC(),
	})
	return a, nil
}

func (s *AnswerService) ListByQuestion(ctx context.Context, questionID string) ([]*domain.Answer, error) {
	if _, err := s.questions.FindByID(ctx, questionID); err != nil {
		return nil, err
	}
	return s.answers.ListByQuestion(ctx, questionID)
}

// Accept marks an answer as the accepted one. Only the question's author or an
// admin may do so.
func (s *AnswerService) Accept(ctx context.Context, actor *domain.User, answerID string) (*domain.Answer, error) {
	a, err := s.answers.FindByID(ctx, answerID)
	if err != nil {
		return nil, err
	}
	q, err := s.questions.FindByID(ctx, a.QuestionID)
	if err != nil {
		return nil, err
	}
	if err := RequireSelfOrAdmin(actor, q.AuthorID); err != nil {
		return nil, err
	}
	if err := s.answers.Accept(ctx, answerID); err != nil {
		return nil, err
	}
	a.Accepted = true

	s.activity.Publish(domain.ActivityEvent{
		Kind:       domain.ActivityAnswerAccepted,
		ActorID:    actor.ID,
		Actor:      actor.Username,
		TargetID:   answerID,
		Attributes: map[string]string{"question_id": q.ID},
		OccurredAt: time.Now().UTC(),
	})
	return a, nil
}

func (s *AnswerService) Delete(ctx context.Context, actor *domain.User, answerID string) error {
	a, err := s.answers.FindByID(ctx, answerID)
	if err != nil {
		return err
	}
	if err := RequireSelfOrAdmin(actor, a.AuthorID); err != nil {
		return err
	}
	if err := s.answers.Delete(ctx, answerID); err != nil {
		return err
	}

	s.activity.Publish(domain.ActivityEvent{
		Kind:       domain.ActivityAnswerDeleted,
		ActorID:    actor.ID,
		Actor:      actor.Username,
		TargetID:   answerID,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}
