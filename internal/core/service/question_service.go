package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/stackit/qa-api/internal/core/domain"
	"github.com/stackit/qa-api/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	// maxPage keeps (page-1)*limit well inside the range of a SQL OFFSET.
	maxPage          = 1 << 20
)

type QuestionService struct {
	questions ports.QuestionRepository
	answers   ports.AnswerRepository
	tags      ports.TagRepository
	views     ports.ViewCounter
	activity  ports.ActivityPublisher
	log       zerolog.Logger
}

func NewQuestionService(
	questions ports.QuestionRepository,
	answers ports.AnswerRepository,
	tags ports.TagRepository,
	views ports.ViewCounter,
	activity ports.ActivityPublisher,
	log zerolog.Logger,
) *QuestionService {
	if activity == nil {
		activity = noopPublisher{}
	}
	return &QuestionService{
		questions: questions,
		answers:   answers,
		tags:      tags,
		views:     views,
		activity:  activity,
		log:       log,
	}
}

func (s *QuestionService) Create(ctx context.Context, actor *domain.User, in ports.CreateQuestionInput) (*domain.Question, error) {
	if err := Require(actor, domain.RoleUser); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	body := strings.TrimSpace(in.Body)
	if title == "" || utf8.RuneCountInString(title) > domain.MaxTitleLength {
		return nil, domain.Invalidf("title is required and must be at most %d characters", domain.MaxTitleLength)
	}
	if body == "" {
		return nil, domain.Invalidf("body is required")
	}
	tags, err := NormalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}

	q, err := s.questions.Create(ctx, &domain.Question{
		Title:     title,
		Body:      body,
		AuthorID:  actor.ID,
		Tags:      tags,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	q.AuthorUsername = actor.Username

	s.activity.Publish(domain.ActivityEvent{
		Kind:       domain.ActivityQuestionPosted,
		ActorID:    actor.ID,
		Actor:      actor.Username,
		TargetID:   q.ID,
		Attributes: map[string]string{"tags": strings.Join(tags, ",")},
		OccurredAt: time.Now().UTC(),
	})
	s.log.Info().Str("question_id", q.ID).Str("author_id", actor.ID).Msg("question posted")
	return q, nil
}

// Get loads a question with its answers. A failing view counter is logged and
// ignored.
func (s *QuestionService) Get(ctx context.Context, id, viewer string) (*ports.QuestionDetail, error) {
	q, err := s.questions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	answers, err := s.answers.ListByQuestion(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.views != nil && viewer != "" {
		n, verr := s.views.RecordView(ctx, id, viewer)
		if verr != nil {
			s.log.Warn().Err(verr).Str("question_id", id).Msg("view count failed")
		} else {
			q.Views = n
		}
	}

	return &ports.QuestionDetail{Question: q, Answers: answers}, nil
}

func (s *QuestionService) List(ctx context.Context, in ports.ListQuestionsInput) (*ports.ListQuestionsResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		return nil, domain.Invalidf("page must be at most %d", maxPage)
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	items, total, err := s.questions.List(ctx, ports.ListQuestionsFilter{
		Tag:    strings.ToLower(strings.TrimSpace(in.Tag)),
		Search: strings.TrimSpace(in.Search),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	if s.views != nil && len(items) > 0 {
		ids := make([]string, len(items))
		for i, q := range items {
			ids[i] = q.ID
		}
		counts, verr := s.views.Views(ctx, ids...)
		if verr != nil {
			s.log.Warn().Err(verr).Msg("view counts unavailable")
		} else {
			for _, q := range items {
				q.Views = counts[q.ID]
			}
		}
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListQuestionsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// Delete removes a question together with its answers, votes and tag links.
func (s *QuestionService) Delete(ctx context.Context, actor *domain.User, id string) error {
	q, err := s.questions.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := RequireSelfOrAdmin(actor, q.AuthorID); err != nil {
		return err
	}
	if err := s.questions.Delete(ctx, id); err != nil {
		return err
	}

	s.activity.Publish(domain.ActivityEvent{
		Kind:       domain.ActivityQuestionDeleted,
		ActorID:    actor.ID,
		Actor:      actor.Username,
		TargetID:   id,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

func (s *QuestionService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	return s.tags.List(ctx)
}

// NormalizeTags trims, lowercases and de-duplicates tag names, preserving
// first-seen order.
func NormalizeTags(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		name := strings.ToLower(strings.TrimSpace(t))
		if name == "" {
			continue
		}
		if utf8.RuneCountInString(name) > domain.MaxTagLength {
			return nil, domain.Invalidf("tag %q exceeds %d characters", name, domain.MaxTagLength)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	if len(out) > domain.MaxTags {
		return nil, domain.Invalidf("at most %d tags allowed", domain.MaxTags)
	}
	return out, nil
}
