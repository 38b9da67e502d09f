package ports

import (
	"context"

	"github.com/stackit/qa-api/internal/core/domain"
)

// ListQuestionsFilter carries query parameters for listing questions.
type ListQuestionsFilter struct {
	Tag    string // optional: exact tag name
	Search string // optional: case-insensitive match on title or body
	Page   int    // 1-based
	Limit  int
}

// QuestionRepository persists questions together with their tag links.
type QuestionRepository interface {
	// Create inserts the question, upserts its tags and links them atomically.
	Create(ctx context.Context, q *domain.Question) (*domain.Question, error)
	FindByID(ctx context.Context, id string) (*domain.Question, error)
	List(ctx context.Context, filter ListQuestionsFilter) ([]*domain.Question, int64, error)
	Delete(ctx context.Context, id string) error
}

type AnswerRepository interface {
	Create(ctx context.Context, a *domain.Answer) (*domain.Answer, error)
	FindByID(ctx context.Context, id string) (*domain.Answer, error)
	ListByQuestion(ctx context.Context, questionID string) ([]*domain.Answer, error)
	// Accept marks the answer accepted and clears the flag on its siblings.
	Accept(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// VoteRepository enforces one vote per user per question via the store.
type VoteRepository interface {
	Create(ctx context.Context, v *domain.Vote) error
	Delete(ctx context.Context, userID, questionID string) error
}

type TagRepository interface {
	List(ctx context.Context) ([]*domain.Tag, error)
}

// ViewCounter tracks per-question view counts.
type ViewCounter interface {
	// RecordView counts a view once per viewer per window and returns the
	// current total.
	RecordView(ctx context.Context, questionID, viewer string) (int64, error)
	Views(ctx context.Context, questionIDs ...string) (map[string]int64, error)
}
