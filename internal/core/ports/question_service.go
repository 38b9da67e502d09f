package ports

import (
	"context"

	"github.com/stackit/qa-api/internal/core/domain"
)

// CreateQuestionInput is the DTO passed from the transport layer.
type CreateQuestionInput struct {
	Title string
	Body  string
	Tags  []string
}

type ListQuestionsInput struct {
	Tag    string
	Search string
	Page   int
	Limit  int
}

type ListQuestionsResult struct {
	Items      []*domain.Question
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// QuestionDetail is a question with its answers.
type QuestionDetail struct {
	Question *domain.Question
	Answers  []*domain.Answer
}

type QuestionService interface {
	Create(ctx context.Context, actor *domain.User, in CreateQuestionInput) (*domain.Question, error)
	// Get returns the question and records a view attributed to viewer.
	Get(ctx context.Context, id, viewer string) (*QuestionDetail, error)
	List(ctx context.Context, in ListQuestionsInput) (*ListQuestionsResult, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
	ListTags(ctx context.Context) ([]*domain.Tag, error)
}

type AnswerService interface {
	Create(ctx context.Context, actor *domain.User, questionID, body string) (*domain.Answer, error)
	ListByQuestion(ctx context.Context, questionID string) ([]*domain.Answer, error)
	Accept(ctx context.Context, actor *domain.User, answerID string) (*domain.Answer, error)
	Delete(ctx context.Context, actor *domain.User, answerID string) error
}

type VoteService interface {
	Cast(ctx context.Context, actor *domain.User, questionID string, value int) error
	Retract(ctx context.Context, actor *domain.User, questionID string) error
}
