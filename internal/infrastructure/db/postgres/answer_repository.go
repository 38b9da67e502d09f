package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/stackit/qa-api/internal/core/domain"
)

const answersTable = "answers"

var answerColumns = []string{
	"a.id",
	"a.body",
	"a.accepted",
	"a.author_id",
	"u.username AS author_username",
	"a.question_id",
	"a.created_at",
}

type AnswerRepository struct {
	db      DB
	timeout time.Duration
}

func NewAnswerRepository(db DB, timeout time.Duration) *AnswerRepository {
	return &AnswerRepository{db: db, timeout: timeoutOrDefault(timeout)}
}

type answerRow struct {
	ID             string    `db:"id"`
	Body           string    `db:"body"`
	Accepted       bool      `db:"accepted"`
	AuthorID       string    `db:"author_id"`
	AuthorUsername string    `db:"author_username"`
	QuestionID     string    `db:"question_id"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r answerRow) toDomain() *domain.Answer {
	return &domain.Answer{
		ID:             r.ID,
		Body:           r.Body,
		Accepted:       r.Accepted,
		AuthorID:       r.AuthorID,
		AuthorUsername: r.AuthorUsername,
		QuestionID:     r.QuestionID,
		CreatedAt:      r.CreatedAt.UTC(),
	}
}

func (r *AnswerRepository) Create(ctx context.Context, a *domain.Answer) (*domain.Answer, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	created := *a
	created.ID = uuid.NewString()
	created.Accepted = false
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	query, args, err := squirrel.Insert(answersTable).
		Columns("id", "body", "accepted", "author_id", "question_id", "created_at").
		Values(created.ID, created.Body, created.Accepted, created.AuthorID, created.QuestionID, created.CreatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert answer: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			// question removed between the existence check and the insert
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("insert answer: %w", err)
	}
	return &created, nil
}

func (r *AnswerRepository) FindByID(ctx context.Context, id string) (*domain.Answer, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query, args, err := answerSelect().
		Where(squirrel.Eq{"a.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select answer: %w", err)
	}

	var row answerRow
	if err := pgxscan.Get(ctx, r.db, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find answer: %w", err)
	}
	return row.toDomain(), nil
}

// ListByQuestion returns the accepted answer first, then oldest first.
func (r *AnswerRepository) ListByQuestion(ctx context.Context, questionID string) ([]*domain.Answer, error) {
	if !validID(questionID) {
		return []*domain.Answer{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query, args, err := answerSelect().
		Where(squirrel.Eq{"a.question_id": questionID}).
		OrderBy("a.accepted DESC", "a.created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list answers: %w", err)
	}

	var rows []answerRow
	if err := pgxscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	answers := make([]*domain.Answer, len(rows))
	for i, row := range rows {
		answers[i] = row.toDomain()
	}
	return answers, nil
}

// Accept flips the accepted flag for every answer of the same question in a
// single statement, so exactly one ends up accepted.
func (r *AnswerRepository) Accept(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query, args, err := squirrel.Update(answersTable).
		Set("accepted", squirrel.Expr("(id = ?)", id)).
		Where("question_id = (SELECT question_id FROM answers WHERE id = ?)", id).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build accept answer: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("accept answer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AnswerRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query, args, err := squirrel.Delete(answersTable).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete answer: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete answer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func answerSelect() squirrel.SelectBuilder {
	return squirrel.Select(answerColumns...).
		From(answersTable + " a").
		Join("users u ON u.id = a.author_id").
		PlaceholderFormat(squirrel.Dollar)
}
