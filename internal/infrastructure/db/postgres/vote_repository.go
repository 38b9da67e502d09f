package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/stackit/qa-api/internal/core/domain"
)

const votesTable = "votes"

// VoteRepository relies on the uq_user_question constraint for the
// one-vote-per-user-per-question rule.
type VoteRepository struct {
	db      DB
	timeout time.Duration
}

func NewVoteRepository(db DB, timeout time.Duration) *VoteRepository {
	return &VoteRepository{db: db, timeout: timeoutOrDefault(timeout)}
}

func (r *VoteRepository) Create(ctx context.Context, v *domain.Vote) error {
	if !validID(v.QuestionID) {
		return domain.ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query, args, err := squirrel.Insert(votesTable).
		Columns("id", "value", "user_id", "question_id").
		Values(uuid.NewString(), v.Value, v.UserID, v.QuestionID).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert vote: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrConflict
		case isForeignKeyViolation(err):
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert vote: %w", err)
	}
	return nil
}

func (r *VoteRepository) Delete(ctx context.Context, userID, questionID string) error {
	if !validID(questionID) {
		return domain.ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query, args, err := squirrel.Delete(votesTable).
		Where(squirrel.Eq{"user_id": userID, "question_id": questionID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete vote: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete vote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
