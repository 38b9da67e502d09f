package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"

	"github.com/stackit/qa-api/internal/core/domain"
)

const questionID = "7d7c1c55-1a2b-4c3d-8e9f-0a1b2c3d4e5f"

func TestVoteRepository_Create(t *testing.T) {
	insert := regexp.QuoteMeta("INSERT INTO votes (id,value,user_id,question_id) VALUES ($1,$2,$3,$4)")
	vote := &domain.Vote{UserID: aliceID, QuestionID: questionID, Value: 1}

	t.Run("Should insert the vote", func(t *testing.T) {
		mock := newMock(t)
		repo := NewVoteRepository(mock, time.Second)

		mock.ExpectExec(insert).
			WithArgs(pgxmock.AnyArg(), 1, aliceID, questionID).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, repo.Create(context.Background(), vote))
	})

	t.Run("Should report a second vote as a conflict", func(t *testing.T) {
		mock := newMock(t)
		repo := NewVoteRepository(mock, time.Second)

		mock.ExpectExec(insert).
			WithArgs(pgxmock.AnyArg(), 1, aliceID, questionID).
			WillReturnError(&pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "uq_user_question"})

		assert.ErrorIs(t, repo.Create(context.Background(), vote), domain.ErrConflict)
	})

	t.Run("Should report a missing question as not found", func(t *testing.T) {
		mock := newMock(t)
		repo := NewVoteRepository(mock, time.Second)

		mock.ExpectExec(insert).
			WithArgs(pgxmock.AnyArg(), 1, aliceID, questionID).
			WillReturnError(&pgconn.PgError{Code: codeForeignKeyViolation})

		assert.ErrorIs(t, repo.Create(context.Background(), vote), domain.ErrNotFound)
	})
}

func TestVoteRepository_Delete(t *testing.T) {
	del := regexp.QuoteMeta("DELETE FROM votes WHERE question_id = $1 AND user_id = $2")

	t.Run("Should retract the caller's vote", func(t *testing.T) {
		mock := newMock(t)
		repo := NewVoteRepository(mock, time.Second)

		mock.ExpectExec(del).
			WithArgs(questionID, aliceID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, repo.Delete(context.Background(), aliceID, questionID))
	})

	t.Run("Should return ErrNotFound when there is no vote", func(t *testing.T) {
		mock := newMock(t)
		repo := NewVoteRepository(mock, time.Second)

		mock.ExpectExec(del).
			WithArgs(questionID, aliceID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), aliceID, questionID), domain.ErrNotFound)
	})
}
