package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/stackit/qa-api/internal/core/domain"
)

type TagRepository struct {
	db      DB
	timeout time.Duration
}

func NewTagRepository(db DB, timeout time.Duration) *TagRepository {
	return &TagRepository{db: db, timeout: timeoutOrDefault(timeout)}
}

type tagRow struct {
	ID            string `db:"id"`
	Name          string `db:"name"`
	QuestionCount int64  `db:"question_count"`
}

// List returns every tag with the number of questions carrying it, most used first.
func (r *TagRepository) List(ctx context.Context) ([]*domain.Tag, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query, args, err := squirrel.Select("t.id", "t.name", "COUNT(qt.question_id) AS question_count").
		From("tags t").
		LeftJoin("question_tags qt ON qt.tag_id = t.id").
		GroupBy("t.id", "t.name").
		OrderBy("question_count DESC", "t.name ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list tags: %w", err)
	}

	var rows []tagRow
	if err := pgxscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	tags := make([]*domain.Tag, len(rows))
	for i, row := range rows {
		tags[i] = &domain.Tag{ID: row.ID, Name: row.Name, QuestionCount: row.QuestionCount}
	}
	return tags, nil
}
