package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/stackit/qa-api/internal/core/domain"
	"github.com/stackit/qa-api/internal/core/ports"
)

const questionsTable = "questions"

// questionColumns resolves author, score, answer stats and tags with explicit
// joins and correlated subqueries.
var questionColumns = []string{
	"q.id",
	"q.title",
	"q.body",
	"q.author_id",
	"u.username AS author_username",
	"q.created_at",
	"COALESCE((SELECT SUM(v.value) FROM votes v WHERE v.question_id = q.id), 0) AS score",
	"(SELECT COUNT(*) FROM answers a WHERE a.question_id = q.id) AS answer_count",
	"EXISTS (SELECT 1 FROM answers a WHERE a.question_id = q.id AND a.accepted) AS has_accepted",
	"ARRAY(SELECT t.name FROM question_tags qt JOIN tags t ON t.id = qt.tag_id WHERE qt.question_id = q.id ORDER BY t.name) AS tags",
}

type QuestionRepository struct {
	db      DB
	timeout time.Duration
}

func NewQuestionRepository(db DB, timeout time.Duration) *QuestionRepository {
	return &QuestionRepository{db: db, timeout: timeoutOrDefault(timeout)}
}

type questionRow struct {
	ID             string    `db:"id"`
	Title          string    `db:"title"`
	Body           string    `db:"body"`
	AuthorID       string    `db:"author_id"`
	AuthorUsername string    `db:"author_username"`
	CreatedAt      time.Time `db:"created_at"`
	Score          int64     `db:"score"`
	AnswerCount    int64     `db:"answer_count"`
	HasAccepted    bool      `db:"has_accepted"`
	Tags           []string  `db:"tags"`
}

func (r questionRow) toDomain() *domain.Question {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return &domain.Question{
		ID:             r.ID,
		Title:          r.Title,
		Body:           r.Body,
		AuthorID:       r.AuthorID,
		AuthorUsername: r.AuthorUsername,
		Tags:           tags,
		Score:          r.Score,
		AnswerCount:    r.AnswerCount,
		HasAccepted:    r.HasAccepted,
		CreatedAt:      r.CreatedAt.UTC(),
	}
}

// Create inserts the question, upserts each tag by name and links them in one
// transaction.
func (r *QuestionRepository) Create(ctx context.Context, q *domain.Question) (*domain.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	created := *q
	created.ID = uuid.NewString()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	if created.Tags == nil {
		created.Tags = []string{}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create question: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query, args, err := squirrel.Insert(questionsTable).
		Columns("id", "title", "body", "author_id", "created_at").
		Values(created.ID, created.Title, created.Body, created.AuthorID, created.CreatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert question: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("insert question: %w", err)
	}

	for _, name := range created.Tags {
		query, args, err := squirrel.Insert("tags").
			Columns("id", "name").
			Values(uuid.NewString(), name).
			Suffix("ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build upsert tag: %w", err)
		}
		var tagID string
		if err := tx.QueryRow(ctx, query, args...).Scan(&tagID); err != nil {
			return nil, fmt.Errorf("upsert tag %q: %w", name, err)
		}

		query, args, err = squirrel.Insert("question_tags").
			Columns("question_id", "tag_id").
			Values(created.ID, tagID).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build link tag: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("link tag %q: %w", name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create question: %w", err)
	}
	return &created, nil
}

func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*domain.Question, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query, args, err := questionSelect().
		Where(squirrel.Eq{"q.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select question: %w", err)
	}

	var row questionRow
	if err := pgxscan.Get(ctx, r.db, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find question: %w", err)
	}
	return row.toDomain(), nil
}

// List returns one page of questions, newest first, and the total match count.
func (r *QuestionRepository) List(ctx context.Context, f ports.ListQuestionsFilter) ([]*domain.Question, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	countQuery, countArgs, err := applyQuestionFilter(
		squirrel.Select("COUNT(*)").From(questionsTable+" q").PlaceholderFormat(squirrel.Dollar), f,
	).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count questions: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count questions: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	page := f.Page
	if page < 1 {
		page = 1
	}

	query, args, err := applyQuestionFilter(questionSelect(), f).
		OrderBy("q.created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list questions: %w", err)
	}

	var rows []questionRow
	if err := pgxscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list questions: %w", err)
	}
	items := make([]*domain.Question, len(rows))
	for i, row := range rows {
		items[i] = row.toDomain()
	}
	return items, total, nil
}

// Delete removes a question; answers, votes and tag links cascade.
func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query, args, err := squirrel.Delete(questionsTable).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete question: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func questionSelect() squirrel.SelectBuilder {
	return squirrel.Select(questionColumns...).
		From(questionsTable + " q").
		Join("users u ON u.id = q.author_id").
		PlaceholderFormat(squirrel.Dollar)
}

// likeEscaper quotes LIKE metacharacters so search text matches literally.
// Backslash is the default LIKE escape character in postgres.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func applyQuestionFilter(b squirrel.SelectBuilder, f ports.ListQuestionsFilter) squirrel.SelectBuilder {
	if f.Tag != "" {
		b = b.Where("EXISTS (SELECT 1 FROM question_tags qt JOIN tags t ON t.id = qt.tag_id WHERE qt.question_id = q.id AND t.name = ?)", f.Tag)
	}
	if f.Search != "" {
		pattern := "%" + likeEscaper.Replace(f.Search) + "%"
		b = b.Where(squirrel.Or{
			squirrel.ILike{"q.title": pattern},
			squirrel.ILike{"q.body": pattern},
		})
	}
	return b
}
