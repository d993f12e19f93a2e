package elearning

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/almanar-edu/almanar/internal/shared"
)

// RepositoryPort defines data access methods for lessons.
type RepositoryPort interface {
	ListBySubject(ctx context.Context, subject string) ([]Lesson, error)
	Get(ctx context.Context, id int64) (Lesson, error)
	Create(ctx context.Context, input LessonInput, embed Embed) (Lesson, error)
	Update(ctx context.Context, id int64, input LessonInput, embed Embed) (Lesson, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const lessonColumns = `id, title, subject, video_url, provider, embed_id, position, created_at, updated_at`

// ListBySubject returns a subject playlist in position order.
func (r *Repository) ListBySubject(ctx context.Context, subject string) ([]Lesson, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE subject = $1 ORDER BY position, id`, subject)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// Get fetches one lesson.
func (r *Repository) Get(ctx context.Context, id int64) (Lesson, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+lessonColumns+` FROM lessons WHERE id = $1`, id)
	l, err := scanLesson(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lesson{}, shared.ErrNotFound
		}
		return Lesson{}, err
	}
	return l, nil
}

// Create inserts a lesson with its resolved embed.
func (r *Repository) Create(ctx context.Context, input LessonInput, embed Embed) (Lesson, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO lessons (title, subject, video_url, provider, embed_id, position, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		 RETURNING `+lessonColumns,
		input.Title, input.Subject, input.VideoURL, embed.Provider, embed.ID, input.Position)
	return scanLesson(row)
}

// Update replaces a lesson's fields and embed.
func (r *Repository) Update(ctx context.Context, id int64, input LessonInput, embed Embed) (Lesson, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE lessons SET title=$2, subject=$3, video_url=$4, provider=$5, embed_id=$6, position=$7, updated_at=NOW()
		 WHERE id=$1
		 RETURNING `+lessonColumns,
		id, input.Title, input.Subject, input.VideoURL, embed.Provider, embed.ID, input.Position)
	l, err := scanLesson(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lesson{}, shared.ErrNotFound
		}
		return Lesson{}, err
	}
	return l, nil
}

// Delete removes a lesson.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count returns the total number of lessons.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM lessons`).Scan(&count)
	return count, err
}

func scanLesson(row pgx.Row) (Lesson, error) {
	var l Lesson
	err := row.Scan(&l.ID, &l.Title, &l.Subject, &l.VideoURL, &l.Embed.Provider, &l.Embed.ID, &l.Position, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

var _ RepositoryPort = (*Repository)(nil)
