package content

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/almanar-edu/almanar/internal/shared"
)

// RepositoryPort defines data access methods for landing sections.
type RepositoryPort interface {
	ListPublished(ctx context.Context) ([]Section, error)
	ListAll(ctx context.Context) ([]Section, error)
	Get(ctx context.Context, id int64) (Section, error)
	Create(ctx context.Context, input SectionInput) (Section, error)
	Update(ctx context.Context, id int64, input SectionInput) (Section, error)
	SetImageKey(ctx context.Context, id int64, key string) error
	Delete(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const sectionColumns = `id, key, title, body, COALESCE(image_key, ''), position, published, created_at, updated_at`

// ListPublished returns published sections in position order.
func (r *Repository) ListPublished(ctx context.Context) ([]Section, error) {
	return r.list(ctx, `SELECT `+sectionColumns+` FROM landing_sections WHERE published ORDER BY position, id`)
}

// ListAll returns every section in position order.
func (r *Repository) ListAll(ctx context.Context) ([]Section, error) {
	return r.list(ctx, `SELECT `+sectionColumns+` FROM landing_sections ORDER BY position, id`)
}

func (r *Repository) list(ctx context.Context, query string) ([]Section, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Section
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Get fetches one section.
func (r *Repository) Get(ctx context.Context, id int64) (Section, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+sectionColumns+` FROM landing_sections WHERE id = $1`, id)
	s, err := scanSection(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Section{}, shared.ErrNotFound
		}
		return Section{}, err
	}
	return s, nil
}

// Create inserts a section. Duplicate keys map to ErrDuplicate.
func (r *Repository) Create(ctx context.Context, input SectionInput) (Section, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO landing_sections (key, title, body, position, published, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		 RETURNING `+sectionColumns,
		input.Key, input.Title, input.Body, input.Position, input.Published)
	s, err := scanSection(row)
	if err != nil {
		return Section{}, mapWriteErr(err)
	}
	return s, nil
}

// Update replaces a section's editable fields.
func (r *Repository) Update(ctx context.Context, id int64, input SectionInput) (Section, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE landing_sections SET key=$2, title=$3, body=$4, position=$5, published=$6, updated_at=NOW()
		 WHERE id=$1
		 RETURNING `+sectionColumns,
		id, input.Key, input.Title, input.Body, input.Position, input.Published)
	s, err := scanSection(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Section{}, shared.ErrNotFound
		}
		return Section{}, mapWriteErr(err)
	}
	return s, nil
}

// SetImageKey stores the object key of an uploaded section image.
func (r *Repository) SetImageKey(ctx context.Context, id int64, key string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE landing_sections SET image_key=$2, updated_at=NOW() WHERE id=$1`, id, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a section.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM landing_sections WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanSection(row pgx.Row) (Section, error) {
	var s Section
	err := row.Scan(&s.ID, &s.Key, &s.Title, &s.Body, &s.ImageKey, &s.Position, &s.Published, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrDuplicate
	}
	return err
}

var _ RepositoryPort = (*Repository)(nil)
