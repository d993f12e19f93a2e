package staff

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/almanar-edu/almanar/internal/shared"
)

// RepositoryPort defines data access methods for staff records.
type RepositoryPort interface {
	List(ctx context.Context, page shared.Pagination) ([]Member, int, error)
	Get(ctx context.Context, id int64) (Member, error)
	Create(ctx context.Context, input MemberInput) (Member, error)
	Update(ctx context.Context, id int64, input MemberInput) (Member, error)
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

const memberColumns = `id, full_name, phone, subject, join_date, user_id, created_at, updated_at`

// List returns a page of staff members ordered by name.
func (r *Repository) List(ctx context.Context, page shared.Pagination) ([]Member, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM staff_members`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+memberColumns+` FROM staff_members ORDER BY full_name LIMIT $1 OFFSET $2`,
		page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, m)
	}
	return list, total, rows.Err()
}

// Get fetches one staff member.
func (r *Repository) Get(ctx context.Context, id int64) (Member, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM staff_members WHERE id = $1`, id)
	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Member{}, shared.ErrNotFound
		}
		return Member{}, err
	}
	return m, nil
}

// Create inserts a staff member.
func (r *Repository) Create(ctx context.Context, input MemberInput) (Member, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO staff_members (full_name, phone, subject, join_date, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		 RETURNING `+memberColumns,
		input.FullName, input.Phone, input.Subject, input.JoinDate, input.UserID)
	m, err := scanMember(row)
	if err != nil {
		return Member{}, mapWriteErr(err)
	}
	return m, nil
}

// Update replaces a staff member's editable fields.
func (r *Repository) Update(ctx context.Context, id int64, input MemberInput) (Member, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE staff_members SET full_name=$2, phone=$3, subject=$4, join_date=$5, user_id=$6, updated_at=NOW()
		 WHERE id=$1
		 RETURNING `+memberColumns,
		id, input.FullName, input.Phone, input.Subject, input.JoinDate, input.UserID)
	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Member{}, shared.ErrNotFound
		}
		return Member{}, mapWriteErr(err)
	}
	return m, nil
}

// Delete removes a staff member.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM staff_members WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count returns the total number of staff members.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM staff_members`).Scan(&count)
	return count, err
}

func scanMember(row pgx.Row) (Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.FullName, &m.Phone, &m.Subject, &m.JoinDate, &m.UserID, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrDuplicate
	}
	return err
}

var _ RepositoryPort = (*Repository)(nil)
