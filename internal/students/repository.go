package students

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/almanar-edu/almanar/internal/shared"
)

// RepositoryPort defines data access methods for student records.
type RepositoryPort interface {
	List(ctx context.Context, page shared.Pagination) ([]Student, int, error)
	Get(ctx context.Context, id int64) (Student, error)
	Create(ctx context.Context, input StudentInput) (Student, error)
	Update(ctx context.Context, id int64, input StudentInput) (Student, error)
	SetPhotoKey(ctx context.Context, id int64, key string) error
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

const studentColumns = `id, admission_no, full_name, guardian, COALESCE(guardian_email, ''), phone, class_name, COALESCE(photo_key, ''), created_at, updated_at`

// List returns a page of students ordered by admission number.
func (r *Repository) List(ctx context.Context, page shared.Pagination) ([]Student, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM students`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+studentColumns+` FROM students ORDER BY admission_no LIMIT $1 OFFSET $2`,
		page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, s)
	}
	return list, total, rows.Err()
}

// Get fetches one student.
func (r *Repository) Get(ctx context.Context, id int64) (Student, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
	s, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Student{}, shared.ErrNotFound
		}
		return Student{}, err
	}
	return s, nil
}

// Create inserts a student. Duplicate admission numbers map to ErrDuplicate.
func (r *Repository) Create(ctx context.Context, input StudentInput) (Student, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO students (admission_no, full_name, guardian, guardian_email, phone, class_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		 RETURNING `+studentColumns,
		input.AdmissionNo, input.FullName, input.Guardian, input.GuardianEmail, input.Phone, input.ClassName)
	s, err := scanStudent(row)
	if err != nil {
		return Student{}, mapWriteErr(err)
	}
	return s, nil
}

// Update replaces a student's editable fields.
func (r *Repository) Update(ctx context.Context, id int64, input StudentInput) (Student, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE students SET admission_no=$2, full_name=$3, guardian=$4, guardian_email=$5, phone=$6, class_name=$7, updated_at=NOW()
		 WHERE id=$1
		 RETURNING `+studentColumns,
		id, input.AdmissionNo, input.FullName, input.Guardian, input.GuardianEmail, input.Phone, input.ClassName)
	s, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Student{}, shared.ErrNotFound
		}
		return Student{}, mapWriteErr(err)
	}
	return s, nil
}

// SetPhotoKey stores the object key of an uploaded photo.
func (r *Repository) SetPhotoKey(ctx context.Context, id int64, key string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE students SET photo_key=$2, updated_at=NOW() WHERE id=$1`, id, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count returns the total number of students.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM students`).Scan(&count)
	return count, err
}

func scanStudent(row pgx.Row) (Student, error) {
	var s Student
	err := row.Scan(&s.ID, &s.AdmissionNo, &s.FullName, &s.Guardian, &s.GuardianEmail, &s.Phone, &s.ClassName, &s.PhotoKey, &s.CreatedAt, &s.UpdatedAt)
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
