package fees

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/almanar-edu/almanar/internal/platform/db"
	"github.com/almanar-edu/almanar/internal/shared"
)

// RepositoryPort defines data access methods for schedules and payments.
type RepositoryPort interface {
	UpsertSchedule(ctx context.Context, input ScheduleInput) (Schedule, error)
	ScheduleForClass(ctx context.Context, className string) (Schedule, error)
	ListSchedules(ctx context.Context) ([]Schedule, error)
	InsertPayment(ctx context.Context, input PaymentInput) (Payment, error)
	PaymentByReceipt(ctx context.Context, receiptNo string) (Payment, error)
	ListPaymentsForStudent(ctx context.Context, studentID int64) ([]Payment, error)
	PaidMonths(ctx context.Context, studentID int64, months []string) (map[string]bool, error)
	SumForMonth(ctx context.Context, month string) (int64, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// receiptLockID serialises receipt number allocation per process group.
const receiptLockID = 2562628

const scheduleColumns = `id, class_name, monthly_amount, created_at, updated_at`
const paymentColumns = `id, student_id, month, amount, method, receipt_no, paid_at, created_at`

// UpsertSchedule creates or updates the fee for a class.
func (r *Repository) UpsertSchedule(ctx context.Context, input ScheduleInput) (Schedule, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO fee_schedules (class_name, monthly_amount, created_at, updated_at)
		 VALUES ($1, $2, NOW(), NOW())
		 ON CONFLICT (class_name) DO UPDATE SET monthly_amount = EXCLUDED.monthly_amount, updated_at = NOW()
		 RETURNING `+scheduleColumns,
		input.ClassName, input.MonthlyAmount)
	return scanSchedule(row)
}

// ScheduleForClass fetches the fee schedule of a class.
func (r *Repository) ScheduleForClass(ctx context.Context, className string) (Schedule, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+scheduleColumns+` FROM fee_schedules WHERE class_name = $1`, className)
	s, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Schedule{}, shared.ErrNotFound
		}
		return Schedule{}, err
	}
	return s, nil
}

// ListSchedules returns all fee schedules.
func (r *Repository) ListSchedules(ctx context.Context) ([]Schedule, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+scheduleColumns+` FROM fee_schedules ORDER BY class_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// InsertPayment records a payment with a sequential receipt number. The
// allocation runs under an advisory lock so concurrent payments in the same
// year never share a sequence slot. A second payment for the same student
// and month maps to ErrDuplicate.
func (r *Repository) InsertPayment(ctx context.Context, input PaymentInput) (Payment, error) {
	month, err := ParseMonth(input.Month)
	if err != nil {
		return Payment{}, err
	}
	year := month.Year()

	var payment Payment
	err = db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, receiptLockID); err != nil {
			return fmt.Errorf("fees: acquire receipt lock: %w", err)
		}
		var seq int64
		if err := tx.QueryRow(ctx,
			`SELECT count(*) + 1 FROM fee_payments WHERE receipt_no LIKE $1`,
			fmt.Sprintf("RCP-%d-%%", year)).Scan(&seq); err != nil {
			return err
		}
		receiptNo := fmt.Sprintf("RCP-%d-%06d", year, seq)
		row := tx.QueryRow(ctx,
			`INSERT INTO fee_payments (student_id, month, amount, method, receipt_no, paid_at, created_at)
			 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			 RETURNING `+paymentColumns,
			input.StudentID, input.Month, input.Amount, input.Method, receiptNo)
		p, err := scanPayment(row)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return shared.ErrDuplicate
			}
			return err
		}
		payment = p
		return nil
	})
	if err != nil {
		return Payment{}, err
	}
	return payment, nil
}

// PaymentByReceipt fetches a payment by its receipt number.
func (r *Repository) PaymentByReceipt(ctx context.Context, receiptNo string) (Payment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM fee_payments WHERE receipt_no = $1`, receiptNo)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payment{}, shared.ErrNotFound
		}
		return Payment{}, err
	}
	return p, nil
}

// ListPaymentsForStudent returns a student's payments, newest month first.
func (r *Repository) ListPaymentsForStudent(ctx context.Context, studentID int64) ([]Payment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+paymentColumns+` FROM fee_payments WHERE student_id = $1 ORDER BY month DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// PaidMonths reports which of the given month labels the student has paid.
func (r *Repository) PaidMonths(ctx context.Context, studentID int64, months []string) (map[string]bool, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT month FROM fee_payments WHERE student_id = $1 AND month = ANY($2)`, studentID, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	paid := make(map[string]bool, len(months))
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		paid[m] = true
	}
	return paid, rows.Err()
}

// SumForMonth totals payments recorded for a month label.
func (r *Repository) SumForMonth(ctx context.Context, month string) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM fee_payments WHERE month = $1`, month).Scan(&total)
	return total, err
}

func scanSchedule(row pgx.Row) (Schedule, error) {
	var s Schedule
	err := row.Scan(&s.ID, &s.ClassName, &s.MonthlyAmount, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.StudentID, &p.Month, &p.Amount, &p.Method, &p.ReceiptNo, &p.PaidAt, &p.CreatedAt)
	return p, err
}

var _ RepositoryPort = (*Repository)(nil)
