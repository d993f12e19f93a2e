package fees

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/almanar-edu/almanar/internal/shared"
)

// StudentInfo is the slice of a student record the fee module needs.
type StudentInfo struct {
	FullName    string
	AdmissionNo string
	ClassName   string
}

// StudentDirectory resolves student details for payments and receipts.
type StudentDirectory interface {
	Lookup(ctx context.Context, id int64) (StudentInfo, error)
}

// ReceiptMailer enqueues receipt delivery after a successful payment.
type ReceiptMailer interface {
	EnqueueReceipt(ctx context.Context, studentID int64, receipt Receipt) error
}

// Service handles fee schedules and payments.
type Service struct {
	repo     RepositoryPort
	students StudentDirectory
	idem     *shared.IdempotencyStore
	audit    *shared.AuditLogger
	mailer   ReceiptMailer
	logger   *slog.Logger
}

// NewService builds a Service. idem, audit and mailer may be nil.
func NewService(repo RepositoryPort, students StudentDirectory, idem *shared.IdempotencyStore, audit *shared.AuditLogger, mailer ReceiptMailer, logger *slog.Logger) *Service {
	return &Service{repo: repo, students: students, idem: idem, audit: audit, mailer: mailer, logger: logger}
}

// UpsertSchedule creates or updates a class fee schedule.
func (s *Service) UpsertSchedule(ctx context.Context, actor uuid.UUID, input ScheduleInput) (Schedule, error) {
	schedule, err := s.repo.UpsertSchedule(ctx, input)
	if err != nil {
		return Schedule{}, err
	}
	s.recordAudit(ctx, actor, "fee_schedule_set", schedule.ClassName,
		map[string]any{"monthly_amount": schedule.MonthlyAmount})
	return schedule, nil
}

// ListSchedules returns all class fee schedules.
func (s *Service) ListSchedules(ctx context.Context) ([]Schedule, error) {
	return s.repo.ListSchedules(ctx)
}

// RecordPayment records a fee payment and returns it with the issued receipt
// number. An idempotency key, when provided, guarantees at-most-once
// application across client retries. A successful payment enqueues receipt
// delivery best-effort.
func (s *Service) RecordPayment(ctx context.Context, actor uuid.UUID, idemKey string, input PaymentInput) (Payment, error) {
	if _, err := ParseMonth(input.Month); err != nil {
		return Payment{}, err
	}
	student, err := s.students.Lookup(ctx, input.StudentID)
	if err != nil {
		return Payment{}, err
	}

	if s.idem != nil && idemKey != "" {
		if err := s.idem.CheckAndInsert(ctx, idemKey, "fees"); err != nil {
			return Payment{}, err
		}
	}

	payment, err := s.repo.InsertPayment(ctx, input)
	if err != nil {
		if s.idem != nil && idemKey != "" && !errors.Is(err, shared.ErrIdempotencyConflict) {
			if delErr := s.idem.Delete(ctx, idemKey); delErr != nil && s.logger != nil {
				s.logger.Warn("release idempotency key", slog.String("key", idemKey), slog.Any("error", delErr))
			}
		}
		return Payment{}, err
	}

	s.recordAudit(ctx, actor, "payment_recorded", payment.ReceiptNo, map[string]any{
		"student_id": payment.StudentID,
		"month":      payment.Month,
		"amount":     payment.Amount,
	})

	if s.mailer != nil {
		receipt := buildReceipt(payment, student)
		if err := s.mailer.EnqueueReceipt(ctx, payment.StudentID, receipt); err != nil && s.logger != nil {
			s.logger.Warn("enqueue receipt mail", slog.String("receipt_no", payment.ReceiptNo), slog.Any("error", err))
		}
	}
	return payment, nil
}

// PaymentsForStudent lists a student's payments.
func (s *Service) PaymentsForStudent(ctx context.Context, studentID int64) ([]Payment, error) {
	if _, err := s.students.Lookup(ctx, studentID); err != nil {
		return nil, err
	}
	return s.repo.ListPaymentsForStudent(ctx, studentID)
}

// ReceiptFor renders the receipt of a recorded payment.
func (s *Service) ReceiptFor(ctx context.Context, receiptNo string) (Receipt, error) {
	payment, err := s.repo.PaymentByReceipt(ctx, receiptNo)
	if err != nil {
		return Receipt{}, err
	}
	student, err := s.students.Lookup(ctx, payment.StudentID)
	if err != nil {
		return Receipt{}, err
	}
	return buildReceipt(payment, student), nil
}

// MonthStatus marks whether one month has been paid.
type MonthStatus struct {
	Month string `json:"month"`
	Paid  bool   `json:"paid"`
}

// OutstandingReport summarises a student's unpaid months in a range.
type OutstandingReport struct {
	StudentID     int64         `json:"student_id"`
	ClassName     string        `json:"class_name"`
	MonthlyAmount int64         `json:"monthly_amount"`
	Months        []MonthStatus `json:"months"`
	TotalDue      int64         `json:"total_due"`
}

// Outstanding computes the unpaid balance for a student across a month range.
func (s *Service) Outstanding(ctx context.Context, studentID int64, from, to string) (OutstandingReport, error) {
	months, err := MonthsBetween(from, to)
	if err != nil {
		return OutstandingReport{}, err
	}
	student, err := s.students.Lookup(ctx, studentID)
	if err != nil {
		return OutstandingReport{}, err
	}
	schedule, err := s.repo.ScheduleForClass(ctx, student.ClassName)
	if err != nil {
		return OutstandingReport{}, err
	}
	paid, err := s.repo.PaidMonths(ctx, studentID, months)
	if err != nil {
		return OutstandingReport{}, err
	}

	report := OutstandingReport{
		StudentID:     studentID,
		ClassName:     student.ClassName,
		MonthlyAmount: schedule.MonthlyAmount,
	}
	for _, m := range months {
		status := MonthStatus{Month: m, Paid: paid[m]}
		if !status.Paid {
			report.TotalDue += schedule.MonthlyAmount
		}
		report.Months = append(report.Months, status)
	}
	return report, nil
}

// CollectedForMonth totals payments for a month, used by the dashboard.
func (s *Service) CollectedForMonth(ctx context.Context, month string) (int64, error) {
	if _, err := ParseMonth(month); err != nil {
		return 0, err
	}
	return s.repo.SumForMonth(ctx, month)
}

func buildReceipt(payment Payment, student StudentInfo) Receipt {
	return Receipt{
		ReceiptNo:   payment.ReceiptNo,
		StudentName: student.FullName,
		AdmissionNo: student.AdmissionNo,
		Month:       payment.Month,
		Amount:      payment.Amount,
		AmountText:  FormatIDR(payment.Amount),
		Method:      payment.Method,
		PaidAt:      payment.PaidAt.Format("2006-01-02"),
	}
}

func (s *Service) recordAudit(ctx context.Context, actor uuid.UUID, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor,
		Action:   action,
		Entity:   "fees",
		EntityID: entityID,
		Meta:     meta,
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record", slog.String("action", action), slog.Any("error", err))
	}
}
