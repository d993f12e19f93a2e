package fees

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/almanar-edu/almanar/internal/shared"
)

type memoryRepo struct {
	mu        sync.Mutex
	schedules map[string]Schedule
	payments  []Payment
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{schedules: map[string]Schedule{}, nextID: 1}
}

func (m *memoryRepo) UpsertSchedule(_ context.Context, input ScheduleInput) (Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[input.ClassName]
	if !ok {
		s = Schedule{ID: int64(len(m.schedules) + 1), ClassName: input.ClassName, CreatedAt: time.Now()}
	}
	s.MonthlyAmount = input.MonthlyAmount
	s.UpdatedAt = time.Now()
	m.schedules[input.ClassName] = s
	return s, nil
}

func (m *memoryRepo) ScheduleForClass(_ context.Context, className string) (Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[className]
	if !ok {
		return Schedule{}, shared.ErrNotFound
	}
	return s, nil
}

func (m *memoryRepo) ListSchedules(_ context.Context) ([]Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Schedule, 0, len(m.schedules))
	for _, s := range m.schedules {
		out = append(out, s)
	}
	return out, nil
}

func (m *memoryRepo) InsertPayment(_ context.Context, input PaymentInput) (Payment, error) {
	month, err := ParseMonth(input.Month)
	if err != nil {
		return Payment{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.StudentID == input.StudentID && p.Month == input.Month {
			return Payment{}, shared.ErrDuplicate
		}
	}
	year := month.Year()
	seq := 1
	for _, p := range m.payments {
		if t, err := ParseMonth(p.Month); err == nil && t.Year() == year {
			seq++
		}
	}
	p := Payment{
		ID:        m.nextID,
		StudentID: input.StudentID,
		Month:     input.Month,
		Amount:    input.Amount,
		Method:    input.Method,
		ReceiptNo: fmt.Sprintf("RCP-%d-%06d", year, seq),
		PaidAt:    time.Now(),
		CreatedAt: time.Now(),
	}
	m.nextID++
	m.payments = append(m.payments, p)
	return p, nil
}

func (m *memoryRepo) PaymentByReceipt(_ context.Context, receiptNo string) (Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.ReceiptNo == receiptNo {
			return p, nil
		}
	}
	return Payment{}, shared.ErrNotFound
}

func (m *memoryRepo) ListPaymentsForStudent(_ context.Context, studentID int64) ([]Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Payment
	for _, p := range m.payments {
		if p.StudentID == studentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryRepo) PaidMonths(_ context.Context, studentID int64, months []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]bool, len(months))
	for _, label := range months {
		want[label] = true
	}
	paid := map[string]bool{}
	for _, p := range m.payments {
		if p.StudentID == studentID && want[p.Month] {
			paid[p.Month] = true
		}
	}
	return paid, nil
}

func (m *memoryRepo) SumForMonth(_ context.Context, month string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, p := range m.payments {
		if p.Month == month {
			total += p.Amount
		}
	}
	return total, nil
}

type stubDirectory struct {
	students map[int64]StudentInfo
}

func (d *stubDirectory) Lookup(_ context.Context, id int64) (StudentInfo, error) {
	s, ok := d.students[id]
	if !ok {
		return StudentInfo{}, shared.ErrNotFound
	}
	return s, nil
}

type captureMailer struct {
	mu       sync.Mutex
	receipts []Receipt
}

func (c *captureMailer) EnqueueReceipt(_ context.Context, _ int64, receipt Receipt) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.receipts = append(c.receipts, receipt)
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo, *captureMailer) {
	t.Helper()
	repo := newMemoryRepo()
	dir := &stubDirectory{students: map[int64]StudentInfo{
		7: {FullName: "Ahmad Fauzi", AdmissionNo: "ALM-2026-001", ClassName: "Tahfidz 1A"},
	}}
	mailer := &captureMailer{}
	return NewService(repo, dir, nil, nil, mailer, nil), repo, mailer
}

func TestRecordPaymentIssuesSequentialReceipts(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	actor := uuid.New()

	first, err := svc.RecordPayment(ctx, actor, "", PaymentInput{StudentID: 7, Month: "2026-07", Amount: 150000, Method: "cash"})
	require.NoError(t, err)
	second, err := svc.RecordPayment(ctx, actor, "", PaymentInput{StudentID: 7, Month: "2026-08", Amount: 150000, Method: "transfer"})
	require.NoError(t, err)

	require.Equal(t, "RCP-2026-000001", first.ReceiptNo)
	require.Equal(t, "RCP-2026-000002", second.ReceiptNo)
}

func TestRecordPaymentDuplicateMonth(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	input := PaymentInput{StudentID: 7, Month: "2026-08", Amount: 150000, Method: "cash"}

	_, err := svc.RecordPayment(ctx, uuid.New(), "", input)
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, uuid.New(), "", input)
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestRecordPaymentUnknownStudent(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.RecordPayment(context.Background(), uuid.New(), "",
		PaymentInput{StudentID: 404, Month: "2026-08", Amount: 150000, Method: "cash"})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRecordPaymentInvalidMonth(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.RecordPayment(context.Background(), uuid.New(), "",
		PaymentInput{StudentID: 7, Month: "August 2026", Amount: 150000, Method: "cash"})
	require.ErrorIs(t, err, ErrInvalidMonth)
}

func TestRecordPaymentEnqueuesFormattedReceipt(t *testing.T) {
	svc, _, mailer := newTestService(t)

	_, err := svc.RecordPayment(context.Background(), uuid.New(), "",
		PaymentInput{StudentID: 7, Month: "2026-08", Amount: 150000, Method: "qris"})
	require.NoError(t, err)

	require.Len(t, mailer.receipts, 1)
	receipt := mailer.receipts[0]
	require.Equal(t, "Ahmad Fauzi", receipt.StudentName)
	require.Equal(t, "Rp 150.000", receipt.AmountText)
	require.Equal(t, "RCP-2026-000001", receipt.ReceiptNo)
}

func TestOutstandingCountsUnpaidMonths(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	actor := uuid.New()

	_, err := svc.UpsertSchedule(ctx, actor, ScheduleInput{ClassName: "Tahfidz 1A", MonthlyAmount: 150000})
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, actor, "", PaymentInput{StudentID: 7, Month: "2026-07", Amount: 150000, Method: "cash"})
	require.NoError(t, err)

	report, err := svc.Outstanding(ctx, 7, "2026-06", "2026-08")
	require.NoError(t, err)
	require.Equal(t, int64(300000), report.TotalDue)
	require.Len(t, report.Months, 3)
	require.False(t, report.Months[0].Paid)
	require.True(t, report.Months[1].Paid)
	require.False(t, report.Months[2].Paid)
}

func TestMonthsBetween(t *testing.T) {
	months, err := MonthsBetween("2025-11", "2026-02")
	require.NoError(t, err)
	require.Equal(t, []string{"2025-11", "2025-12", "2026-01", "2026-02"}, months)

	_, err = MonthsBetween("2026-03", "2026-01")
	require.ErrorIs(t, err, ErrInvalidMonth)
}

func TestFormatIDR(t *testing.T) {
	require.Equal(t, "Rp 150.000", FormatIDR(150000))
	require.Equal(t, "Rp 1.250.500", FormatIDR(1250500))
}
