package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/almanar-edu/almanar/internal/dashboard"
	"github.com/almanar-edu/almanar/internal/fees"
)

type captureSender struct {
	to, subject, body string
	err               error
}

func (c *captureSender) Send(_ context.Context, to, subject, body string) error {
	c.to, c.subject, c.body = to, subject, body
	return c.err
}

func TestSendEmailJobDelivers(t *testing.T) {
	sender := &captureSender{}
	job := &SendEmailJob{Sender: sender}

	task, err := NewSendEmailTask(SendEmailPayload{To: "wali@almanar.sch.id", Subject: "Test", Body: "Isi"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, "wali@almanar.sch.id", sender.to)
	require.Equal(t, "Test", sender.subject)
	require.Equal(t, "Isi", sender.body)
}

func TestSendEmailJobSkipsMalformedPayload(t *testing.T) {
	job := &SendEmailJob{Sender: &captureSender{}}
	task := asynq.NewTask(TaskTypeSendEmail, []byte("{not json"))
	require.ErrorIs(t, job.Handle(context.Background(), task), asynq.SkipRetry)

	empty, err := json.Marshal(SendEmailPayload{})
	require.NoError(t, err)
	require.ErrorIs(t, job.Handle(context.Background(), asynq.NewTask(TaskTypeSendEmail, empty)), asynq.SkipRetry)
}

func TestSendEmailJobPropagatesSenderError(t *testing.T) {
	sendErr := errors.New("relay refused")
	job := &SendEmailJob{Sender: &captureSender{err: sendErr}}

	task, err := NewSendEmailTask(SendEmailPayload{To: "a@b.c"})
	require.NoError(t, err)
	require.ErrorIs(t, job.Handle(context.Background(), task), sendErr)
}

func TestWelcomeBodyFallsBackToGenericName(t *testing.T) {
	require.Contains(t, WelcomeBody("Siti Aminah"), "Siti Aminah")
	require.Contains(t, WelcomeBody("  "), "Bapak/Ibu")
}

func TestReceiptBodyIncludesDetails(t *testing.T) {
	receipt := fees.Receipt{
		ReceiptNo:   "RCP-2026-000001",
		StudentName: "Ahmad Fauzi",
		AdmissionNo: "ALM-2026-001",
		Month:       "2026-08",
		Amount:      150000,
		AmountText:  "Rp 150.000",
		Method:      "cash",
		PaidAt:      "2026-08-31",
	}
	body := ReceiptBody(receipt)
	require.Contains(t, body, "RCP-2026-000001")
	require.Contains(t, body, "Ahmad Fauzi")
	require.Contains(t, body, "Rp 150.000")
	require.Equal(t, "Kwitansi pembayaran RCP-2026-000001", ReceiptSubject(receipt))
}

type fixedCounters struct{}

func (fixedCounters) CountStudents(context.Context) (int64, error)  { return 10, nil }
func (fixedCounters) CountStaff(context.Context) (int64, error)     { return 3, nil }
func (fixedCounters) CountLessons(context.Context) (int64, error)   { return 5, nil }
func (fixedCounters) FeesCollectedForMonth(context.Context, string) (int64, error) {
	return 1_500_000, nil
}

func TestDashboardWarmupJobHandlesTask(t *testing.T) {
	svc := dashboard.NewService(fixedCounters{}, nil)
	job := NewDashboardWarmupJob(svc, nil, nil)

	task, err := NewDashboardWarmupTask(DashboardWarmupPayload{Month: "2026-08"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
}

func TestDashboardWarmupSkipsMalformedPayload(t *testing.T) {
	svc := dashboard.NewService(fixedCounters{}, nil)
	job := NewDashboardWarmupJob(svc, nil, nil)

	task := asynq.NewTask(TaskTypeDashboardWarmup, []byte("not-json"))
	require.ErrorIs(t, job.Handle(context.Background(), task), asynq.SkipRetry)
}
