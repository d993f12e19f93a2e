package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/almanar-edu/almanar/internal/fees"
	jobmetrics "github.com/almanar-edu/almanar/internal/jobs"
)

// Sender delivers a composed email message.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender delivers mail through a plain SMTP relay such as Mailpit in
// development.
type SMTPSender struct {
	Addr string
	From string
}

// Send delivers one message.
func (s *SMTPSender) Send(_ context.Context, to, subject, body string) error {
	if s == nil || s.Addr == "" {
		return errors.New("jobs: smtp sender not configured")
	}
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)
	return smtp.SendMail(s.Addr, nil, s.From, []string{to}, []byte(msg.String()))
}

// SendEmailJob processes mail:send tasks.
type SendEmailJob struct {
	Sender  Sender
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// Handle delivers the email described by the task payload.
func (j *SendEmailJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Sender == nil {
		return errors.New("jobs: send email handler not configured")
	}
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.To == "" {
		return asynq.SkipRetry
	}

	tracker := jobmetrics.NewMetrics(nil).Track(TaskTypeSendEmail)
	if j.Metrics != nil {
		tracker = j.Metrics.Track(TaskTypeSendEmail)
	}
	err := j.Sender.Send(ctx, payload.To, payload.Subject, payload.Body)
	if err != nil && j.Logger != nil {
		j.Logger.Error("send mail", slog.String("to", payload.To), slog.Any("error", err))
	}
	return tracker.End(err)
}

// WelcomeSubject is the subject line of the account welcome email.
const WelcomeSubject = "Selamat datang di Almanar"

// WelcomeBody composes the welcome email body for a provisioned account.
func WelcomeBody(fullName string) string {
	name := strings.TrimSpace(fullName)
	if name == "" {
		name = "Bapak/Ibu"
	}
	return fmt.Sprintf("Assalamu'alaikum %s,\n\nAkun Anda di sistem Almanar telah dibuat. Silakan masuk menggunakan alamat email ini.\n\nWassalam,\nAdmin Almanar", name)
}

// ReceiptSubject composes the subject line of a payment receipt email.
func ReceiptSubject(receipt fees.Receipt) string {
	return fmt.Sprintf("Kwitansi pembayaran %s", receipt.ReceiptNo)
}

// ReceiptBody renders a payment receipt as plain text.
func ReceiptBody(receipt fees.Receipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Kwitansi No. %s\n\n", receipt.ReceiptNo)
	fmt.Fprintf(&b, "Nama      : %s (%s)\n", receipt.StudentName, receipt.AdmissionNo)
	fmt.Fprintf(&b, "Bulan     : %s\n", receipt.Month)
	fmt.Fprintf(&b, "Jumlah    : %s\n", receipt.AmountText)
	fmt.Fprintf(&b, "Metode    : %s\n", receipt.Method)
	fmt.Fprintf(&b, "Tanggal   : %s\n", receipt.PaidAt)
	b.WriteString("\nTerima kasih atas pembayaran Anda.\n")
	return b.String()
}
