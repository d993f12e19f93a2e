package fees

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Schedule sets the monthly fee for a class.
type Schedule struct {
	ID            int64     `json:"id"`
	ClassName     string    `json:"class_name"`
	MonthlyAmount int64     `json:"monthly_amount"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ScheduleInput carries schedule upsert attributes. Amounts are whole rupiah.
type ScheduleInput struct {
	ClassName     string `json:"class_name" validate:"required"`
	MonthlyAmount int64  `json:"monthly_amount" validate:"required,gt=0"`
}

// Payment is a recorded fee payment for one student and month.
type Payment struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"student_id"`
	Month     string    `json:"month"`
	Amount    int64     `json:"amount"`
	Method    string    `json:"method"`
	ReceiptNo string    `json:"receipt_no"`
	PaidAt    time.Time `json:"paid_at"`
	CreatedAt time.Time `json:"created_at"`
}

// PaymentInput carries payment attributes.
type PaymentInput struct {
	StudentID int64  `json:"student_id" validate:"required,gt=0"`
	Month     string `json:"month" validate:"required"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	Method    string `json:"method" validate:"required,oneof=cash transfer qris"`
}

// Receipt is the rendered payment receipt.
type Receipt struct {
	ReceiptNo   string `json:"receipt_no"`
	StudentName string `json:"student_name"`
	AdmissionNo string `json:"admission_no"`
	Month       string `json:"month"`
	Amount      int64  `json:"amount"`
	AmountText  string `json:"amount_text"`
	Method      string `json:"method"`
	PaidAt      string `json:"paid_at"`
}

// ErrInvalidMonth signals a month label outside the YYYY-MM format.
var ErrInvalidMonth = errors.New("invalid month")

const monthLayout = "2006-01"

// ParseMonth validates a YYYY-MM month label.
func ParseMonth(raw string) (time.Time, error) {
	t, err := time.Parse(monthLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonth, raw)
	}
	return t, nil
}

// MonthLabel formats a time as a YYYY-MM month label.
func MonthLabel(t time.Time) string {
	return t.Format(monthLayout)
}

// MonthsBetween lists month labels from one label to another, inclusive.
func MonthsBetween(from, to string) ([]string, error) {
	start, err := ParseMonth(from)
	if err != nil {
		return nil, err
	}
	end, err := ParseMonth(to)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: range %s..%s", ErrInvalidMonth, from, to)
	}
	var months []string
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 1, 0) {
		months = append(months, MonthLabel(cur))
	}
	return months, nil
}

var idrPrinter = message.NewPrinter(language.Indonesian)

// FormatIDR renders a whole-rupiah amount with the Indonesian locale,
// e.g. 150000 becomes "Rp 150.000".
func FormatIDR(amount int64) string {
	return idrPrinter.Sprintf("Rp %d", amount)
}
