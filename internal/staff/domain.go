package staff

import (
	"time"

	"github.com/google/uuid"
)

// Member represents a teacher or staff record.
type Member struct {
	ID        int64      `json:"id"`
	FullName  string     `json:"full_name"`
	Phone     string     `json:"phone"`
	Subject   string     `json:"subject"`
	JoinDate  time.Time  `json:"join_date"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// MemberInput carries create/update attributes.
type MemberInput struct {
	FullName string     `json:"full_name" validate:"required"`
	Phone    string     `json:"phone"`
	Subject  string     `json:"subject"`
	JoinDate time.Time  `json:"join_date"`
	UserID   *uuid.UUID `json:"user_id,omitempty"`
}
