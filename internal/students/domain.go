package students

import "time"

// Student represents an enrolled student record.
type Student struct {
	ID            int64     `json:"id"`
	AdmissionNo   string    `json:"admission_no"`
	FullName      string    `json:"full_name"`
	Guardian      string    `json:"guardian"`
	GuardianEmail string    `json:"guardian_email,omitempty"`
	Phone         string    `json:"phone"`
	ClassName     string    `json:"class_name"`
	PhotoKey      string    `json:"photo_key,omitempty"`
	PhotoURL      string    `json:"photo_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StudentInput carries create/update attributes.
type StudentInput struct {
	AdmissionNo   string `json:"admission_no" validate:"required"`
	FullName      string `json:"full_name" validate:"required"`
	Guardian      string `json:"guardian"`
	GuardianEmail string `json:"guardian_email" validate:"omitempty,email"`
	Phone         string `json:"phone"`
	ClassName     string `json:"class_name" validate:"required"`
}
