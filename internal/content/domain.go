package content

import "time"

// Section is one block of the public landing page.
type Section struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	ImageKey  string    `json:"image_key,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	Position  int       `json:"position"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SectionInput carries create/update attributes. Key is a stable slug such
// as "hero" or "program-tahfidz".
type SectionInput struct {
	Key       string `json:"key" validate:"required,lowercase"`
	Title     string `json:"title" validate:"required"`
	Body      string `json:"body"`
	Position  int    `json:"position" validate:"gte=0"`
	Published bool   `json:"published"`
}
