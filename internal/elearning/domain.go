package elearning

import "time"

// Lesson is a video lesson in a subject playlist.
type Lesson struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Subject   string    `json:"subject"`
	VideoURL  string    `json:"video_url"`
	Embed     Embed     `json:"embed"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LessonInput carries create/update attributes.
type LessonInput struct {
	Title    string `json:"title" validate:"required"`
	Subject  string `json:"subject" validate:"required"`
	VideoURL string `json:"video_url" validate:"required,url"`
	Position int    `json:"position" validate:"gte=0"`
}
