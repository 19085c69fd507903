package testimonial

import (
	"time"

	"github.com/google/uuid"
)

// Testimonial is one student quote displayed on the landing pages.
type Testimonial struct {
	ID           uuid.UUID  `json:"id"`
	AuthorName   string     `json:"author_name"`
	AuthorRole   string     `json:"author_role"`
	Quote        string     `json:"quote"`
	Rating       int        `json:"rating"`
	AvatarFileID *uuid.UUID `json:"avatar_file_id,omitempty"`
	Approved     bool       `json:"approved"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
