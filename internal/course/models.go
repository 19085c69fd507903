package course

import (
	"time"

	"github.com/google/uuid"
)

// Course represents one catalog entry.
type Course struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	Level         string     `json:"level"`
	PriceCents    int64      `json:"price_cents"`
	DurationWeeks int        `json:"duration_weeks"`
	CoverFileID   *uuid.UUID `json:"cover_file_id,omitempty"`
	Published     bool       `json:"published"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ListQuery narrows and pages a catalog listing.
type ListQuery struct {
	Category      string
	PublishedOnly bool
	SortBy        string
	Limit         int
	Offset        int
}
