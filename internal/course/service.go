package course

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// repository abstracts course persistence.
type repository interface {
	Create(ctx context.Context, c Course) (Course, error)
	Get(ctx context.Context, courseID uuid.UUID) (Course, error)
	GetBySlug(ctx context.Context, slug string) (Course, error)
	List(ctx context.Context, q ListQuery) ([]Course, error)
	Update(ctx context.Context, c Course) (Course, error)
	Delete(ctx context.Context, courseID uuid.UUID) error
}

// Service orchestrates catalog operations.
type Service struct {
	repo repository
}

// NewService constructs a course service.
func NewService(repo repository) *Service {
	return &Service{repo: repo}
}

// CourseInput carries the writable fields of a course.
type CourseInput struct {
	Title         string
	Slug          string
	Description   string
	Category      string
	Level         string
	PriceCents    int64
	DurationWeeks int
	CoverFileID   *uuid.UUID
	Published     bool
}

// Create validates and inserts a new catalog entry.
func (s *Service) Create(ctx context.Context, input CourseInput) (Course, error) {
	if err := validateInput(input); err != nil {
		return Course{}, err
	}

	return s.repo.Create(ctx, Course{
		ID:            uuid.New(),
		Title:         strings.TrimSpace(input.Title),
		Slug:          input.Slug,
		Description:   input.Description,
		Category:      input.Category,
		Level:         input.Level,
		PriceCents:    input.PriceCents,
		DurationWeeks: input.DurationWeeks,
		CoverFileID:   input.CoverFileID,
		Published:     input.Published,
	})
}

// Get returns one course. Unpublished entries are admin-only.
func (s *Service) Get(ctx context.Context, courseID uuid.UUID, isAdmin bool) (Course, error) {
	stored, err := s.repo.Get(ctx, courseID)
	if err != nil {
		return Course{}, err
	}
	if !stored.Published && !isAdmin {
		return Course{}, ErrCourseNotFound
	}
	return stored, nil
}

// GetBySlug returns one course addressed by slug.
func (s *Service) GetBySlug(ctx context.Context, slug string, isAdmin bool) (Course, error) {
	stored, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return Course{}, err
	}
	if !stored.Published && !isAdmin {
		return Course{}, ErrCourseNotFound
	}
	return stored, nil
}

// List pages through the catalog. Non-admin callers see published entries only.
func (s *Service) List(ctx context.Context, q ListQuery, isAdmin bool) ([]Course, error) {
	if !isAdmin {
		q.PublishedOnly = true
	}
	if q.Limit <= 0 {
		q.Limit = defaultListLimit
	}
	if q.Limit > maxListLimit {
		q.Limit = maxListLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return s.repo.List(ctx, q)
}

// Update validates and overwrites a course.
func (s *Service) Update(ctx context.Context, courseID uuid.UUID, input CourseInput) (Course, error) {
	if err := validateInput(input); err != nil {
		return Course{}, err
	}

	existing, err := s.repo.Get(ctx, courseID)
	if err != nil {
		return Course{}, err
	}

	existing.Title = strings.TrimSpace(input.Title)
	existing.Slug = input.Slug
	existing.Description = input.Description
	existing.Category = input.Category
	existing.Level = input.Level
	existing.PriceCents = input.PriceCents
	existing.DurationWeeks = input.DurationWeeks
	existing.CoverFileID = input.CoverFileID
	existing.Published = input.Published

	return s.repo.Update(ctx, existing)
}

// Delete removes a course from the catalog.
func (s *Service) Delete(ctx context.Context, courseID uuid.UUID) error {
	return s.repo.Delete(ctx, courseID)
}

func validateInput(input CourseInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidCourse)
	}
	if !slugPattern.MatchString(input.Slug) {
		return fmt.Errorf("%w: slug must be lowercase kebab-case", ErrInvalidCourse)
	}
	if input.PriceCents < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidCourse)
	}
	if input.DurationWeeks < 0 {
		return fmt.Errorf("%w: duration must not be negative", ErrInvalidCourse)
	}
	return nil
}
