package testimonial

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const maxQuoteLength = 2000

// repository abstracts testimonial persistence.
type repository interface {
	Create(ctx context.Context, t Testimonial) (Testimonial, error)
	Get(ctx context.Context, id uuid.UUID) (Testimonial, error)
	List(ctx context.Context, approvedOnly bool) ([]Testimonial, error)
	Update(ctx context.Context, t Testimonial) (Testimonial, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service orchestrates testimonial operations.
type Service struct {
	repo repository
}

// NewService constructs a testimonial service.
func NewService(repo repository) *Service {
	return &Service{repo: repo}
}

// Input carries the writable fields of a testimonial.
type Input struct {
	AuthorName   string
	AuthorRole   string
	Quote        string
	Rating       int
	AvatarFileID *uuid.UUID
	Approved     bool
}

// Create validates and inserts a new testimonial.
func (s *Service) Create(ctx context.Context, input Input) (Testimonial, error) {
	if err := validateInput(input); err != nil {
		return Testimonial{}, err
	}

	return s.repo.Create(ctx, Testimonial{
		ID:           uuid.New(),
		AuthorName:   strings.TrimSpace(input.AuthorName),
		AuthorRole:   strings.TrimSpace(input.AuthorRole),
		Quote:        strings.TrimSpace(input.Quote),
		Rating:       input.Rating,
		AvatarFileID: input.AvatarFileID,
		Approved:     input.Approved,
	})
}

// List returns testimonials; non-admin callers see approved ones only.
func (s *Service) List(ctx context.Context, isAdmin bool) ([]Testimonial, error) {
	return s.repo.List(ctx, !isAdmin)
}

// Get returns one testimonial. Unapproved entries are admin-only.
func (s *Service) Get(ctx context.Context, id uuid.UUID, isAdmin bool) (Testimonial, error) {
	stored, err := s.repo.Get(ctx, id)
	if err != nil {
		return Testimonial{}, err
	}
	if !stored.Approved && !isAdmin {
		return Testimonial{}, ErrTestimonialNotFound
	}
	return stored, nil
}

// Update validates and overwrites a testimonial.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input Input) (Testimonial, error) {
	if err := validateInput(input); err != nil {
		return Testimonial{}, err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Testimonial{}, err
	}

	existing.AuthorName = strings.TrimSpace(input.AuthorName)
	existing.AuthorRole = strings.TrimSpace(input.AuthorRole)
	existing.Quote = strings.TrimSpace(input.Quote)
	existing.Rating = input.Rating
	existing.AvatarFileID = input.AvatarFileID
	existing.Approved = input.Approved

	return s.repo.Update(ctx, existing)
}

// Delete removes a testimonial.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func validateInput(input Input) error {
	if strings.TrimSpace(input.AuthorName) == "" {
		return fmt.Errorf("%w: author name is required", ErrInvalidTestimonial)
	}
	if strings.TrimSpace(input.Quote) == "" {
		return fmt.Errorf("%w: quote is required", ErrInvalidTestimonial)
	}
	if len(input.Quote) > maxQuoteLength {
		return fmt.Errorf("%w: quote exceeds %d characters", ErrInvalidTestimonial, maxQuoteLength)
	}
	if input.Rating < 1 || input.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidTestimonial)
	}
	return nil
}
