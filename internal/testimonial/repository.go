package testimonial

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

const testimonialColumns = "id, author_name, author_role, quote, rating, avatar_file_id, approved, created_at, updated_at"

// Repository provides access to testimonial storage.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a new testimonial repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new testimonial.
func (r *Repository) Create(ctx context.Context, t Testimonial) (Testimonial, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
INSERT INTO testimonials (id, author_name, author_role, quote, rating, avatar_file_id, approved)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + testimonialColumns + `;`

	row := r.pool.QueryRow(ctx, query,
		t.ID, t.AuthorName, t.AuthorRole, t.Quote, t.Rating, t.AvatarFileID, t.Approved)

	stored, err := scanTestimonial(row)
	if err != nil {
		return Testimonial{}, fmt.Errorf("create testimonial: %w", err)
	}
	return stored, nil
}

// Get fetches one testimonial by ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Testimonial, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `SELECT ` + testimonialColumns + ` FROM testimonials WHERE id = $1;`

	stored, err := scanTestimonial(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Testimonial{}, ErrTestimonialNotFound
		}
		return Testimonial{}, fmt.Errorf("get testimonial: %w", err)
	}
	return stored, nil
}

// List returns testimonials, optionally restricted to approved ones.
func (r *Repository) List(ctx context.Context, approvedOnly bool) ([]Testimonial, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `SELECT ` + testimonialColumns + ` FROM testimonials`
	if approvedOnly {
		query += ` WHERE approved`
	}
	query += ` ORDER BY created_at DESC;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list testimonials: %w", err)
	}
	defer rows.Close()

	var out []Testimonial
	for rows.Next() {
		stored, err := scanTestimonial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan testimonial: %w", err)
		}
		out = append(out, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate testimonials: %w", err)
	}
	return out, nil
}

// Update overwrites the mutable fields of a testimonial.
func (r *Repository) Update(ctx context.Context, t Testimonial) (Testimonial, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
UPDATE testimonials
SET author_name = $2, author_role = $3, quote = $4, rating = $5,
    avatar_file_id = $6, approved = $7, updated_at = NOW()
WHERE id = $1
RETURNING ` + testimonialColumns + `;`

	row := r.pool.QueryRow(ctx, query,
		t.ID, t.AuthorName, t.AuthorRole, t.Quote, t.Rating, t.AvatarFileID, t.Approved)

	stored, err := scanTestimonial(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Testimonial{}, ErrTestimonialNotFound
		}
		return Testimonial{}, fmt.Errorf("update testimonial: %w", err)
	}
	return stored, nil
}

// Delete removes a testimonial.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM testimonials WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete testimonial: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTestimonialNotFound
	}
	return nil
}

func scanTestimonial(row pgx.Row) (Testimonial, error) {
	var t Testimonial
	err := row.Scan(
		&t.ID,
		&t.AuthorName,
		&t.AuthorRole,
		&t.Quote,
		&t.Rating,
		&t.AvatarFileID,
		&t.Approved,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return Testimonial{}, err
	}
	return t, nil
}
