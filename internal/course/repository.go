package course

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

const courseColumns = "id, title, slug, description, category, level, price_cents, duration_weeks, cover_file_id, published, created_at, updated_at"

// Repository provides access to course storage.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a new course repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new course.
func (r *Repository) Create(ctx context.Context, c Course) (Course, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
INSERT INTO courses (id, title, slug, description, category, level, price_cents, duration_weeks, cover_file_id, published)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + courseColumns + `;`

	row := r.pool.QueryRow(ctx, query,
		c.ID, c.Title, c.Slug, c.Description, c.Category, c.Level,
		c.PriceCents, c.DurationWeeks, c.CoverFileID, c.Published)

	stored, err := scanCourse(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Course{}, ErrSlugAlreadyExists
		}
		return Course{}, fmt.Errorf("create course: %w", err)
	}
	return stored, nil
}

// Get fetches a course by ID.
func (r *Repository) Get(ctx context.Context, courseID uuid.UUID) (Course, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1;`

	stored, err := scanCourse(r.pool.QueryRow(ctx, query, courseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Course{}, ErrCourseNotFound
		}
		return Course{}, fmt.Errorf("get course: %w", err)
	}
	return stored, nil
}

// GetBySlug fetches a course by its slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (Course, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `SELECT ` + courseColumns + ` FROM courses WHERE slug = $1;`

	stored, err := scanCourse(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Course{}, ErrCourseNotFound
		}
		return Course{}, fmt.Errorf("get course by slug: %w", err)
	}
	return stored, nil
}

// List returns courses matching the query.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]Course, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `SELECT ` + courseColumns + ` FROM courses WHERE 1=1`
	args := []any{}

	if q.PublishedOnly {
		query += " AND published"
	}
	if q.Category != "" {
		args = append(args, q.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	query += " ORDER BY " + sortColumn(q.SortBy)
	args = append(args, q.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, q.Offset)
	query += fmt.Sprintf(" OFFSET $%d;", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []Course
	for rows.Next() {
		stored, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}
	return courses, nil
}

// Update overwrites the mutable fields of a course.
func (r *Repository) Update(ctx context.Context, c Course) (Course, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
UPDATE courses
SET title = $2, slug = $3, description = $4, category = $5, level = $6,
    price_cents = $7, duration_weeks = $8, cover_file_id = $9, published = $10,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + courseColumns + `;`

	row := r.pool.QueryRow(ctx, query,
		c.ID, c.Title, c.Slug, c.Description, c.Category, c.Level,
		c.PriceCents, c.DurationWeeks, c.CoverFileID, c.Published)

	stored, err := scanCourse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Course{}, ErrCourseNotFound
		}
		if isUniqueViolation(err) {
			return Course{}, ErrSlugAlreadyExists
		}
		return Course{}, fmt.Errorf("update course: %w", err)
	}
	return stored, nil
}

// Delete removes a course.
func (r *Repository) Delete(ctx context.Context, courseID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1;`, courseID)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func sortColumn(sortBy string) string {
	switch sortBy {
	case "title":
		return "title ASC"
	case "price":
		return "price_cents ASC"
	default:
		return "created_at DESC"
	}
}

func scanCourse(row pgx.Row) (Course, error) {
	var c Course
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Slug,
		&c.Description,
		&c.Category,
		&c.Level,
		&c.PriceCents,
		&c.DurationWeeks,
		&c.CoverFileID,
		&c.Published,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return Course{}, err
	}
	return c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
