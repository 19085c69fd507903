package file

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

const storedFileColumns = "id, storage_key, original_name, mime_type, size_bytes, category, is_public, access_count, owner_id, tags, description, created_at, updated_at"

// Repository provides access to stored-file metadata.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a new file repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts metadata for a new file.
func (r *Repository) Create(ctx context.Context, f StoredFile) (StoredFile, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
INSERT INTO stored_files (id, storage_key, original_name, mime_type, size_bytes, category, is_public, owner_id, tags, description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + storedFileColumns + `;`

	row := r.pool.QueryRow(ctx, query,
		f.ID,
		f.StorageKey,
		f.OriginalName,
		f.MimeType,
		f.SizeBytes,
		string(f.Category),
		f.IsPublic,
		f.OwnerID,
		f.Tags,
		f.Description,
	)

	stored, err := scanStoredFile(row)
	if err != nil {
		return StoredFile{}, fmt.Errorf("create file metadata: %w", err)
	}
	return stored, nil
}

// Get fetches metadata by record ID.
func (r *Repository) Get(ctx context.Context, fileID uuid.UUID) (StoredFile, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `SELECT ` + storedFileColumns + ` FROM stored_files WHERE id = $1;`

	stored, err := scanStoredFile(r.pool.QueryRow(ctx, query, fileID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StoredFile{}, ErrFileNotFound
		}
		return StoredFile{}, fmt.Errorf("get file metadata: %w", err)
	}
	return stored, nil
}

// GetByStorageKey fetches metadata by the blob locator. Public-link reads
// address files this way.
func (r *Repository) GetByStorageKey(ctx context.Context, storageKey string) (StoredFile, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `SELECT ` + storedFileColumns + ` FROM stored_files WHERE storage_key = $1;`

	stored, err := scanStoredFile(r.pool.QueryRow(ctx, query, storageKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StoredFile{}, ErrFileNotFound
		}
		return StoredFile{}, fmt.Errorf("get file metadata by key: %w", err)
	}
	return stored, nil
}

// ListVisible returns files the requester may see: their own plus public
// ones, or everything for admins. The filter narrows by category or owner.
func (r *Repository) ListVisible(ctx context.Context, requester Requester, filter ListFilter) ([]StoredFile, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `SELECT ` + storedFileColumns + ` FROM stored_files WHERE 1=1`
	args := []any{}

	if !requester.IsAdmin {
		args = append(args, requester.ID)
		query += fmt.Sprintf(" AND (is_public OR owner_id = $%d)", len(args))
	}
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.OwnerID != uuid.Nil {
		args = append(args, filter.OwnerID)
		query += fmt.Sprintf(" AND owner_id = $%d", len(args))
	}
	query += " ORDER BY created_at DESC;"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []StoredFile
	for rows.Next() {
		stored, err := scanStoredFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file metadata: %w", err)
		}
		files = append(files, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return files, nil
}

// ApplyPatch updates the mutable metadata fields. Nil patch fields keep
// their current values.
func (r *Repository) ApplyPatch(ctx context.Context, fileID uuid.UUID, patch Patch) (StoredFile, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
UPDATE stored_files
SET description = COALESCE($2, description),
    tags = COALESCE($3, tags),
    is_public = COALESCE($4, is_public),
    updated_at = NOW()
WHERE id = $1
RETURNING ` + storedFileColumns + `;`

	stored, err := scanStoredFile(r.pool.QueryRow(ctx, query, fileID, patch.Description, patch.Tags, patch.IsPublic))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StoredFile{}, ErrFileNotFound
		}
		return StoredFile{}, fmt.Errorf("patch file metadata: %w", err)
	}
	return stored, nil
}

// IncrementAccessCount bumps the access counter atomically at the database,
// avoiding the lost-update window of a read-modify-write cycle.
func (r *Repository) IncrementAccessCount(ctx context.Context, fileID uuid.UUID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
UPDATE stored_files
SET access_count = access_count + 1
WHERE id = $1
RETURNING access_count;`

	var count int64
	if err := r.pool.QueryRow(ctx, query, fileID).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrFileNotFound
		}
		return 0, fmt.Errorf("increment access count: %w", err)
	}
	return count, nil
}

// Delete removes metadata and returns the deleted record.
func (r *Repository) Delete(ctx context.Context, fileID uuid.UUID) (StoredFile, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `DELETE FROM stored_files WHERE id = $1 RETURNING ` + storedFileColumns + `;`

	stored, err := scanStoredFile(r.pool.QueryRow(ctx, query, fileID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StoredFile{}, ErrFileNotFound
		}
		return StoredFile{}, fmt.Errorf("delete file metadata: %w", err)
	}
	return stored, nil
}

func scanStoredFile(row pgx.Row) (StoredFile, error) {
	var f StoredFile
	var category string
	err := row.Scan(
		&f.ID,
		&f.StorageKey,
		&f.OriginalName,
		&f.MimeType,
		&f.SizeBytes,
		&category,
		&f.IsPublic,
		&f.AccessCount,
		&f.OwnerID,
		&f.Tags,
		&f.Description,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return StoredFile{}, err
	}
	f.Category = Category(category)
	return f, nil
}
