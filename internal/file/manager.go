package file

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maniredii/coursecms/internal/metrics"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const storageKeyRandomBytes = 16

// metadataStore abstracts the persistence layer for stored-file records.
type metadataStore interface {
	Create(ctx context.Context, f StoredFile) (StoredFile, error)
	Get(ctx context.Context, fileID uuid.UUID) (StoredFile, error)
	GetByStorageKey(ctx context.Context, storageKey string) (StoredFile, error)
	ListVisible(ctx context.Context, requester Requester, filter ListFilter) ([]StoredFile, error)
	ApplyPatch(ctx context.Context, fileID uuid.UUID, patch Patch) (StoredFile, error)
	IncrementAccessCount(ctx context.Context, fileID uuid.UUID) (int64, error)
	Delete(ctx context.Context, fileID uuid.UUID) (StoredFile, error)
}

// objectStore abstracts the blob storage backend.
type objectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// Manager owns the physical-file lifecycle: it is the only component that
// writes or removes blobs. A metadata record exists iff the corresponding
// blob exists; failed uploads are compensated before an error is returned.
type Manager struct {
	repo         metadataStore
	objectStore  objectStore
	objectBucket string
	maxBytes     int64
	log          *zap.Logger
}

// NewManager constructs a file store manager.
func NewManager(repo metadataStore, store objectStore, objectBucket string, maxBytes int64, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		repo:         repo,
		objectStore:  store,
		objectBucket: objectBucket,
		maxBytes:     maxBytes,
		log:          log,
	}
}

// StoreInput carries an inbound upload.
type StoreInput struct {
	Reader       io.Reader
	OriginalName string
	DeclaredMIME string
	DeclaredSize int64
	OwnerID      uuid.UUID
	Description  string
	Tags         []string
	IsPublic     *bool
}

// Store validates the upload, writes the blob under a fresh storage key and
// records metadata. On a metadata failure the just-written blob is removed
// so no orphan survives the call.
func (m *Manager) Store(ctx context.Context, input StoreInput) (StoredFile, error) {
	mimeType := NormalizeMIME(input.DeclaredMIME)
	if !MIMEAllowed(mimeType) {
		metrics.UploadFailuresTotal.WithLabelValues("validate").Inc()
		return StoredFile{}, ErrUnsupportedMediaType
	}
	if input.DeclaredSize < 0 {
		metrics.UploadFailuresTotal.WithLabelValues("validate").Inc()
		return StoredFile{}, fmt.Errorf("%w: negative declared size", ErrValidation)
	}
	if input.DeclaredSize > m.maxBytes {
		metrics.UploadFailuresTotal.WithLabelValues("validate").Inc()
		return StoredFile{}, ErrPayloadTooLarge
	}

	storageKey := newStorageKey(input.OriginalName)

	putOpts := minio.PutObjectOptions{ContentType: mimeType}
	uploadInfo, err := m.objectStore.PutObject(ctx, m.objectBucket, storageKey, input.Reader, input.DeclaredSize, putOpts)
	if err != nil {
		// An aborted stream can leave a partial object behind; remove it.
		m.removeBlob(context.WithoutCancel(ctx), storageKey)
		metrics.UploadFailuresTotal.WithLabelValues("blob").Inc()
		return StoredFile{}, fmt.Errorf("%w: %v", ErrStorageWriteFailed, err)
	}
	if uploadInfo.Size != input.DeclaredSize {
		m.removeBlob(context.WithoutCancel(ctx), storageKey)
		metrics.UploadFailuresTotal.WithLabelValues("blob").Inc()
		return StoredFile{}, fmt.Errorf("%w: wrote %d of %d bytes", ErrStorageWriteFailed, uploadInfo.Size, input.DeclaredSize)
	}

	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}

	record := StoredFile{
		ID:           uuid.New(),
		StorageKey:   storageKey,
		OriginalName: sanitizeFilename(input.OriginalName),
		MimeType:     mimeType,
		SizeBytes:    input.DeclaredSize,
		Category:     CategoryForMIME(mimeType),
		IsPublic:     isPublic,
		OwnerID:      input.OwnerID,
		Tags:         normalizeTags(input.Tags),
		Description:  input.Description,
	}

	stored, err := m.repo.Create(ctx, record)
	if err != nil {
		m.removeBlob(context.WithoutCancel(ctx), storageKey)
		metrics.OrphanCleanupsTotal.Inc()
		metrics.UploadFailuresTotal.WithLabelValues("metadata").Inc()
		return StoredFile{}, fmt.Errorf("%w: %v", ErrMetadataPersistenceFailed, err)
	}

	metrics.UploadsTotal.WithLabelValues(string(stored.Category)).Inc()
	return stored, nil
}

// Remove deletes the blob and then the metadata record. A blob that is
// already absent is treated as satisfied so the record can still be
// cleaned up after a prior partial failure.
func (m *Manager) Remove(ctx context.Context, fileID uuid.UUID) error {
	meta, err := m.repo.Get(ctx, fileID)
	if err != nil {
		return err
	}

	if err := m.objectStore.RemoveObject(ctx, m.objectBucket, meta.StorageKey, minio.RemoveObjectOptions{}); err != nil {
		if !isBlobMissing(err) {
			return fmt.Errorf("remove blob %q: %w", meta.StorageKey, err)
		}
		m.log.Warn("blob already absent during delete",
			zap.String("storage_key", meta.StorageKey),
			zap.String("file_id", fileID.String()),
		)
	}

	if _, err := m.repo.Delete(ctx, fileID); err != nil {
		return err
	}
	return nil
}

// Open returns a reader over the blob at storageKey.
func (m *Manager) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	reader, err := m.objectStore.GetObject(ctx, m.objectBucket, storageKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetch blob %q: %w", storageKey, err)
	}
	return reader, nil
}

// Exists reports whether a blob is present at storageKey.
func (m *Manager) Exists(ctx context.Context, storageKey string) (bool, error) {
	_, err := m.objectStore.StatObject(ctx, m.objectBucket, storageKey, minio.StatObjectOptions{})
	if err != nil {
		if isBlobMissing(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat blob %q: %w", storageKey, err)
	}
	return true, nil
}

func (m *Manager) removeBlob(ctx context.Context, storageKey string) {
	if err := m.objectStore.RemoveObject(ctx, m.objectBucket, storageKey, minio.RemoveObjectOptions{}); err != nil {
		m.log.Error("compensating blob removal failed",
			zap.String("storage_key", storageKey),
			zap.Error(err),
		)
	}
}

// newStorageKey builds a collision-resistant blob locator from a random
// component, a nanosecond timestamp and the original extension. No
// coordination is needed between concurrent uploads.
func newStorageKey(originalName string) string {
	var random [storageKeyRandomBytes]byte
	if _, err := rand.Read(random[:]); err != nil {
		// crypto/rand is documented never to fail on supported platforms;
		// the UUID fallback keeps the key unique regardless.
		return fmt.Sprintf("%s-%d%s", uuid.NewString(), time.Now().UnixNano(), safeExtension(originalName))
	}
	return fmt.Sprintf("%s-%d%s", hex.EncodeToString(random[:]), time.Now().UnixNano(), safeExtension(originalName))
}

func safeExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" || strings.Contains(name, "..") {
		return "upload"
	}
	return name
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func isBlobMissing(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NotFound"
}
