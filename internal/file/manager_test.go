package file

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

func newTestManager(repo *fakeRepo, store *fakeObjectStore) *Manager {
	return NewManager(repo, store, "coursecms", 50*1024*1024, nil)
}

func TestStorePersistsBlobAndMetadata(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeObjectStore()
	manager := newTestManager(repo, store)

	ownerID := uuid.New()
	content := []byte("lesson one transcript")

	stored, err := manager.Store(context.Background(), StoreInput{
		Reader:       bytes.NewReader(content),
		OriginalName: "lesson-1.txt",
		DeclaredMIME: "text/plain",
		DeclaredSize: int64(len(content)),
		OwnerID:      ownerID,
		Tags:         []string{"syllabus", "syllabus", " intro "},
	})
	if err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	if stored.Category != CategoryDocument {
		t.Fatalf("expected document category, got %s", stored.Category)
	}
	if !stored.IsPublic {
		t.Fatalf("expected IsPublic to default to true")
	}
	if stored.AccessCount != 0 {
		t.Fatalf("expected zero access count, got %d", stored.AccessCount)
	}
	if stored.OwnerID != ownerID {
		t.Fatalf("owner mismatch")
	}
	if !strings.HasSuffix(stored.StorageKey, ".txt") {
		t.Fatalf("expected storage key to carry the original extension, got %q", stored.StorageKey)
	}
	if got := len(stored.Tags); got != 2 {
		t.Fatalf("expected deduplicated trimmed tags, got %v", stored.Tags)
	}

	blob, ok := store.blob(stored.StorageKey)
	if !ok {
		t.Fatalf("expected blob written under %q", stored.StorageKey)
	}
	if !bytes.Equal(blob, content) {
		t.Fatalf("blob content mismatch")
	}
	if len(repo.records) != 1 {
		t.Fatalf("expected one metadata record, got %d", len(repo.records))
	}
}

func TestStoreRejectsUnsupportedMediaType(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeObjectStore()
	manager := newTestManager(repo, store)

	_, err := manager.Store(context.Background(), StoreInput{
		Reader:       strings.NewReader("#!/bin/sh"),
		OriginalName: "tool",
		DeclaredMIME: "application/x-executable",
		DeclaredSize: 9,
		OwnerID:      uuid.New(),
	})
	if !errors.Is(err, ErrUnsupportedMediaType) {
		t.Fatalf("expected ErrUnsupportedMediaType, got %v", err)
	}
	if store.blobCount() != 0 {
		t.Fatalf("no blob may be written for a rejected MIME type")
	}
	if len(repo.records) != 0 {
		t.Fatalf("no metadata may be written for a rejected MIME type")
	}
}

func TestStoreRejectsOversizedPayload(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeObjectStore()
	manager := NewManager(repo, store, "coursecms", 10, nil)

	_, err := manager.Store(context.Background(), StoreInput{
		Reader:       strings.NewReader("0123456789abcdef"),
		OriginalName: "big.txt",
		DeclaredMIME: "text/plain",
		DeclaredSize: 16,
		OwnerID:      uuid.New(),
	})
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
	if store.blobCount() != 0 {
		t.Fatalf("no blob may be written for an oversized payload")
	}
}

func TestStoreAcceptsZeroByteUpload(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeObjectStore()
	manager := newTestManager(repo, store)

	stored, err := manager.Store(context.Background(), StoreInput{
		Reader:       bytes.NewReader(nil),
		OriginalName: "placeholder.txt",
		DeclaredMIME: "text/plain",
		DeclaredSize: 0,
		OwnerID:      uuid.New(),
	})
	if err != nil {
		t.Fatalf("zero-byte upload should succeed, got %v", err)
	}
	if stored.SizeBytes != 0 {
		t.Fatalf("expected recorded size 0, got %d", stored.SizeBytes)
	}
	if _, ok := store.blob(stored.StorageKey); !ok {
		t.Fatalf("expected an empty blob under %q", stored.StorageKey)
	}
}

func TestStoreRejectsNegativeDeclaredSize(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeObjectStore()
	manager := newTestManager(repo, store)

	_, err := manager.Store(context.Background(), StoreInput{
		Reader:       strings.NewReader(""),
		OriginalName: "broken.txt",
		DeclaredMIME: "text/plain",
		DeclaredSize: -1,
		OwnerID:      uuid.New(),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for a negative size, got %v", err)
	}
	if errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("a negative size is not an oversize condition")
	}
	if store.blobCount() != 0 {
		t.Fatalf("no blob may be written for an invalid size")
	}
}

func TestStoreRemovesBlobWhenMetadataFails(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = errors.New("connection reset")
	store := newFakeObjectStore()
	manager := newTestManager(repo, store)

	_, err := manager.Store(context.Background(), StoreInput{
		Reader:       strings.NewReader("payload"),
		OriginalName: "notes.txt",
		DeclaredMIME: "text/plain",
		DeclaredSize: 7,
		OwnerID:      uuid.New(),
	})
	if !errors.Is(err, ErrMetadataPersistenceFailed) {
		t.Fatalf("expected ErrMetadataPersistenceFailed, got %v", err)
	}
	if store.blobCount() != 0 {
		t.Fatalf("expected compensating blob removal, %d blobs remain", store.blobCount())
	}
	if len(repo.records) != 0 {
		t.Fatalf("expected no metadata record")
	}
}

func TestStoreCleansUpAbortedStream(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeObjectStore()
	store.putErr = errors.New("unexpected EOF")
	manager := newTestManager(repo, store)

	_, err := manager.Store(context.Background(), StoreInput{
		Reader:       strings.NewReader("partial"),
		OriginalName: "clip.mp4",
		DeclaredMIME: "video/mp4",
		DeclaredSize: 1024,
		OwnerID:      uuid.New(),
	})
	if !errors.Is(err, ErrStorageWriteFailed) {
		t.Fatalf("expected ErrStorageWriteFailed, got %v", err)
	}
	if store.blobCount() != 0 {
		t.Fatalf("expected partial blob cleanup")
	}
	if len(repo.records) != 0 {
		t.Fatalf("expected no metadata record for an aborted stream")
	}
}

func TestRemoveDeletesBlobAndMetadata(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeObjectStore()
	manager := newTestManager(repo, store)

	stored, err := manager.Store(context.Background(), StoreInput{
		Reader:       strings.NewReader("payload"),
		OriginalName: "data.csv",
		DeclaredMIME: "text/csv",
		DeclaredSize: 7,
		OwnerID:      uuid.New(),
	})
	if err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	if err := manager.Remove(context.Background(), stored.ID); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if store.blobCount() != 0 {
		t.Fatalf("expected blob removed")
	}
	if len(repo.records) != 0 {
		t.Fatalf("expected metadata removed")
	}
}

func TestRemoveToleratesMissingBlob(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeObjectStore()
	manager := newTestManager(repo, store)

	stored, err := manager.Store(context.Background(), StoreInput{
		Reader:       strings.NewReader("payload"),
		OriginalName: "data.csv",
		DeclaredMIME: "text/csv",
		DeclaredSize: 7,
		OwnerID:      uuid.New(),
	})
	if err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	store.dropBlob(stored.StorageKey)

	if err := manager.Remove(context.Background(), stored.ID); err != nil {
		t.Fatalf("Remove must self-heal when the blob is gone, got: %v", err)
	}
	if len(repo.records) != 0 {
		t.Fatalf("expected metadata removed despite missing blob")
	}
}

func TestRemoveUnknownFile(t *testing.T) {
	manager := newTestManager(newFakeRepo(), newFakeObjectStore())

	err := manager.Remove(context.Background(), uuid.New())
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestStorageKeysDistinctUnderConcurrency(t *testing.T) {
	const n = 10000

	var mu sync.Mutex
	keys := make(map[string]struct{}, n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			key := newStorageKey("report.pdf")
			mu.Lock()
			keys[key] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(keys) != n {
		t.Fatalf("expected %d distinct storage keys, got %d", n, len(keys))
	}
}

// --- fakes shared by manager and gateway tests ---

type fakeRepo struct {
	mu        sync.Mutex
	records   map[uuid.UUID]StoredFile
	createErr error
	patchErr  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[uuid.UUID]StoredFile)}
}

func (f *fakeRepo) Create(ctx context.Context, stored StoredFile) (StoredFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return StoredFile{}, f.createErr
	}
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.records[stored.ID] = stored
	return stored, nil
}

func (f *fakeRepo) Get(ctx context.Context, fileID uuid.UUID) (StoredFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.records[fileID]
	if !ok {
		return StoredFile{}, ErrFileNotFound
	}
	return stored, nil
}

func (f *fakeRepo) GetByStorageKey(ctx context.Context, storageKey string) (StoredFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, stored := range f.records {
		if stored.StorageKey == storageKey {
			return stored, nil
		}
	}
	return StoredFile{}, ErrFileNotFound
}

func (f *fakeRepo) ListVisible(ctx context.Context, requester Requester, filter ListFilter) ([]StoredFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []StoredFile
	for _, stored := range f.records {
		if !requester.IsAdmin && !stored.IsPublic && stored.OwnerID != requester.ID {
			continue
		}
		if filter.Category != "" && stored.Category != filter.Category {
			continue
		}
		if filter.OwnerID != uuid.Nil && stored.OwnerID != filter.OwnerID {
			continue
		}
		out = append(out, stored)
	}
	return out, nil
}

func (f *fakeRepo) ApplyPatch(ctx context.Context, fileID uuid.UUID, patch Patch) (StoredFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.patchErr != nil {
		return StoredFile{}, f.patchErr
	}
	stored, ok := f.records[fileID]
	if !ok {
		return StoredFile{}, ErrFileNotFound
	}
	if patch.Description != nil {
		stored.Description = *patch.Description
	}
	if patch.Tags != nil {
		stored.Tags = patch.Tags
	}
	if patch.IsPublic != nil {
		stored.IsPublic = *patch.IsPublic
	}
	stored.UpdatedAt = time.Now()
	f.records[fileID] = stored
	return stored, nil
}

func (f *fakeRepo) IncrementAccessCount(ctx context.Context, fileID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.records[fileID]
	if !ok {
		return 0, ErrFileNotFound
	}
	stored.AccessCount++
	f.records[fileID] = stored
	return stored.AccessCount, nil
}

func (f *fakeRepo) Delete(ctx context.Context, fileID uuid.UUID) (StoredFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.records[fileID]
	if !ok {
		return StoredFile{}, ErrFileNotFound
	}
	delete(f.records, fileID)
	return stored, nil
}

type fakeObjectStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	putErr  error
	readErr error // when set, returned readers fail partway through
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{blobs: make(map[string][]byte)}
}

func (f *fakeObjectStore) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.mu.Lock()
	f.blobs[objectName] = data
	f.mu.Unlock()
	return minio.UploadInfo{Size: int64(len(data))}, nil
}

func (f *fakeObjectStore) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.blobs[objectName]
	if !ok {
		return nil, minio.ErrorResponse{Code: "NoSuchKey"}
	}
	if f.readErr != nil {
		partial := bytes.NewReader(data[:len(data)/2])
		return io.NopCloser(io.MultiReader(partial, failingReader{err: f.readErr})), nil
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func (f *fakeObjectStore) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.blobs[objectName]
	if !ok {
		return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"}
	}
	return minio.ObjectInfo{Key: objectName, Size: int64(len(data))}, nil
}

func (f *fakeObjectStore) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, objectName)
	return nil
}

func (f *fakeObjectStore) blob(objectName string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.blobs[objectName]
	return data, ok
}

func (f *fakeObjectStore) blobCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.blobs)
}

func (f *fakeObjectStore) dropBlob(objectName string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, objectName)
}
