package file

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/maniredii/coursecms/internal/metrics"
)

const (
	maxDescriptionLength = 1000
	maxTags              = 20
	maxTagLength         = 64
)

// Gateway mediates every read, metadata update and delete against ownership
// and visibility rules, and is the only component that touches the access
// counter or the public flag.
type Gateway struct {
	repo    metadataStore
	manager *Manager
	baseURL string
}

// NewGateway constructs an access gateway. baseURL anchors public links.
func NewGateway(repo metadataStore, manager *Manager, baseURL string) *Gateway {
	return &Gateway{
		repo:    repo,
		manager: manager,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// AuthorizeRead checks visibility for the requester, bumps the access
// counter and returns the record with a reader over the backing bytes.
func (g *Gateway) AuthorizeRead(ctx context.Context, fileID uuid.UUID, requester Requester) (StoredFile, io.ReadCloser, error) {
	meta, err := g.repo.Get(ctx, fileID)
	if err != nil {
		return StoredFile{}, nil, err
	}
	return g.openAuthorized(ctx, meta, requester)
}

// AuthorizeReadByKey resolves the record by storage key, for reads arriving
// through a public link.
func (g *Gateway) AuthorizeReadByKey(ctx context.Context, storageKey string, requester Requester) (StoredFile, io.ReadCloser, error) {
	meta, err := g.repo.GetByStorageKey(ctx, storageKey)
	if err != nil {
		return StoredFile{}, nil, err
	}
	return g.openAuthorized(ctx, meta, requester)
}

func (g *Gateway) openAuthorized(ctx context.Context, meta StoredFile, requester Requester) (StoredFile, io.ReadCloser, error) {
	if !meta.IsPublic && !requester.CanManage(meta) {
		return StoredFile{}, nil, ErrForbidden
	}

	exists, err := g.manager.Exists(ctx, meta.StorageKey)
	if err != nil {
		return StoredFile{}, nil, err
	}
	if !exists {
		return StoredFile{}, nil, ErrFileNotFound
	}

	reader, err := g.manager.Open(ctx, meta.StorageKey)
	if err != nil {
		return StoredFile{}, nil, err
	}

	count, err := g.repo.IncrementAccessCount(ctx, meta.ID)
	if err != nil {
		_ = reader.Close()
		return StoredFile{}, nil, err
	}
	meta.AccessCount = count

	metrics.ReadsTotal.Inc()
	return meta, reader, nil
}

// Describe returns metadata under the same visibility rules as a read but
// without touching the access counter.
func (g *Gateway) Describe(ctx context.Context, fileID uuid.UUID, requester Requester) (StoredFile, error) {
	meta, err := g.repo.Get(ctx, fileID)
	if err != nil {
		return StoredFile{}, err
	}
	if !meta.IsPublic && !requester.CanManage(meta) {
		return StoredFile{}, ErrForbidden
	}
	return meta, nil
}

// List returns metadata visible to the requester.
func (g *Gateway) List(ctx context.Context, requester Requester, filter ListFilter) ([]StoredFile, error) {
	return g.repo.ListVisible(ctx, requester, filter)
}

// AuthorizeMutate applies an owner/admin metadata patch. Only description,
// tags and the public flag are patchable.
func (g *Gateway) AuthorizeMutate(ctx context.Context, fileID uuid.UUID, requester Requester, patch Patch) (StoredFile, error) {
	meta, err := g.repo.Get(ctx, fileID)
	if err != nil {
		return StoredFile{}, err
	}
	if !requester.CanManage(meta) {
		return StoredFile{}, ErrForbidden
	}
	if err := validatePatch(patch); err != nil {
		return StoredFile{}, err
	}
	if patch.Tags != nil {
		patch.Tags = normalizeTags(patch.Tags)
	}
	return g.repo.ApplyPatch(ctx, fileID, patch)
}

// AuthorizeDelete verifies ownership and delegates removal to the manager.
func (g *Gateway) AuthorizeDelete(ctx context.Context, fileID uuid.UUID, requester Requester) error {
	meta, err := g.repo.Get(ctx, fileID)
	if err != nil {
		return err
	}
	if !requester.CanManage(meta) {
		return ErrForbidden
	}
	return g.manager.Remove(ctx, meta.ID)
}

// GrantPublicLink flips the file public if needed and returns its
// externally addressable view and download URLs.
func (g *Gateway) GrantPublicLink(ctx context.Context, fileID uuid.UUID, requester Requester) (PublicLink, error) {
	meta, err := g.repo.Get(ctx, fileID)
	if err != nil {
		return PublicLink{}, err
	}
	if !requester.CanManage(meta) {
		return PublicLink{}, ErrForbidden
	}

	if !meta.IsPublic {
		public := true
		meta, err = g.repo.ApplyPatch(ctx, fileID, Patch{IsPublic: &public})
		if err != nil {
			return PublicLink{}, err
		}
	}

	return PublicLink{
		ViewURL:     fmt.Sprintf("%s/public/files/%s/view", g.baseURL, meta.StorageKey),
		DownloadURL: fmt.Sprintf("%s/public/files/%s/download", g.baseURL, meta.StorageKey),
	}, nil
}

func validatePatch(patch Patch) error {
	if patch.Description != nil && len(*patch.Description) > maxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrValidation, maxDescriptionLength)
	}
	if patch.Tags != nil {
		if len(patch.Tags) > maxTags {
			return fmt.Errorf("%w: more than %d tags", ErrValidation, maxTags)
		}
		for _, tag := range patch.Tags {
			if strings.TrimSpace(tag) == "" {
				return fmt.Errorf("%w: empty tag", ErrValidation)
			}
			if len(tag) > maxTagLength {
				return fmt.Errorf("%w: tag exceeds %d characters", ErrValidation, maxTagLength)
			}
		}
	}
	return nil
}
