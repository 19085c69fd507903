package file

import (
	"time"

	"github.com/google/uuid"
)

// StoredFile is the metadata record describing one uploaded blob.
// StorageKey, MimeType, SizeBytes, OwnerID and Category are fixed at
// creation; only Description, Tags and IsPublic may change afterwards.
type StoredFile struct {
	ID           uuid.UUID `json:"id"`
	StorageKey   string    `json:"storage_key"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	Category     Category  `json:"category"`
	IsPublic     bool      `json:"is_public"`
	AccessCount  int64     `json:"access_count"`
	OwnerID      uuid.UUID `json:"owner_id"`
	Tags         []string  `json:"tags"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Requester identifies the caller of a gateway operation. The zero value
// is an anonymous caller.
type Requester struct {
	ID      uuid.UUID
	IsAdmin bool
}

// Anonymous reports whether the requester carries no authenticated identity.
func (r Requester) Anonymous() bool {
	return r.ID == uuid.Nil
}

// CanManage reports whether the requester may mutate or delete the record.
func (r Requester) CanManage(f StoredFile) bool {
	return r.IsAdmin || (!r.Anonymous() && r.ID == f.OwnerID)
}

// Patch carries the mutable metadata fields. Nil fields are left unchanged.
type Patch struct {
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
	IsPublic    *bool    `json:"is_public"`
}

// PublicLink holds the externally addressable URLs for a public file.
type PublicLink struct {
	ViewURL     string `json:"view_url"`
	DownloadURL string `json:"download_url"`
}

// ListFilter narrows a metadata listing.
type ListFilter struct {
	Category Category
	OwnerID  uuid.UUID
}
