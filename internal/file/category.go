package file

import (
	"mime"
	"strings"
)

// Category buckets stored files by coarse content kind.
type Category string

const (
	CategoryDocument Category = "document"
	CategoryImage    Category = "image"
	CategoryVideo    Category = "video"
	CategoryAudio    Category = "audio"
	CategoryOther    Category = "other"
)

// allowedMIMETypes is the upload allow-list. Every accepted MIME type maps
// to the category recorded at creation time.
var allowedMIMETypes = map[string]Category{
	// Images.
	"image/jpeg":    CategoryImage,
	"image/png":     CategoryImage,
	"image/gif":     CategoryImage,
	"image/webp":    CategoryImage,
	"image/svg+xml": CategoryImage,
	"image/bmp":     CategoryImage,
	"image/tiff":    CategoryImage,

	// Documents.
	"application/pdf":    CategoryDocument,
	"application/msword": CategoryDocument,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": CategoryDocument,
	"application/vnd.ms-excel": CategoryDocument,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": CategoryDocument,
	"application/vnd.ms-powerpoint": CategoryDocument,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": CategoryDocument,
	"application/vnd.oasis.opendocument.text":        CategoryDocument,
	"application/vnd.oasis.opendocument.spreadsheet": CategoryDocument,
	"application/rtf": CategoryDocument,
	"text/plain":      CategoryDocument,
	"text/csv":        CategoryDocument,

	// Audio.
	"audio/mpeg": CategoryAudio,
	"audio/wav":  CategoryAudio,
	"audio/ogg":  CategoryAudio,
	"audio/aac":  CategoryAudio,
	"audio/flac": CategoryAudio,
	"audio/webm": CategoryAudio,

	// Video.
	"video/mp4":        CategoryVideo,
	"video/x-msvideo":  CategoryVideo,
	"video/quicktime":  CategoryVideo,
	"video/webm":       CategoryVideo,
	"video/ogg":        CategoryVideo,
	"video/x-matroska": CategoryVideo,

	// Archives.
	"application/zip":  CategoryOther,
	"application/gzip": CategoryOther,
}

// NormalizeMIME lowercases the media type and strips any parameters.
func NormalizeMIME(mimeType string) string {
	parsed, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mimeType))
	}
	return parsed
}

// MIMEAllowed reports whether the declared MIME type may be uploaded.
func MIMEAllowed(mimeType string) bool {
	_, ok := allowedMIMETypes[NormalizeMIME(mimeType)]
	return ok
}

// CategoryForMIME derives the category for a MIME type. The allow-list
// table decides for accepted types; the prefix fallback keeps the mapping
// total for anything else.
func CategoryForMIME(mimeType string) Category {
	normalized := NormalizeMIME(mimeType)
	if category, ok := allowedMIMETypes[normalized]; ok {
		return category
	}
	switch {
	case strings.HasPrefix(normalized, "image/"):
		return CategoryImage
	case strings.HasPrefix(normalized, "video/"):
		return CategoryVideo
	case strings.HasPrefix(normalized, "audio/"):
		return CategoryAudio
	case strings.HasPrefix(normalized, "text/"):
		return CategoryDocument
	default:
		return CategoryOther
	}
}
