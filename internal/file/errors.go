package file

import "errors"

var (
	// ErrUnsupportedMediaType indicates the declared MIME type is not in the allow-list.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrPayloadTooLarge indicates the upload exceeds the configured maximum size.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrStorageWriteFailed indicates the blob could not be written to the storage backend.
	ErrStorageWriteFailed = errors.New("storage write failed")
	// ErrMetadataPersistenceFailed indicates the metadata record could not be saved.
	// The just-written blob is removed before this is returned.
	ErrMetadataPersistenceFailed = errors.New("metadata persistence failed")
	// ErrFileNotFound signals that the record or its backing blob is missing.
	ErrFileNotFound = errors.New("file not found")
	// ErrForbidden indicates the requester may not perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation indicates a patch carries invalid field values.
	ErrValidation = errors.New("validation failed")
)
