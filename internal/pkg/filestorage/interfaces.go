package filestorage

import (
	"errors"
	"mime/multipart"
)

var (
	// ErrUnsupportedType is returned when the detected content type is not allowed
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrFileTooLarge is returned when an upload exceeds the configured limit
	ErrFileTooLarge = errors.New("file too large")
	// ErrInvalidPath is returned for paths that escape the storage root
	ErrInvalidPath = errors.New("invalid file path")
)

// Asset describes a stored lesson asset. It maps onto a lesson attachment.
type Asset struct {
	URL  string // Public URL of the stored file
	Name string // Original filename
	Type string // Detected MIME type
	Size int64  // Size in bytes
}

// FileStorage defines the interface for lesson asset storage
type FileStorage interface {
	// Save stores the upload under subPath and returns where it can be fetched
	Save(fileHeader *multipart.FileHeader, subPath string) (*Asset, error)

	// Delete removes a stored file by its public URL
	Delete(fileURL string) error

	// FullPath returns the filesystem path for a public URL
	FullPath(fileURL string) (string, error)
}
