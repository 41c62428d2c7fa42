package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/yigit/academy/internal/pkg/logger"
)

// DefaultAllowedTypes are the content types accepted for lesson assets.
var DefaultAllowedTypes = []string{
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/webp",
	"image/svg+xml",
	"application/pdf",
	"application/zip",
	"text/plain",
	"text/csv",
	"video/mp4",
}

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath     string // The root directory where files will be stored
	baseURL      string // URL prefix the files are served under
	maxSize      int64
	allowedTypes []string
}

// NewLocalStorage creates a new LocalStorage instance.
// basePath is the required directory path on the server.
// baseURL is the prefix files are served under, "/uploads" when empty.
// maxSize of zero disables the size check.
func NewLocalStorage(basePath, baseURL string, maxSize int64, allowedTypes []string) (*LocalStorage, error) {
	// Ensure the base path exists
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	if baseURL == "" {
		baseURL = "/uploads"
	}
	if len(allowedTypes) == 0 {
		allowedTypes = DefaultAllowedTypes
	}

	return &LocalStorage{
		basePath:     basePath,
		baseURL:      strings.TrimRight(baseURL, "/"),
		maxSize:      maxSize,
		allowedTypes: allowedTypes,
	}, nil
}

// Save stores an upload under subPath, e.g. "sql/1" for a week's assets
func (ls *LocalStorage) Save(fileHeader *multipart.FileHeader, subPath string) (*Asset, error) {
	if fileHeader == nil {
		return nil, fmt.Errorf("%w: no file", ErrInvalidPath)
	}
	if ls.maxSize > 0 && fileHeader.Size > ls.maxSize {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, fileHeader.Size, ls.maxSize)
	}

	subPath, err := cleanSubPath(subPath)
	if err != nil {
		return nil, err
	}

	// Open the uploaded file
	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to detect file type: %w", err)
	}
	if !mimetype.EqualsAny(mtype.String(), ls.allowedTypes...) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind uploaded file: %w", err)
	}

	// Ensure the subdirectory exists
	fullDirPath := filepath.Join(ls.basePath, filepath.FromSlash(subPath))
	if err := os.MkdirAll(fullDirPath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", fullDirPath).Msg("Failed to create subdirectory")
		return nil, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	// Unique filename, extension taken from the detected type
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext == "" {
		ext = mtype.Extension()
	}
	uniqueFilename := uuid.New().String() + ext
	dstPath := filepath.Join(fullDirPath, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	asset := &Asset{
		URL:  ls.baseURL + "/" + path.Join(subPath, uniqueFilename),
		Name: filepath.Base(fileHeader.Filename),
		Type: baseType(mtype.String()),
		Size: size,
	}

	logger.Info().Str("filename", fileHeader.Filename).Str("url", asset.URL).Str("type", asset.Type).Msg("File saved successfully")
	return asset, nil
}

// Delete removes a file by its public URL. A missing file is not an error.
func (ls *LocalStorage) Delete(fileURL string) error {
	if fileURL == "" {
		return nil
	}

	physicalPath, err := ls.FullPath(fileURL)
	if err != nil {
		return err
	}

	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
		return nil
	}

	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// FullPath maps a public URL back to the filesystem, refusing paths outside basePath.
func (ls *LocalStorage) FullPath(fileURL string) (string, error) {
	rel := strings.TrimPrefix(fileURL, ls.baseURL)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, fileURL)
	}
	clean, err := cleanSubPath(rel)
	if err != nil || clean == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, fileURL)
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(clean)), nil
}

// cleanSubPath normalizes a slash-separated relative path and rejects traversal.
func cleanSubPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if strings.HasPrefix(p, "/") || strings.Contains(p, `\`) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, p)
	}
	clean := path.Clean(p)
	if clean == "." {
		return "", nil
	}
	for _, part := range strings.Split(clean, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %s", ErrInvalidPath, p)
		}
	}
	return clean, nil
}

func baseType(mime string) string {
	t, _, _ := strings.Cut(mime, ";")
	return strings.TrimSpace(t)
}
