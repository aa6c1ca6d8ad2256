package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/config"
	"go.uber.org/zap"
)

// ErrFileNotFound is returned when a stored file does not exist
var ErrFileNotFound = errors.New("file not found")

// StoredFile describes a file after it has been written to storage
type StoredFile struct {
	Path     string
	Size     int64
	MimeType string
}

// Storage defines the interface for file storage operations.
// Files are laid out as <organization>/<folder>/<uuid><ext>.
type Storage interface {
	Save(ctx context.Context, orgID uuid.UUID, folder, filename, contentType string, data io.Reader) (*StoredFile, error)
	Read(ctx context.Context, storagePath string) (io.ReadCloser, error)
	Delete(ctx context.Context, storagePath string) error
}

// NewStorage creates a new storage instance based on configuration.
// For local mode, files are stored on the local filesystem.
// For cloud/azure mode, files are stored in Azure Blob Storage.
func NewStorage(cfg *config.StorageConfig, logger *zap.Logger) (Storage, error) {
	switch cfg.Mode {
	case "local":
		return NewLocalStorage(cfg.LocalBasePath)
	case "cloud", "azure":
		if cfg.CloudConnectionString == "" {
			return nil, fmt.Errorf("cloud connection string required for azure storage")
		}
		return NewAzureBlobStorage(cfg.CloudConnectionString, cfg.CloudContainer, logger)
	default:
		return nil, fmt.Errorf("unsupported storage mode: %s", cfg.Mode)
	}
}

// objectPath builds the slash-separated key of a new object
func objectPath(orgID uuid.UUID, folder, filename string) string {
	folder = strings.Trim(path.Clean("/"+folder), "/")
	name := uuid.New().String() + strings.ToLower(filepath.Ext(filename))
	if folder == "" {
		return path.Join(orgID.String(), name)
	}
	return path.Join(orgID.String(), folder, name)
}

// sniff peeks at the head of data and returns a reader that still yields every byte.
// The declared content type wins unless it is empty or generic.
func sniff(data io.Reader, declared string) (io.Reader, string) {
	br := bufio.NewReaderSize(data, 3072)
	if declared != "" && declared != "application/octet-stream" {
		return br, declared
	}
	head, _ := br.Peek(3072)
	return br, mimetype.Detect(head).String()
}

// LocalStorage implements Storage interface for local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
	}, nil
}

func (s *LocalStorage) fullPath(storagePath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(storagePath))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage path: %s", storagePath)
	}
	return filepath.Join(s.basePath, clean), nil
}

// Save writes a file under the organization's folder
func (s *LocalStorage) Save(ctx context.Context, orgID uuid.UUID, folder, filename, contentType string, data io.Reader) (*StoredFile, error) {
	storagePath := objectPath(orgID, folder, filename)
	fullPath, err := s.fullPath(storagePath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	reader, mimeType := sniff(data, contentType)
	size, err := io.Copy(file, reader)
	if err != nil {
		os.Remove(fullPath) // Cleanup on error
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &StoredFile{Path: storagePath, Size: size, MimeType: mimeType}, nil
}

// Read opens a stored file
func (s *LocalStorage) Read(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	fullPath, err := s.fullPath(storagePath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, storagePath)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete removes a stored file. Missing files are not an error.
func (s *LocalStorage) Delete(ctx context.Context, storagePath string) error {
	fullPath, err := s.fullPath(storagePath)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}
