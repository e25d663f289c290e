package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrNotFound возвращается Get/GetSize, если файла нет
var ErrNotFound = errors.New("file not found")

// Storage defines the interface for file storage operations
type Storage interface {
	// Save stores a file at the given path
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error

	// Get retrieves a file from the given path
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file at the given path (missing file is not an error)
	Delete(ctx context.Context, path string) error

	// Exists checks if a file exists at the given path
	Exists(ctx context.Context, path string) (bool, error)

	// GetURL returns a public URL for the file
	GetURL(ctx context.Context, path string) (string, error)

	// GetSignedURL returns a temporary signed URL for private files
	GetSignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)

	// GetSize returns the size of a file in bytes
	GetSize(ctx context.Context, path string) (int64, error)
}

// Config holds storage configuration
type Config struct {
	Type       string // local, s3, cloudflare_r2, cloudinary, gridfs
	BasePath   string // local
	BaseURL    string // public URL base
	Bucket     string // s3 / r2 / gridfs bucket name
	Region     string // s3
	AccessKey  string // s3 / r2 / cloudinary api key
	SecretKey  string // s3 / r2 / cloudinary api secret
	Endpoint   string // r2 or custom s3
	UseSSL     bool
	PublicRead bool
	CloudName  string // cloudinary
	MongoURI   string // gridfs
	MongoDB    string // gridfs
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(cfg)
	case "cloudflare_r2":
		return NewCloudflareR2Storage(cfg)
	case "cloudinary":
		return NewCloudinaryStorage(cfg)
	case "gridfs":
		return NewGridFSStorage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

func joinURL(base, path string) string {
	if base == "" {
		return "/" + path
	}
	if base[len(base)-1] == '/' {
		return base + path
	}
	return base + "/" + path
}
