// Package storage provides object storage for generated compliance exports.
//
// Two providers implement Storage:
// - LocalStorage: files under a directory, for development
// - R2Storage: Cloudflare R2 (or any S3-compatible store), for production
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage defines the interface for object storage operations.
// All methods are context-aware for timeout and cancellation support.
type Storage interface {
	// Put stores data at key. Returns ErrKeyExists if the key is taken and
	// opts.Overwrite is false.
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// Get returns the object at key. The caller must close the reader.
	// Returns ErrNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)

	// Delete removes the object at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns a download URL for key. Providers without public access
	// return a presigned URL valid for expires.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)

	// Exists reports whether an object is stored at key.
	Exists(ctx context.Context, key string) (bool, error)
}

// PutOptions configures how an object is stored.
type PutOptions struct {
	// ContentType is detected from the key's extension when empty.
	ContentType string

	// Overwrite allows replacing an existing object at the same key.
	Overwrite bool
}

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	ETag         string // Empty for local storage
}

// =============================================================================
// Configuration
// =============================================================================

const (
	// ProviderLocal identifies the local filesystem storage provider.
	ProviderLocal = "local"

	// ProviderR2 identifies the Cloudflare R2 storage provider.
	ProviderR2 = "r2"
)

// Config selects and configures a provider.
type Config struct {
	Provider string
	Local    LocalConfig
	R2       R2Config
}

// LocalConfig holds configuration for local filesystem storage.
type LocalConfig struct {
	// BasePath is the root directory, e.g. "./data/exports".
	BasePath string

	// BaseURL is the public prefix files are served under.
	BaseURL string
}

// R2Config holds configuration for Cloudflare R2 storage.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string

	// PublicURL is the bucket's public domain. When empty every URL is presigned.
	PublicURL string

	// Endpoint overrides the R2 endpoint derived from AccountID, for
	// S3-compatible stores such as MinIO.
	Endpoint string

	// Region defaults to "auto".
	Region string
}

// New builds the provider named in cfg.
func New(cfg Config, logger *slog.Logger) (Storage, error) {
	switch cfg.Provider {
	case "", ProviderLocal:
		return NewLocalStorage(cfg.Local, logger)
	case ProviderR2:
		return NewR2Storage(cfg.R2, logger)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// =============================================================================
// Keys
// =============================================================================

// ComplianceExportKey returns the key for a compliance CSV export.
// Format: exports/compliance/{YYYY-MM-DD}-{exportID}.csv
func ComplianceExportKey(date time.Time, exportID uuid.UUID) string {
	return fmt.Sprintf("exports/compliance/%s-%s.csv", date.Format("2006-01-02"), exportID)
}

// validateKey rejects empty keys, absolute keys and keys that escape the
// storage root.
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}

// contentTypeFor detects a MIME type from the key's extension.
func contentTypeFor(key string) string {
	ext := strings.ToLower(path.Ext(key))
	if ext == ".csv" {
		return "text/csv; charset=utf-8"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
