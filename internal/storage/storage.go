// Package storage defines the backend contract for backup artifacts and
// provides the local-filesystem and S3 implementations.
//
// A backend is acquired once per backup or restore invocation, owned
// exclusively by that call, and released with Close on every exit path.
// Remote paths use forward slashes regardless of platform.
package storage

import (
	"context"

	"github.com/thoreinstein/coffer/internal/config"
	"github.com/thoreinstein/coffer/internal/errors"
)

// Backend is the capability set every storage variant implements.
type Backend interface {
	// Upload copies the local file to remotePath.
	Upload(ctx context.Context, localPath, remotePath string) error

	// Download copies remotePath to the local file.
	Download(ctx context.Context, remotePath, localPath string) error

	// Exists reports whether remotePath is present.
	Exists(ctx context.Context, remotePath string) (bool, error)

	// Delete removes remotePath. Deleting a missing path is not an error.
	Delete(ctx context.Context, remotePath string) error

	// Close releases the backend's resources.
	Close() error
}

// New builds a backend from its configuration.
func New(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	switch cfg.Type {
	case config.StorageLocal:
		return NewLocal(cfg.Root)
	case config.StorageS3:
		return NewS3(ctx, cfg)
	default:
		return nil, errors.Configurationf("unknown storage type %q", cfg.Type)
	}
}
