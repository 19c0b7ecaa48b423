package config

import (
	"errors"
	"path/filepath"
	"strings"
)

// Validation errors for configuration fields.
var (
	// ErrVersionTooLow indicates the version field is below the minimum.
	ErrVersionTooLow = errors.New("version must be >= 1")

	// ErrInvalidKind indicates an unrecognized backup kind.
	ErrInvalidKind = errors.New("invalid backup kind")

	// ErrInvalidStorageType indicates an unrecognized storage backend type.
	ErrInvalidStorageType = errors.New("invalid storage type")

	// ErrUnknownStorage indicates a group references an undefined backend.
	ErrUnknownStorage = errors.New("unknown storage backend")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrDuplicateGroup indicates two groups share a name (case-insensitive).
	ErrDuplicateGroup = errors.New("duplicate group name")

	// ErrMissingSalt indicates encryption is enabled without a salt.
	ErrMissingSalt = errors.New("encryption enabled but salt is empty")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	// Version must be >= 1
	if cfg.Version < 1 {
		errs = append(errs, ErrVersionTooLow)
	}

	seen := make(map[string]bool, len(cfg.Groups))
	for _, g := range cfg.Groups {
		if g.Name == "" {
			errs = append(errs, &GroupError{Group: g.Source, Err: errors.New("group name is required")})
			continue
		}
		lower := strings.ToLower(g.Name)
		if seen[lower] {
			errs = append(errs, &GroupError{Group: g.Name, Err: ErrDuplicateGroup})
		}
		seen[lower] = true

		if err := validatePath(g.Source); err != nil || g.Source == "" {
			errs = append(errs, &GroupError{Group: g.Name, Err: ErrInvalidPath})
		}

		switch g.BackupKind() {
		case KindFull, KindIncremental, KindDifferential:
		default:
			errs = append(errs, &GroupError{Group: g.Name, Err: ErrInvalidKind})
		}

		if g.Storage != "" {
			if _, ok := cfg.Storage[g.Storage]; !ok {
				errs = append(errs, &GroupError{Group: g.Name, Err: ErrUnknownStorage})
			}
		}
	}

	for name, sc := range cfg.Storage {
		switch sc.Type {
		case StorageLocal:
			if sc.Root == "" {
				errs = append(errs, &StorageError{Storage: name, Err: errors.New("local backend requires root")})
			}
		case StorageS3:
			if sc.Bucket == "" {
				errs = append(errs, &StorageError{Storage: name, Err: errors.New("s3 backend requires bucket")})
			}
		default:
			errs = append(errs, &StorageError{Storage: name, Err: ErrInvalidStorageType})
		}
	}

	if cfg.DefaultStorage != "" && len(cfg.Storage) > 0 {
		if _, ok := cfg.Storage[cfg.DefaultStorage]; !ok {
			errs = append(errs, &StorageError{Storage: cfg.DefaultStorage, Err: ErrUnknownStorage})
		}
	}

	if cfg.Encryption.Enabled && cfg.Encryption.Salt == "" {
		errs = append(errs, ErrMissingSalt)
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}

	// Check for null bytes which are never valid in paths
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	// Clean the path and check it's not empty after cleaning
	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// GroupError represents an error for a specific backup group.
type GroupError struct {
	Group string
	Err   error
}

func (e *GroupError) Error() string {
	return e.Err.Error() + ": " + e.Group
}

func (e *GroupError) Unwrap() error {
	return e.Err
}

// StorageError represents an error for a specific storage backend entry.
type StorageError struct {
	Storage string
	Err     error
}

func (e *StorageError) Error() string {
	return e.Storage + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
