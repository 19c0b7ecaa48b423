package config

import (
	"crypto/rand"
	"encoding/hex"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/coffer/internal/paths"
	"github.com/thoreinstein/coffer/pkg/fileutil"
)

// Example returns a starter configuration with one local group and a
// freshly generated encryption salt. The salt must stay constant once
// backups exist, so it is generated exactly once, at init time.
func Example() (*Config, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "generating salt")
	}

	home := paths.Home()
	return &Config{
		Version:        1,
		DefaultStorage: "local",
		Groups: []GroupConfig{
			{
				Name:   "documents",
				Source: filepath.Join(home, "Documents"),
				Kind:   KindIncremental,
			},
		},
		Storage: map[string]StorageConfig{
			"local": {
				Type: StorageLocal,
				Root: filepath.Join(home, "Backups"),
			},
		},
		Exclusions: ExclusionConfig{
			Patterns:    []string{"*.tmp", "~$*"},
			MaxFileSize: 1 << 30, // 1 GiB
		},
		Encryption: EncryptionConfig{
			Enabled:    false,
			Salt:       hex.EncodeToString(salt),
			Iterations: DefaultIterations,
		},
	}, nil
}

// WriteExample writes a generated example configuration to path.
// The parent directory is created if needed. File mode is 0600 because
// the config may hold storage credentials.
func WriteExample(path string) error {
	cfg, err := Example()
	if err != nil {
		return err
	}
	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	return fileutil.AtomicWriteYAMLWithPerm(path, cfg, 0600)
}
