// Package config provides configuration management for coffer using Viper.
package config

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/thoreinstein/coffer/internal/paths"
)

// AppName is the application name used for config file naming.
const AppName = "coffer"

// Backup kinds accepted by group configuration and the --kind flag.
const (
	KindFull         = "full"
	KindIncremental  = "incremental"
	KindDifferential = "differential"
)

// Storage backend types.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// DefaultIterations is the PBKDF2 iteration count used when the config
// does not pin one. The value is persisted into every envelope sidecar,
// so changing this default never breaks existing backups.
const DefaultIterations = 100_000

// Config represents the top-level configuration structure.
type Config struct {
	Version        int                      `mapstructure:"version" yaml:"version"`
	StateFile      string                   `mapstructure:"state_file" yaml:"state_file,omitempty"`
	DefaultStorage string                   `mapstructure:"default_storage" yaml:"default_storage"`
	Groups         []GroupConfig            `mapstructure:"groups" yaml:"groups"`
	Storage        map[string]StorageConfig `mapstructure:"storage" yaml:"storage"`
	Exclusions     ExclusionConfig          `mapstructure:"exclusions" yaml:"exclusions"`
	Retention      RetentionConfig          `mapstructure:"retention" yaml:"retention"`
	Encryption     EncryptionConfig         `mapstructure:"encryption" yaml:"encryption"`

	// SizeWarnBytes is the aggregate source size above which a backup run
	// logs a warning. Zero disables the check. Never aborts a run.
	SizeWarnBytes int64 `mapstructure:"size_warn_bytes" yaml:"size_warn_bytes,omitempty"`
}

// GroupConfig describes one watched backup group: a named source
// directory with an optional storage override and backup kind.
type GroupConfig struct {
	Name    string `mapstructure:"name" yaml:"name"`
	Source  string `mapstructure:"source" yaml:"source"`
	Storage string `mapstructure:"storage" yaml:"storage,omitempty"`
	Kind    string `mapstructure:"kind" yaml:"kind,omitempty"`
}

// BackupKind returns the group's configured kind, defaulting to incremental.
func (g GroupConfig) BackupKind() string {
	if g.Kind == "" {
		return KindIncremental
	}
	return strings.ToLower(g.Kind)
}

// StorageConfig describes a single storage backend. Type selects the
// implementation; the remaining fields are interpreted per type.
type StorageConfig struct {
	Type string `mapstructure:"type" yaml:"type"`

	// Local filesystem backend.
	Root string `mapstructure:"root" yaml:"root,omitempty"`

	// S3-compatible object storage backend.
	Bucket    string `mapstructure:"bucket" yaml:"bucket,omitempty"`
	Region    string `mapstructure:"region" yaml:"region,omitempty"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	Prefix    string `mapstructure:"prefix" yaml:"prefix,omitempty"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key,omitempty"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key,omitempty"`
}

// ExclusionConfig holds the file selection exclusion rules.
type ExclusionConfig struct {
	// Roots are directory prefixes excluded wholesale (case-insensitive).
	Roots []string `mapstructure:"roots" yaml:"roots,omitempty"`

	// Patterns are glob-style filename patterns (* and ?), case-insensitive.
	Patterns []string `mapstructure:"patterns" yaml:"patterns,omitempty"`

	// MaxFileSize is the per-file size cap in bytes. Zero means no cap.
	MaxFileSize int64 `mapstructure:"max_file_size" yaml:"max_file_size,omitempty"`
}

// RetentionConfig holds the per-group retention policy.
// Both knobs zero means retention is disabled (the default).
type RetentionConfig struct {
	// KeepLast retains only the N most recent records per group.
	KeepLast int `mapstructure:"keep_last" yaml:"keep_last,omitempty"`

	// MaxAgeDays removes records older than this many days.
	MaxAgeDays int `mapstructure:"max_age_days" yaml:"max_age_days,omitempty"`
}

// Enabled reports whether any retention rule is active.
func (r RetentionConfig) Enabled() bool {
	return r.KeepLast > 0 || r.MaxAgeDays > 0
}

// MaxAge returns MaxAgeDays as a duration, or zero if unset.
func (r RetentionConfig) MaxAge() time.Duration {
	return time.Duration(r.MaxAgeDays) * 24 * time.Hour
}

// EncryptionConfig holds the envelope encryption settings.
// Salt and Iterations are constant for the installation's lifetime;
// they are baked into every sidecar so existing artifacts stay readable.
type EncryptionConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Salt       string `mapstructure:"salt" yaml:"salt,omitempty"`
	Iterations int    `mapstructure:"iterations" yaml:"iterations,omitempty"`
}

// SaltBytes decodes the hex-encoded salt.
func (e EncryptionConfig) SaltBytes() ([]byte, error) {
	if e.Salt == "" {
		return nil, ErrMissingSalt
	}
	salt, err := hex.DecodeString(e.Salt)
	if err != nil {
		return nil, errors.Wrap(err, "decoding encryption salt")
	}
	return salt, nil
}

// IterationCount returns the configured PBKDF2 iterations, or the default.
func (e EncryptionConfig) IterationCount() int {
	if e.Iterations <= 0 {
		return DefaultIterations
	}
	return e.Iterations
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	// Config file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".") // Current directory
	viper.AddConfigPath(filepath.Join(paths.ConfigHome(), AppName))

	// Environment variable support
	viper.SetEnvPrefix("COFFER")
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("version", 1)
	viper.SetDefault("default_storage", "local")
	viper.SetDefault("encryption.iterations", DefaultIterations)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations.
// Returns the loaded configuration or default values if no file is found (when path is empty).
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		// If config file not found...
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// If user specified a path, this is an error
			if path != "" {
				return nil, fmt.Errorf("config file not found at %s: %w", path, err)
			}
			// Otherwise (implicit load), it's fine to use defaults
		} else {
			// Real read error (parsing, permissions, etc)
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.StateFile == "" {
		cfg.StateFile = paths.StateFile()
	}

	return &cfg, nil
}

// Group returns the group configuration matching name, case-insensitively.
func (c *Config) Group(name string) (GroupConfig, bool) {
	for _, g := range c.Groups {
		if strings.EqualFold(g.Name, name) {
			return g, true
		}
	}
	return GroupConfig{}, false
}

// StorageFor resolves the storage configuration for a group, applying the
// explicit override (if any), then the group's configured backend, then
// the global default. The returned name identifies the chosen backend.
func (c *Config) StorageFor(group GroupConfig, override string) (string, StorageConfig, bool) {
	name := override
	if name == "" {
		name = group.Storage
	}
	if name == "" {
		name = c.DefaultStorage
	}
	sc, ok := c.Storage[name]
	return name, sc, ok
}
