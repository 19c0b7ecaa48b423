package state

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// BackupKind selects the change-detection strategy for a backup run.
type BackupKind int

const (
	// Full backs up every candidate file unconditionally.
	Full BackupKind = iota

	// Incremental backs up files that changed since their last recorded
	// backup, judged by size, modification time, and content hash.
	Incremental

	// Differential backs up files modified since the most recent
	// non-differential backup.
	Differential
)

// String returns the lowercase name of the kind.
func (k BackupKind) String() string {
	switch k {
	case Full:
		return "full"
	case Incremental:
		return "incremental"
	case Differential:
		return "differential"
	default:
		return "unknown"
	}
}

// ParseKind parses a backup kind name, case-insensitively.
func ParseKind(s string) (BackupKind, error) {
	switch strings.ToLower(s) {
	case "full":
		return Full, nil
	case "incremental":
		return Incremental, nil
	case "differential":
		return Differential, nil
	default:
		return Full, errors.Newf("unknown backup kind %q", s)
	}
}

// FileMetadata records what was known about a file the last time it was
// included in a backup. Keyed by absolute path, case-insensitively.
type FileMetadata struct {
	// Path is the absolute file path as originally observed.
	Path string `json:"path"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// ModTime is the last-modified timestamp in UTC.
	ModTime time.Time `json:"mod_time"`

	// Hash is the hex-encoded SHA-256 of the file contents.
	// Empty if the file was unreadable at hash time.
	Hash string `json:"hash,omitempty"`
}

// BackupRecord describes one completed backup artifact for a group.
// Records are append-only; they are never mutated after creation and are
// removed only by retention or explicit deletion.
type BackupRecord struct {
	// ArtifactPath is the remote artifact path/identifier.
	ArtifactPath string `json:"artifact_path"`

	// Timestamp is when the backup completed, in UTC.
	Timestamp time.Time `json:"timestamp"`

	// Differential marks records produced by differential backups.
	Differential bool `json:"differential,omitempty"`

	// Storage identifies the backend holding the artifact.
	// Empty means the installation's default backend.
	Storage string `json:"storage,omitempty"`

	// SizeBytes is the uploaded artifact size.
	SizeBytes int64 `json:"size_bytes"`
}

// document is the serialized form of the persistent state: the sole unit
// of durable state, written atomically as a single JSON document.
type document struct {
	LastBackupTime time.Time                 `json:"last_backup_time"`
	History        map[string][]BackupRecord `json:"backup_history"`
	Files          map[string]FileMetadata   `json:"file_metadata"`
}
