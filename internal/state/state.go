package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/coffer/internal/paths"
	"github.com/thoreinstein/coffer/pkg/fileutil"
)

// State is the durable record of per-file metadata and per-group backup
// history. All mutations to the two maps happen while holding the mutex.
// Disk I/O never happens while the lock is held: Save and Load snapshot
// under lock and perform file I/O unlocked.
type State struct {
	mu sync.Mutex

	path   string
	logger *slog.Logger

	lastBackupTime time.Time

	// history maps lowercased group name to its record list.
	// An empty list after removal deletes the group entry.
	history map[string][]BackupRecord

	// files maps lowercased absolute path to file metadata.
	files map[string]FileMetadata
}

// New creates an empty State persisted at path.
// If logger is nil, logging is discarded.
func New(path string, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &State{
		path:    path,
		logger:  logger,
		history: make(map[string][]BackupRecord),
		files:   make(map[string]FileMetadata),
	}
}

// Path returns the state document location.
func (s *State) Path() string {
	return s.path
}

// Load reads the persistent state document from disk. A missing or
// corrupt document is not an error: the state is initialized empty and
// corruption is logged. Startup never fails on state problems.
func (s *State) Load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("reading state file, starting empty", "path", s.path, "error", err)
		}
		s.reset()
		return
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("state file corrupt, starting empty", "path", s.path, "error", err)
		s.reset()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastBackupTime = doc.LastBackupTime
	s.history = make(map[string][]BackupRecord, len(doc.History))
	for group, records := range doc.History {
		s.history[strings.ToLower(group)] = records
	}
	s.files = make(map[string]FileMetadata, len(doc.Files))
	for path, meta := range doc.Files {
		s.files[strings.ToLower(path)] = meta
	}
}

func (s *State) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastBackupTime = time.Time{}
	s.history = make(map[string][]BackupRecord)
	s.files = make(map[string]FileMetadata)
}

// Save writes the state document atomically (temp file + rename).
// The in-memory maps are snapshotted under the lock; serialization and
// disk I/O happen outside it.
func (s *State) Save() error {
	s.mu.Lock()
	doc := document{
		LastBackupTime: s.lastBackupTime,
		History:        make(map[string][]BackupRecord, len(s.history)),
		Files:          make(map[string]FileMetadata, len(s.files)),
	}
	for group, records := range s.history {
		doc.History[group] = append([]BackupRecord(nil), records...)
	}
	for path, meta := range s.files {
		doc.Files[path] = meta
	}
	s.mu.Unlock()

	if err := paths.EnsureDir(filepath.Dir(s.path), 0); err != nil {
		return errors.Wrap(err, "creating state directory")
	}
	if err := fileutil.AtomicWriteJSONWithPerm(s.path, doc, 0600); err != nil {
		return errors.Wrap(err, "writing state file")
	}
	return nil
}

// RecordFile computes and stores metadata for path: size, UTC mod time,
// and a streaming SHA-256 of the contents. A missing file removes any
// existing entry instead of recording. Permission and I/O errors are
// logged and skipped, never fatal; an unreadable file is recorded with
// an empty hash.
func (s *State) RecordFile(path string) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.mu.Lock()
			delete(s.files, strings.ToLower(path))
			s.mu.Unlock()
			return
		}
		s.logger.Warn("skipping file metadata", "path", path, "error", err)
		return
	}

	hash, err := hashFile(path)
	if err != nil {
		s.logger.Warn("hashing file, recording without hash", "path", path, "error", err)
		hash = ""
	}

	meta := FileMetadata{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime().UTC(),
		Hash:    hash,
	}

	s.mu.Lock()
	s.files[strings.ToLower(path)] = meta
	s.mu.Unlock()
}

// FileMeta returns the recorded metadata for path, if any.
// Lookup is case-insensitive.
func (s *State) FileMeta(path string) (FileMetadata, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta, ok := s.files[strings.ToLower(path)]
	return meta, ok
}

// FileCount returns the number of tracked files.
func (s *State) FileCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// AddRecord appends a backup record to the group's history.
// Records are never replaced. The state's lastBackupTime advances.
func (s *State) AddRecord(group string, record BackupRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(group)
	s.history[key] = append(s.history[key], record)
	if record.Timestamp.After(s.lastBackupTime) {
		s.lastBackupTime = record.Timestamp
	}
}

// Records returns a copy of the group's history, oldest first.
// Lookup is case-insensitive.
func (s *State) Records(group string) []BackupRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.history[strings.ToLower(group)]
	return append([]BackupRecord(nil), records...)
}

// Groups returns the known group keys (lowercased).
func (s *State) Groups() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	groups := make([]string, 0, len(s.history))
	for g := range s.history {
		groups = append(groups, g)
	}
	return groups
}

// RemoveRecord deletes the record for artifactPath from the group's
// history. When the list empties, the group entry is deleted too, so
// both maps stay consistent under one lock acquisition.
func (s *State) RemoveRecord(group, artifactPath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(group)
	records := s.history[key]
	for i, r := range records {
		if r.ArtifactPath == artifactPath {
			records = append(records[:i], records[i+1:]...)
			if len(records) == 0 {
				delete(s.history, key)
			} else {
				s.history[key] = records
			}
			return true
		}
	}
	return false
}

// LastBackupTime returns the time of the most recent backup, zero if none.
func (s *State) LastBackupTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBackupTime
}

// lastFullBackupTime returns the timestamp of the most recent
// non-differential record across all groups, zero if none exists.
func (s *State) lastFullBackupTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	var last time.Time
	for _, records := range s.history {
		for _, r := range records {
			if !r.Differential && r.Timestamp.After(last) {
				last = r.Timestamp
			}
		}
	}
	return last
}

// hashFile computes a streaming SHA-256 over the file contents.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "opening file")
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrap(err, "reading file")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
