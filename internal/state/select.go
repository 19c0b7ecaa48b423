package state

import (
	"os"
	"time"
)

// SelectChanged computes the change set: the subset of candidate files to
// include in a backup of the given kind.
//
// Full selects every candidate unconditionally. Incremental selects new
// files, files whose size changed, and files whose mod time advanced with
// a different (or unknown) content hash. Differential selects files
// modified after the most recent non-differential backup across all
// groups.
//
// Change detection fails open: any per-file evaluation error selects the
// file with a warning logged. A missed change is worse than a redundant
// backup.
func (s *State) SelectChanged(candidates []string, kind BackupKind) []string {
	if kind == Full {
		return append([]string(nil), candidates...)
	}

	var baseline = s.lastFullBackupTime()

	selected := make([]string, 0, len(candidates))
	for _, path := range candidates {
		changed := false
		switch kind {
		case Incremental:
			changed = s.incrementalChanged(path)
		case Differential:
			changed = s.differentialChanged(path, baseline)
		}
		if changed {
			selected = append(selected, path)
		}
	}
	return selected
}

// incrementalChanged reports whether path changed since its last recorded
// backup. A file with no prior record is always selected.
func (s *State) incrementalChanged(path string) bool {
	meta, ok := s.FileMeta(path)
	if !ok {
		return true
	}

	info, err := os.Stat(path)
	if err != nil {
		s.logger.Warn("evaluating change, selecting file", "path", path, "error", err)
		return true
	}

	if info.Size() != meta.Size {
		return true
	}

	if !info.ModTime().UTC().After(meta.ModTime) {
		return false
	}

	// Mod time advanced. With no prior hash there is nothing to compare
	// against, so select unconditionally.
	if meta.Hash == "" {
		return true
	}

	hash, err := hashFile(path)
	if err != nil {
		s.logger.Warn("hashing for change detection, selecting file", "path", path, "error", err)
		return true
	}
	return hash != meta.Hash
}

// differentialChanged reports whether path was modified after baseline,
// the global last full-backup time.
func (s *State) differentialChanged(path string, baseline time.Time) bool {
	info, err := os.Stat(path)
	if err != nil {
		s.logger.Warn("evaluating change, selecting file", "path", path, "error", err)
		return true
	}
	return info.ModTime().UTC().After(baseline)
}
