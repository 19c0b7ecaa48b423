package state

import (
	"regexp"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// artifactTimestampLayout is the 14-digit UTC timestamp embedded in
// backup artifact names (backup_<group>_<id>_<timestamp>.zip).
const artifactTimestampLayout = "20060102150405"

var timestampPattern = regexp.MustCompile(`\d{14}`)

// ParseArtifactTimestamp extracts the embedded UTC timestamp from a
// backup artifact name. It matches the first run of 14 digits, falling
// back to the last underscore-delimited 14-digit token.
func ParseArtifactTimestamp(artifactPath string) (time.Time, error) {
	if m := timestampPattern.FindString(artifactPath); m != "" {
		return time.ParseInLocation(artifactTimestampLayout, m, time.UTC)
	}

	// Fallback: last underscore-delimited token of exactly 14 digits,
	// with any extension stripped.
	name := artifactPath
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	parts := strings.Split(name, "_")
	for i := len(parts) - 1; i >= 0; i-- {
		if len(parts[i]) == 14 {
			if t, err := time.ParseInLocation(artifactTimestampLayout, parts[i], time.UTC); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, errors.Newf("no timestamp found in artifact name %q", artifactPath)
}

// ResolveBaseForDifferential finds the base backup for a differential
// artifact: the most recent non-differential record whose timestamp
// precedes the timestamp embedded in the differential's filename.
//
// The search deliberately spans all groups, not just the differential's
// owning group, to preserve compatibility with existing state documents.
func (s *State) ResolveBaseForDifferential(diffArtifactPath string) (BackupRecord, bool) {
	ts, err := ParseArtifactTimestamp(diffArtifactPath)
	if err != nil {
		s.logger.Warn("resolving differential base", "artifact", diffArtifactPath, "error", err)
		return BackupRecord{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		best  BackupRecord
		found bool
	)
	for _, records := range s.history {
		for _, r := range records {
			if r.Differential || !r.Timestamp.Before(ts) {
				continue
			}
			if !found || r.Timestamp.After(best.Timestamp) {
				best = r
				found = true
			}
		}
	}
	return best, found
}
