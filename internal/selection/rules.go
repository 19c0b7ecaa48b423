package selection

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Rule is one exclusion predicate. It reports whether the entry at path
// should be excluded, and a short reason for logging when it is.
type Rule interface {
	Excludes(path string, info fs.FileInfo) (bool, string)
}

// excludedRoots excludes anything under a configured root directory.
// Matching is by path prefix, case-insensitive, with trailing separators
// normalized so "/tmp/cache" and "/tmp/cache/" behave identically.
type excludedRoots struct {
	roots []string
}

func newExcludedRoots(roots []string) *excludedRoots {
	normalized := make([]string, 0, len(roots))
	for _, root := range roots {
		root = strings.TrimRight(filepath.Clean(root), string(filepath.Separator))
		if root == "" {
			continue
		}
		normalized = append(normalized, strings.ToLower(root)+string(filepath.Separator))
	}
	return &excludedRoots{roots: normalized}
}

func (r *excludedRoots) Excludes(path string, _ fs.FileInfo) (bool, string) {
	lower := strings.ToLower(filepath.Clean(path)) + string(filepath.Separator)
	for _, root := range r.roots {
		if strings.HasPrefix(lower, root) {
			return true, "under excluded root"
		}
	}
	return false, ""
}

// hiddenEntries excludes hidden files and directories. On Unix that is
// the dotfile convention; Windows hidden/system attributes would need a
// platform-specific check here.
type hiddenEntries struct{}

func (hiddenEntries) Excludes(path string, _ fs.FileInfo) (bool, string) {
	name := filepath.Base(path)
	if name != "." && name != ".." && strings.HasPrefix(name, ".") {
		return true, "hidden"
	}
	return false, ""
}

// sizeCap excludes regular files larger than the configured limit.
// A zero or negative limit disables the rule. Directories are never
// size-capped.
type sizeCap struct {
	limit int64
}

func (r sizeCap) Excludes(_ string, info fs.FileInfo) (bool, string) {
	if r.limit <= 0 || info == nil || info.IsDir() {
		return false, ""
	}
	if info.Size() > r.limit {
		return true, "exceeds size cap"
	}
	return false, ""
}

// globPatterns excludes files whose base name matches any configured
// glob pattern (* and ?), case-insensitively.
type globPatterns struct {
	patterns []string
}

func newGlobPatterns(patterns []string) *globPatterns {
	lowered := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		lowered = append(lowered, strings.ToLower(p))
	}
	return &globPatterns{patterns: lowered}
}

func (r *globPatterns) Excludes(path string, _ fs.FileInfo) (bool, string) {
	name := strings.ToLower(filepath.Base(path))
	for _, pattern := range r.patterns {
		ok, err := filepath.Match(pattern, name)
		if err != nil {
			// Malformed pattern: ignore it rather than excluding
			// everything or nothing unpredictably.
			continue
		}
		if ok {
			return true, "matches pattern " + pattern
		}
	}
	return false, ""
}
