package selection

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/thoreinstein/coffer/internal/config"
)

// Collector applies the exclusion pipeline over a directory walk.
type Collector struct {
	rules  []Rule
	logger *slog.Logger
}

// New creates a Collector from the configured exclusion rules.
// If logger is nil, logging is discarded.
func New(exclusions config.ExclusionConfig, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Collector{
		rules: []Rule{
			newExcludedRoots(exclusions.Roots),
			hiddenEntries{},
			sizeCap{limit: exclusions.MaxFileSize},
			newGlobPatterns(exclusions.Patterns),
		},
		logger: logger,
	}
}

// Collect expands the given paths into the list of files eligible for
// backup. A path naming a file is included unless excluded; a path
// naming a directory is walked iteratively, skipping excluded
// subdirectories wholesale. Entries that cannot be examined are
// excluded with a warning, never aborting the collection.
func (c *Collector) Collect(inputs []string) []string {
	var files []string
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			c.logger.Warn("skipping unreadable path", "path", input, "error", err)
			continue
		}

		if !info.IsDir() {
			if c.excluded(input, info) {
				continue
			}
			files = append(files, input)
			continue
		}

		files = append(files, c.walk(input)...)
	}
	return files
}

// walk traverses root with an explicit stack of pending directories.
// Excluded directories are pruned before their contents are read.
func (c *Collector) walk(root string) []string {
	var files []string
	stack := []string{root}

	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			c.logger.Warn("skipping unreadable directory", "path", dir, "error", err)
			continue
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			info, err := entry.Info()
			if err != nil {
				c.logger.Warn("skipping unreadable entry", "path", path, "error", err)
				continue
			}

			if entry.IsDir() {
				if !c.excluded(path, info) {
					stack = append(stack, path)
				}
				continue
			}

			if !c.excluded(path, info) {
				files = append(files, path)
			}
		}
	}
	return files
}

// excluded runs the rule pipeline in order, short-circuiting on the
// first match.
func (c *Collector) excluded(path string, info fs.FileInfo) bool {
	for _, rule := range c.rules {
		if skip, reason := rule.Excludes(path, info); skip {
			c.logger.Debug("excluding entry", "path", path, "reason", reason)
			return true
		}
	}
	return false
}
