package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thoreinstein/coffer/internal/config"
	"github.com/thoreinstein/coffer/internal/password"
	"github.com/thoreinstein/coffer/internal/paths"
	"github.com/thoreinstein/coffer/internal/state"
)

// artifactTimestampLayout is the timestamp embedded in artifact names.
const artifactTimestampLayout = "20060102150405"

// remotePrefix is the directory prefix for all uploaded artifacts.
const remotePrefix = "backups"

// Engine coordinates backup and restore runs over shared configuration,
// state, and a password provider.
type Engine struct {
	cfg       *config.Config
	state     *state.State
	passwords password.Provider
	logger    *slog.Logger
}

// New creates an Engine. If logger is nil, logging is discarded.
func New(cfg *config.Config, st *state.State, passwords password.Provider, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		cfg:       cfg,
		state:     st,
		passwords: passwords,
		logger:    logger,
	}
}

// artifactName builds the canonical artifact file name:
// backup_<group>_<uuid>_<utc timestamp>.zip
func artifactName(group string, ts time.Time) string {
	return fmt.Sprintf("backup_%s_%s_%s.zip",
		strings.ToLower(group),
		uuid.New().String(),
		ts.UTC().Format(artifactTimestampLayout))
}

// remotePath places an artifact file under its group's remote directory.
// Remote paths always use forward slashes.
func remotePath(group, file string) string {
	return path.Join(remotePrefix, strings.ToLower(group), file)
}

// stagingDir creates a private scratch directory for one run. It prefers
// the cache-backed staging area and falls back to the system temp dir.
func (e *Engine) stagingDir() (string, error) {
	parent := paths.StagingDir()
	if err := paths.EnsureDir(parent, 0); err != nil {
		e.logger.Debug("staging area unavailable, using system temp", "path", parent, "error", err)
		parent = ""
	}
	return os.MkdirTemp(parent, "coffer-run-*")
}
