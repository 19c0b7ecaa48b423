package engine

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/thoreinstein/coffer/internal/archive"
	"github.com/thoreinstein/coffer/internal/config"
	"github.com/thoreinstein/coffer/internal/envelope"
	cferrors "github.com/thoreinstein/coffer/internal/errors"
	"github.com/thoreinstein/coffer/internal/selection"
	"github.com/thoreinstein/coffer/internal/state"
	"github.com/thoreinstein/coffer/internal/storage"
)

// BackupOptions carries per-run overrides.
type BackupOptions struct {
	// Kind overrides the group's configured backup kind.
	Kind string

	// Storage overrides the group's storage backend by name.
	Storage string
}

// BackupResult reports what one backup run did.
type BackupResult struct {
	Group         string
	Kind          state.BackupKind
	ArtifactPath  string
	FilesBackedUp int
	SizeBytes     int64

	// Skipped means the change set was empty and no artifact was made.
	Skipped bool
}

// Backup runs the full pipeline for one group. An empty change set is a
// successful no-op: state is persisted and no artifact is produced.
func (e *Engine) Backup(ctx context.Context, group config.GroupConfig, opts BackupOptions) (*BackupResult, error) {
	source, err := filepath.Abs(group.Source)
	if err != nil {
		return nil, cferrors.WrapIO(err, "resolving source directory")
	}
	info, err := os.Stat(source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cferrors.NotFoundf("source directory %q does not exist", source)
		}
		return nil, cferrors.WrapIO(err, "checking source directory")
	}
	if !info.IsDir() {
		return nil, cferrors.Validationf("source %q is not a directory", source)
	}

	storageName, storageCfg, ok := e.cfg.StorageFor(group, opts.Storage)
	if !ok {
		return nil, cferrors.Configurationf("storage backend %q is not configured", storageName)
	}
	backend, err := storage.New(ctx, storageCfg)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	kindName := opts.Kind
	if kindName == "" {
		kindName = group.BackupKind()
	}
	kind, err := state.ParseKind(kindName)
	if err != nil {
		return nil, cferrors.Validationf("invalid backup kind %q", kindName)
	}

	collector := selection.New(e.cfg.Exclusions, e.logger)
	candidates := collector.Collect([]string{source})
	e.warnOnSize(candidates)

	changed := e.state.SelectChanged(candidates, kind)
	e.logger.Info("computed change set",
		"group", group.Name,
		"kind", kind.String(),
		"candidates", len(candidates),
		"changed", len(changed))

	if len(changed) == 0 {
		if err := e.state.Save(); err != nil {
			return nil, err
		}
		return &BackupResult{Group: group.Name, Kind: kind, Skipped: true}, nil
	}

	staging, err := e.stagingDir()
	if err != nil {
		return nil, cferrors.WrapIO(err, "creating staging directory")
	}
	defer os.RemoveAll(staging)

	ts := time.Now().UTC()
	name := artifactName(group.Name, ts)
	archivePath := filepath.Join(staging, name)

	if err := archive.Create(archivePath, source, changed); err != nil {
		return nil, err
	}

	uploadPath := archivePath
	uploadName := name
	if e.cfg.Encryption.Enabled {
		uploadPath, uploadName, err = e.encryptArtifact(archivePath, name)
		if err != nil {
			return nil, err
		}
	}

	remote := remotePath(group.Name, uploadName)
	if err := backend.Upload(ctx, uploadPath, remote); err != nil {
		return nil, err
	}
	if e.cfg.Encryption.Enabled {
		if err := backend.Upload(ctx, envelope.MetaPath(uploadPath), envelope.MetaPath(remote)); err != nil {
			return nil, err
		}
	}

	uploaded, err := os.Stat(uploadPath)
	var size int64
	if err == nil {
		size = uploaded.Size()
	}

	// Durably uploaded: only now does the record enter history.
	record := state.BackupRecord{
		ArtifactPath: remote,
		Timestamp:    ts,
		Differential: kind == state.Differential,
		Storage:      storageName,
		SizeBytes:    size,
	}
	e.state.AddRecord(group.Name, record)

	if err := e.applyRetention(ctx, backend, group.Name); err != nil {
		e.logger.Warn("retention pass failed", "group", group.Name, "error", err)
	}

	for _, file := range changed {
		e.state.RecordFile(file)
	}
	if err := e.state.Save(); err != nil {
		return nil, err
	}

	e.logger.Info("backup complete",
		"group", group.Name,
		"artifact", remote,
		"files", len(changed),
		"bytes", size)

	return &BackupResult{
		Group:         group.Name,
		Kind:          kind,
		ArtifactPath:  remote,
		FilesBackedUp: len(changed),
		SizeBytes:     size,
	}, nil
}

// encryptArtifact encrypts the staged archive in place (beside it),
// returning the ciphertext path and its artifact name.
func (e *Engine) encryptArtifact(archivePath, name string) (string, string, error) {
	pw, err := e.passwords.GetPassword()
	if err != nil {
		return "", "", err
	}
	salt, err := e.cfg.Encryption.SaltBytes()
	if err != nil {
		return "", "", cferrors.Configurationf("invalid encryption salt: %v", err)
	}

	encPath := archivePath + envelope.EncSuffix
	if _, err := envelope.EncryptFile(archivePath, encPath, pw, salt, e.cfg.Encryption.IterationCount()); err != nil {
		return "", "", err
	}
	return encPath, name + envelope.EncSuffix, nil
}

// warnOnSize logs a non-fatal warning when the aggregate candidate size
// crosses the configured threshold. Never aborts a run.
func (e *Engine) warnOnSize(candidates []string) {
	if e.cfg.SizeWarnBytes <= 0 {
		return
	}
	var total int64
	for _, file := range candidates {
		if info, err := os.Stat(file); err == nil {
			total += info.Size()
		}
	}
	if total > e.cfg.SizeWarnBytes {
		e.logger.Warn("source exceeds size threshold",
			"bytes", total,
			"threshold", e.cfg.SizeWarnBytes)
	}
}
