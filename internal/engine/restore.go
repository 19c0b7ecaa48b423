package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/thoreinstein/coffer/internal/archive"
	"github.com/thoreinstein/coffer/internal/envelope"
	cferrors "github.com/thoreinstein/coffer/internal/errors"
	"github.com/thoreinstein/coffer/internal/state"
	"github.com/thoreinstein/coffer/internal/storage"
)

// RestoreOptions carries per-run restore settings.
type RestoreOptions struct {
	// Artifact names a specific artifact (by remote path or file name).
	// Empty restores the group's most recent record.
	Artifact string

	// Target is the directory to restore into.
	Target string
}

// RestoreResult reports what one restore run did.
type RestoreResult struct {
	Group        string
	ArtifactPath string
	Target       string

	// BaseArtifacts lists base artifacts restored underneath a
	// differential, in the order applied.
	BaseArtifacts []string
}

// Restore restores a group's backup into the target directory. A
// differential artifact first restores its resolved base, then lands its
// own payload on top, overwriting the base's files where they overlap.
func (e *Engine) Restore(ctx context.Context, group string, opts RestoreOptions) (*RestoreResult, error) {
	if opts.Target == "" {
		return nil, cferrors.Validationf("restore target directory is required")
	}

	record, err := e.findRecord(group, opts.Artifact)
	if err != nil {
		return nil, err
	}

	storageName := record.Storage
	if storageName == "" {
		storageName = e.cfg.DefaultStorage
	}
	storageCfg, ok := e.cfg.Storage[storageName]
	if !ok {
		return nil, cferrors.Configurationf("storage backend %q is not configured", storageName)
	}
	backend, err := storage.New(ctx, storageCfg)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	staging, err := e.stagingDir()
	if err != nil {
		return nil, cferrors.WrapIO(err, "creating staging directory")
	}
	defer os.RemoveAll(staging)

	result := &RestoreResult{
		Group:        group,
		ArtifactPath: record.ArtifactPath,
		Target:       opts.Target,
	}
	if err := e.restoreRecord(ctx, backend, record, opts.Target, staging, result, 0); err != nil {
		return nil, err
	}

	e.logger.Info("restore complete",
		"group", group,
		"artifact", record.ArtifactPath,
		"target", opts.Target)
	return result, nil
}

// findRecord locates the requested record, defaulting to the newest.
// An artifact argument matches on the full remote path or its base name.
func (e *Engine) findRecord(group, artifact string) (state.BackupRecord, error) {
	records := e.state.Records(group)
	if len(records) == 0 {
		return state.BackupRecord{}, cferrors.NotFoundf("no backups recorded for group %q", group)
	}
	if artifact == "" {
		return records[len(records)-1], nil
	}
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		if r.ArtifactPath == artifact || filepath.Base(r.ArtifactPath) == artifact {
			return r, nil
		}
	}
	return state.BackupRecord{}, cferrors.NotFoundf("artifact %q not found in group %q", artifact, group)
}

// maxBaseDepth bounds differential base chains. Bases are always
// non-differential, so depth 1 suffices; the bound guards corrupt state.
const maxBaseDepth = 8

func (e *Engine) restoreRecord(ctx context.Context, backend storage.Backend, record state.BackupRecord, target, staging string, result *RestoreResult, depth int) error {
	if depth > maxBaseDepth {
		return cferrors.Validationf("differential base chain too deep for %q", record.ArtifactPath)
	}

	if record.Differential {
		base, ok := e.state.ResolveBaseForDifferential(record.ArtifactPath)
		if !ok {
			return cferrors.NotFoundf("no base backup found for differential %q", record.ArtifactPath)
		}
		e.logger.Info("restoring differential base",
			"differential", record.ArtifactPath,
			"base", base.ArtifactPath)
		if err := e.restoreRecord(ctx, backend, base, target, staging, result, depth+1); err != nil {
			return err
		}
		result.BaseArtifacts = append(result.BaseArtifacts, base.ArtifactPath)
	}

	localName := filepath.Base(record.ArtifactPath)
	downloadPath := filepath.Join(staging, localName)
	if err := backend.Download(ctx, record.ArtifactPath, downloadPath); err != nil {
		return err
	}

	archivePath := downloadPath
	if strings.HasSuffix(localName, envelope.EncSuffix) {
		decrypted, err := e.decryptArtifact(ctx, backend, record.ArtifactPath, downloadPath, staging)
		if err != nil {
			return err
		}
		archivePath = decrypted
	}

	return archive.Extract(archivePath, target)
}

// decryptArtifact fetches the envelope sidecar and decrypts the
// downloaded ciphertext. An authentication failure invalidates the
// cached password before surfacing, so the next attempt re-prompts.
func (e *Engine) decryptArtifact(ctx context.Context, backend storage.Backend, remote, downloadPath, staging string) (string, error) {
	metaRemote := envelope.MetaPath(remote)
	metaPath := filepath.Join(staging, filepath.Base(metaRemote))
	if err := backend.Download(ctx, metaRemote, metaPath); err != nil {
		return "", err
	}

	pw, err := e.passwords.GetPassword()
	if err != nil {
		return "", err
	}

	plainPath := strings.TrimSuffix(downloadPath, envelope.EncSuffix)
	if err := envelope.DecryptFile(downloadPath, metaPath, plainPath, pw); err != nil {
		if cferrors.IsAuthentication(err) {
			e.passwords.ClearPassword()
		}
		return "", err
	}
	return plainPath, nil
}
