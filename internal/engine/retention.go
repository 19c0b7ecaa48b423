package engine

import (
	"context"
	"strings"
	"time"

	"github.com/thoreinstein/coffer/internal/envelope"
	cferrors "github.com/thoreinstein/coffer/internal/errors"
	"github.com/thoreinstein/coffer/internal/state"
	"github.com/thoreinstein/coffer/internal/storage"
)

// Prune applies the configured retention policy to a group right now,
// acquiring its own storage backend. Used by the prune command; backup
// runs call applyRetention with the backend they already hold.
func (e *Engine) Prune(ctx context.Context, group string) (int, error) {
	records := e.state.Records(group)
	if len(records) == 0 {
		return 0, nil
	}

	storageName := records[len(records)-1].Storage
	if storageName == "" {
		storageName = e.cfg.DefaultStorage
	}
	storageCfg, ok := e.cfg.Storage[storageName]
	if !ok {
		return 0, cferrors.Configurationf("storage backend %q is not configured", storageName)
	}
	backend, err := storage.New(ctx, storageCfg)
	if err != nil {
		return 0, err
	}
	defer backend.Close()

	before := len(records)
	if err := e.applyRetention(ctx, backend, group); err != nil {
		return 0, err
	}
	if err := e.state.Save(); err != nil {
		return 0, err
	}
	return before - len(e.state.Records(group)), nil
}

// applyRetention trims a group's history and remote artifacts per the
// configured policy: keep-last-N and/or max-age-days, disabled by
// default. A record is dropped only after its artifact (and sidecar, if
// encrypted) is deleted remotely; a failed delete keeps the record so
// nothing is orphaned silently.
func (e *Engine) applyRetention(ctx context.Context, backend storage.Backend, group string) error {
	policy := e.cfg.Retention
	if !policy.Enabled() {
		return nil
	}

	records := e.state.Records(group)
	expired := expiredRecords(records, policy.KeepLast, policy.MaxAge(), time.Now().UTC())

	for _, record := range expired {
		if err := backend.Delete(ctx, record.ArtifactPath); err != nil {
			e.logger.Warn("keeping record, artifact delete failed",
				"group", group,
				"artifact", record.ArtifactPath,
				"error", err)
			continue
		}
		if strings.HasSuffix(record.ArtifactPath, envelope.EncSuffix) {
			if err := backend.Delete(ctx, envelope.MetaPath(record.ArtifactPath)); err != nil {
				e.logger.Warn("sidecar delete failed",
					"group", group,
					"artifact", record.ArtifactPath,
					"error", err)
			}
		}

		e.state.RemoveRecord(group, record.ArtifactPath)
		e.logger.Info("pruned expired backup",
			"group", group,
			"artifact", record.ArtifactPath,
			"age", time.Since(record.Timestamp).Round(time.Hour))
	}
	return nil
}

// expiredRecords selects the records to drop: everything beyond the
// keep-last-N newest, plus anything older than maxAge. records arrive
// oldest first. A zero knob disables that criterion.
func expiredRecords(records []state.BackupRecord, keepLast int, maxAge time.Duration, now time.Time) []state.BackupRecord {
	var expired []state.BackupRecord
	for i, record := range records {
		beyondCount := keepLast > 0 && i < len(records)-keepLast
		tooOld := maxAge > 0 && record.Timestamp.Before(now.Add(-maxAge))
		if beyondCount || tooOld {
			expired = append(expired, record)
		}
	}
	return expired
}
