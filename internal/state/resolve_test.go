package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArtifactTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		artifact string
		want     time.Time
	}{
		{
			name:     "plain zip",
			artifact: "backup_documents_ab12cd_20260830120000.zip",
			want:     time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		},
		{
			name:     "encrypted artifact",
			artifact: "backup_documents_ab12cd_20260830120000.zip.enc",
			want:     time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		},
		{
			name:     "full remote path",
			artifact: "backups/documents/backup_documents_ab12cd_20251101093015.zip",
			want:     time.Date(2025, 11, 1, 9, 30, 15, 0, time.UTC),
		},
		{
			name:     "underscore token only",
			artifact: "archive_20260102030405.zip",
			want:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArtifactTimestamp(tt.artifact)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArtifactTimestampNoTimestamp(t *testing.T) {
	_, err := ParseArtifactTimestamp("backup_documents_nodigits.zip")
	assert.Error(t, err)
}

func TestResolveBaseForDifferential(t *testing.T) {
	s := newTestState(t)

	early := BackupRecord{
		ArtifactPath: "backup_docs_aaa_20260801000000.zip",
		Timestamp:    time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	later := BackupRecord{
		ArtifactPath: "backup_docs_bbb_20260810000000.zip",
		Timestamp:    time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
	}
	s.AddRecord("docs", early)
	s.AddRecord("docs", later)

	base, ok := s.ResolveBaseForDifferential("backup_docs_ccc_20260820000000.zip")
	require.True(t, ok)
	assert.Equal(t, later, base)
}

func TestResolveBaseForDifferentialSpansGroups(t *testing.T) {
	s := newTestState(t)

	docsFull := BackupRecord{
		ArtifactPath: "backup_docs_aaa_20260801000000.zip",
		Timestamp:    time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	photosFull := BackupRecord{
		ArtifactPath: "backup_photos_bbb_20260815000000.zip",
		Timestamp:    time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
	}
	s.AddRecord("docs", docsFull)
	s.AddRecord("photos", photosFull)

	// The most recent full overall wins, even from another group.
	base, ok := s.ResolveBaseForDifferential("backup_docs_ccc_20260820000000.zip")
	require.True(t, ok)
	assert.Equal(t, photosFull, base)
}

func TestResolveBaseForDifferentialSkipsDifferentials(t *testing.T) {
	s := newTestState(t)

	full := BackupRecord{
		ArtifactPath: "backup_docs_aaa_20260801000000.zip",
		Timestamp:    time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	diff := BackupRecord{
		ArtifactPath: "backup_docs_bbb_20260810000000.zip",
		Timestamp:    time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		Differential: true,
	}
	s.AddRecord("docs", full)
	s.AddRecord("docs", diff)

	base, ok := s.ResolveBaseForDifferential("backup_docs_ccc_20260820000000.zip")
	require.True(t, ok)
	assert.Equal(t, full, base)
}

func TestResolveBaseForDifferentialIgnoresNewerRecords(t *testing.T) {
	s := newTestState(t)

	s.AddRecord("docs", BackupRecord{
		ArtifactPath: "backup_docs_aaa_20260825000000.zip",
		Timestamp:    time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
	})

	// The only full postdates the differential, so no base exists.
	_, ok := s.ResolveBaseForDifferential("backup_docs_ccc_20260820000000.zip")
	assert.False(t, ok)
}

func TestResolveBaseForDifferentialUnparseableName(t *testing.T) {
	s := newTestState(t)
	s.AddRecord("docs", BackupRecord{
		ArtifactPath: "backup_docs_aaa_20260801000000.zip",
		Timestamp:    time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})

	_, ok := s.ResolveBaseForDifferential("not-an-artifact.zip")
	assert.False(t, ok)
}
