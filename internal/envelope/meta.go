package envelope

import (
	"encoding/json"

	"github.com/cockroachdb/errors"

	cferrors "github.com/thoreinstein/coffer/internal/errors"
	"github.com/thoreinstein/coffer/pkg/fileutil"
)

const (
	// EncSuffix marks encrypted artifacts.
	EncSuffix = ".enc"

	// MetaSuffix marks the envelope sidecar, stored beside the artifact.
	MetaSuffix = ".enc.meta"

	// FormatVersion is the current sidecar format version.
	FormatVersion = 1

	// algorithm identifies the content cipher in the sidecar.
	algorithm = "AES-256-GCM"
)

// Metadata is the envelope sidecar: everything needed to decrypt an
// artifact given the right password. Binary fields serialize as base64.
type Metadata struct {
	Version    int    `json:"version"`
	Algorithm  string `json:"algorithm"`
	Salt       []byte `json:"salt"`
	Iterations int    `json:"iterations"`
	BaseIV     []byte `json:"base_iv"`
	WrappedDEK []byte `json:"wrapped_dek"`
	Verifier   []byte `json:"verifier"`
}

// MetaPath returns the sidecar path for an encrypted artifact path.
// The artifact's .enc suffix, if present, is not duplicated.
func MetaPath(artifactPath string) string {
	if len(artifactPath) >= len(EncSuffix) && artifactPath[len(artifactPath)-len(EncSuffix):] == EncSuffix {
		return artifactPath[:len(artifactPath)-len(EncSuffix)] + MetaSuffix
	}
	return artifactPath + MetaSuffix
}

// WriteMetadata writes the sidecar atomically with private permissions.
func WriteMetadata(path string, meta Metadata) error {
	if err := fileutil.AtomicWriteJSONWithPerm(path, meta, 0600); err != nil {
		return cferrors.WrapIO(err, "writing envelope metadata")
	}
	return nil
}

// ReadMetadata reads and validates a sidecar document.
func ReadMetadata(path string) (Metadata, error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return Metadata{}, cferrors.WrapIO(err, "reading envelope metadata")
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, errors.Wrap(err, "parsing envelope metadata")
	}

	if meta.Version != FormatVersion {
		return Metadata{}, errors.Newf("unsupported envelope format version %d", meta.Version)
	}
	if meta.Algorithm != algorithm {
		return Metadata{}, errors.Newf("unsupported envelope algorithm %q", meta.Algorithm)
	}
	if len(meta.BaseIV) != ivSize {
		return Metadata{}, errors.Newf("envelope base IV has %d bytes, want %d", len(meta.BaseIV), ivSize)
	}
	return meta, nil
}
