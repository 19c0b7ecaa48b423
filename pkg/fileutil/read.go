package fileutil

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

// MaxMetaFileSize is the maximum size accepted for metadata documents
// (envelope sidecars, manifests). Real sidecars are under a kilobyte;
// the limit prevents memory exhaustion from a corrupted or hostile file.
const MaxMetaFileSize = 1024 * 1024 // 1MB

// ErrFileTooLarge indicates that a file exceeded MaxMetaFileSize.
var ErrFileTooLarge = errors.Newf("file exceeds maximum size of %d bytes", MaxMetaFileSize)

// ReadFileWithLimit reads a file up to MaxMetaFileSize.
// It returns an error if the file is larger than the limit.
func ReadFileWithLimit(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	// Get file info to fail fast if size is already too large
	info, err := f.Stat()
	if err == nil {
		if info.Size() > MaxMetaFileSize {
			return nil, ErrFileTooLarge
		}
	}

	// Read with limit
	r := io.LimitReader(f, MaxMetaFileSize+1)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}

	if len(data) > MaxMetaFileSize {
		return nil, ErrFileTooLarge
	}

	return data, nil
}
