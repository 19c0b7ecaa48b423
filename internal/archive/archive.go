// Package archive builds and extracts the zip containers that hold a
// backup's change set. Entry names are the file paths relative to the
// backup source directory, with separators normalized to forward slashes.
package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	cferrors "github.com/thoreinstein/coffer/internal/errors"
)

// Create writes a zip archive at archivePath containing the given files.
// Each entry is stored under its path relative to sourceDir. Files
// outside sourceDir are rejected. A partial archive is removed on any
// failure.
func Create(archivePath, sourceDir string, files []string) (err error) {
	out, err := os.OpenFile(archivePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return cferrors.WrapIO(err, "creating archive")
	}
	defer func() {
		if err != nil {
			out.Close()
			os.Remove(archivePath)
		}
	}()

	w := zip.NewWriter(out)
	for _, file := range files {
		if err = addFile(w, sourceDir, file); err != nil {
			return err
		}
	}
	if err = w.Close(); err != nil {
		return cferrors.WrapIO(err, "finalizing archive")
	}
	if err = out.Close(); err != nil {
		return cferrors.WrapIO(err, "closing archive")
	}
	return nil
}

func addFile(w *zip.Writer, sourceDir, file string) error {
	rel, err := filepath.Rel(sourceDir, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return errors.Newf("file %q is outside source directory %q", file, sourceDir)
	}
	name := filepath.ToSlash(rel)

	info, err := os.Stat(file)
	if err != nil {
		return cferrors.WrapIOf(err, "reading %s", file)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return errors.Wrapf(err, "building header for %s", file)
	}
	header.Name = name
	header.Method = zip.Deflate

	entry, err := w.CreateHeader(header)
	if err != nil {
		return cferrors.WrapIOf(err, "adding %s to archive", name)
	}

	src, err := os.Open(file)
	if err != nil {
		return cferrors.WrapIOf(err, "opening %s", file)
	}
	defer src.Close()

	if _, err := io.Copy(entry, src); err != nil {
		return cferrors.WrapIOf(err, "compressing %s", name)
	}
	return nil
}

// Extract unpacks a zip archive into targetDir, creating directories as
// needed. Entry names are validated so no entry can escape targetDir.
// Existing files are overwritten, which is how a differential payload
// lands on top of its restored base.
func Extract(archivePath, targetDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return cferrors.WrapIO(err, "opening archive")
	}
	defer r.Close()

	for _, entry := range r.File {
		if err := extractEntry(entry, targetDir); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(entry *zip.File, targetDir string) error {
	dest, err := confinedPath(targetDir, entry.Name)
	if err != nil {
		return err
	}

	if entry.FileInfo().IsDir() {
		if err := os.MkdirAll(dest, 0755); err != nil {
			return cferrors.WrapIOf(err, "creating directory %s", entry.Name)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return cferrors.WrapIOf(err, "creating parent directory for %s", entry.Name)
	}

	src, err := entry.Open()
	if err != nil {
		return cferrors.WrapIOf(err, "opening archive entry %s", entry.Name)
	}
	defer src.Close()

	mode := entry.FileInfo().Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return cferrors.WrapIOf(err, "creating %s", entry.Name)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return cferrors.WrapIOf(err, "extracting %s", entry.Name)
	}
	if err := out.Close(); err != nil {
		return cferrors.WrapIOf(err, "closing %s", entry.Name)
	}
	return nil
}

// confinedPath resolves an archive entry name inside targetDir,
// rejecting absolute names and any name that escapes the target.
func confinedPath(targetDir, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", errors.Newf("archive entry %q has an absolute path", name)
	}
	dest := filepath.Join(targetDir, filepath.FromSlash(name))
	rel, err := filepath.Rel(targetDir, dest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Newf("archive entry %q escapes the target directory", name)
	}
	return dest, nil
}
