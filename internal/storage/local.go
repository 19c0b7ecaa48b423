package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	cferrors "github.com/thoreinstein/coffer/internal/errors"
	"github.com/thoreinstein/coffer/internal/paths"
)

// Local stores artifacts under a root directory on the local filesystem.
// Every remote path is confined to the root: absolute paths and paths
// that resolve outside the root are rejected before any write happens.
type Local struct {
	root string
}

// NewLocal creates a local backend rooted at root, creating the
// directory if needed.
func NewLocal(root string) (*Local, error) {
	if root == "" {
		return nil, cferrors.Configurationf("local storage root not configured")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, cferrors.WrapIO(err, "resolving storage root")
	}
	if err := paths.EnsureDir(abs, paths.DefaultDirPerm); err != nil {
		return nil, cferrors.WrapIO(err, "creating storage root")
	}
	return &Local{root: abs}, nil
}

// resolve maps a remote path into the root, enforcing confinement.
func (l *Local) resolve(remotePath string) (string, error) {
	if remotePath == "" {
		return "", cferrors.Validationf("empty remote path")
	}
	if filepath.IsAbs(remotePath) || strings.HasPrefix(remotePath, "/") {
		return "", cferrors.Validationf("remote path %q is absolute", remotePath)
	}

	dest := filepath.Join(l.root, filepath.FromSlash(remotePath))
	rel, err := filepath.Rel(l.root, dest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", cferrors.Validationf("remote path %q escapes the storage root", remotePath)
	}
	return dest, nil
}

func (l *Local) Upload(_ context.Context, localPath, remotePath string) error {
	dest, err := l.resolve(remotePath)
	if err != nil {
		return err
	}
	if err := paths.EnsureDir(filepath.Dir(dest), paths.DefaultDirPerm); err != nil {
		return cferrors.WrapIO(err, "creating artifact directory")
	}
	return copyFile(localPath, dest)
}

func (l *Local) Download(_ context.Context, remotePath, localPath string) error {
	src, err := l.resolve(remotePath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return cferrors.NotFoundf("artifact %q not found", remotePath)
		}
		return cferrors.WrapIO(err, "checking artifact")
	}
	return copyFile(src, localPath)
}

func (l *Local) Exists(_ context.Context, remotePath string) (bool, error) {
	path, err := l.resolve(remotePath)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, cferrors.WrapIO(err, "checking artifact")
	}
	return true, nil
}

func (l *Local) Delete(_ context.Context, remotePath string) error {
	path, err := l.resolve(remotePath)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return cferrors.WrapIO(err, "deleting artifact")
	}
	return nil
}

func (l *Local) Close() error {
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return cferrors.WrapIO(err, "opening source file")
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return cferrors.WrapIO(err, "creating destination file")
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return cferrors.WrapIO(err, "copying file")
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return cferrors.WrapIO(err, "closing destination file")
	}
	return nil
}
