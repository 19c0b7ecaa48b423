package envelope

import (
	"os"

	cferrors "github.com/thoreinstein/coffer/internal/errors"
)

// EncryptFile encrypts srcPath into dstPath under a fresh DEK wrapped
// with the password-derived KEK, and writes the envelope sidecar beside
// dstPath. It returns the sidecar path. A partial output file is removed
// on any failure.
func EncryptFile(srcPath, dstPath, password string, salt []byte, iterations int) (string, error) {
	kek := DeriveKEK(password, salt, iterations)

	dek, err := NewDEK()
	if err != nil {
		return "", err
	}
	wrapped, err := WrapDEK(kek, dek)
	if err != nil {
		return "", err
	}
	verifier, err := NewVerifier(password, salt, iterations)
	if err != nil {
		return "", err
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", cferrors.WrapIO(err, "opening plaintext artifact")
	}
	defer src.Close()

	dst, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return "", cferrors.WrapIO(err, "creating encrypted artifact")
	}

	baseIV, err := EncryptStream(dst, src, dek)
	if err != nil {
		dst.Close()
		os.Remove(dstPath)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(dstPath)
		return "", cferrors.WrapIO(err, "closing encrypted artifact")
	}

	meta := Metadata{
		Version:    FormatVersion,
		Algorithm:  algorithm,
		Salt:       salt,
		Iterations: iterations,
		BaseIV:     baseIV,
		WrappedDEK: wrapped,
		Verifier:   verifier,
	}
	metaPath := MetaPath(dstPath)
	if err := WriteMetadata(metaPath, meta); err != nil {
		os.Remove(dstPath)
		return "", err
	}
	return metaPath, nil
}

// DecryptFile decrypts srcPath into dstPath using the sidecar at
// metaPath. The password is checked against the sidecar's verifier
// before the DEK is unwrapped, so a wrong password fails fast with an
// authentication error. A partial output file is removed on any failure.
func DecryptFile(srcPath, metaPath, dstPath, password string) error {
	meta, err := ReadMetadata(metaPath)
	if err != nil {
		return err
	}

	if err := VerifyPassword(password, meta.Salt, meta.Iterations, meta.Verifier); err != nil {
		return err
	}

	kek := DeriveKEK(password, meta.Salt, meta.Iterations)
	dek, err := UnwrapDEK(kek, meta.WrappedDEK)
	if err != nil {
		return err
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return cferrors.WrapIO(err, "opening encrypted artifact")
	}
	defer src.Close()

	dst, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return cferrors.WrapIO(err, "creating plaintext artifact")
	}

	if err := DecryptStream(dst, src, dek); err != nil {
		dst.Close()
		os.Remove(dstPath)
		return err
	}
	if err := dst.Close(); err != nil {
		os.Remove(dstPath)
		return cferrors.WrapIO(err, "closing plaintext artifact")
	}
	return nil
}
