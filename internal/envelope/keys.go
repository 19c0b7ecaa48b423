package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/pbkdf2"

	cferrors "github.com/thoreinstein/coffer/internal/errors"
)

const (
	// KeySize is the AES-256 key length for both the KEK and the DEK.
	KeySize = 32

	// ivSize is the GCM nonce length.
	ivSize = 12

	// tagSize is the GCM authentication tag length.
	tagSize = 16
)

// canary is the fixed plaintext of the password verifier token. Verifying
// a password means decrypting the token and comparing against this value,
// so a wrong password is detected before any DEK is touched.
const canary = "coffer-password-verifier-v1"

// DeriveKEK derives the key encryption key from a password with
// PBKDF2-HMAC-SHA256.
func DeriveKEK(password string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, KeySize, sha256.New)
}

// NewDEK generates a fresh random data encryption key.
func NewDEK() ([]byte, error) {
	dek := make([]byte, KeySize)
	if _, err := rand.Read(dek); err != nil {
		return nil, errors.Wrap(err, "generating data encryption key")
	}
	return dek, nil
}

// WrapDEK encrypts the DEK under the KEK with a fresh random IV.
// The blob layout is [12-byte IV][16-byte tag][ciphertext].
func WrapDEK(kek, dek []byte) ([]byte, error) {
	gcm, err := newGCM(kek)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, errors.Wrap(err, "generating wrap IV")
	}

	sealed := gcm.Seal(nil, iv, dek, nil)
	return assembleBlob(iv, sealed), nil
}

// UnwrapDEK decrypts a wrapped DEK blob. A tag verification failure is an
// authentication error, signalling a wrong password or a tampered blob.
func UnwrapDEK(kek, blob []byte) ([]byte, error) {
	return openBlob(kek, blob, "unwrapping data encryption key")
}

// NewVerifier produces the password verifier token for the given
// password, salt, and iteration count: the canary encrypted under the
// derived KEK, in wrapped-blob layout.
func NewVerifier(password string, salt []byte, iterations int) ([]byte, error) {
	kek := DeriveKEK(password, salt, iterations)

	gcm, err := newGCM(kek)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, errors.Wrap(err, "generating verifier IV")
	}

	sealed := gcm.Seal(nil, iv, []byte(canary), nil)
	return assembleBlob(iv, sealed), nil
}

// VerifyPassword checks a candidate password against a verifier token.
// A wrong password yields an authentication error.
func VerifyPassword(password string, salt []byte, iterations int, token []byte) error {
	kek := DeriveKEK(password, salt, iterations)
	plaintext, err := openBlob(kek, token, "verifying password")
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(plaintext, []byte(canary)) != 1 {
		return cferrors.WrapAuth(errors.New("verifier mismatch"), "verifying password")
	}
	return nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "creating cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "creating GCM")
	}
	return gcm, nil
}

// assembleBlob reorders a gcm.Seal output (ciphertext ‖ tag) into the
// stored layout IV ‖ tag ‖ ciphertext.
func assembleBlob(iv, sealed []byte) []byte {
	ct := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	blob := make([]byte, 0, len(iv)+len(sealed))
	blob = append(blob, iv...)
	blob = append(blob, tag...)
	blob = append(blob, ct...)
	return blob
}

// openBlob decrypts an IV ‖ tag ‖ ciphertext blob under key. Truncated
// blobs and failed tags both surface as authentication errors.
func openBlob(key, blob []byte, msg string) ([]byte, error) {
	if len(blob) < ivSize+tagSize {
		return nil, cferrors.WrapAuth(errors.Newf("blob too short: %d bytes", len(blob)), msg)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	iv := blob[:ivSize]
	tag := blob[ivSize : ivSize+tagSize]
	ct := blob[ivSize+tagSize:]

	sealed := make([]byte, 0, len(ct)+tagSize)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, cferrors.WrapAuth(err, msg)
	}
	return plaintext, nil
}
