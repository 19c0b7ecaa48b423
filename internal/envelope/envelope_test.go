package envelope

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cferrors "github.com/thoreinstein/coffer/internal/errors"
)

var (
	testSalt       = []byte("0123456789abcdef")
	testIterations = 1000 // low for test speed, production default is higher
)

func testDEK(t *testing.T) []byte {
	t.Helper()
	dek, err := NewDEK()
	require.NoError(t, err)
	require.Len(t, dek, KeySize)
	return dek
}

func TestDeriveKEKDeterministic(t *testing.T) {
	a := DeriveKEK("password", testSalt, testIterations)
	b := DeriveKEK("password", testSalt, testIterations)
	assert.Equal(t, a, b)
	assert.Len(t, a, KeySize)

	assert.NotEqual(t, a, DeriveKEK("other", testSalt, testIterations))
	assert.NotEqual(t, a, DeriveKEK("password", []byte("different-salt!!"), testIterations))
	assert.NotEqual(t, a, DeriveKEK("password", testSalt, testIterations+1))
}

func TestWrapUnwrapDEK(t *testing.T) {
	kek := DeriveKEK("password", testSalt, testIterations)
	dek := testDEK(t)

	blob, err := WrapDEK(kek, dek)
	require.NoError(t, err)

	// Layout: 12-byte IV, 16-byte tag, 32-byte ciphertext.
	assert.Len(t, blob, ivSize+tagSize+KeySize)

	got, err := UnwrapDEK(kek, blob)
	require.NoError(t, err)
	assert.Equal(t, dek, got)
}

func TestUnwrapDEKWrongKey(t *testing.T) {
	kek := DeriveKEK("password", testSalt, testIterations)
	dek := testDEK(t)

	blob, err := WrapDEK(kek, dek)
	require.NoError(t, err)

	wrong := DeriveKEK("wrong", testSalt, testIterations)
	_, err = UnwrapDEK(wrong, blob)
	assert.True(t, cferrors.IsAuthentication(err), "err = %v", err)
}

func TestUnwrapDEKTamperedBlob(t *testing.T) {
	kek := DeriveKEK("password", testSalt, testIterations)
	blob, err := WrapDEK(kek, testDEK(t))
	require.NoError(t, err)

	blob[len(blob)-1] ^= 0x01
	_, err = UnwrapDEK(kek, blob)
	assert.True(t, cferrors.IsAuthentication(err), "err = %v", err)
}

func TestUnwrapDEKTruncatedBlob(t *testing.T) {
	kek := DeriveKEK("password", testSalt, testIterations)
	_, err := UnwrapDEK(kek, []byte("short"))
	assert.True(t, cferrors.IsAuthentication(err), "err = %v", err)
}

func TestVerifyPassword(t *testing.T) {
	token, err := NewVerifier("password", testSalt, testIterations)
	require.NoError(t, err)

	assert.NoError(t, VerifyPassword("password", testSalt, testIterations, token))

	err = VerifyPassword("wrong", testSalt, testIterations, token)
	assert.True(t, cferrors.IsAuthentication(err), "err = %v", err)
}

func TestChunkIVDerivation(t *testing.T) {
	base := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0, 0, 0, 0, 0, 0, 0, 0xFE}

	iv0 := chunkIV(base, 0)
	assert.Equal(t, base, iv0)

	iv1 := chunkIV(base, 1)
	assert.Equal(t, base[:4], iv1[:4])
	assert.Equal(t, uint64(0xFF), binary.BigEndian.Uint64(iv1[4:]))

	// Carry propagates through the 8-byte counter.
	iv2 := chunkIV(base, 2)
	assert.Equal(t, uint64(0x100), binary.BigEndian.Uint64(iv2[4:]))

	// Wrap-around: a counter at max rolls over to zero.
	full := []byte{1, 2, 3, 4, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	wrapped := chunkIV(full, 1)
	assert.Equal(t, full[:4], wrapped[:4])
	assert.Equal(t, uint64(0), binary.BigEndian.Uint64(wrapped[4:]))
}

func TestStreamRoundTrip(t *testing.T) {
	sizes := []int{0, 1, ChunkSize - 1, ChunkSize, ChunkSize + 1, 3*ChunkSize + 17}
	for _, size := range sizes {
		plaintext := make([]byte, size)
		_, err := rand.Read(plaintext)
		require.NoError(t, err)

		dek := testDEK(t)

		var ciphertext bytes.Buffer
		baseIV, err := EncryptStream(&ciphertext, bytes.NewReader(plaintext), dek)
		require.NoError(t, err, "size %d", size)
		assert.Len(t, baseIV, ivSize)

		// Stream prefix is the base IV.
		assert.Equal(t, baseIV, ciphertext.Bytes()[:ivSize])

		var decrypted bytes.Buffer
		require.NoError(t, DecryptStream(&decrypted, bytes.NewReader(ciphertext.Bytes()), dek), "size %d", size)
		assert.True(t, bytes.Equal(plaintext, decrypted.Bytes()), "size %d", size)
	}
}

func TestStreamFraming(t *testing.T) {
	plaintext := make([]byte, ChunkSize+100)
	dek := testDEK(t)

	var ciphertext bytes.Buffer
	_, err := EncryptStream(&ciphertext, bytes.NewReader(plaintext), dek)
	require.NoError(t, err)

	// [base IV][len][tag][ct] per chunk: two chunks here.
	want := ivSize + (4 + tagSize + ChunkSize) + (4 + tagSize + 100)
	assert.Equal(t, want, ciphertext.Len())

	// First chunk header carries the full chunk length, little-endian.
	header := ciphertext.Bytes()[ivSize : ivSize+4]
	assert.Equal(t, uint32(ChunkSize), binary.LittleEndian.Uint32(header))
}

func TestDecryptStreamTamperedChunk(t *testing.T) {
	plaintext := make([]byte, 2*ChunkSize)
	_, err := rand.Read(plaintext)
	require.NoError(t, err)

	dek := testDEK(t)
	var ciphertext bytes.Buffer
	_, err = EncryptStream(&ciphertext, bytes.NewReader(plaintext), dek)
	require.NoError(t, err)

	// Flip one bit inside the second chunk's ciphertext.
	raw := ciphertext.Bytes()
	raw[len(raw)-1] ^= 0x01

	var out bytes.Buffer
	err = DecryptStream(&out, bytes.NewReader(raw), dek)
	assert.True(t, cferrors.IsAuthentication(err), "err = %v", err)

	// Nothing from the tampered chunk was released.
	assert.Equal(t, plaintext[:ChunkSize], out.Bytes())
}

func TestDecryptStreamWrongKey(t *testing.T) {
	var ciphertext bytes.Buffer
	_, err := EncryptStream(&ciphertext, bytes.NewReader([]byte("secret")), testDEK(t))
	require.NoError(t, err)

	var out bytes.Buffer
	err = DecryptStream(&out, bytes.NewReader(ciphertext.Bytes()), testDEK(t))
	assert.True(t, cferrors.IsAuthentication(err), "err = %v", err)
	assert.Zero(t, out.Len())
}

func TestDecryptStreamTruncated(t *testing.T) {
	var ciphertext bytes.Buffer
	dek := testDEK(t)
	_, err := EncryptStream(&ciphertext, bytes.NewReader([]byte("some data here")), dek)
	require.NoError(t, err)

	raw := ciphertext.Bytes()[:ciphertext.Len()-3]
	var out bytes.Buffer
	err = DecryptStream(&out, bytes.NewReader(raw), dek)
	assert.True(t, cferrors.IsIO(err), "err = %v", err)
}

func TestMetaPath(t *testing.T) {
	assert.Equal(t, "backup.zip.enc.meta", MetaPath("backup.zip.enc"))
	assert.Equal(t, "backup.zip.enc.meta", MetaPath("backup.zip"))
}

func TestEncryptDecryptFile(t *testing.T) {
	dir := t.TempDir()
	plainPath := filepath.Join(dir, "artifact.zip")
	encPath := plainPath + EncSuffix
	outPath := filepath.Join(dir, "restored.zip")

	content := make([]byte, ChunkSize+4096)
	_, err := rand.Read(content)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(plainPath, content, 0644))

	metaPath, err := EncryptFile(plainPath, encPath, "password", testSalt, testIterations)
	require.NoError(t, err)
	assert.Equal(t, MetaPath(encPath), metaPath)

	// Sidecar round-trips and carries the stream's base IV.
	meta, err := ReadMetadata(metaPath)
	require.NoError(t, err)
	assert.Equal(t, FormatVersion, meta.Version)
	assert.Equal(t, testSalt, meta.Salt)
	assert.Equal(t, testIterations, meta.Iterations)

	encrypted, err := os.ReadFile(encPath)
	require.NoError(t, err)
	assert.Equal(t, meta.BaseIV, encrypted[:ivSize])

	require.NoError(t, DecryptFile(encPath, metaPath, outPath, "password"))
	restored, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, content, restored)
}

func TestDecryptFileWrongPassword(t *testing.T) {
	dir := t.TempDir()
	plainPath := filepath.Join(dir, "artifact.zip")
	encPath := plainPath + EncSuffix
	outPath := filepath.Join(dir, "restored.zip")

	require.NoError(t, os.WriteFile(plainPath, []byte("data"), 0644))

	metaPath, err := EncryptFile(plainPath, encPath, "password", testSalt, testIterations)
	require.NoError(t, err)

	err = DecryptFile(encPath, metaPath, outPath, "wrong")
	assert.True(t, cferrors.IsAuthentication(err), "err = %v", err)
	assert.NoFileExists(t, outPath)
}
