package envelope

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"

	cferrors "github.com/thoreinstein/coffer/internal/errors"
)

// ChunkSize is the plaintext chunk length for content encryption.
const ChunkSize = 1 << 20

// EncryptStream encrypts src into dst under dek using the chunked stream
// format, returning the randomly generated base IV. Empty input produces
// a stream containing only the base IV.
func EncryptStream(dst io.Writer, src io.Reader, dek []byte) ([]byte, error) {
	gcm, err := newGCM(dek)
	if err != nil {
		return nil, err
	}

	baseIV := make([]byte, ivSize)
	if _, err := rand.Read(baseIV); err != nil {
		return nil, errors.Wrap(err, "generating base IV")
	}
	if _, err := dst.Write(baseIV); err != nil {
		return nil, cferrors.WrapIO(err, "writing base IV")
	}

	buf := make([]byte, ChunkSize)
	var header [4]byte
	for index := uint64(0); ; index++ {
		n, err := io.ReadFull(src, buf)
		if n == 0 {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, cferrors.WrapIO(err, "reading plaintext")
		}
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return nil, cferrors.WrapIO(err, "reading plaintext")
		}

		iv := chunkIV(baseIV, index)
		sealed := gcm.Seal(nil, iv, buf[:n], nil)
		ct := sealed[:n]
		tag := sealed[n:]

		binary.LittleEndian.PutUint32(header[:], uint32(n))
		if _, err := dst.Write(header[:]); err != nil {
			return nil, cferrors.WrapIO(err, "writing chunk header")
		}
		if _, err := dst.Write(tag); err != nil {
			return nil, cferrors.WrapIO(err, "writing chunk tag")
		}
		if _, err := dst.Write(ct); err != nil {
			return nil, cferrors.WrapIO(err, "writing chunk ciphertext")
		}

		if n < ChunkSize {
			break
		}
	}
	return baseIV, nil
}

// DecryptStream decrypts a chunked stream from src into dst under dek.
// Every chunk is authenticated before any of its plaintext is written; a
// failed tag surfaces as an authentication error with nothing from that
// chunk released.
func DecryptStream(dst io.Writer, src io.Reader, dek []byte) error {
	gcm, err := newGCM(dek)
	if err != nil {
		return err
	}

	baseIV := make([]byte, ivSize)
	if _, err := io.ReadFull(src, baseIV); err != nil {
		return cferrors.WrapIO(err, "reading base IV")
	}

	var header [4]byte
	tag := make([]byte, tagSize)
	ct := make([]byte, ChunkSize)
	sealed := make([]byte, 0, ChunkSize+tagSize)

	for index := uint64(0); ; index++ {
		if _, err := io.ReadFull(src, header[:]); err != nil {
			if err == io.EOF {
				return nil
			}
			return cferrors.WrapIO(err, "reading chunk header")
		}

		n := binary.LittleEndian.Uint32(header[:])
		if n == 0 || n > ChunkSize {
			return cferrors.WrapAuth(errors.Newf("invalid chunk length %d", n), "decrypting stream")
		}

		if _, err := io.ReadFull(src, tag); err != nil {
			return cferrors.WrapIO(err, "reading chunk tag")
		}
		if _, err := io.ReadFull(src, ct[:n]); err != nil {
			return cferrors.WrapIO(err, "reading chunk ciphertext")
		}

		sealed = append(sealed[:0], ct[:n]...)
		sealed = append(sealed, tag...)

		iv := chunkIV(baseIV, index)
		plaintext, err := gcm.Open(nil, iv, sealed, nil)
		if err != nil {
			return cferrors.WrapAuth(err, "decrypting chunk")
		}

		if _, err := dst.Write(plaintext); err != nil {
			return cferrors.WrapIO(err, "writing plaintext")
		}
	}
}

// chunkIV derives the IV for chunk index: the base IV with index added,
// big-endian with wrap-around, to the integer formed by the final 8
// bytes. The first 4 bytes are untouched.
func chunkIV(baseIV []byte, index uint64) []byte {
	iv := make([]byte, ivSize)
	copy(iv, baseIV)
	counter := binary.BigEndian.Uint64(iv[4:])
	binary.BigEndian.PutUint64(iv[4:], counter+index)
	return iv
}
