// Package envelope implements coffer's artifact encryption: a per-artifact
// random data encryption key (DEK) wrapped under a password-derived key
// encryption key (KEK), with the artifact body encrypted in independent
// AES-256-GCM chunks.
//
// # Key Hierarchy
//
// The KEK is PBKDF2-HMAC-SHA256(password, salt, iterations), 32 bytes.
// Salt and iteration count come from configuration and stay constant for
// the installation's lifetime. Each encrypted artifact gets a fresh random
// 32-byte DEK, wrapped under the KEK as [12-byte IV][16-byte tag][ciphertext]
// and stored only in the sidecar envelope, never in the clear.
//
// # Stream Format
//
// The ciphertext stream is
//
//	[12-byte base IV][repeat: 4-byte LE plaintext len][16-byte tag][ciphertext]
//
// with the plaintext processed in 1 MiB chunks. Chunk i's IV is the base
// IV with i added (big-endian, wrap-around) to the integer formed by its
// final 8 bytes; the first 4 bytes are untouched. Each chunk authenticates
// independently, so decryption never buffers the whole artifact and a
// tampered chunk fails before any of its bytes are released.
//
// # Sidecar
//
// Envelope metadata travels beside the ciphertext as <artifact>.enc.meta:
// salt, base IV, wrapped DEK, a password verifier, algorithm identifier,
// format version, and iteration count.
//
// Authentication failures are marked with the authentication error kind,
// distinct from I/O failures, so callers can invalidate cached passwords
// and re-prompt.
package envelope
