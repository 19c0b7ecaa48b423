// Package engine runs the backup and restore pipelines: candidate
// collection, change-set selection, archiving, optional envelope
// encryption, durable upload, history bookkeeping, and retention.
//
// The pipeline's ordering guarantee is that a backup record is appended
// to history only after its artifact (and any envelope sidecar) has been
// durably uploaded, and file metadata plus state persistence happen only
// after the record append. A crash mid-run can leave an uploaded
// artifact without a record (a later run re-uploads) but never a record
// without its artifact.
//
// A storage backend is acquired once per invocation, owned exclusively
// by that call, and closed on every exit path. Local staging byproducts
// (plaintext archive, ciphertext, sidecar, downloads) are removed
// best-effort whether the run succeeds or fails.
package engine
