// Package state maintains coffer's durable record of what has been
// backed up: per-file metadata (size, mod time, content hash) and
// per-group backup history, persisted as a single JSON document.
//
// # Concurrency
//
// A [State] is safe for concurrent use. One mutex guards both maps so
// cross-map invariants (a group entry is deleted when its record list
// empties) are atomic. The lock is held only for map manipulation, never
// across disk I/O: [State.Save] snapshots under the lock and writes the
// document outside it, atomically via temp file + rename.
//
// # Durability Policy
//
// A missing or corrupt state document degrades to an empty state with a
// warning; it never fails startup. The worst consequence is a redundant
// full backup, which is the fail-open bias of the whole engine: a missed
// change is worse than a redundant copy.
//
// # Change Detection
//
// [State.SelectChanged] implements the three backup kinds. Full takes
// everything. Incremental compares size, mod time, and content hash
// against the recorded metadata. Differential compares mod times against
// the most recent non-differential backup time across all groups.
package state
