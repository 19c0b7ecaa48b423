// Package selection discovers the candidate files for a backup run.
//
// A [Collector] walks the requested paths iteratively (an explicit stack
// of directories, no recursion) and filters every discovered file through
// an ordered pipeline of exclusion rules: configured excluded roots,
// hidden entries, a per-file size cap, and case-insensitive glob
// patterns. The first matching rule excludes the entry.
//
// Evaluation is defensive: an entry that cannot be examined (stat or
// read-dir failure) is excluded with a warning rather than aborting the
// whole collection.
package selection
