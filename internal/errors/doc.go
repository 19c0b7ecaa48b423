// Package errors provides error handling conventions for the coffer CLI.
//
// This package defines the failure taxonomy used throughout the backup
// engine, an ExitError type for CLI exit code handling, and exit code
// constants following standard Unix conventions.
//
// # Failure Taxonomy
//
// Every error crossing an orchestration boundary is marked with one of
// five sentinel kinds, checkable with the matching Is predicate:
//
//   - ErrValidation / [IsValidation]: bad arguments, missing backup source
//   - ErrNotFound / [IsNotFound]: missing artifact or base backup
//   - ErrIO / [IsIO]: disk or network failure
//   - ErrAuthentication / [IsAuthentication]: wrong password or tampered ciphertext
//   - ErrConfiguration / [IsConfiguration]: unknown storage type, missing credentials
//
// Marking uses cockroachdb/errors Mark so the full cause chain and stack
// trace are preserved alongside the classification. Marks live outside
// the Unwrap chain, so always classify through the predicates rather
// than the standard library's errors.Is:
//
//	if cofferrors.IsAuthentication(err) {
//	    provider.ClearPassword()
//	}
//
// # Exit Codes
//
// The package defines standard exit codes for CLI applications:
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, configuration, etc.)
//   - ExitSystem (2): System-related error (I/O, network, permissions, etc.)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional suggestion
// for CLI applications. It supports error unwrapping via [errors.Unwrap] and
// [errors.As]:
//
//	err := cofferrors.NewUserError(cofferrors.ErrConfiguration, "Run: coffer init")
//	var exitErr *cofferrors.ExitError
//	if errors.As(err, &exitErr) {
//	    if exitErr.Suggestion != "" {
//	        fmt.Println("Suggestion:", exitErr.Suggestion)
//	    }
//	    os.Exit(exitErr.Code)
//	}
package errors
