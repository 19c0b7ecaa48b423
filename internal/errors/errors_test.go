package errors

import (
	goerrors "errors"
	"fmt"
	"testing"
)

func TestExitError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ExitError
		want string
	}{
		{
			name: "with underlying error",
			err:  NewExitError(ErrNotFound, ExitUser),
			want: "not found",
		},
		{
			name: "with wrapped error",
			err:  NewExitError(fmt.Errorf("loading config: %w", ErrConfiguration), ExitUser),
			want: "loading config: configuration error",
		},
		{
			name: "nil underlying error",
			err:  NewExitError(nil, ExitUser),
			want: "exit code 1",
		},
		{
			name: "success code with error",
			err:  NewExitError(goerrors.New("unexpected"), ExitSuccess),
			want: "unexpected",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ExitError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	tests := []struct {
		name       string
		err        *ExitError
		wantTarget error
		wantIs     bool
	}{
		{
			name:       "unwrap to sentinel error",
			err:        NewExitError(ErrNotFound, ExitUser),
			wantTarget: ErrNotFound,
			wantIs:     true,
		},
		{
			name:       "unwrap through wrapped error",
			err:        NewExitError(fmt.Errorf("restoring artifact: %w", ErrAuthentication), ExitUser),
			wantTarget: ErrAuthentication,
			wantIs:     true,
		},
		{
			name:       "no match for different sentinel",
			err:        NewExitError(ErrNotFound, ExitUser),
			wantTarget: ErrConfiguration,
			wantIs:     false,
		},
		{
			name:       "nil underlying error",
			err:        NewExitError(nil, ExitUser),
			wantTarget: ErrNotFound,
			wantIs:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := goerrors.Is(tt.err, tt.wantTarget); got != tt.wantIs {
				t.Errorf("errors.Is() = %v, want %v", got, tt.wantIs)
			}
		})
	}
}

func TestExitError_As(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantAs   bool
	}{
		{
			name:     "direct ExitError",
			err:      NewExitError(ErrNotFound, ExitUser),
			wantCode: ExitUser,
			wantAs:   true,
		},
		{
			name:     "wrapped ExitError",
			err:      fmt.Errorf("command failed: %w", NewExitError(ErrConfiguration, ExitUser)),
			wantCode: ExitUser,
			wantAs:   true,
		},
		{
			name:     "ExitSystem code",
			err:      NewExitError(ErrIO, ExitSystem),
			wantCode: ExitSystem,
			wantAs:   true,
		},
		{
			name:     "non-ExitError",
			err:      ErrNotFound,
			wantCode: 0,
			wantAs:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var exitErr *ExitError
			gotAs := goerrors.As(tt.err, &exitErr)
			if gotAs != tt.wantAs {
				t.Errorf("errors.As() = %v, want %v", gotAs, tt.wantAs)
			}
			if gotAs && exitErr.Code != tt.wantCode {
				t.Errorf("ExitError.Code = %d, want %d", exitErr.Code, tt.wantCode)
			}
		})
	}
}

func TestTaxonomyMarkers(t *testing.T) {
	tests := []struct {
		name string
		err  error
		pred func(error) bool
	}{
		{"Validationf", Validationf("source %s missing", "/tmp/x"), IsValidation},
		{"NotFoundf", NotFoundf("artifact %s", "backup_a.zip"), IsNotFound},
		{"Configurationf", Configurationf("unknown storage type %q", "ftp"), IsConfiguration},
		{"WrapIO", WrapIO(goerrors.New("disk full"), "writing archive"), IsIO},
		{"WrapIOf", WrapIOf(goerrors.New("timeout"), "uploading %s", "a.zip"), IsIO},
		{"WrapAuth", WrapAuth(goerrors.New("cipher: message authentication failed"), "decrypting chunk"), IsAuthentication},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.pred(tt.err) {
				t.Errorf("%s not classified as its own kind: %v", tt.name, tt.err)
			}
		})
	}
}

func TestTaxonomyMarkersExclusive(t *testing.T) {
	// An error marked IO must not also classify as authentication;
	// the restore path branches on exactly this distinction.
	err := WrapIO(goerrors.New("read failed"), "downloading sidecar")
	if IsAuthentication(err) {
		t.Error("IO error classified as authentication")
	}

	authErr := WrapAuth(goerrors.New("tag mismatch"), "verifying chunk 3")
	if IsIO(authErr) {
		t.Error("authentication error classified as IO")
	}
}

func TestMarkInvisibleToStdlibIs(t *testing.T) {
	// Marks ride outside the Unwrap chain: the predicates must be the
	// only way callers classify, or classification silently breaks.
	err := Validationf("bad kind %q", "weekly")
	if goerrors.Is(err, ErrValidation) {
		t.Skip("marks became stdlib-visible; predicates are now optional")
	}
	if !IsValidation(err) {
		t.Error("IsValidation() = false for a Validationf error")
	}
}

func TestWrapNil(t *testing.T) {
	if WrapIO(nil, "whatever") != nil {
		t.Error("WrapIO(nil) should be nil")
	}
	if WrapIOf(nil, "whatever %d", 1) != nil {
		t.Error("WrapIOf(nil) should be nil")
	}
	if WrapAuth(nil, "whatever") != nil {
		t.Error("WrapAuth(nil) should be nil")
	}
}

func TestExitCodeConstants(t *testing.T) {
	tests := []struct {
		name string
		code int
		want int
	}{
		{"ExitSuccess", ExitSuccess, 0},
		{"ExitUser", ExitUser, 1},
		{"ExitSystem", ExitSystem, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.code, tt.want)
			}
		})
	}
}

func TestNewConstructors(t *testing.T) {
	t.Run("NewUserError", func(t *testing.T) {
		err := goerrors.New("user error")
		e := NewUserError(err, "check input")
		if e.Code != ExitUser {
			t.Errorf("Code = %d, want %d", e.Code, ExitUser)
		}
		if e.Suggestion != "check input" {
			t.Errorf("Suggestion = %q, want 'check input'", e.Suggestion)
		}
	})

	t.Run("NewSystemError", func(t *testing.T) {
		err := goerrors.New("system error")
		e := NewSystemError(err, "check logs")
		if e.Code != ExitSystem {
			t.Errorf("Code = %d, want %d", e.Code, ExitSystem)
		}
		if e.Suggestion != "check logs" {
			t.Errorf("Suggestion = %q, want 'check logs'", e.Suggestion)
		}
	})
}
