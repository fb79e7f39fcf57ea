package server

import (
	"errors"
	"testing"
)

func TestServerError_WithErrorCodeAndUnwrap(t *testing.T) {
	if WithErrorCode(nil, "X") != nil {
		t.Errorf("expected nil when err is nil")
	}

	base := errors.New("base")
	wrapped := WithErrorCode(base, "CODE123")
	if wrapped.(*withCodeError).Code() != "CODE123" {
		t.Errorf("expected CODE123")
	}
	if !errors.Is(wrapped, base) {
		t.Errorf("unwrap mismatch")
	}
}

func TestServerError_Constructors(t *testing.T) {
	if err := NewInvalidPortError(99999); !errors.Is(err, ErrInvalidPort) || ErrorCode(err) != errorCodeInvalidPort {
		t.Errorf("unexpected invalid port error: %v (%s)", err, ErrorCode(err))
	}
	if err := NewFeaturesDisabledError(); !errors.Is(err, ErrFeaturesDisabled) || ErrorCode(err) != errorCodeFeaturesDisabled {
		t.Errorf("unexpected features disabled error: %v (%s)", err, ErrorCode(err))
	}
	if ErrorCode(ErrConfigUnavailable) != errorCodeConfigUnavailable {
		t.Errorf("expected config unavailable code")
	}
}

func TestServerError_Wrappers(t *testing.T) {
	base := errors.New("bad")
	tests := []struct {
		name string
		wrap func(error) error
		code string
		exit int
	}{
		{"invalid config", WrapInvalidConfig, errorCodeInvalidConfig, 2},
		{"storage", WrapStorageInit, errorCodeStorageInitFailed, 7},
		{"catalog", WrapCatalogLoad, errorCodeCatalogLoadFailed, 3},
		{"app init", WrapAppInit, errorCodeAppInitFailed, 7},
		{"runtime", WrapRuntime, errorCodeRuntimeFailed, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wrap(nil) != nil {
				t.Errorf("expected nil for nil input")
			}
			err := tt.wrap(base)
			if !errors.Is(err, base) {
				t.Errorf("unwrap mismatch")
			}
			if got := ErrorCode(err); got != tt.code {
				t.Errorf("ErrorCode = %s, want %s", got, tt.code)
			}
			if got := ExitCode(err); got != tt.exit {
				t.Errorf("ExitCode = %d, want %d", got, tt.exit)
			}
			if len(Suggestions(err)) == 0 {
				t.Errorf("expected suggestions for %s", tt.code)
			}
		})
	}
}

func TestServerError_ExitCodeAndDefaults(t *testing.T) {
	if ExitCode(nil) != 0 || ErrorCode(nil) != "" || Suggestions(nil) != nil {
		t.Errorf("nil error must map to zero values")
	}
	if ExitCode(NewInvalidPortError(0)) != 2 {
		t.Errorf("invalid port should exit 2")
	}
	if ErrorCode(errors.New("other")) != errorCodeRuntimeFailed {
		t.Errorf("unknown errors should map to runtime failure")
	}
}
