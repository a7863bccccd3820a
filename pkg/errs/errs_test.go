package errs

import (
	"errors"
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"
)

func TestCode_String(t *testing.T) {
	tests := []struct {
		code     Code
		expected string
	}{
		{CodeLaunch, "LAUNCH"},
		{CodeTimeout, "TIMEOUT"},
		{CodeExit, "EXIT"},
		{CodeParse, "PARSE"},
		{CodeClipboardUnavailable, "CLIPBOARD_UNAVAILABLE"},
		{CodeUnsupported, "UNSUPPORTED"},
		{CodeUnknown, "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.code.String(); got != tt.expected {
				t.Errorf("Code.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	err := New("xdotool", CodeExit, errors.New("exit status 1")).
		With("stderr", "no window").
		With("args", "getactivewindow")

	msg := err.Error()
	for _, want := range []string{"exit status 1", "op=xdotool", "code=EXIT", "args=getactivewindow", "stderr=no window"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, should contain %q", msg, want)
		}
	}
	if strings.Index(msg, "args=") > strings.Index(msg, "stderr=") {
		t.Errorf("context keys not sorted: %q", msg)
	}

	bare := &Error{Code: CodeTimeout}
	if got := bare.Error(); !strings.HasPrefix(got, "timeout") {
		t.Errorf("bare Error() = %q", got)
	}
}

func TestError_Is(t *testing.T) {
	err := New("pbpaste", CodeTimeout, errors.New("deadline"))

	if !errors.Is(err, Timeout) {
		t.Error("expected Timeout sentinel to match")
	}
	if errors.Is(err, Launch) {
		t.Error("expected Launch sentinel not to match")
	}

	wrapped := pkgerrors.Wrap(err, "probe failed")
	if !errors.Is(wrapped, Timeout) {
		t.Error("expected match through pkg/errors wrapping")
	}
	if !IsTimeout(wrapped) {
		t.Error("IsTimeout() = false through wrapping")
	}

	cause := errors.New("root cause")
	if !errors.Is(New("op", CodeParse, cause), cause) {
		t.Error("expected wrapped cause to match")
	}
}

func TestClassifiers(t *testing.T) {
	tests := []struct {
		name string
		err  error
		fn   func(error) bool
		want bool
	}{
		{"launch", New("x", CodeLaunch, nil), IsLaunch, true},
		{"exit", New("x", CodeExit, nil), IsExit, true},
		{"parse", New("x", CodeParse, nil), IsParse, true},
		{"clipboard", New("x", CodeClipboardUnavailable, nil), IsClipboardUnavailable, true},
		{"unsupported", New("x", CodeUnsupported, nil), IsUnsupported, true},
		{"plain error", errors.New("plain"), IsTimeout, false},
		{"nil", nil, IsLaunch, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.err); got != tt.want {
				t.Errorf("classifier = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithDoesNotMutate(t *testing.T) {
	base := New("op", CodeExit, nil)
	_ = base.With("k", "v")
	if len(base.Context) != 0 {
		t.Errorf("With() mutated receiver: %v", base.Context)
	}
}
