// Package errs classifies the failures of desktop probes and clipboard tools.
package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code identifies a failure class.
type Code int

const (
	CodeUnknown Code = iota
	CodeLaunch
	CodeTimeout
	CodeExit
	CodeParse
	CodeClipboardUnavailable
	CodeUnsupported
)

// String returns a string representation of the code
func (c Code) String() string {
	switch c {
	case CodeLaunch:
		return "LAUNCH"
	case CodeTimeout:
		return "TIMEOUT"
	case CodeExit:
		return "EXIT"
	case CodeParse:
		return "PARSE"
	case CodeClipboardUnavailable:
		return "CLIPBOARD_UNAVAILABLE"
	case CodeUnsupported:
		return "UNSUPPORTED"
	default:
		return "UNKNOWN"
	}
}

// Sentinels for errors.Is. Matching compares codes only.
var (
	Launch               = &Error{Code: CodeLaunch}
	Timeout              = &Error{Code: CodeTimeout}
	Exit                 = &Error{Code: CodeExit}
	Parse                = &Error{Code: CodeParse}
	ClipboardUnavailable = &Error{Code: CodeClipboardUnavailable}
	Unsupported          = &Error{Code: CodeUnsupported}
)

// Error is a classified failure with the operation that produced it.
type Error struct {
	Op      string            // operation or tool name
	Code    Code              // failure class
	Err     error             // underlying error
	Context map[string]string // extra detail, printed in key order
}

// New creates a classified error.
func New(op string, code Code, err error) *Error {
	return &Error{Op: op, Code: code, Err: err}
}

// Newf creates a classified error with a formatted cause.
func Newf(op string, code Code, format string, args ...any) *Error {
	return &Error{Op: op, Code: code, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e == nil {
		return "desktop error"
	}

	var parts []string
	if e.Op != "" {
		parts = append(parts, "op="+e.Op)
	}
	if e.Code != CodeUnknown {
		parts = append(parts, "code="+e.Code.String())
	}
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, e.Context[k]))
		}
	}

	suffix := ""
	if len(parts) > 0 {
		suffix = " [" + strings.Join(parts, " ") + "]"
	}
	if e.Err != nil {
		return e.Err.Error() + suffix
	}
	return strings.ToLower(e.Code.String()) + suffix
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches another *Error by code, then falls through to the wrapped error.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	if e.Err != nil {
		return errors.Is(e.Err, target)
	}
	return false
}

// With returns a copy of e with an extra context entry.
func (e *Error) With(key, value string) *Error {
	cp := *e
	cp.Context = make(map[string]string, len(e.Context)+1)
	for k, v := range e.Context {
		cp.Context[k] = v
	}
	cp.Context[key] = value
	return &cp
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

func IsLaunch(err error) bool  { return CodeOf(err) == CodeLaunch }
func IsTimeout(err error) bool { return CodeOf(err) == CodeTimeout }
func IsExit(err error) bool    { return CodeOf(err) == CodeExit }
func IsParse(err error) bool   { return CodeOf(err) == CodeParse }

// IsClipboardUnavailable reports whether every clipboard tool failed.
func IsClipboardUnavailable(err error) bool { return CodeOf(err) == CodeClipboardUnavailable }

// IsUnsupported reports whether the platform has no strategy for the operation.
func IsUnsupported(err error) bool { return CodeOf(err) == CodeUnsupported }
