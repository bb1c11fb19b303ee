// Package errors provides error annotation with slog attributes and caller
// source locations. It re-exports the stdlib helpers so callers only need a
// single errors import.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// annotatedError wraps an error with a message, structured logging attributes,
// and the source location where the annotation happened.
type annotatedError struct {
	msg    string
	err    error
	attrs  []slog.Attr
	source string
}

func (e *annotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// New creates an error annotated with the caller's source location and
// optional slog attributes.
func New(msg string, attrs ...slog.Attr) error {
	return &annotatedError{msg: msg, err: nil, attrs: attrs, source: callerSource()}
}

// NewSentinel creates a plain error without source information. Use it for
// package-level sentinel error values where a fixed location is meaningless.
func NewSentinel(msg string) error {
	return errors.New(msg) //nolint:err113 // sentinel construction is this package's job.
}

// Wrap annotates err with a contextual message and optional slog attributes.
// The resulting error message reads "msg: err".
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return &annotatedError{msg: msg, err: err, attrs: attrs, source: callerSource()}
}

// DecoratePanic converts a recovered panic value into an annotated error. Call
// it with the result of recover() inside a deferred function.
func DecoratePanic(recovered any) error {
	if recovered == nil {
		return nil
	}
	return &annotatedError{
		msg:    fmt.Sprintf("panic: %v", recovered),
		err:    nil,
		attrs:  nil,
		source: callerSource(),
	}
}

// callerSource returns the file:line of the closest caller outside this
// package so that log lines point at application code.
func callerSource() string {
	const maxDepth = 16
	pcs := make([]uintptr, maxDepth)
	// Skip runtime.Callers and callerSource itself.
	n := runtime.Callers(2, pcs) //nolint:mnd // see comment above.
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !strings.HasSuffix(frame.File, "annotatederror.go") {
			return fmt.Sprintf("%s:%d", frame.File, frame.Line)
		}
		if !more {
			return ""
		}
	}
}

// SlogError renders err as a structured attribute carrying the error message,
// the source location of the outermost annotation, and all slog attributes
// collected from the error chain.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Group("error", slog.String("message", "<nil>"))
	}

	var (
		annotations []slog.Attr
		source      string
	)
	collectAnnotations(err, &annotations, &source)

	groupArgs := []any{slog.String("message", err.Error())}
	if source != "" {
		groupArgs = append(groupArgs, slog.String("source", source))
	}
	if len(annotations) > 0 {
		annotationArgs := make([]any, len(annotations))
		for i, attr := range annotations {
			annotationArgs[i] = attr
		}
		groupArgs = append(groupArgs, slog.Group("annotations", annotationArgs...))
	}
	return slog.Group("error", groupArgs...)
}

// collectAnnotations walks the error chain depth-first gathering attributes.
// The source of the outermost annotated error wins.
func collectAnnotations(err error, annotations *[]slog.Attr, source *string) {
	if err == nil {
		return
	}

	var annotated *annotatedError
	if errors.As(err, &annotated) {
		if *source == "" {
			*source = annotated.source
		}
	}

	for unwrapped := err; unwrapped != nil; {
		if ae, ok := unwrapped.(*annotatedError); ok { //nolint:errorlint // walking one level at a time on purpose.
			*annotations = append(*annotations, ae.attrs...)
		}
		switch typed := unwrapped.(type) { //nolint:errorlint // same as above.
		case interface{ Unwrap() []error }:
			for _, joined := range typed.Unwrap() {
				collectAnnotations(joined, annotations, source)
			}
			return
		case interface{ Unwrap() error }:
			unwrapped = typed.Unwrap()
		default:
			return
		}
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join returns an error wrapping the given errors, discarding nil values.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Unwrap returns the result of calling the Unwrap method on err, if any.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}
