// Package errs defines the closed set of failures an import library run can end with.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure.
type Kind int

// Failure kinds. Every error leaving the pipeline maps to exactly one of these.
const (
	// KindUnknown is reported by KindOf for errors not produced by this package.
	KindUnknown Kind = iota
	// KindUsage indicates malformed or missing command-line arguments.
	KindUsage
	// KindDescriptor indicates the descriptor file is missing, unreadable, or malformed.
	KindDescriptor
	// KindToolInvocation indicates an external tool could not be started or exited non-zero.
	KindToolInvocation
	// KindFilesystem indicates a working-area or output-file operation failed.
	KindFilesystem
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "usage"
	case KindDescriptor:
		return "descriptor"
	case KindToolInvocation:
		return "tool invocation"
	case KindFilesystem:
		return "filesystem"
	default:
		return "unknown"
	}
}

// Error carries enough context to reproduce a failure from a single log line.
type Error struct {
	// Kind is the failure class.
	Kind Kind
	// Op is a short description of what was being done.
	Op string
	// Path is the file involved, if any.
	Path string
	// Command is the argv of the failed tool invocation, if any.
	Command []string
	// ExitCode is the tool's exit status. -1 means the tool never ran to completion.
	ExitCode int
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(": ")
	switch {
	case len(e.Command) > 0:
		fmt.Fprintf(&b, "command %q returned %d", strings.Join(e.Command, " "), e.ExitCode)
	case e.Path != "":
		if e.Op != "" {
			fmt.Fprintf(&b, "%s %q", e.Op, e.Path)
		} else {
			fmt.Fprintf(&b, "%q", e.Path)
		}
	default:
		b.WriteString(e.Op)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Descriptor returns a descriptor error for path.
func Descriptor(path string, err error) *Error {
	return &Error{Kind: KindDescriptor, Op: "reading descriptor", Path: path, Err: err}
}

// Filesystem returns a filesystem error for op on path.
func Filesystem(op, path string, err error) *Error {
	return &Error{Kind: KindFilesystem, Op: op, Path: path, Err: err}
}

// Usage returns a usage error with the given message.
func Usage(format string, args ...any) *Error {
	return &Error{Kind: KindUsage, Op: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
