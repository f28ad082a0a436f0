// Package toolchain runs the external MSVC programs (ml.exe, lib.exe) that turn the
// generated listings into an import library.
package toolchain

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/xll-gen/implib/internal/errs"
)

// Command describes one invocation of an external program.
type Command struct {
	// Path is the program name or path, resolved through PATH when it has no separator.
	Path string
	// Args are the arguments following the program name.
	Args []string
	// Dir is the working directory of the process.
	Dir string
}

// Argv returns the full command line, program first.
func (c Command) Argv() []string {
	return append([]string{c.Path}, c.Args...)
}

func (c Command) String() string {
	return strings.Join(c.Argv(), " ")
}

// Runner executes a Command and blocks until it exits.
// A nil error means the program exited with status 0.
type Runner interface {
	Run(c Command) error
}

// ExecRunner runs commands as OS processes.
// Standard output is discarded; standard error is forwarded to Stderr.
type ExecRunner struct {
	// Stderr receives the tool's standard error. Defaults to os.Stderr.
	Stderr io.Writer
	// Logger records every invocation and its exit status.
	Logger *slog.Logger
}

// NewExecRunner returns an ExecRunner forwarding tool diagnostics to stderr,
// or to os.Stderr when stderr is nil.
func NewExecRunner(stderr io.Writer, logger *slog.Logger) *ExecRunner {
	if stderr == nil {
		stderr = os.Stderr
	}
	return &ExecRunner{Stderr: stderr, Logger: logger}
}

// Run starts c, waits for it, and converts a start failure or a non-zero exit into an
// errs.KindToolInvocation error carrying the command line and status.
func (r *ExecRunner) Run(c Command) error {
	cmd := exec.Command(c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = io.Discard
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()
	code := exitCode(cmd, err)
	if r.Logger != nil {
		r.Logger.Info("Running command", "cmd", c.String(), "dir", c.Dir, "returned", code)
	}

	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Reported through ExitCode.
		err = nil
	}
	return &errs.Error{
		Kind:     errs.KindToolInvocation,
		Op:       "running tool",
		Command:  c.Argv(),
		ExitCode: code,
		Err:      err,
	}
}

// exitCode reports the process exit status, or -1 when the process never ran to completion.
func exitCode(cmd *exec.Cmd, err error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}
