package toolchain

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/xll-gen/implib/internal/errs"
	"github.com/xll-gen/implib/pkg/log"
)

// TestMain lets the test binary stand in for an external tool. When
// IMPLIB_HELPER_EXIT is set, the process writes its arguments and working
// directory, prints to both streams, and exits with the requested status.
func TestMain(m *testing.M) {
	if code, ok := os.LookupEnv("IMPLIB_HELPER_EXIT"); ok {
		wd, _ := os.Getwd()
		fmt.Fprintln(os.Stdout, "stdout noise")
		fmt.Fprintf(os.Stderr, "args=%s\n", strings.Join(os.Args[1:], " "))
		fmt.Fprintf(os.Stderr, "dir=%s\n", wd)
		n, _ := strconv.Atoi(code)
		os.Exit(n)
	}
	os.Exit(m.Run())
}

func helperPath(t *testing.T) string {
	t.Helper()
	exe, err := os.Executable()
	if err != nil {
		t.Fatal(err)
	}
	return exe
}

func TestExecRunner_Success(t *testing.T) {
	t.Setenv("IMPLIB_HELPER_EXIT", "0")
	dir := t.TempDir()

	var stderr bytes.Buffer
	r := NewExecRunner(&stderr, log.Discard())
	c := Command{Path: helperPath(t), Args: []string{"/nologo", "/c", "foo.dll.asm"}, Dir: dir}
	if err := r.Run(c); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	out := stderr.String()
	if !strings.Contains(out, "args=/nologo /c foo.dll.asm") {
		t.Errorf("arguments not passed through: %q", out)
	}
	if strings.Contains(out, "stdout noise") {
		t.Errorf("stdout leaked into stderr: %q", out)
	}

	// Resolve symlinks (macOS /var -> /private/var) before comparing directories.
	want, _ := filepath.EvalSymlinks(dir)
	if !strings.Contains(out, "dir="+want) && !strings.Contains(out, "dir="+dir) {
		t.Errorf("working directory not applied, want %s in %q", dir, out)
	}
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	t.Setenv("IMPLIB_HELPER_EXIT", "3")

	r := &ExecRunner{Stderr: &bytes.Buffer{}, Logger: log.Discard()}
	c := Command{Path: helperPath(t), Args: []string{"/machine:x86", "/def:foo.dll.def", "/out:foo.lib"}, Dir: t.TempDir()}
	err := r.Run(c)
	if err == nil {
		t.Fatal("Run() expected error for exit status 3")
	}

	e, ok := err.(*errs.Error)
	if !ok {
		t.Fatalf("Run() error type = %T, want *errs.Error", err)
	}
	if e.Kind != errs.KindToolInvocation {
		t.Errorf("Kind = %v, want %v", e.Kind, errs.KindToolInvocation)
	}
	if e.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", e.ExitCode)
	}
	if !strings.Contains(err.Error(), "/def:foo.dll.def") || !strings.Contains(err.Error(), "returned 3") {
		t.Errorf("error message lacks command or status: %v", err)
	}
}

func TestExecRunner_MissingProgram(t *testing.T) {
	r := &ExecRunner{Stderr: &bytes.Buffer{}, Logger: log.Discard()}
	c := Command{Path: filepath.Join(t.TempDir(), "no-such-ml.exe"), Dir: t.TempDir()}
	err := r.Run(c)
	if err == nil {
		t.Fatal("Run() expected error for missing program")
	}
	if kind := errs.KindOf(err); kind != errs.KindToolInvocation {
		t.Errorf("Kind = %v, want %v", kind, errs.KindToolInvocation)
	}
	if !strings.Contains(err.Error(), "returned -1") {
		t.Errorf("expected -1 status for a program that never started: %v", err)
	}
}

func TestCommand_String(t *testing.T) {
	c := Command{Path: "ml.exe", Args: []string{"/nologo", "/c", "a.asm", "/Fo", "a.obj"}}
	if got, want := c.String(), "ml.exe /nologo /c a.asm /Fo a.obj"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestNewExecRunner_DefaultStderr(t *testing.T) {
	r := NewExecRunner(nil, log.Discard())
	if r.Stderr != os.Stderr {
		t.Errorf("Stderr = %v, want os.Stderr", r.Stderr)
	}
}
