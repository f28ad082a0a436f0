package generator

import (
	"io"
	"os"
	"path/filepath"

	"github.com/xll-gen/implib/internal/errs"
	"github.com/xll-gen/implib/internal/templates"
)

// WriteStubs writes a MASM listing declaring an empty procedure for every import, e.g.
//
//	AddClipboardFormatListener@4 PROC
//	AddClipboardFormatListener@4 ENDP
//
// Assembled, it gives lib.exe the decorated x86 names to bind the undecorated exports to.
// Imports are written in order and are not deduplicated.
func WriteStubs(w io.Writer, imports []string) error {
	data := struct {
		Imports []string
	}{
		Imports: imports,
	}
	return executeTemplate(templates.Stubs, w, data)
}

// WriteDefinition writes a module-definition file naming dllName and exporting every
// import with its decoration stripped.
func WriteDefinition(w io.Writer, dllName string, imports []string) error {
	data := struct {
		DLLName string
		Imports []string
	}{
		DLLName: dllName,
		Imports: imports,
	}
	return executeTemplate(templates.Definition, w, data)
}

// executeTemplate loads a template, parses it with the package funcMap, and executes it to w.
func executeTemplate(tmplName string, w io.Writer, data interface{}) error {
	t, err := templates.Load(tmplName, funcMap)
	if err != nil {
		return err
	}
	return t.Execute(w, data)
}

// writeArtifact creates path and fills it using write.
func writeArtifact(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Filesystem("creating", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return errs.Filesystem("writing", path, err)
	}
	if err := f.Close(); err != nil {
		return errs.Filesystem("writing", path, err)
	}
	return nil
}

// copyFile copies src to dst. The data is first written to a temporary file next to dst
// and then renamed into place, so dst never holds a partial library.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errs.Filesystem("opening import library", src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".*.part")
	if err != nil {
		return errs.Filesystem("copying import library to", dst, err)
	}
	tmpName := tmp.Name()

	_, err = io.Copy(tmp, in)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpName, 0644)
	}
	if err == nil {
		err = os.Rename(tmpName, dst)
	}
	if err != nil {
		os.Remove(tmpName)
		return errs.Filesystem("copying import library to", dst, err)
	}
	return nil
}
