// Package generator turns an import descriptor into a Windows import library using the
// MSVC assembler and librarian.
package generator

import (
	"io"
	"log/slog"
	"path/filepath"

	"github.com/xll-gen/implib/internal/descriptor"
	"github.com/xll-gen/implib/internal/errs"
	"github.com/xll-gen/implib/internal/toolchain"
)

// Default tool names, resolved through PATH.
const (
	DefaultAssembler = "ml.exe"
	DefaultLibrarian = "lib.exe"
)

// Options contains optional settings for the generation process.
type Options struct {
	// Assembler is the MASM executable used for x86 stubs. Defaults to ml.exe.
	Assembler string
	// Librarian is the library manager that produces the .lib. Defaults to lib.exe.
	Librarian string
}

// Stage is a step of a CreateImportLib run.
type Stage int

// Stages in the order a run passes through them. StageObjectBuilt is skipped for
// architectures other than x86. Any failure ends in StageFailed.
const (
	StageStart Stage = iota
	StageDescriptorLoaded
	StageObjectBuilt
	StageDefinitionWritten
	StageLibraryBuilt
	StageCopied
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "Start"
	case StageDescriptorLoaded:
		return "DescriptorLoaded"
	case StageObjectBuilt:
		return "ObjectBuilt"
	case StageDefinitionWritten:
		return "DefinitionWritten"
	case StageLibraryBuilt:
		return "LibraryBuilt"
	case StageCopied:
		return "Copied"
	case StageDone:
		return "Done"
	case StageFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Generator creates import libraries inside a working area it does not own.
// All intermediate files go to the working area; only the final copy is written outside it.
type Generator struct {
	workDir string
	runner  toolchain.Runner
	logger  *slog.Logger
	opts    Options
	stage   Stage
}

// New returns a Generator bound to workDir.
func New(workDir string, runner toolchain.Runner, logger *slog.Logger, opts Options) *Generator {
	if opts.Assembler == "" {
		opts.Assembler = DefaultAssembler
	}
	if opts.Librarian == "" {
		opts.Librarian = DefaultLibrarian
	}
	return &Generator{
		workDir: workDir,
		runner:  runner,
		logger:  logger,
		opts:    opts,
	}
}

// Stage returns the stage reached by the most recent CreateImportLib call.
func (g *Generator) Stage() Stage {
	return g.stage
}

// CreateImportLib reads the descriptor at descriptorPath and writes the import library it
// describes to outputPath. Nothing is written to outputPath unless every tool succeeded.
//
// Returns:
//   - error: an *errs.Error of kind Descriptor, ToolInvocation or Filesystem.
func (g *Generator) CreateImportLib(descriptorPath, outputPath string) (err error) {
	g.stage = StageStart
	defer func() {
		if err != nil {
			g.advance(StageFailed)
		}
	}()

	// Tools run with their own working directory, so pin the destination first.
	out, err := filepath.Abs(outputPath)
	if err != nil {
		return errs.Filesystem("resolving output path", outputPath, err)
	}

	d, err := descriptor.Load(descriptorPath)
	if err != nil {
		return err
	}
	g.advance(StageDescriptorLoaded)

	return g.createImportLib(d, out)
}

// createImportLib binds the imports of d to d.DLLName for d.Architecture.
//
// For x86, lib.exe needs an object file carrying the stdcall-decorated names
// (Foo@4) in addition to the .def file listing the undecorated exports (Foo).
// Together they yield public symbols like __imp__Foo@4 bound to the export Foo.
// Other architectures do not decorate and use the .def file alone.
func (g *Generator) createImportLib(d *descriptor.Descriptor, outputPath string) error {
	var objName string
	if d.NeedsObject() {
		name, err := g.createObj(d)
		if err != nil {
			return err
		}
		objName = name
		g.advance(StageObjectBuilt)
	}

	defName := d.DLLName + ".def"
	g.logger.Info("Writing def file", "file", defName)
	if err := writeArtifact(filepath.Join(g.workDir, defName), func(w io.Writer) error {
		return WriteDefinition(w, d.DLLName, d.Imports)
	}); err != nil {
		return err
	}
	g.advance(StageDefinitionWritten)

	// lib.exe drops a .exp next to the .lib, so both stay in the working area.
	libName := d.BaseName() + ".lib"
	args := []string{
		"/machine:" + d.Architecture,
		"/def:" + defName,
		"/out:" + libName,
	}
	if objName != "" {
		args = append(args, objName)
	}
	if err := g.runner.Run(toolchain.Command{Path: g.opts.Librarian, Args: args, Dir: g.workDir}); err != nil {
		return err
	}
	g.advance(StageLibraryBuilt)

	if err := copyFile(filepath.Join(g.workDir, libName), outputPath); err != nil {
		return err
	}
	g.advance(StageCopied)
	g.logger.Info("Created import library", "path", outputPath)

	g.advance(StageDone)
	return nil
}

// createObj writes <dll>.asm and assembles it into <dll>.obj, returning the object name.
func (g *Generator) createObj(d *descriptor.Descriptor) (string, error) {
	asmName := d.DLLName + ".asm"
	g.logger.Info("Writing asm file", "file", asmName)
	if err := writeArtifact(filepath.Join(g.workDir, asmName), func(w io.Writer) error {
		return WriteStubs(w, d.Imports)
	}); err != nil {
		return "", err
	}

	objName := d.DLLName + ".obj"
	args := []string{"/nologo", "/c", asmName, "/Fo", objName}
	if err := g.runner.Run(toolchain.Command{Path: g.opts.Assembler, Args: args, Dir: g.workDir}); err != nil {
		return "", err
	}
	return objName, nil
}

func (g *Generator) advance(s Stage) {
	g.logger.Debug("Stage transition", "from", g.stage, "to", s)
	g.stage = s
}
