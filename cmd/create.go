package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/xll-gen/implib/internal/errs"
	"github.com/xll-gen/implib/internal/generator"
	"github.com/xll-gen/implib/internal/toolchain"
	"github.com/xll-gen/implib/internal/workarea"
	"github.com/xll-gen/implib/pkg/log"
)

// runCreate creates the import library described by importsFile inside a fresh
// temporary directory, then removes the directory unless --keep-temp-dir was given.
//
// Returns:
//   - error: an *errs.Error describing the first failure, already logged.
func runCreate(importsFile string, opts *options, stderr io.Writer) (err error) {
	logger, closeLog, err := openLogger(opts, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return err
	}
	defer closeLog()
	logger = logger.With("run", uuid.NewString())

	outputFile, err := filepath.Abs(opts.outputFile)
	if err != nil {
		err = errs.Filesystem("resolving output path", opts.outputFile, err)
		logger.Error("Failed to create import lib.", "err", err)
		return err
	}

	area, err := workarea.Acquire(logger, opts.keepTempDir)
	if err != nil {
		logger.Error("Failed to create import lib.", "err", err)
		return err
	}
	defer func() {
		if releaseErr := area.Release(); releaseErr != nil {
			logger.Error("Failed to delete temporary directory.", "err", releaseErr)
			if err == nil {
				err = releaseErr
			}
		}
	}()

	runner := toolchain.NewExecRunner(stderr, logger)
	gen := generator.New(area.Dir(), runner, logger, generator.Options{
		Assembler: opts.assembler,
		Librarian: opts.librarian,
	})

	if err := gen.CreateImportLib(importsFile, outputFile); err != nil {
		logger.Error("Failed to create import lib.", "err", err, "stage", gen.Stage())
		return err
	}
	return nil
}

// openLogger builds the run's logger. -v raises the level to info; --log-level wins over both.
func openLogger(opts *options, stderr io.Writer) (*slog.Logger, func() error, error) {
	level := "warn"
	if opts.verbose {
		level = "info"
	}
	if opts.logLevel != "" {
		level = opts.logLevel
	}

	if opts.logFile == "" {
		return log.New(stderr, level), func() error { return nil }, nil
	}
	logger, closeFn, err := log.Open(opts.logFile, level)
	if err != nil {
		return nil, nil, errs.Filesystem("opening log file", opts.logFile, err)
	}
	return logger, closeFn, nil
}
