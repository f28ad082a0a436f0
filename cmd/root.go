package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/xll-gen/implib/internal/errs"
	"github.com/xll-gen/implib/internal/generator"
	"github.com/xll-gen/implib/pkg/log"
	"github.com/xll-gen/implib/version"
)

// Exit codes returned by the CLI.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// options holds the flag values of a single invocation.
type options struct {
	outputFile  string
	keepTempDir bool
	verbose     bool
	logLevel    string
	logFile     string
	assembler   string
	librarian   string
}

// newRootCmd builds the implib command. Each call returns an independent command so
// tests can run it repeatedly.
func newRootCmd(stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "implib [flags] <imports-file>",
		Short: "Create a Windows import library from an imports file",
		Long: `implib creates an import library (.lib) from an imports file describing a DLL
and the symbols it exports, e.g.

  {'dll_name': 'xlcall32.dll', 'imports': ['Excel4@12', 'Excel4v@12'], 'architecture': 'x86'}

It uses the Microsoft assembler (ml.exe) and library tool (lib.exe), both of
which must be in PATH.`,
		Version:       version.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errs.Usage("you must provide exactly one imports file, got %d", len(args))
			}
			return nil
		},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.outputFile == "" {
				return errs.Usage("you must provide an output file (-o)")
			}
			if opts.logLevel != "" {
				if err := log.ValidateLevel(opts.logLevel); err != nil {
					return errs.Usage("%v", err)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(args[0], opts, stderr)
		},
	}
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVarP(&opts.outputFile, "output-file", "o", "", "Specifies the output file path")
	f.BoolVarP(&opts.keepTempDir, "keep-temp-dir", "k", false, "Keep the temporary directory")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose logging")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides --verbose")
	f.StringVar(&opts.logFile, "log-file", "", "Write logs to this file instead of stderr")
	f.StringVar(&opts.assembler, "assembler", generator.DefaultAssembler, "Assembler used for x86 stubs")
	f.StringVar(&opts.librarian, "librarian", generator.DefaultLibrarian, "Library tool used to create the import library")

	return cmd
}

// Execute runs the command line and exits the process with its status.
// This is called by main.main().
func Execute() {
	os.Exit(execute(os.Args[1:], os.Stderr))
}

// execute runs the CLI with args and returns the process exit status.
func execute(args []string, stderr io.Writer) int {
	cmd := newRootCmd(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err == nil {
		return exitOK
	}

	switch errs.KindOf(err) {
	case errs.KindDescriptor, errs.KindToolInvocation, errs.KindFilesystem:
		// Already logged by runCreate.
		return exitFailure
	default:
		// cobra flag errors and errs.KindUsage.
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprint(stderr, cmd.UsageString())
		return exitUsage
	}
}
