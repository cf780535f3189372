package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Geun-Oh/gtee/internal/monitor"
	"github.com/Geun-Oh/gtee/internal/options"
	"github.com/Geun-Oh/gtee/internal/pipeline"
	"github.com/Geun-Oh/gtee/internal/sink"
	"github.com/Geun-Oh/gtee/internal/source"
)

// Process exit codes.
const (
	exitOK            = 0
	exitInvalidOption = 1
	exitOpenFailure   = 2
	exitCopyFailure   = 3
)

// debugEnv enables debug logging and the end-of-run summary when non-empty.
const debugEnv = "GTEE_DEBUG"

// argsMarker leads the argument list handed to cobra so that its
// subcommand lookup (including the hidden "__complete") never matches a
// destination name. argv cannot contain a NUL byte.
const argsMarker = "\x00gtee"

// exitError carries the process exit code out of RunE. The diagnostic has
// already been written when it is returned.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// environment is everything the command touches outside its arguments.
type environment struct {
	name   string
	source source.Source
	stdout io.Writer
	stderr io.Writer
	fs     billy.Filesystem // nil means the host filesystem
	getenv func(string) string
}

func newRootCmd(env *environment) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   env.name + " [OPTION]... [FILE]...",
		Short: "Copy standard input to each FILE, and also to standard output.",
		Args:  cobra.ArbitraryArgs,
		// Options are parsed by internal/options so that "-?", "-" and
		// "--" keep their tee meaning; the flags below only document them.
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 && args[0] == argsMarker {
				args = args[1:]
			}
			return runTee(cmd, env, args)
		},
	}

	flags := rootCmd.Flags()
	flags.BoolP("append", "a", false, "append to the given FILEs, do not overwrite")
	flags.IntP("buffer-size", "b", options.DefaultChunkSize, "chunk size `N` in bytes used when copying")
	flags.BoolP("help", "h", false, "display this help and exit")

	rootCmd.SetOut(env.stdout)
	rootCmd.SetErr(env.stderr)
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		writeHelp(cmd.OutOrStdout(), env.name, cmd.LocalFlags())
	})
	return rootCmd
}

func runTee(cmd *cobra.Command, env *environment, args []string) error {
	opts, err := options.Parse(args)
	if err != nil {
		var perr *options.ParseError
		if errors.As(err, &perr) {
			fmt.Fprintf(env.stderr, "Invalid option: %s\n", perr.Token())
			fmt.Fprintf(env.stderr, "Try '%s --help' for more information.\n", env.name)
		}
		return &exitError{code: exitInvalidOption, err: err}
	}
	if opts.Help {
		return cmd.Help()
	}

	debug := env.getenv(debugEnv) != ""
	logger := newLogger(env.stderr, debug)

	stdout := sink.NewStdoutSink(env.stdout)
	cfg := pipeline.NewConfig(opts, env.source, stdout, sink.NewOpener(env.fs, stdout, opts.Append))
	cfg.Stats = monitor.NewStats()
	cfg.Logger = logger

	logger.Debug("starting copy",
		"destinations", len(opts.Destinations),
		"append", opts.Append,
		"chunk_size", opts.ChunkSize,
	)

	err = pipeline.Run(cmd.Context(), cfg)
	if debug {
		fmt.Fprintln(env.stderr, cfg.Stats.Summary())
	}
	if err != nil {
		var oerr *sink.OpenError
		if errors.As(err, &oerr) {
			fmt.Fprintf(env.stderr, "%s: %v\n", oerr.Category(), oerr.Err)
			return &exitError{code: exitOpenFailure, err: err}
		}
		fmt.Fprintf(env.stderr, "%s: %v\n", env.name, err)
		return &exitError{code: exitCopyFailure, err: err}
	}
	return nil
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

func writeHelp(w io.Writer, name string, flags *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage: %s [OPTION]... [FILE]...\n", name)
	fmt.Fprintln(w, "Copy standard input to each FILE, and also to standard output.")
	fmt.Fprintln(w)

	flags.VisitAll(func(f *pflag.Flag) {
		varname, usage := pflag.UnquoteUsage(f)
		left := fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
		if f.Name == "help" {
			left = "-?, " + left
		}
		if varname != "" {
			left += " " + varname
		}
		if f.Value.Type() != "bool" {
			usage += fmt.Sprintf(" (default %s)", f.DefValue)
		}
		fmt.Fprintf(w, "    %-24s%s\n", left, usage)
	})
	fmt.Fprintf(w, "    %-24s%s\n", "--", "treat all following arguments as FILE names")

	fmt.Fprintln(w)
	fmt.Fprintln(w, "When FILE is -, copy again to standard output.")
}

// commandName derives the name shown in help and error text from the
// invoked executable path. Where executables carry an extension it is
// shown in brackets, e.g. "gtee[.exe]".
func commandName(path, goos string) string {
	if path == "" {
		return "gtee"
	}
	base := filepath.Base(path)
	if goos == "windows" {
		if ext := filepath.Ext(base); ext != "" {
			return strings.TrimSuffix(base, ext) + "[" + ext + "]"
		}
	}
	return base
}

func run(ctx context.Context, env *environment, args []string) int {
	rootCmd := newRootCmd(env)
	rootCmd.SetArgs(append([]string{argsMarker}, args...))

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintln(env.stderr, err)
	return exitInvalidOption
}

// Execute runs the command against the process's stdio and returns the
// exit code.
func Execute() int {
	env := &environment{
		name:   commandName(os.Args[0], runtime.GOOS),
		source: source.NewStdinSource(),
		stdout: os.Stdout,
		stderr: os.Stderr,
		getenv: os.Getenv,
	}
	return run(context.Background(), env, os.Args[1:])
}
