package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/rustmk/rustmk/build"
	"github.com/rustmk/rustmk/ui/logger"
	"github.com/rustmk/rustmk/ui/tracer"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Compiler and test failures carry the child's exit status;
		// everything else was already logged by cobra/RunE.
		if status, ok := build.ExitStatus(err); ok && status != 0 {
			os.Exit(status)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	var traceFile string

	cmd := &cobra.Command{
		Use:   "rustmk [goal ...]",
		Short: "rustmk builds a Rust crate, its examples and its tests",
		Long: `rustmk builds the crate rooted in the current directory.

Goals:
  all               build the crate library and all examples (default)
  check             build and run the crate's test binaries
  examples          build every examples/*.rs program
  examples/<name>   build a single example
  clean             remove the build output directory

The compiler is taken from $RUSTC, extra flags from $RUSTFLAGS and
the output directory from $OUT_DIR. Tool settings may also be set
in rustmk.toml or RUSTMK_* environment variables.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args, verbose, traceFile)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show compiler command lines and up-to-date checks")
	cmd.PersistentFlags().StringVar(&traceFile, "trace", "", "write a Chrome trace of the build to this file")
	return cmd
}

func run(goals []string, verbose bool, traceFile string) error {
	log := logger.New(os.Stderr)
	log.SetVerbose(verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	buildCtx := build.Context{ContextImpl: &build.ContextImpl{
		Context:        ctx,
		Logger:         log,
		StdioInterface: build.StdioImpl{},
		Thread:         tracer.MainThread,
	}}

	config := build.NewConfig(buildCtx, goals...)
	config.SetVerbose(verbose)

	if config.LogJSON() {
		jsonLog := logger.NewJSON(os.Stderr)
		jsonLog.SetVerbose(config.IsVerbose())
		buildCtx.Logger = jsonLog
	} else if config.IsVerbose() {
		log.SetVerbose(true)
	}

	if traceFile == "" {
		traceFile = config.TraceFile()
	}
	if traceFile != "" {
		tr, err := tracer.New(buildCtx.Logger, traceFile)
		if err != nil {
			return err
		}
		defer tr.Close()
		buildCtx.Tracer = tr
	}

	err := build.Build(buildCtx, config)
	if err != nil {
		buildCtx.Println(err)
	}
	return err
}
