// Package build orchestrates a crate build: it owns the per-build
// Config, the environment snapshot, subprocess execution and the
// sequential goal graph. Any failing compiler invocation aborts the
// remaining steps; there is no retry or partial-failure recovery.
package build

import (
	"os"
	"os/exec"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/rustmk/rustmk/pkgconfig"
	"github.com/rustmk/rustmk/project"
	"github.com/rustmk/rustmk/rust"
	"github.com/rustmk/rustmk/util"
)

// Build runs the requested goals against the crate rooted in the
// current directory.
func Build(ctx Context, config Config) error {
	goals := config.Goals()

	if goals.Has(CleanOutDir) {
		if err := clean(ctx, config); err != nil {
			return err
		}
		if goals.What == CleanOutDir {
			return nil
		}
	}

	buildID := uuid.New().String()
	ctx.Verboseln("build id:", buildID)
	if ctx.Tracer != nil {
		ctx.Tracer.SetProcessName("rustmk " + buildID)
	}

	props, err := project.Load(".")
	if err != nil {
		return err
	}
	crate, err := rust.ScanCrate(".", props)
	if err != nil {
		return err
	}

	for _, name := range goals.Examples {
		if _, ok := crate.ExampleNamed(name); !ok {
			return eris.Errorf("unknown example %q: no examples/%s.rs", name, name)
		}
	}

	toolchain := rust.NewToolchain(config.Rustc(), queryRunner(ctx, config))
	if err := toolchain.CheckMinVersion(crate.MinRustc); err != nil {
		return err
	}

	flags, err := expandedFlags(config, crate)
	if err != nil {
		return err
	}

	linkArgs, err := probeNativeLibs(ctx, config, crate)
	if err != nil {
		return err
	}

	crateName := crate.Name
	if crateName == "" {
		ctx.BeginTrace("query crate")
		crateName, err = toolchain.CrateName(crate.LibSrc)
		ctx.EndTrace()
		if err != nil {
			return err
		}
	}
	dylibName, err := toolchain.DylibFileName(crate.LibSrc)
	if err != nil {
		return err
	}

	// Best effort: an unresolvable compiler path just isn't part of
	// the staleness inputs.
	rustcPath, _ := exec.LookPath(config.Rustc())

	plan := rust.NewPlan(rust.PlanArgs{
		Crate:        crate,
		CrateName:    crateName,
		DylibName:    dylibName,
		OutDir:       config.OutDir(),
		Flags:        flags,
		LinkArgs:     linkArgs,
		RustcPath:    rustcPath,
		Lib:          goals.Has(BuildLib),
		Examples:     goals.Has(BuildExamples),
		ExampleNames: goals.ExampleNames(),
		Tests:        goals.Has(BuildTests),
	})

	for _, dir := range append(plan.OutputDirs(), config.TempDir()) {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return eris.Wrapf(err, "creating output directory %s", dir)
		}
	}

	for _, step := range plan.Steps {
		if err := runStep(ctx, config, step); err != nil {
			return err
		}
	}

	if goals.Has(RunTests) {
		ran := false
		for _, step := range plan.Steps {
			if !step.Run {
				continue
			}
			ran = true
			if err := runTest(ctx, config, step); err != nil {
				return err
			}
		}
		if !ran {
			ctx.Println("no tests to run")
		}
	}

	return nil
}

// expandedFlags merges RUSTFLAGS with the crate's own rustflags and
// expands $(VAR) references. OUT_DIR always resolves, even when the
// caller never exported it.
func expandedFlags(config Config, crate *rust.Crate) ([]string, error) {
	merged := append(rust.SplitFlags(config.Rustflags()), crate.Rustflags...)

	lookup := func(name string) (string, bool) {
		if name == "OUT_DIR" {
			return config.OutDir(), true
		}
		return config.Environment().Get(name)
	}
	return rust.ExpandFlags(merged, lookup)
}

// queryRunner routes compiler and pkg-config queries through the
// command wrapper, so they run with the build's environment snapshot
// and show up in verbose logs like any other subprocess.
func queryRunner(ctx Context, config Config) func(executable string, args ...string) (string, error) {
	return func(executable string, args ...string) (string, error) {
		return Command(ctx, config, executable, executable, args...).OutputString()
	}
}

func probeNativeLibs(ctx Context, config Config, crate *rust.Crate) ([]string, error) {
	if len(crate.NativeLibs) == 0 {
		return nil, nil
	}

	ctx.BeginTrace("pkg-config")
	defer ctx.EndTrace()

	run := queryRunner(ctx, config)
	var args []string
	for _, name := range crate.NativeLibs {
		lib, err := pkgconfig.Find(config.PkgConfig(), name, run)
		if err != nil {
			return nil, err
		}
		ctx.Verbosef("lib%s: %s", name, lib)
		args = append(args, lib.RustcArgs()...)
	}
	return util.FirstUniqueStrings(args), nil
}

func runStep(ctx Context, config Config, step rust.Step) error {
	if step.UpToDate() {
		ctx.Verbosef("%s is up to date", step.Desc)
		return nil
	}

	ctx.Printf("compiling %s", step.Desc)
	ctx.BeginTrace(step.Desc)
	defer ctx.EndTrace()

	if err := Command(ctx, config, step.Desc, config.Rustc(), step.Args...).Run(); err != nil {
		return err
	}
	return step.WriteStamp()
}

func runTest(ctx Context, config Config, step rust.Step) error {
	ctx.Printf("running %s", step.Desc)
	ctx.BeginTrace("run " + step.Desc)
	defer ctx.EndTrace()

	cmd := Command(ctx, config, "run "+step.Desc, step.Output)

	// The crate is a dylib, so the test binary needs the output
	// directory on the loader path.
	ldPath := config.OutDir()
	if existing, ok := cmd.Environment.Get("LD_LIBRARY_PATH"); ok && existing != "" {
		ldPath = ldPath + ":" + existing
	}
	cmd.Environment.Set("LD_LIBRARY_PATH", ldPath)

	return cmd.RunWithStdin()
}

func clean(ctx Context, config Config) error {
	ctx.Println("removing", config.OutDir())
	if err := os.RemoveAll(config.OutDir()); err != nil {
		return eris.Wrapf(err, "removing %s", config.OutDir())
	}
	return nil
}
