package rust

import (
	"os"
	"path/filepath"

	"github.com/google/blueprint/deptools"

	"github.com/rustmk/rustmk/util"
)

// Step is a single compiler invocation with one primary output.
// Args does not include the compiler path itself.
type Step struct {
	// Desc names the step in logs and traces, e.g. "lib fftw3".
	Desc string

	Output  string
	DepFile string
	Args    []string

	// ExtraInputs are dependencies the compiler does not record in
	// its dep-info output: Crate.bp, the probed link flags' origin.
	// They are kept in a sidecar depfile next to DepFile.
	ExtraInputs []string

	// Run marks outputs that should be executed after building
	// (test binaries under the check goal).
	Run bool
}

func (s Step) sidecarDepFile() string {
	return s.DepFile + ".rustmk"
}

// UpToDate reports whether the step's previous dependency files
// show its output to be current. Any missing or unparseable record
// means the step runs again.
func (s Step) UpToDate() bool {
	inputs, ok := InputsFor(LoadDepFile(s.DepFile), s.Output)
	if !ok {
		return false
	}
	if len(s.ExtraInputs) > 0 {
		extra, ok := InputsFor(LoadDepFile(s.sidecarDepFile()), s.Output)
		if !ok {
			return false
		}
		inputs = append(append([]string(nil), inputs...), extra...)
	}
	return UpToDate(s.Output, inputs)
}

// WriteStamp records the step's extra inputs after a successful
// compile.
func (s Step) WriteStamp() error {
	if len(s.ExtraInputs) == 0 {
		return nil
	}
	return deptools.WriteDepFile(s.sidecarDepFile(), s.Output, s.ExtraInputs)
}

// Plan lays out the sequential steps for a build. linkArgs carry
// the pkg-config results for the crate's native libraries; flags
// are the expanded RUSTFLAGS plus Crate.bp rustflags.
type Plan struct {
	CrateName string
	DylibPath string
	Steps     []Step
}

type PlanArgs struct {
	Crate     *Crate
	CrateName string
	DylibName string
	OutDir    string
	Flags     []string
	LinkArgs  []string

	// RustcPath, when resolvable, is recorded as an input so that a
	// toolchain upgrade rebuilds everything.
	RustcPath string

	Lib      bool
	Examples bool
	// ExampleNames restricts example builds; empty means all.
	ExampleNames []string
	Tests        bool
}

// NewPlan builds the step list. The library step always comes
// first: examples and tests link against its output.
func NewPlan(args PlanArgs) Plan {
	crate := args.Crate
	dylibPath := filepath.Join(args.OutDir, args.DylibName)
	extern := "--extern"
	externArg := args.CrateName + "=" + dylibPath

	var extraInputs []string
	if bp := filepath.Join(crate.RootDir, "Crate.bp"); exists(bp) {
		extraInputs = append(extraInputs, bp)
	}
	if args.RustcPath != "" && exists(args.RustcPath) {
		extraInputs = append(extraInputs, args.RustcPath)
	}

	plan := Plan{CrateName: args.CrateName, DylibPath: dylibPath}

	if args.Lib {
		step := Step{
			Desc:        "lib " + args.CrateName,
			Output:      dylibPath,
			DepFile:     filepath.Join(args.OutDir, args.CrateName+".d"),
			ExtraInputs: extraInputs,
		}
		step.Args = append(step.Args,
			"--crate-type", "dylib",
			"--emit", "dep-info,link",
			"--out-dir", args.OutDir)
		step.Args = append(step.Args, args.Flags...)
		step.Args = append(step.Args, args.LinkArgs...)
		step.Args = append(step.Args, crate.LibSrc)
		plan.Steps = append(plan.Steps, step)
	}

	if args.Examples {
		for _, src := range selectExamples(crate, args.ExampleNames) {
			output := filepath.Join(args.OutDir, "examples", SourceName(src))
			step := Step{
				Desc:        "example " + SourceName(src),
				Output:      output,
				DepFile:     output + ".d",
				ExtraInputs: extraInputs,
			}
			step.Args = append(step.Args,
				"--emit", "dep-info,link",
				"-L", args.OutDir,
				extern, externArg,
				"-o", output)
			step.Args = append(step.Args, args.Flags...)
			step.Args = append(step.Args, src)
			plan.Steps = append(plan.Steps, step)
		}
	}

	if args.Tests {
		if crate.TestSrc != "" {
			output := filepath.Join(args.OutDir, args.CrateName+"-test")
			step := Step{
				Desc:        "test " + args.CrateName,
				Output:      output,
				DepFile:     output + ".d",
				ExtraInputs: extraInputs,
				Run:         true,
			}
			step.Args = append(step.Args,
				"--test",
				"--emit", "dep-info,link",
				"-L", args.OutDir,
				extern, externArg,
				"-o", output)
			step.Args = append(step.Args, args.Flags...)
			step.Args = append(step.Args, crate.TestSrc)
			plan.Steps = append(plan.Steps, step)
		}

		for _, src := range crate.IntTests {
			output := filepath.Join(args.OutDir, "tests", SourceName(src))
			step := Step{
				Desc:        "test " + SourceName(src),
				Output:      output,
				DepFile:     output + ".d",
				ExtraInputs: extraInputs,
				Run:         true,
			}
			step.Args = append(step.Args,
				"--test",
				"--emit", "dep-info,link",
				"-L", args.OutDir,
				extern, externArg,
				"-o", output)
			step.Args = append(step.Args, args.Flags...)
			step.Args = append(step.Args, src)
			plan.Steps = append(plan.Steps, step)
		}
	}

	return plan
}

// OutputDirs lists the directories the plan writes into, so the
// caller can create them up front.
func (p Plan) OutputDirs() []string {
	dirs := []string{}
	for _, step := range p.Steps {
		dirs = append(dirs, filepath.Dir(step.Output))
	}
	return util.FirstUniqueStrings(dirs)
}

func selectExamples(crate *Crate, names []string) []string {
	if len(names) == 0 {
		return crate.Examples
	}
	var srcs []string
	for _, name := range names {
		if src, ok := crate.ExampleNamed(name); ok {
			srcs = append(srcs, src)
		}
	}
	return srcs
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
