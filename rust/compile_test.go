package rust

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/rustmk/rustmk/util"
)

func planFor(t *testing.T, dir string, args PlanArgs) Plan {
	t.Helper()

	crate, err := ScanCrate(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	args.Crate = crate
	if args.CrateName == "" {
		args.CrateName = "fftw3"
	}
	if args.DylibName == "" {
		args.DylibName = "libfftw3.so"
	}
	if args.OutDir == "" {
		args.OutDir = filepath.Join(dir, "build")
	}
	return NewPlan(args)
}

func TestNewPlanAll(t *testing.T) {
	dir := writeCrate(t, "src/lib.rs", "examples/basic.rs", "examples/builder.rs")

	plan := planFor(t, dir, PlanArgs{
		Flags:    []string{"-O"},
		LinkArgs: []string{"-lfftw3"},
		Lib:      true,
		Examples: true,
	})

	if len(plan.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d: %+v", len(plan.Steps), plan.Steps)
	}

	lib := plan.Steps[0]
	if lib.Desc != "lib fftw3" {
		t.Errorf("expected the library step first, got %q", lib.Desc)
	}
	if lib.Output != plan.DylibPath {
		t.Errorf("library output %q does not match plan dylib %q", lib.Output, plan.DylibPath)
	}
	if !util.InList("-lfftw3", lib.Args) {
		t.Errorf("library step missing link args: %q", lib.Args)
	}
	if !util.InList("dep-info,link", lib.Args) {
		t.Errorf("library step missing dep-info emission: %q", lib.Args)
	}

	example := plan.Steps[1]
	if example.Desc != "example basic" {
		t.Errorf("unexpected second step %q", example.Desc)
	}
	if !util.InList("fftw3="+plan.DylibPath, example.Args) {
		t.Errorf("example step does not link the crate: %q", example.Args)
	}
	if util.InList("-lfftw3", example.Args) {
		t.Errorf("example step should not repeat native link args: %q", example.Args)
	}
	if example.Run {
		t.Error("examples are built, not run")
	}
}

func TestNewPlanCheck(t *testing.T) {
	dir := writeCrate(t, "src/lib.rs", "src/test.rs", "tests/smoke.rs")

	plan := planFor(t, dir, PlanArgs{Lib: true, Tests: true})

	if len(plan.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(plan.Steps))
	}
	unit := plan.Steps[1]
	if unit.Desc != "test fftw3" || !unit.Run {
		t.Errorf("expected a runnable unit test step, got %+v", unit)
	}
	if !util.InList("--test", unit.Args) {
		t.Errorf("test step missing --test: %q", unit.Args)
	}
	integration := plan.Steps[2]
	if integration.Desc != "test smoke" || !integration.Run {
		t.Errorf("expected a runnable integration test step, got %+v", integration)
	}
}

func TestNewPlanCheckWithoutTests(t *testing.T) {
	dir := writeCrate(t, "src/lib.rs")

	plan := planFor(t, dir, PlanArgs{Lib: true, Tests: true})

	if len(plan.Steps) != 1 {
		t.Fatalf("expected only the library step, got %+v", plan.Steps)
	}
}

func TestNewPlanNamedExample(t *testing.T) {
	dir := writeCrate(t, "src/lib.rs", "examples/basic.rs", "examples/builder.rs")

	plan := planFor(t, dir, PlanArgs{
		Lib:          true,
		Examples:     true,
		ExampleNames: []string{"builder"},
	})

	if len(plan.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %+v", plan.Steps)
	}
	if plan.Steps[1].Desc != "example builder" {
		t.Errorf("expected only builder, got %q", plan.Steps[1].Desc)
	}
}

func TestPlanOutputDirs(t *testing.T) {
	dir := writeCrate(t, "src/lib.rs", "examples/basic.rs", "tests/smoke.rs")

	plan := planFor(t, dir, PlanArgs{
		OutDir:   "build",
		Lib:      true,
		Examples: true,
		Tests:    true,
	})

	want := []string{"build", filepath.Join("build", "examples"), filepath.Join("build", "tests")}
	if got := plan.OutputDirs(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q got %q", want, got)
	}
}

func TestStepUpToDate(t *testing.T) {
	dir := t.TempDir()

	base := time.Now().Add(-time.Hour)
	write := func(name, contents string, mtime time.Time) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(contents), 0666); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatal(err)
		}
		return path
	}

	src := write("lib.rs", "// lib", base)
	output := write("libfftw3.so", "elf", base.Add(10*time.Minute))
	depFile := write("fftw3.d", output+": "+src+"\n", base.Add(10*time.Minute))

	step := Step{Output: output, DepFile: depFile}
	if !step.UpToDate() {
		t.Error("expected step to be up to date")
	}

	// Touch the source; the step goes stale.
	if err := os.Chtimes(src, base.Add(time.Hour), base.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if step.UpToDate() {
		t.Error("expected step to be stale after touching the source")
	}

	// No dep file at all means rebuild.
	missing := Step{Output: output, DepFile: filepath.Join(dir, "absent.d")}
	if missing.UpToDate() {
		t.Error("expected step without a dep file to be stale")
	}
}

func TestStepStampRoundTrip(t *testing.T) {
	dir := t.TempDir()

	base := time.Now().Add(-time.Hour)
	write := func(name, contents string, mtime time.Time) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(contents), 0666); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatal(err)
		}
		return path
	}

	src := write("lib.rs", "// lib", base)
	crateBp := write("Crate.bp", "rust_crate {}", base)
	output := write("libfftw3.so", "elf", base.Add(10*time.Minute))
	depFile := write("fftw3.d", output+": "+src+"\n", base.Add(10*time.Minute))

	step := Step{Output: output, DepFile: depFile, ExtraInputs: []string{crateBp}}

	// Stale until the stamp exists.
	if step.UpToDate() {
		t.Error("expected step without a stamp to be stale")
	}

	if err := step.WriteStamp(); err != nil {
		t.Fatal(err)
	}
	if !step.UpToDate() {
		t.Error("expected step to be up to date after writing the stamp")
	}

	// Editing Crate.bp invalidates the step even though the
	// compiler's own dep file does not mention it.
	if err := os.Chtimes(crateBp, base.Add(time.Hour), base.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if step.UpToDate() {
		t.Error("expected step to be stale after touching Crate.bp")
	}
}
