package rust

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/rustmk/rustmk/project"
)

// Source layout of a crate. src/lib.rs is the only required file;
// everything else is discovered.
const (
	LibSrc  = "src/lib.rs"
	TestSrc = "src/test.rs"

	examplesDir = "examples"
	testsDir    = "tests"
)

// Crate is the scanned source tree plus any Crate.bp properties.
type Crate struct {
	RootDir string

	// Name is empty unless set in Crate.bp; the compiler-derived
	// name is authoritative otherwise.
	Name string

	LibSrc  string
	TestSrc string // empty when src/test.rs does not exist

	// Examples and IntTests are the sorted example and integration
	// test sources, relative to RootDir.
	Examples []string
	IntTests []string

	NativeLibs []string
	Rustflags  []string
	MinRustc   string
}

// ScanCrate discovers dir's crate layout and merges in props, which
// may be nil when there is no Crate.bp.
func ScanCrate(dir string, props *project.CrateProperties) (*Crate, error) {
	crate := &Crate{
		RootDir: dir,
		LibSrc:  filepath.Join(dir, LibSrc),
	}

	if _, err := os.Stat(crate.LibSrc); err != nil {
		return nil, eris.Wrapf(err, "%s is not a crate root: %s missing", dir, LibSrc)
	}

	testSrc := filepath.Join(dir, TestSrc)
	if _, err := os.Stat(testSrc); err == nil {
		crate.TestSrc = testSrc
	}

	var err error
	if crate.Examples, err = rsSources(filepath.Join(dir, examplesDir)); err != nil {
		return nil, err
	}
	if crate.IntTests, err = rsSources(filepath.Join(dir, testsDir)); err != nil {
		return nil, err
	}

	if props != nil {
		crate.Name = props.Name
		crate.NativeLibs = props.Native_libs
		crate.Rustflags = props.Rustflags
		crate.MinRustc = props.Min_rustc
	}

	return crate, nil
}

// ExampleNamed maps an examples/<name> goal to its source file.
func (c *Crate) ExampleNamed(name string) (string, bool) {
	for _, src := range c.Examples {
		if SourceName(src) == name {
			return src, true
		}
	}
	return "", false
}

// SourceName is the binary name for a source file: the base name
// with the .rs extension removed.
func SourceName(src string) string {
	return strings.TrimSuffix(filepath.Base(src), ".rs")
}

func rsSources(dir string) ([]string, error) {
	srcs, err := filepath.Glob(filepath.Join(dir, "*.rs"))
	if err != nil {
		return nil, eris.Wrapf(err, "globbing %s", dir)
	}
	sort.Strings(srcs)
	return srcs, nil
}
