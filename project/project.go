// Package project loads the optional Crate.bp file describing a
// crate: its name, the native libraries it links against, extra
// compiler flags and the minimum compiler version. The file uses
// Blueprint syntax:
//
//	rust_crate {
//	    name: "fftw3",
//	    native_libs: ["fftw3"],
//	    rustflags: ["-g"],
//	    min_rustc: "1.30.0",
//	}
//
// Everything is optional; a crate without a Crate.bp is built purely
// from filesystem conventions.
package project

import (
	"os"
	"path/filepath"

	"github.com/google/blueprint/parser"
	"github.com/google/blueprint/proptools"
	"github.com/rotisserie/eris"
)

const FileName = "Crate.bp"

type CrateProperties struct {
	// Name overrides the compiler-derived crate name.
	Name string

	// Native_libs are probed with pkg-config and linked into the
	// dynamic library.
	Native_libs []string

	// Rustflags are appended after the RUSTFLAGS environment
	// variable.
	Rustflags []string

	// Min_rustc is the lowest compiler version the crate accepts.
	Min_rustc string
}

// Load reads dir's Crate.bp. It returns (nil, nil) when the file
// does not exist.
func Load(dir string) (*CrateProperties, error) {
	path := filepath.Join(dir, FileName)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	return parse(path, f)
}

func parse(path string, f *os.File) (*CrateProperties, error) {
	file, errs := parser.Parse(path, f, parser.NewScope(nil))
	if len(errs) > 0 {
		return nil, eris.Wrapf(errs[0], "parsing %s", path)
	}

	var props *CrateProperties
	for _, def := range file.Defs {
		module, ok := def.(*parser.Module)
		if !ok {
			continue
		}
		if module.Type != "rust_crate" {
			return nil, eris.Errorf("%s: unknown module type %q, expected rust_crate", path, module.Type)
		}
		if props != nil {
			return nil, eris.Errorf("%s: more than one rust_crate module", path)
		}

		props = &CrateProperties{}
		_, errs := proptools.UnpackProperties(module.Properties, props)
		if len(errs) > 0 {
			return nil, eris.Wrapf(errs[0], "reading rust_crate properties in %s", path)
		}
	}

	if props == nil {
		return nil, eris.Errorf("%s: no rust_crate module found", path)
	}
	return props, nil
}
