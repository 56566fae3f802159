package rust

import (
	"os/exec"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rotisserie/eris"

	"github.com/rustmk/rustmk/util"
)

// QueryRunner runs the compiler and returns its stdout. The build
// passes one backed by its command wrapper so queries run with the
// same environment snapshot as compiles; nil execs the compiler
// directly.
type QueryRunner func(rustc string, args ...string) (string, error)

func execQuery(rustc string, args ...string) (string, error) {
	out, err := exec.Command(rustc, args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Toolchain answers questions about the configured compiler. Query
// results are cached per process since the compiler binary cannot
// change mid-build.
type Toolchain struct {
	rustc string

	runner QueryRunner
	once   util.OncePer
}

func NewToolchain(rustc string, run QueryRunner) *Toolchain {
	if run == nil {
		run = execQuery
	}
	return &Toolchain{
		rustc:  rustc,
		runner: run,
	}
}

func (t *Toolchain) Rustc() string {
	return t.rustc
}

// CrateName asks the compiler for the crate's canonical name, which
// may be set by attributes inside the source rather than the file
// name.
func (t *Toolchain) CrateName(libSrc string) (string, error) {
	return t.onceQuery("crate-name:"+libSrc, func() (string, error) {
		out, err := t.runner(t.rustc, "--print", "crate-name", libSrc)
		if err != nil {
			return "", eris.Wrapf(err, "querying crate name of %s", libSrc)
		}
		return firstLine(out), nil
	})
}

// DylibFileName asks the compiler what the dynamic library built
// from libSrc will be called (libfoo.so, libfoo.dylib, foo.dll...).
func (t *Toolchain) DylibFileName(libSrc string) (string, error) {
	return t.onceQuery("file-names:"+libSrc, func() (string, error) {
		out, err := t.runner(t.rustc, "--crate-type", "dylib", "--print", "file-names", libSrc)
		if err != nil {
			return "", eris.Wrapf(err, "querying output file name of %s", libSrc)
		}
		name := firstLine(out)
		if name == "" {
			return "", eris.Errorf("compiler reported no output file name for %s", libSrc)
		}
		return name, nil
	})
}

// Version parses `rustc --version` output of the form
// "rustc 1.75.0 (82e1608df 2023-12-21)".
func (t *Toolchain) Version() (*semver.Version, error) {
	raw, err := t.onceQuery("version", func() (string, error) {
		out, err := t.runner(t.rustc, "--version")
		if err != nil {
			return "", eris.Wrapf(err, "querying version of %s", t.rustc)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	fields := strings.Fields(raw)
	if len(fields) < 2 {
		return nil, eris.Errorf("cannot parse compiler version %q", raw)
	}
	// Nightly versions look like "1.77.0-nightly"; semver handles
	// the prerelease tag.
	v, err := semver.NewVersion(fields[1])
	if err != nil {
		return nil, eris.Wrapf(err, "cannot parse compiler version %q", raw)
	}
	return v, nil
}

// CheckMinVersion enforces a crate's min_rustc constraint.
func (t *Toolchain) CheckMinVersion(min string) error {
	if min == "" {
		return nil
	}
	required, err := semver.NewVersion(min)
	if err != nil {
		return eris.Wrapf(err, "invalid min_rustc %q", min)
	}
	have, err := t.Version()
	if err != nil {
		return err
	}
	if have.LessThan(required) {
		return eris.Errorf("compiler %s is older than required %s", have, required)
	}
	return nil
}

type queryResult struct {
	value string
	err   error
}

func (t *Toolchain) onceQuery(key string, query func() (string, error)) (string, error) {
	res := t.once.Once(key, func() interface{} {
		value, err := query()
		return queryResult{value, err}
	}).(queryResult)
	return res.value, res.err
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx != -1 {
		return strings.TrimSpace(s[:idx])
	}
	return strings.TrimSpace(s)
}
