// Package pkgconfig probes native libraries through pkg-config and
// turns the results into compiler link arguments. A crate that
// wraps a native library (the usual reason for a *-sys crate's
// build script) declares it in Crate.bp and rustmk fails early,
// with a message naming the library, when the development files are
// not installed.
package pkgconfig

import (
	"os/exec"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/rustmk/rustmk/util"
)

// Library is the probed result for one pkg-config package. Only the
// linker flags matter here: the compiler consumes the native library
// through -L/-l, and any C include paths the package ships are the
// concern of whatever built it.
type Library struct {
	Name     string
	LinkDirs []string
	LinkLibs []string
}

// Runner runs pkg-config and returns its stdout. The build passes
// one backed by its command wrapper so probes run with the build's
// environment snapshot (PKG_CONFIG_PATH included); nil execs
// pkg-config directly.
type Runner func(pkgConfig string, args ...string) (string, error)

func execProbe(pkgConfig string, args ...string) (string, error) {
	out, err := exec.Command(pkgConfig, args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Find probes name using the pkgConfig executable.
func Find(pkgConfig, name string, run Runner) (*Library, error) {
	if run == nil {
		run = execProbe
	}

	libs, err := run(pkgConfig, "--libs", name)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to find lib%s", name)
	}

	lib := &Library{Name: name}
	for _, field := range strings.Fields(libs) {
		switch {
		case strings.HasPrefix(field, "-L"):
			if dir := field[2:]; dir != "" {
				lib.LinkDirs = append(lib.LinkDirs, dir)
			}
		case strings.HasPrefix(field, "-l"):
			if l := field[2:]; l != "" {
				lib.LinkLibs = append(lib.LinkLibs, l)
			}
		}
		// Other linker flags (-pthread, -Wl,...) are meant for a C
		// linker driver and are dropped; rustc invokes the linker
		// itself.
	}
	return lib, nil
}

// String renders the probe the way a linker command line would.
func (l *Library) String() string {
	return strings.TrimSpace(strings.Join([]string{
		util.JoinWithPrefix(l.LinkDirs, "-L"),
		util.JoinWithPrefix(l.LinkLibs, "-l"),
	}, " "))
}

// RustcArgs translates the probe into rustc arguments. Attached
// forms (-Lnative=dir, -lname) keep each argument self-contained so
// repeated probes can be deduplicated token-wise.
func (l *Library) RustcArgs() []string {
	var args []string
	for _, dir := range l.LinkDirs {
		args = append(args, "-Lnative="+dir)
	}
	for _, lib := range l.LinkLibs {
		args = append(args, "-l"+lib)
	}
	return args
}
