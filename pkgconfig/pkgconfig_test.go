package pkgconfig

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func fakeProbe(responses map[string]string) Runner {
	return func(pkgConfig string, args ...string) (string, error) {
		key := strings.Join(args, " ")
		if out, ok := responses[key]; ok {
			return out, nil
		}
		return "", fmt.Errorf("Package %s was not found in the pkg-config search path", args[len(args)-1])
	}
}

func TestFind(t *testing.T) {
	// The fake answers --libs only; any other invocation fails.
	run := fakeProbe(map[string]string{
		"--libs fftw3": "-L/opt/fftw/lib -lfftw3 -lm -pthread",
	})

	lib, err := Find("pkg-config", "fftw3", run)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(lib.LinkDirs, []string{"/opt/fftw/lib"}) {
		t.Errorf("unexpected link dirs %q", lib.LinkDirs)
	}
	if !reflect.DeepEqual(lib.LinkLibs, []string{"fftw3", "m"}) {
		t.Errorf("unexpected link libs %q", lib.LinkLibs)
	}
}

func TestFindSystemLibrary(t *testing.T) {
	// Libraries in the default search path report no -L at all.
	run := fakeProbe(map[string]string{
		"--libs zlib": "-lz",
	})

	lib, err := Find("pkg-config", "zlib", run)
	if err != nil {
		t.Fatal(err)
	}
	if len(lib.LinkDirs) != 0 {
		t.Errorf("expected no link dirs, got %q", lib.LinkDirs)
	}
	if !reflect.DeepEqual(lib.LinkLibs, []string{"z"}) {
		t.Errorf("unexpected link libs %q", lib.LinkLibs)
	}
}

func TestFindMissing(t *testing.T) {
	run := fakeProbe(nil)

	_, err := Find("pkg-config", "fftw3", run)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "failed to find libfftw3") {
		t.Errorf("error should name the library: %v", err)
	}
}

func TestRustcArgs(t *testing.T) {
	lib := &Library{
		Name:     "fftw3",
		LinkDirs: []string{"/opt/fftw/lib"},
		LinkLibs: []string{"fftw3", "m"},
	}

	want := []string{"-Lnative=/opt/fftw/lib", "-lfftw3", "-lm"}
	if got := lib.RustcArgs(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q got %q", want, got)
	}
}
