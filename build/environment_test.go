package build

import (
	"reflect"
	"testing"
)

func TestEnvironment(t *testing.T) {
	env := &Environment{"RUSTC=rustc", "RUSTFLAGS=-O", "LC_ALL=C", "LC_MESSAGES=en_US"}

	if v, ok := env.Get("RUSTC"); !ok || v != "rustc" {
		t.Errorf("expected RUSTC=rustc, got %q %v", v, ok)
	}
	if _, ok := env.Get("OUT_DIR"); ok {
		t.Error("did not expect OUT_DIR to be set")
	}
	if v := env.GetDefault("OUT_DIR", "build"); v != "build" {
		t.Errorf("expected default %q got %q", "build", v)
	}

	env.Set("RUSTC", "/opt/rust/bin/rustc")
	if v, _ := env.Get("RUSTC"); v != "/opt/rust/bin/rustc" {
		t.Errorf("Set did not overwrite: got %q", v)
	}

	env.Unset("RUSTFLAGS")
	if _, ok := env.Get("RUSTFLAGS"); ok {
		t.Error("expected RUSTFLAGS to be unset")
	}

	env.UnsetWithPrefix("LC_")
	for _, kv := range env.Environ() {
		if len(kv) >= 3 && kv[:3] == "LC_" {
			t.Errorf("expected LC_* unset, found %q", kv)
		}
	}
}

func TestEnvironmentCopy(t *testing.T) {
	env := &Environment{"OUT_DIR=build"}
	dup := env.Copy()
	dup.Set("OUT_DIR", "other")

	if v, _ := env.Get("OUT_DIR"); v != "build" {
		t.Errorf("copy mutated the original: %q", v)
	}
	if v, _ := dup.Get("OUT_DIR"); v != "other" {
		t.Errorf("expected %q got %q", "other", v)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	testCases := []struct {
		name string
		env  Environment
		want Settings
	}{
		{
			name: "no overrides",
			env:  Environment{},
			want: settingsWith("rustc", "-O", "build"),
		},
		{
			name: "rustc override",
			env:  Environment{"RUSTC=rustc-nightly"},
			want: settingsWith("rustc-nightly", "-O", "build"),
		},
		{
			name: "rustflags may be emptied",
			env:  Environment{"RUSTFLAGS="},
			want: settingsWith("rustc", "", "build"),
		},
		{
			name: "out dir cleaned",
			env:  Environment{"OUT_DIR=out//target/"},
			want: settingsWith("rustc", "-O", "out/target"),
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			settings := settingsWith("rustc", "-O", "build")
			applyEnvOverrides(&settings, &testCase.env)
			if !reflect.DeepEqual(settings, testCase.want) {
				t.Errorf("expected %+v got %+v", testCase.want, settings)
			}
		})
	}
}

func settingsWith(rustc, rustflags, outDir string) Settings {
	s := Settings{Rustc: rustc, Rustflags: rustflags, OutDir: outDir}
	return s
}
