package build

import (
	"path/filepath"
	"testing"
)

func testConfig(settings Settings) Config {
	return Config{&configImpl{
		environ:  &Environment{},
		settings: settings,
	}}
}

func TestConfigOutDirs(t *testing.T) {
	config := testConfig(settingsWith("rustc", "-O", "build"))

	if got := config.OutDir(); got != "build" {
		t.Errorf("expected %q got %q", "build", got)
	}
	if got := config.TempDir(); got != filepath.Join("build", ".temp") {
		t.Errorf("unexpected temp dir %q", got)
	}
}

func TestConfigIsVerbose(t *testing.T) {
	config := testConfig(settingsWith("rustc", "-O", "build"))

	if config.IsVerbose() {
		t.Error("expected quiet by default")
	}

	config.SetVerbose(true)
	if !config.IsVerbose() {
		t.Error("expected verbose after SetVerbose")
	}

	levelled := testConfig(settingsWith("rustc", "-O", "build"))
	levelled.settings.Log.Level = "debug"
	if !levelled.IsVerbose() {
		t.Error("expected debug log level to imply verbose")
	}
}
