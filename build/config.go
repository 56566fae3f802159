package build

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigtoml"

	"github.com/rustmk/rustmk/util"
)

type Config struct{ *configImpl }

type configImpl struct {
	environ  *Environment
	settings Settings
	goals    Goals
	verbose  bool
}

// Settings are the tool-level knobs, loaded from rustmk.toml and
// RUSTMK_* environment variables. The classic RUSTC / RUSTFLAGS /
// OUT_DIR variables override them, since those are the documented
// interface.
type Settings struct {
	Rustc     string `default:"rustc" usage:"path to the Rust compiler"`
	Rustflags string `default:"-O" usage:"extra compiler flags, make-style $(VAR) references allowed"`
	OutDir    string `default:"build" usage:"build output directory, created on demand"`
	PkgConfig string `default:"pkg-config" usage:"pkg-config executable used to probe native libraries"`

	Log struct {
		Level string `default:"info"`
		JSON  bool   `default:"false" usage:"output JSON log lines instead of console messages"`
	}

	Trace struct {
		File string `usage:"write a Chrome trace of the build to this file"`
	}
}

// libSrcFileCheck is how we find out whether the current directory
// is a crate root.
const libSrcFileCheck = "src/lib.rs"

func NewConfig(ctx Context, args ...string) Config {
	ret := &configImpl{
		environ: OsEnvironment(),
	}

	loader := aconfig.LoaderFor(&ret.settings, aconfig.Config{
		SkipFlags: true,
		EnvPrefix: "RUSTMK",
		Files:     []string{"rustmk.toml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".toml": aconfigtoml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		ctx.Fatalln("Failed to load configuration:", err)
	}

	applyEnvOverrides(&ret.settings, ret.environ)

	goals, err := ParseGoals(args)
	if err != nil {
		ctx.Fatalln(err)
	}
	ret.goals = goals

	if goals.What != CleanOutDir {
		if _, err := os.Stat(libSrcFileCheck); err != nil {
			if os.IsNotExist(err) {
				ctx.Fatalf("Current working directory must be a crate root. %q not found", libSrcFileCheck)
			}
			ctx.Fatalln("Error verifying crate layout:", err)
		}
	}

	if srcDir := absPath(ctx, "."); strings.ContainsRune(srcDir, ' ') {
		ctx.Fatalf("Crate directories containing spaces are not supported: %q", srcDir)
	}
	if outDir := absPath(ctx, ret.OutDir()); strings.ContainsRune(outDir, ' ') {
		ctx.Fatalf("Output directories containing spaces are not supported: %q", outDir)
	}

	// Compiler temporaries stay inside the output directory so that
	// clean removes them too.
	ret.environ.Set("TMPDIR", absPath(ctx, ret.TempDir()))

	return Config{ret}
}

// applyEnvOverrides makes the documented environment variables win
// over both built-in defaults and rustmk.toml values.
func applyEnvOverrides(settings *Settings, environ *Environment) {
	if rustc, ok := environ.Get("RUSTC"); ok && rustc != "" {
		settings.Rustc = rustc
	}
	if flags, ok := environ.Get("RUSTFLAGS"); ok {
		settings.Rustflags = flags
	}
	if outDir, ok := environ.Get("OUT_DIR"); ok && outDir != "" {
		settings.OutDir = filepath.Clean(outDir)
	}
}

func absPath(ctx Context, p string) string {
	ret, err := filepath.Abs(p)
	if err != nil {
		ctx.Fatalf("Failed to get absolute path: %v", err)
	}
	return ret
}

func (c *configImpl) Environment() *Environment {
	return c.environ
}

func (c *configImpl) Goals() Goals {
	return c.goals
}

func (c *configImpl) Rustc() string {
	return c.settings.Rustc
}

func (c *configImpl) Rustflags() string {
	return c.settings.Rustflags
}

func (c *configImpl) PkgConfig() string {
	return c.settings.PkgConfig
}

func (c *configImpl) OutDir() string {
	return c.settings.OutDir
}

func (c *configImpl) TempDir() string {
	return filepath.Join(c.OutDir(), ".temp")
}

func (c *configImpl) TraceFile() string {
	return c.settings.Trace.File
}

func (c *configImpl) LogJSON() bool {
	return c.settings.Log.JSON
}

func (c *configImpl) SetVerbose(v bool) {
	c.verbose = v
}

func (c *configImpl) IsVerbose() bool {
	return c.verbose || util.InList(c.settings.Log.Level, []string{"debug", "trace"})
}
