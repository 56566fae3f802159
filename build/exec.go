package build

import (
	"os/exec"
	"strings"

	"github.com/rotisserie/eris"
)

// Cmd is a wrapper around exec.Cmd that applies the build's
// environment snapshot and logs the command line in verbose mode.
type Cmd struct {
	*exec.Cmd

	Environment *Environment

	ctx  Context
	name string
}

func Command(ctx Context, config Config, name string, executable string, args ...string) *Cmd {
	return &Cmd{
		Cmd:         exec.CommandContext(ctx.Context, executable, args...),
		Environment: config.Environment().Copy(),
		ctx:         ctx,
		name:        name,
	}
}

func (c *Cmd) prepare() {
	if c.Env == nil {
		c.Env = c.Environment.Environ()
	}

	c.ctx.Verboseln(c.name+":", strings.Join(c.Args, " "))
}

// Run runs the command with stdout and stderr attached to the
// build's output streams and waits for it to finish.
func (c *Cmd) Run() error {
	c.prepare()
	if c.Stdout == nil {
		c.Stdout = c.ctx.Stdout()
	}
	if c.Stderr == nil {
		c.Stderr = c.ctx.Stderr()
	}
	if err := c.Cmd.Run(); err != nil {
		return eris.Wrapf(err, "%s failed", c.name)
	}
	return nil
}

// RunWithStdin additionally connects the build's stdin, for
// commands like test binaries that may interact with the user.
func (c *Cmd) RunWithStdin() error {
	c.Stdin = c.ctx.Stdin()
	return c.Run()
}

// OutputString runs the command and returns its trimmed stdout.
// stderr is passed through so compiler diagnostics stay visible.
func (c *Cmd) OutputString() (string, error) {
	c.prepare()
	c.Stderr = c.ctx.Stderr()
	out, err := c.Cmd.Output()
	if err != nil {
		return "", eris.Wrapf(err, "%s failed", c.name)
	}
	return strings.TrimSpace(string(out)), nil
}

// ExitStatus unwraps err down to the child's exit code. ok is false
// when err has no exit status (start failure, cancellation).
func ExitStatus(err error) (status int, ok bool) {
	var exitErr *exec.ExitError
	if err != nil && eris.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return 0, false
}
