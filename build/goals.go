package build

import (
	"fmt"
	"strings"
)

// Goals are the make-style phony targets accepted on the command
// line, decoded into a bitmask of build phases plus the list of
// individually requested examples.
const (
	BuildNone     = 0
	BuildLib      = 1 << 0
	BuildExamples = 1 << 1
	BuildTests    = 1 << 2
	RunTests      = 1 << 3
	CleanOutDir   = 1 << 4

	BuildAll   = BuildLib | BuildExamples
	BuildCheck = BuildLib | BuildTests | RunTests
)

type Goals struct {
	What int

	// Examples holds the names requested as examples/<name>.
	Examples []string

	// AllExamples records that a goal asked for every example. It
	// wins over any named restriction, the way make builds the union
	// of its goals.
	AllExamples bool
}

func (g Goals) Has(what int) bool {
	return g.What&what != 0
}

// ExampleNames returns the named-example restriction for the build
// plan; nil means every example.
func (g Goals) ExampleNames() []string {
	if g.AllExamples {
		return nil
	}
	return g.Examples
}

// ParseGoals decodes command line goals. No goals means "all".
func ParseGoals(args []string) (Goals, error) {
	ret := Goals{}

	if len(args) == 0 {
		ret.What = BuildAll
		ret.AllExamples = true
		return ret, nil
	}

	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		switch {
		case arg == "all":
			ret.What |= BuildAll
			ret.AllExamples = true
		case arg == "check":
			ret.What |= BuildCheck
		case arg == "examples":
			ret.What |= BuildLib | BuildExamples
			ret.AllExamples = true
		case arg == "clean":
			ret.What |= CleanOutDir
		case strings.HasPrefix(arg, "examples/"):
			name := strings.TrimPrefix(arg, "examples/")
			if name == "" {
				return Goals{}, fmt.Errorf("missing example name in %q", arg)
			}
			ret.What |= BuildLib | BuildExamples
			ret.Examples = append(ret.Examples, name)
		default:
			return Goals{}, fmt.Errorf("unknown goal %q (expected all, check, examples, examples/<name> or clean)", arg)
		}
	}

	return ret, nil
}
