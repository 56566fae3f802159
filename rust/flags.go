package rust

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/rustmk/rustmk/util"
)

// SplitFlags splits a RUSTFLAGS-style string on whitespace,
// honoring single and double quotes so paths with spaces survive.
func SplitFlags(s string) []string {
	var flags []string
	var cur strings.Builder
	var quote byte

	flush := func() {
		if cur.Len() > 0 {
			flags = append(flags, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				cur.WriteByte(c)
			}
		case c == '\'' || c == '"':
			quote = c
		case c == ' ' || c == '\t':
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return flags
}

// ExpandFlags substitutes make-style $(VAR) references in every
// flag from lookup.
func ExpandFlags(flags []string, lookup func(string) (string, bool)) ([]string, error) {
	mapping := func(name string) (string, error) {
		if value, ok := lookup(name); ok {
			return value, nil
		}
		return "", eris.Errorf("undefined variable $(%s) in compiler flags", name)
	}

	expanded := make([]string, 0, len(flags))
	for _, flag := range flags {
		out, err := util.Expand(flag, mapping)
		if err != nil {
			return nil, err
		}
		expanded = append(expanded, out)
	}
	return expanded, nil
}
