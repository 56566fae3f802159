// Package rust drives the Rust compiler: it discovers a crate's
// canonical name and output filename by querying the compiler,
// assembles the compile steps for the library, its examples and its
// tests, and decides when dependency files show a step is already
// up to date.
package rust

import (
	"os"
	"strings"
)

// DepFile is one rule from a Makefile-style dependency file, as
// emitted by rustc's --emit dep-info.
type DepFile struct {
	Output string
	Inputs []string
}

// ParseDepFile decodes the Makefile-style rules in contents. It
// understands line continuations and backslash-escaped spaces.
// rustc writes one rule per output plus an empty rule per input, so
// several rules per file are normal.
func ParseDepFile(contents []byte) []DepFile {
	// Undo line continuations first so rules are single lines.
	joined := strings.ReplaceAll(string(contents), "\\\r\n", " ")
	joined = strings.ReplaceAll(joined, "\\\n", " ")

	var ret []DepFile
	for _, line := range strings.Split(joined, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		colon := unescapedColon(line)
		if colon == -1 {
			continue
		}

		targets := splitFields(line[:colon])
		inputs := splitFields(line[colon+1:])
		for _, target := range targets {
			ret = append(ret, DepFile{Output: target, Inputs: inputs})
		}
	}
	return ret
}

// LoadDepFile reads and parses path. A missing or unreadable file
// returns nil; staleness handling treats that as "rebuild", never
// as an error, the way make regenerates bad dependency files.
func LoadDepFile(path string) []DepFile {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return ParseDepFile(contents)
}

// InputsFor returns the recorded inputs of output, and whether the
// dependency file had a rule for it.
func InputsFor(rules []DepFile, output string) ([]string, bool) {
	for _, rule := range rules {
		if rule.Output == output {
			return rule.Inputs, true
		}
	}
	return nil, false
}

// UpToDate reports whether output exists and is at least as new as
// every input. Missing inputs make the output stale so that the
// compiler gets a chance to report the real error.
func UpToDate(output string, inputs []string) bool {
	outInfo, err := os.Stat(output)
	if err != nil {
		return false
	}

	for _, input := range inputs {
		inInfo, err := os.Stat(input)
		if err != nil {
			return false
		}
		if inInfo.ModTime().After(outInfo.ModTime()) {
			return false
		}
	}
	return true
}

// unescapedColon finds the rule separator, skipping "\:".
func unescapedColon(line string) int {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case ':':
			return i
		}
	}
	return -1
}

// splitFields splits on unescaped whitespace and unescapes the
// resulting paths.
func splitFields(s string) []string {
	var fields []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			i++
			cur.WriteByte(s[i])
		case c == ' ' || c == '\t':
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields
}
