package build

import (
	"os"
	"strings"
)

// Environment adds a number of useful manipulation functions to the
// list of strings returned by os.Environ() and used by exec.Cmd.
type Environment []string

// OsEnvironment wraps the current process's environment.
func OsEnvironment() *Environment {
	env := Environment(os.Environ())
	return &env
}

// Get returns the value associated with the key, and whether it
// exists. It's equivalent to the os.LookupEnv function, but with
// this copy of the Environment.
func (e *Environment) Get(key string) (string, bool) {
	for _, env := range *e {
		if k, v, ok := decodeKeyValue(env); ok && k == key {
			return v, true
		}
	}
	return "", false
}

// GetDefault returns the value associated with the key, or def if
// the key does not exist.
func (e *Environment) GetDefault(key, def string) string {
	if v, ok := e.Get(key); ok {
		return v
	}
	return def
}

// Set sets the value associated with the key, overwriting the
// current value if it exists.
func (e *Environment) Set(key, value string) {
	e.Unset(key)
	*e = append(*e, key+"="+value)
}

// Unset removes the specified keys from the Environment.
func (e *Environment) Unset(keys ...string) {
	out := (*e)[:0]
	for _, env := range *e {
		if key, _, ok := decodeKeyValue(env); ok && inList(key, keys) {
			continue
		}
		out = append(out, env)
	}
	*e = out
}

// UnsetWithPrefix removes all keys that start with prefix.
func (e *Environment) UnsetWithPrefix(prefix string) {
	out := (*e)[:0]
	for _, env := range *e {
		if key, _, ok := decodeKeyValue(env); ok && strings.HasPrefix(key, prefix) {
			continue
		}
		out = append(out, env)
	}
	*e = out
}

// Environ returns the []string usable by exec.Cmd.Env.
func (e *Environment) Environ() []string {
	return []string(*e)
}

// Copy returns a copy of the Environment so that independent
// changes may be made to it.
func (e *Environment) Copy() *Environment {
	ret := Environment(make([]string, len(*e)))
	copy(ret, *e)
	return &ret
}

func decodeKeyValue(env string) (string, string, bool) {
	idx := strings.IndexRune(env, '=')
	if idx == -1 {
		return "", "", false
	}
	return env[:idx], env[idx+1:], true
}

func inList(s string, list []string) bool {
	for _, l := range list {
		if l == s {
			return true
		}
	}
	return false
}
