// Package command normalizes commands into a form the platform can run,
// either as an argument vector or as one escaped shell line.
package command

import (
	"fmt"
	"strings"
)

// Command is either an argument vector or a single shell line.
type Command struct {
	argv []string
	line string
}

// Argv returns a vector command. The arguments are copied.
func Argv(args ...string) Command {
	return Command{argv: append([]string(nil), args...)}
}

// Line returns a shell line command.
func Line(line string) Command {
	return Command{line: line}
}

// From converts a loosely typed value into a Command: strings become
// lines, string slices become vectors and anything else is stringified.
func From(v interface{}) Command {
	switch c := v.(type) {
	case Command:
		return c
	case string:
		return Line(c)
	case []string:
		return Argv(c...)
	case []interface{}:
		args := make([]string, 0, len(c))
		for _, a := range c {
			args = append(args, fmt.Sprint(a))
		}
		return Argv(args...)
	default:
		return Line(fmt.Sprint(v))
	}
}

// IsVector reports whether the command is an argument vector.
func (c Command) IsVector() bool {
	return c.argv != nil
}

// Args returns a copy of the argument vector, or nil for a line.
func (c Command) Args() []string {
	if c.argv == nil {
		return nil
	}
	return append([]string(nil), c.argv...)
}

// String returns a human readable form, used for logging.
func (c Command) String() string {
	if c.IsVector() {
		return strings.Join(c.argv, " ")
	}
	return c.line
}

// IsEmpty reports whether there is nothing to run.
func (c Command) IsEmpty() bool {
	if c.IsVector() {
		return len(c.argv) == 0 || c.argv[0] == ""
	}
	return strings.TrimSpace(c.line) == ""
}
