//go:build !windows

package command

import "github.com/alessio/shellescape"

func platformShell() []string {
	return []string{"/bin/sh", "-c"}
}

// shellCmdLine is empty: POSIX children receive the argument vector as is.
func shellCmdLine([]string, string) string {
	return ""
}

// EscapeCommand quotes the program token so the shell runs it as a single
// word.
func EscapeCommand(cmd string) string {
	return shellescape.Quote(cmd)
}

// EscapeArg quotes one argument for the POSIX shell.
func EscapeArg(arg string) string {
	return shellescape.Quote(arg)
}
