//go:build windows

package command

import (
	"strings"

	"golang.org/x/sys/windows"
)

func platformShell() []string {
	return []string{"cmd.exe", "/S", "/C"}
}

// shellCmdLine wraps line in quotes after the shell prefix. With /S, cmd
// strips exactly that outer pair and runs the rest unchanged.
func shellCmdLine(sh []string, line string) string {
	return strings.Join(sh, " ") + ` "` + line + `"`
}

// cmdMeta are the characters cmd.exe interprets before the program sees
// its command line.
const cmdMeta = `()%!^"<>&|`

// EscapeCommand quotes the program token for the program's own argv
// parsing, then escapes every cmd.exe metacharacter with a caret.
func EscapeCommand(cmd string) string {
	return caretEscape(windows.EscapeArg(cmd))
}

// EscapeArg quotes one argument the same way as EscapeCommand.
func EscapeArg(arg string) string {
	return caretEscape(windows.EscapeArg(arg))
}

func caretEscape(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) * 2)
	for _, r := range s {
		if strings.ContainsRune(cmdMeta, r) {
			sb.WriteByte('^')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
