// Package format styles CLI output.
package format

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"golang.org/x/term"
)

var (
	successColor   = color.New(color.FgGreen)
	warningColor   = color.New(color.FgYellow)
	errorColor     = color.New(color.FgRed, color.Bold)
	infoColor      = color.New(color.FgCyan)
	highlightColor = color.New(color.FgCyan, color.Bold)
	dimColor       = color.New(color.FgHiBlack)
)

func init() {
	EnableColor(detectColor(os.LookupEnv, term.IsTerminal(int(os.Stdout.Fd()))))
}

// detectColor decides the default from the environment and whether
// stdout is a terminal.
func detectColor(lookup func(string) (string, bool), tty bool) bool {
	if _, ok := lookup("NO_COLOR"); ok {
		return false
	}
	if _, ok := lookup("EASYPROC_NO_COLOR"); ok {
		return false
	}
	if _, ok := lookup("EASYPROC_FORCE_COLOR"); ok {
		return true
	}
	return tty
}

// EnableColor enables or disables colored output globally.
func EnableColor(enable bool) {
	color.NoColor = !enable
	if enable {
		pterm.EnableColor()
	} else {
		pterm.DisableColor()
	}
}

// IsColorEnabled returns whether colored output is enabled.
func IsColorEnabled() bool {
	return !color.NoColor
}

// Success formats a message as a success (green).
func Success(format string, a ...interface{}) string {
	return successColor.Sprintf(format, a...)
}

// Warning formats a message as a warning (yellow).
func Warning(format string, a ...interface{}) string {
	return warningColor.Sprintf(format, a...)
}

// Error formats a message as an error (bold red).
func Error(format string, a ...interface{}) string {
	return errorColor.Sprintf(format, a...)
}

// Info formats a message as info (cyan).
func Info(format string, a ...interface{}) string {
	return infoColor.Sprintf(format, a...)
}

// Highlight formats a message as highlighted (bold cyan).
func Highlight(format string, a ...interface{}) string {
	return highlightColor.Sprintf(format, a...)
}

// Dim formats a message as dimmed.
func Dim(format string, a ...interface{}) string {
	return dimColor.Sprintf(format, a...)
}

// Label formats a key and value with a label style.
func Label(key, value string) string {
	return fmt.Sprintf("%s %s", Highlight("%s:", key), value)
}

// StatusSymbol returns a colorized status symbol.
func StatusSymbol(success bool) string {
	if success {
		return Success("✓")
	}
	return Error("✗")
}
