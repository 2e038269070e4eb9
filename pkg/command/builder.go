package command

import (
	"strings"

	"github.com/rzbill/easyproc/pkg/types"
)

// Runnable is the argument vector handed to the spawn primitive. Line
// commands are wrapped in the platform shell.
type Runnable struct {
	Path string
	Args []string

	// Shell is set when the command runs through the platform shell.
	Shell bool

	// CmdLine, when set, is the exact command line handed to the OS
	// instead of one rebuilt from Args. Windows shell lines use it.
	CmdLine string
}

// Builder turns Commands into Runnables.
type Builder struct {
	// VectorCapable passes argument vectors to the OS verbatim. When false,
	// vectors are escaped into one shell line.
	VectorCapable bool

	// Shell is the interpreter prefix for line commands, e.g. sh -c.
	Shell []string
}

// NewBuilder returns a vector capable builder using the platform shell.
func NewBuilder() *Builder {
	return &Builder{
		VectorCapable: true,
		Shell:         platformShell(),
	}
}

// Build normalizes cmd into a Runnable.
func (b *Builder) Build(cmd Command) (Runnable, error) {
	if cmd.IsEmpty() {
		return Runnable{}, types.NewValidationError("command is required")
	}

	if cmd.IsVector() {
		if b.VectorCapable {
			args := cmd.Args()
			return Runnable{Path: args[0], Args: args}, nil
		}
		return b.shell(Join(cmd.argv...)), nil
	}

	return b.shell(cmd.line), nil
}

func (b *Builder) shell(line string) Runnable {
	sh := b.Shell
	if len(sh) == 0 {
		sh = platformShell()
	}
	args := append(append([]string(nil), sh...), line)
	return Runnable{Path: sh[0], Args: args, Shell: true, CmdLine: shellCmdLine(sh, line)}
}

// Join escapes a vector into a single shell line: the first token as a
// command, the rest as arguments.
func Join(args ...string) string {
	if len(args) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(EscapeCommand(args[0]))
	for _, arg := range args[1:] {
		sb.WriteByte(' ')
		sb.WriteString(EscapeArg(arg))
	}
	return sb.String()
}
