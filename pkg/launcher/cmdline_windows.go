//go:build windows

package launcher

import (
	"os/exec"
	"syscall"
)

// setCmdLine hands line to CreateProcess verbatim so exec does not re-quote
// it with rules cmd.exe does not follow. The caller's SysProcAttr is copied.
func setCmdLine(cmd *exec.Cmd, line string) {
	attr := &syscall.SysProcAttr{}
	if cmd.SysProcAttr != nil {
		copied := *cmd.SysProcAttr
		attr = &copied
	}
	attr.CmdLine = line
	cmd.SysProcAttr = attr
}
