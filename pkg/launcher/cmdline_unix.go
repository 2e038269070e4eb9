//go:build !windows

package launcher

import "os/exec"

func setCmdLine(*exec.Cmd, string) {}
