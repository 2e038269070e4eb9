//go:build !windows

package launcher

import (
	"os"
	"syscall"
)

// dupFile returns a private copy of a caller-owned descriptor.
func dupFile(fd uintptr, name string) (*os.File, error) {
	nfd, err := syscall.Dup(int(fd))
	if err != nil {
		return nil, err
	}
	syscall.CloseOnExec(nfd)
	return os.NewFile(uintptr(nfd), name), nil
}
