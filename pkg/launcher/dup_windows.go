//go:build windows

package launcher

import (
	"os"

	"golang.org/x/sys/windows"
)

// dupFile returns a private copy of a caller-owned handle.
func dupFile(fd uintptr, name string) (*os.File, error) {
	proc := windows.CurrentProcess()
	var dup windows.Handle
	if err := windows.DuplicateHandle(proc, windows.Handle(fd), proc, &dup, 0, false, windows.DUPLICATE_SAME_ACCESS); err != nil {
		return nil, err
	}
	return os.NewFile(uintptr(dup), name), nil
}
