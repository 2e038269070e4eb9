package host

import (
	"os"
	"runtime"
)

// NullDevice describes where discarded I/O goes. When Memory is set the
// platform device could not be opened and a memory sink is used instead.
type NullDevice struct {
	Path   string
	Memory bool
}

// NullDevice returns the memoized null device. The configured override or
// the platform device is probed once for read/write access; on failure the
// host falls back to a memory sink for the rest of the process lifetime.
func (h *Host) NullDevice() NullDevice {
	h.nullOnce.Do(func() {
		path := h.cfg.NullDevice
		if path == "" {
			path = platformNullDevice()
		}

		f, err := os.OpenFile(path, os.O_RDWR, 0)
		if err != nil {
			h.null = NullDevice{Memory: true}
			return
		}
		_ = f.Close()

		h.null = NullDevice{Path: path}
	})
	return h.null
}

func platformNullDevice() string {
	if runtime.GOOS == "windows" {
		return "NUL"
	}
	return os.DevNull
}
