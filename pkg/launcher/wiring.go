package launcher

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rzbill/easyproc/pkg/descriptor"
	"github.com/rzbill/easyproc/pkg/log"
)

// wiring materializes resolved slot specs and tracks what it opened.
type wiring struct {
	resolver descriptor.Resolver
	spillDir string
	logger   log.Logger

	// childEnds are closed in the parent once the child started.
	childEnds []io.Closer

	// parentEnds belong to the handle but are closed if the launch fails.
	parentEnds []io.Closer
}

func (w *wiring) input(cmd *exec.Cmd, h *Handle, wantPipe bool) error {
	spec := w.resolver.ResolveInput(wantPipe)

	switch spec.Kind {
	case descriptor.KindPipe:
		r, wr, err := os.Pipe()
		if err != nil {
			return fmt.Errorf("failed to create input pipe: %w", err)
		}
		w.childEnds = append(w.childEnds, r)
		w.parentEnds = append(w.parentEnds, wr)
		cmd.Stdin = r
		h.stdin = wr
	case descriptor.KindFile:
		f, err := os.Open(spec.Path)
		if err != nil {
			cmd.Stdin = strings.NewReader("")
			return nil
		}
		w.childEnds = append(w.childEnds, f)
		cmd.Stdin = f
	default:
		cmd.Stdin = strings.NewReader("")
	}
	return nil
}

func (w *wiring) output(cmd *exec.Cmd, h *Handle, slot descriptor.Slot, d descriptor.Directive) error {
	spec, suppressed := w.resolver.Resolve(d, slot)

	var target io.Writer
	var reader *os.File
	var buf *descriptor.SpillBuffer

	switch spec.Kind {
	case descriptor.KindInherit:
		if slot == descriptor.Stderr {
			target = os.Stderr
		} else {
			target = os.Stdout
		}
	case descriptor.KindPipe:
		r, wr, err := os.Pipe()
		if err != nil {
			return fmt.Errorf("failed to create %s pipe: %w", slot, err)
		}
		w.childEnds = append(w.childEnds, wr)
		w.parentEnds = append(w.parentEnds, r)
		target, reader = wr, r
	case descriptor.KindBuffer:
		b, err := descriptor.NewSpillBuffer(spec.Limit, w.spillDir)
		if err != nil {
			w.logger.Warn("temporary buffer unavailable, discarding output",
				log.Str("slot", slot.String()), log.Err(err))
			target, suppressed = w.null(), true
			break
		}
		w.parentEnds = append(w.parentEnds, b)
		target, buf = b, b
	case descriptor.KindFile:
		f, err := os.OpenFile(spec.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			if suppressed {
				target = io.Discard
				break
			}
			return fmt.Errorf("failed to open %s target %q: %w", slot, spec.Path, err)
		}
		w.childEnds = append(w.childEnds, f)
		target = f
	case descriptor.KindHandle:
		wr, ok := spec.Handle.(io.Writer)
		if !ok {
			return fmt.Errorf("%s handle %T is not writable", slot, spec.Handle)
		}
		target = wr
	case descriptor.KindRaw:
		f, err := dupFile(spec.FD, spec.Name)
		if err != nil {
			return fmt.Errorf("invalid %s descriptor %d: %w", slot, spec.FD, err)
		}
		w.childEnds = append(w.childEnds, f)
		target = f
	default:
		target = io.Discard
	}

	if slot == descriptor.Stderr {
		cmd.Stderr = target
		h.stderr, h.stderrBuf = slotStream(reader, buf, suppressed)
	} else {
		cmd.Stdout = target
		h.stdout, h.stdoutBuf = slotStream(reader, buf, suppressed)
	}
	return nil
}

// null opens the null device for writing, or discards in memory.
func (w *wiring) null() io.Writer {
	spec := w.resolver.Null(descriptor.ModeWrite)
	if spec.Kind != descriptor.KindFile {
		return io.Discard
	}
	f, err := os.OpenFile(spec.Path, os.O_WRONLY, 0)
	if err != nil {
		return io.Discard
	}
	w.childEnds = append(w.childEnds, f)
	return f
}

// slotStream decides what the handle exposes for an output slot.
// Suppressed slots expose nothing.
func slotStream(r *os.File, b *descriptor.SpillBuffer, suppressed bool) (*os.File, *descriptor.SpillBuffer) {
	if suppressed {
		return nil, nil
	}
	return r, b
}

func (w *wiring) started() {
	for _, c := range w.childEnds {
		c.Close()
	}
	w.childEnds = nil
	w.parentEnds = nil
}

func (w *wiring) abort() {
	for _, c := range w.childEnds {
		c.Close()
	}
	for _, c := range w.parentEnds {
		c.Close()
	}
	w.childEnds = nil
	w.parentEnds = nil
}
