package descriptor

import (
	"github.com/rzbill/easyproc/pkg/host"
)

// Slot identifies one of the three standard streams of a child process.
type Slot int

// Standard slots
const (
	Stdin Slot = iota
	Stdout
	Stderr
)

// String returns the slot name.
func (s Slot) String() string {
	switch s {
	case Stdin:
		return "stdin"
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// SpecKind tags the concrete wiring of a slot.
type SpecKind int

// Concrete wirings
const (
	// KindInherit leaves the slot out so the child shares the caller's stream.
	KindInherit SpecKind = iota
	KindPipe
	KindFile
	KindBuffer
	KindMemoryNull
	KindHandle
	KindRaw
)

// Mode is the direction of a file or pipe as seen by the child.
type Mode int

// Modes
const (
	ModeRead Mode = iota
	ModeWrite
)

// Spec is the concrete wiring of one slot.
type Spec struct {
	Kind SpecKind
	Mode Mode

	// Path is set for KindFile.
	Path string

	// Limit is the in-memory cap for KindBuffer.
	Limit int64

	// Handle is the passthrough resource for KindHandle.
	Handle interface{}

	// FD and Name are the passthrough descriptor for KindRaw.
	FD   uintptr
	Name string
}

// Resolver resolves directives against the host null device and buffer
// limit. Resolution itself does not touch the filesystem.
type Resolver struct {
	NullDevice host.NullDevice
	MaxMemory  int64
}

// NewResolver builds a Resolver from host facts.
func NewResolver(h *host.Host) Resolver {
	return Resolver{
		NullDevice: h.NullDevice(),
		MaxMemory:  h.MaxMemory(),
	}
}

// Resolve maps an output directive to its wiring. suppressed is true when
// the slot ends up on the null device.
func (r Resolver) Resolve(d Directive, slot Slot) (Spec, bool) {
	mode := ModeWrite
	if slot == Stdin {
		mode = ModeRead
	}

	switch d.Kind {
	case RawSpec:
		return Spec{Kind: KindRaw, Mode: mode, FD: d.FD, Name: d.Name}, false
	case RawHandle:
		if d.Handle == nil {
			break
		}
		return Spec{Kind: KindHandle, Mode: mode, Handle: d.Handle}, false
	case Temporary:
		return Spec{Kind: KindBuffer, Mode: mode, Limit: r.MaxMemory}, false
	case Inherit:
		return Spec{Kind: KindInherit, Mode: mode}, false
	case AnonymousPipe:
		return Spec{Kind: KindPipe, Mode: mode}, false
	case NamedFile:
		if d.Path != "" && !IsNullName(d.Path) {
			return Spec{Kind: KindFile, Mode: mode, Path: d.Path}, false
		}
	}

	return r.Null(mode), true
}

// ResolveInput wires the input slot: a pipe when requested, otherwise the
// null device. The input slot is never inherited.
func (r Resolver) ResolveInput(wantPipe bool) Spec {
	if wantPipe {
		return Spec{Kind: KindPipe, Mode: ModeRead}
	}
	return r.Null(ModeRead)
}

// Null returns the null device wiring in the given mode.
func (r Resolver) Null(mode Mode) Spec {
	if r.NullDevice.Memory || r.NullDevice.Path == "" {
		return Spec{Kind: KindMemoryNull, Mode: mode}
	}
	return Spec{Kind: KindFile, Mode: mode, Path: r.NullDevice.Path}
}
