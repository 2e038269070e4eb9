// Package descriptor maps symbolic stdio redirection directives to the
// concrete wiring of a child process slot.
package descriptor

import (
	"fmt"
	"os"
	"strings"
)

// Kind tags the Directive variant.
type Kind int

// Directive variants
const (
	// Suppress discards the slot into the null device. It is the zero
	// value so an unset directive never leaks output.
	Suppress Kind = iota
	Inherit
	Temporary
	AnonymousPipe
	NamedFile
	RawHandle
	RawSpec
)

// String returns the symbolic name of the variant.
func (k Kind) String() string {
	switch k {
	case Suppress:
		return "null"
	case Inherit:
		return "inherit"
	case Temporary:
		return "temp"
	case AnonymousPipe:
		return "pipe"
	case NamedFile:
		return "file"
	case RawHandle:
		return "handle"
	case RawSpec:
		return "raw"
	default:
		return "unknown"
	}
}

// Directive says what to do with one stdio slot of a child process.
type Directive struct {
	Kind Kind

	// Path is the target of NamedFile.
	Path string

	// Handle is the external resource of RawHandle: an *os.File, an
	// io.Writer for output slots or an io.Reader for the input slot.
	Handle interface{}

	// FD and Name describe the platform descriptor of RawSpec.
	FD   uintptr
	Name string
}

// InheritStream shares the caller's stream with the child.
func InheritStream() Directive { return Directive{Kind: Inherit} }

// Null discards the stream.
func Null() Directive { return Directive{Kind: Suppress} }

// Temp captures the stream into a bounded memory buffer that spills to disk.
func Temp() Directive { return Directive{Kind: Temporary} }

// Pipe exposes the stream as an anonymous pipe the caller must drain.
func Pipe() Directive { return Directive{Kind: AnonymousPipe} }

// File writes the stream to path, truncating it.
func File(path string) Directive { return Directive{Kind: NamedFile, Path: path} }

// Handle wires the stream to an existing resource.
func Handle(h interface{}) Directive { return Directive{Kind: RawHandle, Handle: h} }

// Raw wires the stream to an already open platform descriptor.
func Raw(fd uintptr, name string) Directive { return Directive{Kind: RawSpec, FD: fd, Name: name} }

// String returns a readable form of the directive.
func (d Directive) String() string {
	switch d.Kind {
	case NamedFile:
		return "file:" + d.Path
	case RawSpec:
		return fmt.Sprintf("raw:%d", d.FD)
	default:
		return d.Kind.String()
	}
}

// Parse maps the symbolic names used on the command line to directives.
// Unrecognized names are file paths.
func Parse(s string) Directive {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null":
		return Null()
	case "inherit", "output":
		return InheritStream()
	case "temp", "tmp":
		return Temp()
	case "pipe":
		return Pipe()
	case "stdout":
		return Handle(os.Stdout)
	case "stderr":
		return Handle(os.Stderr)
	default:
		return File(s)
	}
}

// IsNullName reports whether path names the null device.
func IsNullName(path string) bool {
	switch strings.ToLower(path) {
	case "nul", "/dev/null":
		return true
	default:
		return false
	}
}
