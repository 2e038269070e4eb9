// Package host holds the facts about the running host that are computed
// once per process: OS family, null device, sanitized environment and
// tool availability. A single Host is built at startup and shared by the
// launcher and the query engine.
package host

import (
	"os"
	"runtime"
	"sync"

	"github.com/rzbill/easyproc/pkg/types"
)

// DefaultMaxMemory is the default in-memory cap for temporary buffers.
const DefaultMaxMemory int64 = 65536

// Config holds the process-wide host settings.
type Config struct {
	// NullDevice overrides the platform null device path.
	NullDevice string `json:"null_device" yaml:"null_device"`

	// MaxMemory caps the in-memory part of temporary buffers, in bytes.
	MaxMemory int64 `json:"max_memory" yaml:"max_memory"`
}

// Host caches host facts. All accessors are safe for concurrent use and
// each fact is computed at most once.
type Host struct {
	cfg Config

	osName  string
	environ func() []string

	familyOnce sync.Once
	family     types.Family

	nullOnce sync.Once
	null     NullDevice

	envOnce sync.Once
	env     map[string]string

	probeMu sync.Mutex
	probes  map[string]*probe
}

// Option configures a Host.
type Option func(*Host)

// WithOSName replaces the OS name used for family detection.
func WithOSName(name string) Option {
	return func(h *Host) {
		h.osName = name
	}
}

// WithEnviron replaces the source of the ambient environment.
func WithEnviron(fn func() []string) Option {
	return func(h *Host) {
		h.environ = fn
	}
}

// New creates a Host from the given configuration.
func New(cfg Config, options ...Option) *Host {
	if cfg.MaxMemory <= 0 {
		cfg.MaxMemory = DefaultMaxMemory
	}

	h := &Host{
		cfg:     cfg,
		osName:  runtime.GOOS,
		environ: os.Environ,
		probes:  make(map[string]*probe),
	}

	for _, option := range options {
		option(h)
	}

	return h
}

// MaxMemory returns the temporary buffer memory cap.
func (h *Host) MaxMemory() int64 {
	return h.cfg.MaxMemory
}

// Family returns the memoized OS family.
func (h *Host) Family() types.Family {
	h.familyOnce.Do(func() {
		h.family = DetectFamily(h.osName)
	})
	return h.family
}

// Ambient returns the current process environment as a map.
func (h *Host) Ambient() map[string]string {
	return MapFromEnviron(h.environ())
}
