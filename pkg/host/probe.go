package host

import "sync"

type probe struct {
	once sync.Once
	ok   bool
}

// Probe memoizes the outcome of a tool availability check under name.
// check runs at most once per Host, even under concurrent callers.
func (h *Host) Probe(name string, check func() bool) bool {
	h.probeMu.Lock()
	p, ok := h.probes[name]
	if !ok {
		p = &probe{}
		h.probes[name] = p
	}
	h.probeMu.Unlock()

	p.once.Do(func() {
		p.ok = check()
	})
	return p.ok
}
