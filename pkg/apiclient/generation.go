package apiclient

import "sync/atomic"

// Generation drops results that arrive after the view has moved on. A caller
// snapshots the counter before starting a request and applies the result only
// if nothing advanced the counter in between (filter change, remount,
// teardown).
type Generation struct {
	current atomic.Uint64
}

// Snapshot returns the value to pass to Apply later.
func (g *Generation) Snapshot() uint64 {
	return g.current.Load()
}

// Advance invalidates all outstanding snapshots.
func (g *Generation) Advance() {
	g.current.Add(1)
}

// Apply runs fn only when snap is still current and reports whether it ran.
func (g *Generation) Apply(snap uint64, fn func()) bool {
	if g.current.Load() != snap {
		return false
	}
	fn()
	return true
}
