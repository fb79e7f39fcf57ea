package fingerprint

import "sync/atomic"

// active holds the engine used by package-level Fingerprint. Swapping it never affects
// calls already in progress, which keep the engine they loaded.
var active atomic.Pointer[Engine]

// DefaultEngine returns the active engine, creating one over Default() on first use.
func DefaultEngine() *Engine {
	if e := active.Load(); e != nil {
		return e
	}
	active.CompareAndSwap(nil, NewEngine(nil))
	return active.Load()
}

// SetDefaultEngine replaces the active engine, for example after a catalog reload.
func SetDefaultEngine(e *Engine) {
	if e == nil {
		return
	}
	active.Store(e)
}

// Fingerprint classifies responses with the active engine.
func Fingerprint(responses []Response) *Result {
	return DefaultEngine().Fingerprint(responses)
}
