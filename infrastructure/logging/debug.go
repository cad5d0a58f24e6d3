package logging

import "sync/atomic"

// The boundary exposes a single process-wide debug toggle. It gates only
// diagnostic volume, never results, so a single atomic word is enough; it is
// read at call boundaries and carries no invariant.
var debugEnabled atomic.Bool

// SetDebug flips the process-wide debug flag. Safe from any goroutine at any
// time; initialized false at process start, no teardown.
func SetDebug(enabled bool) {
	was := debugEnabled.Swap(enabled)
	if was != enabled {
		Info().Add(Enabled(enabled)).Msg("debug logging toggled")
	}
}

// DebugEnabled reports the current state of the debug flag.
func DebugEnabled() bool {
	return debugEnabled.Load()
}
