package domain

import "github.com/jonboulle/clockwork"

// Clock is the package time source. Flux derivations stamp ProcessedAt from
// it so tests and the fixture generator can freeze time.
var Clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to restore the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		Clock = clockwork.NewRealClock()
		return
	}
	Clock = c
}
