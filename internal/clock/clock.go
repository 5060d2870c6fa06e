// Package clock holds the wall-clock predicates used for every expiring thing
// in the game: baits, buffs, fishing sessions and quest cooldowns. Nothing here
// runs in the background; expiry is computed when a value is read.
package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock is the time source injected into the engine, limiter and API.
type Clock = clockwork.Clock

// Real returns the wall clock.
func Real() Clock { return clockwork.NewRealClock() }

// OrReal returns clk, or the wall clock when clk is nil.
func OrReal(clk Clock) Clock {
	if clk == nil {
		return Real()
	}
	return clk
}

// Active reports whether something expiring at until is still in effect at now.
// The zero time is never active.
func Active(until, now time.Time) bool {
	return !until.IsZero() && now.Before(until)
}

// Elapsed reports whether now has reached at.
func Elapsed(at, now time.Time) bool {
	return !now.Before(at)
}

// Remaining returns how long until expires, never negative.
func Remaining(until, now time.Time) time.Duration {
	if d := until.Sub(now); d > 0 {
		return d
	}
	return 0
}

// CeilSeconds rounds d up to whole seconds.
func CeilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
