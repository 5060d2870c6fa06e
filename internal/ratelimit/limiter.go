// Package ratelimit throttles chat commands per player with a jittered
// cooldown.
package ratelimit

import (
	mrand "math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/faideww/reelquest/internal/clock"
)

type Limiter struct {
	mu   sync.Mutex
	next map[string]time.Time
	min  time.Duration
	max  time.Duration
	clk  clock.Clock
	rng  *mrand.Rand
}

func NewLimiter(min, max time.Duration, clk clock.Clock) *Limiter {
	if max < min {
		max = min
	}
	return &Limiter{
		next: make(map[string]time.Time),
		min:  min,
		max:  max,
		clk:  clock.OrReal(clk),
		rng:  mrand.New(mrand.NewPCG(mrand.Uint64(), mrand.Uint64())),
	}
}

// TryKey admits key unless its cooldown is still running, in which case it
// reports how long is left.
func (l *Limiter) TryKey(key string) (bool, time.Duration) {
	now := l.clk.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if until, ok := l.next[key]; ok && now.Before(until) {
		return false, until.Sub(now)
	}

	l.next[key] = now.Add(l.nextCooldown())
	l.sweep(now)
	return true, 0
}

// Try throttles one player's commands.
func (l *Limiter) Try(playerID int64) (bool, time.Duration) {
	return l.TryKey(playerKey(playerID))
}

// TryBucket throttles one player within a named bucket, e.g. leaderboards.
func (l *Limiter) TryBucket(playerID int64, bucket string) (bool, time.Duration) {
	return l.TryKey(playerKey(playerID) + "|b:" + bucket)
}

func (l *Limiter) nextCooldown() time.Duration {
	if l.min == l.max {
		return l.min
	}
	span := l.max - l.min

	jitter := time.Duration(l.rng.Int64N(int64(span)))
	return l.min + jitter
}

// sweep drops expired entries once the map grows past a few thousand keys.
func (l *Limiter) sweep(now time.Time) {
	if len(l.next) < 4096 {
		return
	}
	for k, until := range l.next {
		if clock.Elapsed(until, now) {
			delete(l.next, k)
		}
	}
}

func playerKey(id int64) string {
	return "p:" + strconv.FormatInt(id, 10)
}
