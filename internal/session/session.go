// Package session tracks in-flight casts. Sessions live only in memory; a
// restart drops every pending cast.
package session

import (
	"sync"
	"time"

	"github.com/faideww/reelquest/internal/clock"
	apperrors "github.com/faideww/reelquest/internal/errors"
)

type State int

const (
	Idle State = iota
	Waiting
	Ready
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Ready:
		return "ready"
	default:
		return "idle"
	}
}

type session struct {
	state   State
	endTime time.Time
}

// Tracker holds one session per player.
type Tracker struct {
	mu       sync.Mutex
	sessions map[int64]*session
}

func NewTracker() *Tracker {
	return &Tracker{sessions: make(map[int64]*session)}
}

// Cast starts waiting until now+delay. A player already waiting or ready gets
// ALREADY_FISHING and the pending end time is left alone.
func (t *Tracker) Cast(playerID int64, now time.Time, delay time.Duration) (time.Time, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.sessions[playerID]; ok && s.state != Idle {
		return s.endTime, apperrors.WithMetadata(apperrors.CodeAlreadyFishing, "a line is already in the water",
			map[string]string{"end_time": s.endTime.UTC().Format(time.RFC3339)})
	}
	end := now.Add(delay)
	t.sessions[playerID] = &session{state: Waiting, endTime: end}
	return end, nil
}

// Poll reports the session state, moving waiting to ready once the end time
// has passed. Repeated polls after that are no-ops.
func (t *Tracker) Poll(playerID int64, now time.Time) (State, time.Duration, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[playerID]
	if !ok || s.state == Idle {
		return Idle, 0, apperrors.New(apperrors.CodeNoSession, "no line in the water")
	}
	if s.state == Waiting {
		if !clock.Elapsed(s.endTime, now) {
			return Waiting, s.endTime.Sub(now), nil
		}
		s.state = Ready
	}
	return Ready, 0, nil
}

// Cancel drops a waiting session started by Cast whose player update could
// not be saved. A session with a different end time is left alone.
func (t *Tracker) Cancel(playerID int64, endTime time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sessions[playerID]; ok && s.state == Waiting && s.endTime.Equal(endTime) {
		delete(t.sessions, playerID)
	}
}

// Pull ends the session. It reports whether the fish was hooked and the end
// time of the removed session: only a ready session yields a catch. Pulling
// while still waiting loses it.
func (t *Tracker) Pull(playerID int64, now time.Time) (hooked bool, endTime time.Time, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[playerID]
	if !ok || s.state == Idle {
		return false, time.Time{}, apperrors.New(apperrors.CodeNoSession, "no line in the water")
	}
	hooked = s.state == Ready && clock.Elapsed(s.endTime, now)
	delete(t.sessions, playerID)
	return hooked, s.endTime, nil
}

// Restore puts back a session taken by Pull whose reward could not be saved.
func (t *Tracker) Restore(playerID int64, endTime time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.sessions[playerID]; ok {
		return
	}
	t.sessions[playerID] = &session{state: Ready, endTime: endTime}
}

// Active counts sessions that are not idle.
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}
