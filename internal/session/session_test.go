package session

import (
	"sync"
	"testing"
	"time"

	apperrors "github.com/faideww/reelquest/internal/errors"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestCastPollPull(t *testing.T) {
	tr := NewTracker()
	end, err := tr.Cast(1, t0, 20*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if !end.Equal(t0.Add(20 * time.Second)) {
		t.Fatalf("unexpected end %v", end)
	}

	state, left, err := tr.Poll(1, t0.Add(5*time.Second))
	if err != nil || state != Waiting || left != 15*time.Second {
		t.Fatalf("expected waiting 15s, got %s %s %v", state, left, err)
	}

	for i := 0; i < 3; i++ {
		state, _, err = tr.Poll(1, t0.Add(21*time.Second))
		if err != nil || state != Ready {
			t.Fatalf("expected ready, got %s %v", state, err)
		}
	}

	hooked, pulledEnd, err := tr.Pull(1, t0.Add(22*time.Second))
	if err != nil || !hooked {
		t.Fatalf("expected a hooked pull, got %v %v", hooked, err)
	}
	if !pulledEnd.Equal(end) {
		t.Fatalf("expected the cast end time %v, got %v", end, pulledEnd)
	}
	if _, _, err := tr.Poll(1, t0.Add(23*time.Second)); apperrors.CodeOf(err) != apperrors.CodeNoSession {
		t.Fatalf("expected NO_SESSION after pull, got %v", err)
	}
}

func TestDoubleCastKeepsEndTime(t *testing.T) {
	tr := NewTracker()
	first, _ := tr.Cast(1, t0, 20*time.Second)
	got, err := tr.Cast(1, t0.Add(time.Second), 5*time.Second)
	if apperrors.CodeOf(err) != apperrors.CodeAlreadyFishing {
		t.Fatalf("expected ALREADY_FISHING, got %v", err)
	}
	if !got.Equal(first) {
		t.Fatalf("end time changed: %v != %v", got, first)
	}
}

func TestPrematurePullLoses(t *testing.T) {
	tr := NewTracker()
	tr.Cast(1, t0, 20*time.Second)
	hooked, _, err := tr.Pull(1, t0.Add(10*time.Second))
	if err != nil || hooked {
		t.Fatalf("expected a lost fish, got %v %v", hooked, err)
	}
	if _, err := tr.Cast(1, t0.Add(11*time.Second), time.Second); err != nil {
		t.Fatalf("expected idle after lost pull, got %v", err)
	}
}

func TestPullWithoutPollLoses(t *testing.T) {
	tr := NewTracker()
	tr.Cast(1, t0, 20*time.Second)
	hooked, _, _ := tr.Pull(1, t0.Add(time.Minute))
	if hooked {
		t.Fatal("expected the fish to get away without a poll")
	}
}

func TestIdleErrors(t *testing.T) {
	tr := NewTracker()
	if _, _, err := tr.Pull(9, t0); apperrors.CodeOf(err) != apperrors.CodeNoSession {
		t.Fatalf("expected NO_SESSION, got %v", err)
	}
	if !apperrors.IsUser(func() error { _, _, err := tr.Poll(9, t0); return err }()) {
		t.Fatal("expected a user error")
	}
}

func TestRestoreKeepsEndTime(t *testing.T) {
	tr := NewTracker()
	end, _ := tr.Cast(1, t0, time.Second)
	tr.Poll(1, t0.Add(time.Second))
	_, pulledEnd, _ := tr.Pull(1, t0.Add(5*time.Second))
	tr.Restore(1, pulledEnd)
	hooked, again, err := tr.Pull(1, t0.Add(6*time.Second))
	if err != nil || !hooked {
		t.Fatalf("expected restored session to pull, got %v %v", hooked, err)
	}
	if !again.Equal(end) {
		t.Fatalf("expected the restored session to keep %v, got %v", end, again)
	}
}

func TestCancel(t *testing.T) {
	tr := NewTracker()
	end, _ := tr.Cast(1, t0, 10*time.Second)

	tr.Cancel(1, end.Add(time.Second))
	if tr.Active() != 1 {
		t.Fatal("a different end time must not cancel the session")
	}

	tr.Cancel(1, end)
	if tr.Active() != 0 {
		t.Fatalf("expected no active sessions, got %d", tr.Active())
	}
	if _, err := tr.Cast(1, t0.Add(time.Second), time.Second); err != nil {
		t.Fatalf("expected a fresh cast after cancel, got %v", err)
	}
}

func TestConcurrentCastsOneWins(t *testing.T) {
	tr := NewTracker()
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tr.Cast(7, t0, time.Second); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one cast to win, got %d", wins)
	}
	if tr.Active() != 1 {
		t.Fatalf("expected one active session, got %d", tr.Active())
	}
}
