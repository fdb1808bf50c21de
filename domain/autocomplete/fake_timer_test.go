package autocomplete

import (
	"sync"
	"time"
)

// fakeTimers records scheduled callbacks so tests decide when they run.
type fakeTimers struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (f *fakeTimers) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{delay: d, fn: fn}
	f.timers = append(f.timers, t)
	return t
}

// FireAll runs every timer that has not been stopped or fired yet and
// returns how many ran.
func (f *fakeTimers) FireAll() int {
	f.mu.Lock()
	pending := append([]*fakeTimer(nil), f.timers...)
	f.mu.Unlock()

	n := 0
	for _, t := range pending {
		t.mu.Lock()
		run := !t.stopped && !t.fired
		t.fired = t.fired || run
		t.mu.Unlock()
		if run {
			t.fn()
			n++
		}
	}
	return n
}

// FireStale runs timers even if they were stopped, as a real timer can
// when Stop loses the race with expiry.
func (f *fakeTimers) FireStale() {
	f.mu.Lock()
	all := append([]*fakeTimer(nil), f.timers...)
	f.mu.Unlock()
	for _, t := range all {
		t.fn()
	}
}

func (f *fakeTimers) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.timers)
}
