package sched

import "time"

// baseBackoff and maxBackoff bound the exponential backoff applied to a
// sensor after a BUSY completion code (spec §5, §7); ACCEPTED is handled
// by Scheduler.pollLongRunning instead, not by backoff. The
// scheduler doubles the wait on every consecutive retry up to maxBackoff
// and resets to baseBackoff on the next non-retry outcome.
const (
	baseBackoff = 100 * time.Millisecond
	maxBackoff  = 5 * time.Second
)

// backoffState tracks one sensor's consecutive-retry count and the
// deadline before which it must not be re-emitted.
type backoffState struct {
	delay   time.Duration
	readyAt time.Time
}

func newBackoffState() *backoffState {
	return &backoffState{delay: baseBackoff}
}

// next doubles and returns the current delay, capped at maxBackoff.
func (b *backoffState) next() time.Duration {
	d := b.delay
	b.delay *= 2
	if b.delay > maxBackoff {
		b.delay = maxBackoff
	}
	return d
}

// reset returns the state to baseBackoff and clears any armed
// deadline, called after any non-retry outcome (success or a terminal
// error).
func (b *backoffState) reset() {
	b.delay = baseBackoff
	b.readyAt = time.Time{}
}

// arm sets the deadline before which ready reports false, delay after now.
func (b *backoffState) arm(now time.Time, delay time.Duration) {
	b.readyAt = now.Add(delay)
}

// ready reports whether now has reached the armed deadline. A
// never-armed or reset state is always ready.
func (b *backoffState) ready(now time.Time) bool {
	return !now.Before(b.readyAt)
}
