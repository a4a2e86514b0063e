// Package input turns pointer samples into stroke segments.
package input

import (
	"time"

	"seehuhn.de/go/geom/vec"
)

// DefaultInterval is the minimum time between two applied pointer samples.
const DefaultInterval = 20 * time.Millisecond

// Path holds the two most recent applied pointer samples in canvas pixels.
// Either slot may be empty.
type Path struct {
	Previous    vec.Vec2
	Current     vec.Vec2
	HasPrevious bool
	HasCurrent  bool
}

// Segment returns the drawable segment previous → current. ok is false
// unless both samples are present.
func (p Path) Segment() (from, to vec.Vec2, ok bool) {
	if !p.HasPrevious || !p.HasCurrent {
		return vec.Vec2{}, vec.Vec2{}, false
	}
	return p.Previous, p.Current, true
}

// shift moves current into previous and installs the next sample.
func (p Path) shift(next vec.Vec2, present bool) Path {
	return Path{
		Previous:    p.Current,
		HasPrevious: p.HasCurrent,
		Current:     next,
		HasCurrent:  present,
	}
}

// Tracker accumulates throttled pointer samples. Samples arriving less than
// Interval after the last applied one are held back; only the most recent
// held sample survives and is applied by a later Move, Tick or Up.
//
// Time is passed in by the caller. A Tracker is owned by one goroutine.
type Tracker struct {
	Interval time.Duration

	path        Path
	active      bool
	lastApplied time.Time
	applied     bool // lastApplied is valid

	pending    vec.Vec2
	hasPending bool
}

// NewTracker returns a tracker with the given throttle interval.
// A non-positive interval disables throttling.
func NewTracker(interval time.Duration) *Tracker {
	return &Tracker{Interval: interval}
}

// Path returns the current two-slot path.
func (t *Tracker) Path() Path {
	return t.path
}

// Active reports whether the pointer is down.
func (t *Tracker) Active() bool {
	return t.active
}

// Down marks the pointer as pressed. The path is not moved.
func (t *Tracker) Down() {
	t.active = true
}

// Move records a sample taken at now. It reports whether the path changed;
// a throttled sample is held and false is returned. Moves while the pointer
// is up are ignored.
func (t *Tracker) Move(p vec.Vec2, now time.Time) bool {
	if !t.active {
		return false
	}
	if t.due(now) {
		t.hasPending = false
		t.apply(p, true, now)
		return true
	}
	t.pending = p
	t.hasPending = true
	return false
}

// Tick applies a held sample once its interval has elapsed.
func (t *Tracker) Tick(now time.Time) bool {
	if !t.hasPending || !t.due(now) {
		return false
	}
	t.hasPending = false
	t.apply(t.pending, true, now)
	return true
}

// Flush applies a held sample regardless of the interval.
func (t *Tracker) Flush(now time.Time) bool {
	if !t.hasPending {
		return false
	}
	t.hasPending = false
	t.apply(t.pending, true, now)
	return true
}

// Up releases the pointer. A held sample is applied first; when that
// happens ok is true and flushed is the path right after it, so the caller
// can still draw that last segment. A trailing-edge throttle that lets the
// release overwrite the held move would drop this segment instead; here
// the stroke always reaches the last sampled point. Afterwards the path
// becomes {previous: old current, current: none}.
func (t *Tracker) Up(now time.Time) (flushed Path, ok bool) {
	if t.active && t.Flush(now) {
		flushed, ok = t.path, true
	}
	t.active = false
	t.hasPending = false
	t.apply(vec.Vec2{}, false, now)
	return flushed, ok
}

// Reset forgets all samples, as after a canvas resize.
func (t *Tracker) Reset() {
	*t = Tracker{Interval: t.Interval}
}

func (t *Tracker) due(now time.Time) bool {
	return t.Interval <= 0 || !t.applied || now.Sub(t.lastApplied) >= t.Interval
}

func (t *Tracker) apply(p vec.Vec2, present bool, now time.Time) {
	t.path = t.path.shift(p, present)
	t.lastApplied = now
	t.applied = true
}
