// Package dial maps a pointer position along a horizontal track onto one of
// a fixed list of ticks. It is a continuous-drag control: every pointer move
// while dragging reports an index, and nothing is reported after release.
package dial

import (
	"errors"
	"fmt"
	"math"
)

var ErrUnknownPhase = errors.New("dial: unknown phase")

const (
	PhaseDown = "down"
	PhaseMove = "move"
	PhaseUp   = "up"
)

// Tick is one selectable value.
type Tick struct {
	Value   int    `json:"value"`
	Label   string `json:"label"`
	Display string `json:"display,omitempty"`
}

// Track is the bounding box of the dial on screen.
type Track struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// Event is a pointer or touch event delivered to a dial.
type Event struct {
	Phase string  `json:"phase"`
	X     float64 `json:"x"`
	Track Track   `json:"track"`
}

// IndexAt clamps x into the track and rounds it to the nearest of n ticks.
func IndexAt(x float64, track Track, n int) int {
	if n <= 1 || track.Width <= 0 {
		return 0
	}
	f := (x - track.Left) / track.Width
	if math.IsNaN(f) || f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	return int(math.Round(f * float64(n-1)))
}

// Dial is owned by exactly one caller; it is not safe for concurrent use.
type Dial struct {
	ticks    []Tick
	current  int
	dragging bool
	onChange func(int)
}

// New returns a dial positioned at current. onChange may be nil.
func New(ticks []Tick, current int, onChange func(int)) *Dial {
	return &Dial{ticks: ticks, current: current, onChange: onChange}
}

// Restore puts the dial back into a drag that began in an earlier request.
func (d *Dial) Restore(dragging bool) {
	d.dragging = dragging
}

// PointerDown starts a drag and reports the index under x.
func (d *Dial) PointerDown(x float64, track Track) int {
	d.dragging = true
	d.update(x, track)
	return d.current
}

// PointerMove reports the index under x while dragging. Movement outside the
// track is clamped, not ignored. It returns false when no drag is active.
func (d *Dial) PointerMove(x float64, track Track) (int, bool) {
	if !d.dragging {
		return d.current, false
	}
	d.update(x, track)
	return d.current, true
}

// PointerUp ends the drag wherever the release happens.
func (d *Dial) PointerUp() {
	d.dragging = false
}

// Apply dispatches ev to the matching pointer method.
func (d *Dial) Apply(ev Event) error {
	switch ev.Phase {
	case PhaseDown:
		d.PointerDown(ev.X, ev.Track)
	case PhaseMove:
		d.PointerMove(ev.X, ev.Track)
	case PhaseUp:
		d.PointerUp()
	default:
		return fmt.Errorf("%w %q", ErrUnknownPhase, ev.Phase)
	}
	return nil
}

func (d *Dial) Dragging() bool { return d.dragging }

func (d *Dial) Current() int { return d.current }

// Selected returns the tick at the current index.
func (d *Dial) Selected() (Tick, bool) {
	if d.current < 0 || d.current >= len(d.ticks) {
		return Tick{}, false
	}
	return d.ticks[d.current], true
}

func (d *Dial) update(x float64, track Track) {
	d.current = IndexAt(x, track, len(d.ticks))
	if d.onChange != nil {
		d.onChange(d.current)
	}
}
