package script

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"seehuhn.de/go/geom/vec"

	"wallpaint/internal/engine"
)

// Stats summarizes a replay.
type Stats struct {
	Events   int
	Segments int // segments actually painted
	Clears   int
}

// epoch anchors script time; only differences between samples matter.
var epoch = time.Unix(0, 0)

// Replay feeds the script's events to e in order. Segments drawn while e
// is not ready are dropped by the engine, not reported as errors. Replay
// stops early when ctx is done.
func Replay(ctx context.Context, e *engine.Engine, s *Script) (Stats, error) {
	var st Stats
	var at int64
	for i, ev := range s.Events {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		at = max(at, ev.AtMS)
		now := epoch.Add(time.Duration(at) * time.Millisecond)

		switch ev.Op {
		case OpDown:
			e.PointerDown()
		case OpMove:
			if e.PointerMove(vec.Vec2{X: ev.X, Y: ev.Y}, now) {
				st.Segments++
			}
		case OpTick:
			if e.Tick(now) {
				st.Segments++
			}
		case OpUp:
			if e.PointerUp(now) {
				st.Segments++
			}
		case OpStyle:
			if ev.Color != "" {
				if err := e.SetColor(ev.Color); err != nil {
					return st, fmt.Errorf("script: event %d: %w", i, err)
				}
			}
			if ev.Width > 0 {
				e.SetWidth(ev.Width)
			}
		case OpClear:
			e.Clear()
			st.Clears++
		case OpResize:
			if err := e.Resize(int(ev.Width), int(ev.Height)); err != nil {
				return st, fmt.Errorf("script: event %d: %w", i, err)
			}
		default:
			return st, fmt.Errorf("%w: event %d: unknown op %q", ErrInvalidScript, i, ev.Op)
		}
		st.Events++
	}
	return st, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
