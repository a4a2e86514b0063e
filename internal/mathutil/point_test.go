package mathutil

import (
	"math"
	"testing"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

func TestDistance(t *testing.T) {
	if d := Distance(vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 3, Y: 4}); d != 5 {
		t.Errorf("Distance = %v, want 5", d)
	}
}

func TestStepsCount(t *testing.T) {
	tests := []struct {
		name string
		a, b vec.Vec2
		step float64
		want float64
	}{
		{"exact multiple", vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 40, Y: 0}, 10, 4},
		{"fractional", vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 0, Y: 25}, 10, 2},
		{"shorter than step", vec.Vec2{X: 5, Y: 5}, vec.Vec2{X: 7, Y: 6}, 10, 0},
		{"same point", vec.Vec2{X: 5, Y: 5}, vec.Vec2{X: 5, Y: 5}, 10, 0},
		{"zero step", vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 10, Y: 0}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewSteps(tt.a, tt.b, tt.step).Count; got != tt.want {
				t.Errorf("Count = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStepsFollowDirection(t *testing.T) {
	a := vec.Vec2{X: 10, Y: 10}
	b := vec.Vec2{X: 10 - 30, Y: 10 + 40} // length 50
	s := NewSteps(a, b, 10)
	if s.Count != 5 {
		t.Fatalf("Count = %v, want 5", s.Count)
	}
	if s.At(0) != a {
		t.Errorf("first point = %v, want %v", s.At(0), a)
	}
	for i := 0; i < 5; i++ {
		p := s.At(i)
		wantX := a.X - 6*float64(i)
		wantY := a.Y + 8*float64(i)
		if math.Abs(p.X-wantX) > 1e-9 || math.Abs(p.Y-wantY) > 1e-9 {
			t.Errorf("point %d = %v, want (%v, %v)", i, p, wantX, wantY)
		}
	}
}

func TestStepsWithin(t *testing.T) {
	clip := rect.Rect{LLx: -5, LLy: -5, URx: 105, URy: 105}
	tests := []struct {
		name   string
		a, b   vec.Vec2
		lo, hi int
	}{
		{"inside", vec.Vec2{X: 10, Y: 10}, vec.Vec2{X: 60, Y: 10}, 0, 40},
		{"leaves far right", vec.Vec2{X: 50, Y: 50}, vec.Vec2{X: 2e6, Y: 50}, 0, 45},
		{"enters from far right", vec.Vec2{X: 2e6, Y: 50}, vec.Vec2{X: 50, Y: 50}, 1599916, 1599960},
		{"passes above", vec.Vec2{X: -1e9, Y: -50}, vec.Vec2{X: 1e9, Y: -50}, 0, 0},
		{"ends before clip", vec.Vec2{X: -500, Y: 50}, vec.Vec2{X: -100, Y: 50}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSteps(tt.a, tt.b, 1.25)
			lo, hi := s.Within(clip)
			if lo != tt.lo || hi != tt.hi {
				t.Fatalf("Within = [%d, %d), want [%d, %d)", lo, hi, tt.lo, tt.hi)
			}
			for k := lo; k < hi; k++ {
				p := s.At(k)
				if p.X < clip.LLx-1e-6 || p.X > clip.URx+1e-6 || p.Y < clip.LLy-1e-6 || p.Y > clip.URy+1e-6 {
					t.Fatalf("point %d = %v outside clip", k, p)
				}
			}
		})
	}
}

func TestStepsWithinDiagonalFarOff(t *testing.T) {
	s := NewSteps(vec.Vec2{X: -1e12, Y: -1e12}, vec.Vec2{X: 1e12, Y: 1e12}, 10)
	lo, hi := s.Within(rect.Rect{URx: 100, URy: 100})
	if n := hi - lo; n < 12 || n > 16 {
		t.Errorf("%d points inside a 100x100 box on a diagonal", n)
	}
}
