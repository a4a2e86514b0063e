package mathutil

import (
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Distance returns the Euclidean distance between two canvas points.
func Distance(a, b vec.Vec2) float64 {
	return b.Sub(a).Length()
}

// Angle returns the direction of travel from a to b in radians,
// measured from the +X axis towards +Y.
func Angle(a, b vec.Vec2) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

// Steps is the run of points a + k·Step·Dir, k = 0, 1, ..., that walks
// from a towards b. Count is floor(|b-a| / Step): two points closer than
// one step yield no points. It is a float so that far-away endpoints
// cannot overflow an int; callers clip with Within before iterating.
type Steps struct {
	Origin vec.Vec2
	Dir    vec.Vec2 // unit direction of travel
	Step   float64
	Count  float64
}

// NewSteps returns the steps from a towards b. A non-positive step yields
// no points.
func NewSteps(a, b vec.Vec2, step float64) Steps {
	s := Steps{Origin: a, Step: step}
	if !(step > 0) {
		return s
	}
	n := math.Floor(Distance(a, b) / step)
	if !(n >= 1) {
		return s
	}
	theta := Angle(a, b)
	s.Dir = vec.Vec2{X: math.Cos(theta), Y: math.Sin(theta)}
	s.Count = n
	return s
}

// At returns point k.
func (s Steps) At(k int) vec.Vec2 {
	return s.Origin.Add(s.Dir.Mul(float64(k) * s.Step))
}

// maxStepIndex bounds indices so int conversion stays exact.
const maxStepIndex = 1 << 52

// Within returns the index range [lo, hi) of the points lying inside r,
// edges included. The cost does not depend on Count.
func (s Steps) Within(r rect.Rect) (lo, hi int) {
	if s.Count < 1 {
		return 0, 0
	}
	t0, t1 := 0.0, (s.Count-1)*s.Step // distance along the path
	axes := [2][4]float64{
		{s.Origin.X, s.Dir.X, r.LLx, r.URx},
		{s.Origin.Y, s.Dir.Y, r.LLy, r.URy},
	}
	for _, ax := range axes {
		o, d, lower, upper := ax[0], ax[1], ax[2], ax[3]
		if math.Abs(d) < 1e-12 {
			if o < lower || o > upper {
				return 0, 0
			}
			continue
		}
		ta, tb := (lower-o)/d, (upper-o)/d
		if ta > tb {
			ta, tb = tb, ta
		}
		t0, t1 = math.Max(t0, ta), math.Min(t1, tb)
	}
	if !(t0 <= t1) {
		return 0, 0
	}
	klo, khi := math.Ceil(t0/s.Step), math.Floor(t1/s.Step)
	if klo > khi || khi > maxStepIndex {
		return 0, 0
	}
	return int(klo), int(khi) + 1
}
