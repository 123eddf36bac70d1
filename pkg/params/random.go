package params

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// RandomDecimals is the precision of randomly drawn values. It is fine
// enough that a sample rarely draws the same (x, y) twice; when it does the
// pair is drawn again.
const RandomDecimals = 4

// maxRedraws bounds how often a duplicate pair is drawn again.
const maxRedraws = 64

// Random draws Iters distinct (x, y) pairs uniformly from [Min, Max], each
// value rounded to RandomDecimals. The same Seed always yields the same points.
type Random struct {
	Iters int
	Seed  uint64
	Min   float64
	Max   float64
	Z     float64
	D     float64
}

func (r Random) Name() string { return "random" }

func (r Random) Validate() error {
	if r.Iters < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidIters, r.Iters)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%w: min=%v max=%v", ErrInvalidRange, r.Min, r.Max)
	}
	if cells := r.cells(); float64(r.Iters) > cells {
		return fmt.Errorf("%w: %d requested, %.0f available in [%v, %v]", ErrTooManyIters, r.Iters, cells, r.Min, r.Max)
	}
	return nil
}

// cells is a lower bound on the distinct (x, y) pairs the range holds.
func (r Random) cells() float64 {
	perAxis := math.Floor((r.Max-r.Min)*math.Pow10(RandomDecimals)+1e-6) + 1
	return perAxis * perAxis
}

func (r Random) Len() int {
	if r.Iters < 0 {
		return 0
	}
	return r.Iters
}

// Points draws the sample. Rounding and clamping keep both bounds reachable.
func (r Random) Points() []Point {
	rng := rand.New(rand.NewPCG(r.Seed, r.Seed^0x9e3779b97f4a7c15))
	points := make([]Point, 0, r.Len())
	seen := make(map[[2]float64]bool, r.Len())
	for i := 0; i < r.Len(); i++ {
		x, y := r.draw(rng), r.draw(rng)
		for attempt := 0; seen[[2]float64{x, y}] && attempt < maxRedraws; attempt++ {
			x, y = r.draw(rng), r.draw(rng)
		}
		seen[[2]float64{x, y}] = true
		points = append(points, Point{X: x, Y: y, Z: r.Z, D: r.D})
	}
	return points
}

func (r Random) draw(rng *rand.Rand) float64 {
	v := roundTo(r.Min+rng.Float64()*(r.Max-r.Min), RandomDecimals)
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// roundTo rounds v to the given number of decimals, folding negative zero
// into zero.
func roundTo(v float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	r := math.Round(v*scale) / scale
	if r == 0 {
		return 0
	}
	return r
}
