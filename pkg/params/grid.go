package params

// Grid visits the cartesian product of two axes. X is the outer loop.
type Grid struct {
	X Axis
	Y Axis
	Z float64
	D float64
}

// DefaultGrid is the 21x21 grid over [-3, 3] with z=0 and d=7.
func DefaultGrid() Grid {
	return Grid{X: DefaultAxis(), Y: DefaultAxis(), Z: DefaultZ, D: DefaultD}
}

func (g Grid) Name() string { return "grid" }

func (g Grid) Validate() error {
	if err := g.X.Validate(); err != nil {
		return err
	}
	return g.Y.Validate()
}

func (g Grid) Len() int {
	return g.X.Len() * g.Y.Len()
}

func (g Grid) Points() []Point {
	xs, ys := g.X.Values(), g.Y.Values()
	points := make([]Point, 0, len(xs)*len(ys))
	for _, x := range xs {
		for _, y := range ys {
			points = append(points, Point{X: x, Y: y, Z: g.Z, D: g.D})
		}
	}
	return points
}
