package params

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"negative integral", -3.0, "-3.0"},
		{"positive fraction", 0.3, "0.3"},
		{"zero", 0, "0.0"},
		{"negative zero", math.Copysign(0, -1), "0.0"},
		{"integral", 3, "3.0"},
		{"negative fraction", -2.7, "-2.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFloat(tt.in))
		})
	}
}

func TestFormatConst(t *testing.T) {
	assert.Equal(t, "0", FormatConst(0))
	assert.Equal(t, "7", FormatConst(7))
	assert.Equal(t, "2.5", FormatConst(2.5))
	assert.Equal(t, "0", FormatConst(math.Copysign(0, -1)))
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 1.2346, roundTo(1.23456, 4))
	assert.Equal(t, 0.3, Round1(0.1+0.2))
	assert.Equal(t, -2.7, Round1(-3+0.3))
	assert.False(t, math.Signbit(Round1(-0.04)), "rounded negative zero must be positive")
}

func TestAxisValues(t *testing.T) {
	vals := DefaultAxis().Values()
	require.Len(t, vals, 21)

	assert.Equal(t, -3.0, vals[0])
	assert.Equal(t, 3.0, vals[20])
	assert.Equal(t, 0.0, vals[10])
	assert.False(t, math.Signbit(vals[10]))
	assert.Contains(t, vals, 0.3)
	assert.Contains(t, vals, -2.7)

	for _, v := range vals {
		assert.Equal(t, Round1(v), v, "value %v is not rounded to one decimal", v)
	}
}

func TestAxisEdgeCases(t *testing.T) {
	tests := []struct {
		name    string
		axis    Axis
		want    []float64
		wantErr error
	}{
		{"single value", Axis{Min: 1, Max: 1, Step: 0.5}, []float64{1}, nil},
		{"step larger than range", Axis{Min: 0, Max: 0.2, Step: 1}, []float64{0}, nil},
		{"max not on lattice", Axis{Min: 0, Max: 1, Step: 0.4}, []float64{0, 0.4, 0.8}, nil},
		{"zero step", Axis{Min: 0, Max: 1, Step: 0}, nil, ErrInvalidStep},
		{"negative step", Axis{Min: 0, Max: 1, Step: -0.1}, nil, ErrInvalidStep},
		{"inverted range", Axis{Min: 1, Max: 0, Step: 0.1}, nil, ErrInvalidRange},
		{"step below rounding precision", Axis{Min: 0, Max: 0.2, Step: 0.05}, nil, ErrStepTooFine},
		{"tiny step", Axis{Min: -3, Max: 3, Step: 0.01}, nil, ErrStepTooFine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.axis.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, tt.axis.Values())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tt.axis.Values())
		})
	}
}

func TestAxisOffLatticeStepKeepsValuesDistinct(t *testing.T) {
	a := Axis{Min: 0, Max: 0.6, Step: 0.15}
	require.NoError(t, a.Validate())

	vals := a.Values()
	require.Len(t, vals, 5)
	for i := 1; i < len(vals); i++ {
		assert.Greater(t, vals[i], vals[i-1])
	}
}

func TestGridVisitsCartesianProduct(t *testing.T) {
	g := DefaultGrid()
	require.NoError(t, g.Validate())

	points := g.Points()
	require.Len(t, points, 21*21)
	assert.Equal(t, g.Len(), len(points))

	// x is the outer loop
	assert.Equal(t, Point{X: -3, Y: -3, Z: 0, D: 7}, points[0])
	assert.Equal(t, Point{X: -3, Y: -2.7, Z: 0, D: 7}, points[1])
	assert.Equal(t, Point{X: -2.7, Y: -3, Z: 0, D: 7}, points[21])
	assert.Equal(t, Point{X: 3, Y: 3, Z: 0, D: 7}, points[len(points)-1])

	seen := make(map[[2]float64]bool)
	for _, p := range points {
		key := [2]float64{p.X, p.Y}
		assert.False(t, seen[key], "point %v visited twice", p)
		seen[key] = true
	}
}

func TestRandomDrawsExactlyIters(t *testing.T) {
	r := Random{Iters: 500, Seed: 42, Min: -3, Max: 3, Z: 0, D: 7}
	require.NoError(t, r.Validate())

	points := r.Points()
	require.Len(t, points, 500)
	for _, p := range points {
		assert.GreaterOrEqual(t, p.X, -3.0)
		assert.LessOrEqual(t, p.X, 3.0)
		assert.GreaterOrEqual(t, p.Y, -3.0)
		assert.LessOrEqual(t, p.Y, 3.0)
		assert.Equal(t, roundTo(p.X, RandomDecimals), p.X)
		assert.Equal(t, roundTo(p.Y, RandomDecimals), p.Y)
		assert.Equal(t, 0.0, p.Z)
		assert.Equal(t, 7.0, p.D)
	}
}

func TestRandomPointsAreDistinct(t *testing.T) {
	tests := []struct {
		name string
		r    Random
	}{
		{"default range", Random{Iters: 100, Seed: 42, Min: -3, Max: 3, D: 7}},
		{"large sample", Random{Iters: 2000, Seed: 1, Min: -3, Max: 3}},
		{"crowded range", Random{Iters: 8, Seed: 3, Min: 0, Max: 0.0003}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.r.Validate())
			points := tt.r.Points()
			require.Len(t, points, tt.r.Iters)

			names := make(map[string]bool)
			for _, p := range points {
				names[FormatFloat(p.X)+"_"+FormatFloat(p.Y)] = true
			}
			assert.Len(t, names, tt.r.Iters)
		})
	}
}

func TestRandomIsReproducible(t *testing.T) {
	a := Random{Iters: 20, Seed: 7, Min: -3, Max: 3}.Points()
	b := Random{Iters: 20, Seed: 7, Min: -3, Max: 3}.Points()
	c := Random{Iters: 20, Seed: 8, Min: -3, Max: 3}.Points()

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestRandomValidate(t *testing.T) {
	assert.ErrorIs(t, Random{Iters: 0, Min: -3, Max: 3}.Validate(), ErrInvalidIters)
	assert.ErrorIs(t, Random{Iters: 1, Min: 3, Max: -3}.Validate(), ErrInvalidRange)
	assert.Equal(t, 0, Random{Iters: -1}.Len())
	assert.ErrorIs(t, Random{Iters: 17, Min: 0, Max: 0.0003}.Validate(), ErrTooManyIters)
	assert.NoError(t, Random{Iters: 1, Min: 2, Max: 2}.Validate())
	assert.ErrorIs(t, Random{Iters: 2, Min: 2, Max: 2}.Validate(), ErrTooManyIters)
}

func TestPointString(t *testing.T) {
	p := Point{X: -3, Y: 0.3, Z: 0, D: 7}
	assert.Equal(t, "x=-3.0 y=0.3 z=0 d=7", p.String())
}
