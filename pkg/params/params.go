// Package params produces the parameter points a sweep visits.
//
// A point carries four values. X and Y vary per iteration, either over the
// cartesian product of two axes (Grid) or drawn uniformly at random (Random).
// Z and D are constants for the whole sweep. Varying values are rounded
// (grid values to one decimal, random values to RandomDecimals) so the value
// substituted into a macro and the value encoded in an archive name are the
// same string, and no two points of a sweep share that string.
package params

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Default sweep bounds.
const (
	DefaultMin  = -3.0
	DefaultMax  = 3.0
	DefaultStep = 0.3
	DefaultZ    = 0.0
	DefaultD    = 7.0
)

// MinStep is the finest grid step. Values are rounded to one decimal, so a
// finer step would give two points the same archive name.
const MinStep = 0.1

// Errors returned by source validation.
var (
	ErrInvalidStep  = errors.New("params: step must be positive")
	ErrStepTooFine  = errors.New("params: step must be at least 0.1")
	ErrInvalidRange = errors.New("params: min must not exceed max")
	ErrInvalidIters = errors.New("params: iters must be at least 1")
	ErrTooManyIters = errors.New("params: iters exceeds the distinct points in range")
)

// Point is one (x, y, z, d) tuple driving a single simulation run.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
	D float64 `yaml:"d" json:"d"`
}

func (p Point) String() string {
	return fmt.Sprintf("x=%s y=%s z=%s d=%s",
		FormatFloat(p.X), FormatFloat(p.Y), FormatConst(p.Z), FormatConst(p.D))
}

// Source yields the points of a sweep in visiting order.
type Source interface {
	// Name identifies the sampling mode ("grid" or "random").
	Name() string
	// Validate reports a configuration error before any point is produced.
	Validate() error
	// Len is the number of points Points will return.
	Len() int
	// Points returns every point of the sweep.
	Points() []Point
}

// Round1 rounds v to one decimal and folds negative zero into zero.
func Round1(v float64) float64 {
	return roundTo(v, 1)
}

// FormatFloat renders a varying value. Integral values keep a trailing ".0"
// so that -3 renders as "-3.0".
func FormatFloat(v float64) string {
	if v == 0 {
		v = 0
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatConst renders a constant in its shortest form, so 7 renders as "7".
func FormatConst(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Axis is an inclusive range walked with a fixed step.
type Axis struct {
	Min  float64 `yaml:"min" json:"min"`
	Max  float64 `yaml:"max" json:"max"`
	Step float64 `yaml:"step" json:"step"`
}

// DefaultAxis is the [-3, 3] range walked in steps of 0.3.
func DefaultAxis() Axis {
	return Axis{Min: DefaultMin, Max: DefaultMax, Step: DefaultStep}
}

// Validate checks the step and bounds, and that the rounded values are
// strictly increasing so every grid point keeps a distinct archive name.
func (a Axis) Validate() error {
	if err := a.checkBounds(); err != nil {
		return err
	}
	vals := a.values()
	for i := 1; i < len(vals); i++ {
		if vals[i] <= vals[i-1] {
			return fmt.Errorf("%w: step %v repeats %s after rounding", ErrStepTooFine, a.Step, FormatFloat(vals[i]))
		}
	}
	return nil
}

func (a Axis) checkBounds() error {
	if !(a.Step > 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidStep, a.Step)
	}
	if a.Step < MinStep-1e-9 {
		return fmt.Errorf("%w: got %v", ErrStepTooFine, a.Step)
	}
	if a.Min > a.Max {
		return fmt.Errorf("%w: min=%v max=%v", ErrInvalidRange, a.Min, a.Max)
	}
	return nil
}

// Len returns the number of values on the axis.
func (a Axis) Len() int {
	if a.Validate() != nil {
		return 0
	}
	return a.count()
}

func (a Axis) count() int {
	return int(math.Floor((a.Max-a.Min)/a.Step+1e-9)) + 1
}

// Values returns min, min+step, ... up to and including max, each rounded to
// one decimal.
func (a Axis) Values() []float64 {
	if a.Validate() != nil {
		return nil
	}
	return a.values()
}

func (a Axis) values() []float64 {
	n := a.count()
	if n == 1 {
		return []float64{Round1(a.Min)}
	}
	vals := floats.Span(make([]float64, n), a.Min, a.Min+a.Step*float64(n-1))
	for i, v := range vals {
		vals[i] = Round1(v)
	}
	return vals
}
