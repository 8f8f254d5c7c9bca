// Package spline fits periodic interpolating splines through closed loops of
// control points.
package spline

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrTooFewPoints      = errors.New("spline: at least 3 control points are required")
	ErrLengthMismatch    = errors.New("spline: times and values differ in length")
	ErrUnsortedTimes     = errors.New("spline: times must start at zero and strictly increase")
	ErrOpenLoop          = errors.New("spline: last value must repeat the first")
	ErrUnsupportedDegree = errors.New("spline: degree must be 2 or 3")
	ErrSingular          = errors.New("spline: singular system")
)

// Periodic is a closed-loop interpolating spline over [0, Period()].
// It is immutable after construction and safe for concurrent use.
type Periodic struct {
	degree int
	t      []float64
	y      []float64

	// degree 3: second derivative at each data site, m[n] == m[0]
	m []float64

	// degree 2: piece k is y[k] + b[k]*u + c[k]*u*u with u = x - t[k],
	// covering [mids[k-1], mids[k]].
	b, c []float64
	mids []float64
}

// NewPeriodic fits a periodic spline of the given degree through (t[k], y[k]).
// t[0] must be 0, t must strictly increase, and y[len-1] must equal y[0].
func NewPeriodic(t, y []float64, degree int) (*Periodic, error) {
	if len(t) != len(y) {
		return nil, ErrLengthMismatch
	}
	if len(t) < 3 {
		return nil, ErrTooFewPoints
	}
	if degree != 2 && degree != 3 {
		return nil, ErrUnsupportedDegree
	}
	if t[0] != 0 {
		return nil, ErrUnsortedTimes
	}
	for k := 1; k < len(t); k++ {
		if !(t[k] > t[k-1]) {
			return nil, ErrUnsortedTimes
		}
	}
	if y[len(y)-1] != y[0] {
		return nil, ErrOpenLoop
	}

	p := &Periodic{
		degree: degree,
		t:      append([]float64(nil), t...),
		y:      append([]float64(nil), y...),
	}

	var err error
	if degree == 3 {
		err = p.fitCubic()
	} else {
		err = p.fitQuadratic()
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Degree returns the polynomial degree of each piece.
func (p *Periodic) Degree() int { return p.degree }

// Period returns the length of the fitted domain.
func (p *Periodic) Period() float64 { return p.t[len(p.t)-1] }

func (p *Periodic) segments() int { return len(p.t) - 1 }

// fitCubic solves the cyclic tridiagonal system for the second derivatives.
func (p *Periodic) fitCubic() error {
	n := p.segments()
	h := make([]float64, n)
	for i := range h {
		h[i] = p.t[i+1] - p.t[i]
	}

	a := mat.NewDense(n, n, nil)
	rhs := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		prev := (i - 1 + n) % n
		next := (i + 1) % n
		a.Set(i, prev, a.At(i, prev)+h[prev])
		a.Set(i, i, a.At(i, i)+2*(h[prev]+h[i]))
		a.Set(i, next, a.At(i, next)+h[i])

		slopeOut := (p.y[i+1] - p.y[i]) / h[i]
		slopeIn := (p.y[i] - p.y[prev]) / h[prev]
		rhs.SetVec(i, 6*(slopeOut-slopeIn))
	}

	x, err := solve(a, rhs)
	if err != nil {
		return err
	}

	p.m = make([]float64, n+1)
	for i := 0; i < n; i++ {
		p.m[i] = x.AtVec(i)
	}
	p.m[n] = p.m[0]
	return nil
}

// fitQuadratic places knots midway between data sites so that every piece
// is centred on one data site, then matches value and slope at each knot.
func (p *Periodic) fitQuadratic() error {
	n := p.segments()

	p.mids = make([]float64, n)
	for k := 0; k < n; k++ {
		p.mids[k] = (p.t[k] + p.t[k+1]) / 2
	}

	// unknowns: b[k] at 2k, c[k] at 2k+1
	a := mat.NewDense(2*n, 2*n, nil)
	rhs := mat.NewVecDense(2*n, nil)
	for k := 0; k < n; k++ {
		j := (k + 1) % n
		half := (p.t[k+1] - p.t[k]) / 2

		// value continuity at mids[k]
		row := 2 * k
		a.Set(row, 2*k, a.At(row, 2*k)+half)
		a.Set(row, 2*k+1, a.At(row, 2*k+1)+half*half)
		a.Set(row, 2*j, a.At(row, 2*j)+half)
		a.Set(row, 2*j+1, a.At(row, 2*j+1)-half*half)
		rhs.SetVec(row, p.y[j]-p.y[k])

		// slope continuity at mids[k]
		row++
		a.Set(row, 2*k, a.At(row, 2*k)+1)
		a.Set(row, 2*k+1, a.At(row, 2*k+1)+2*half)
		a.Set(row, 2*j, a.At(row, 2*j)-1)
		a.Set(row, 2*j+1, a.At(row, 2*j+1)+2*half)
	}

	x, err := solve(a, rhs)
	if err != nil {
		return err
	}

	p.b = make([]float64, n)
	p.c = make([]float64, n)
	for k := 0; k < n; k++ {
		p.b[k] = x.AtVec(2 * k)
		p.c[k] = x.AtVec(2*k + 1)
	}
	return nil
}

func solve(a *mat.Dense, rhs *mat.VecDense) (*mat.VecDense, error) {
	var x mat.VecDense
	if err := x.SolveVec(a, rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, fmt.Errorf("%w: %v", ErrSingular, err)
		}
	}
	for i := 0; i < x.Len(); i++ {
		if v := x.AtVec(i); math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrSingular
		}
	}
	return &x, nil
}

func (p *Periodic) checkDomain(x float64) {
	if math.IsNaN(x) || x < 0 || x > p.Period() {
		panic(fmt.Sprintf("spline: evaluation at %v outside fitted domain [0, %v]", x, p.Period()))
	}
}

// Eval returns the spline value at x. It panics if x lies outside
// [0, Period()].
func (p *Periodic) Eval(x float64) float64 {
	p.checkDomain(x)
	if p.degree == 3 {
		return p.evalCubic(x)
	}
	k, u := p.quadraticPiece(x)
	return p.y[k] + p.b[k]*u + p.c[k]*u*u
}

// Derivative returns the first derivative at x. It panics if x lies outside
// [0, Period()].
func (p *Periodic) Derivative(x float64) float64 {
	p.checkDomain(x)
	if p.degree == 3 {
		i := p.cubicSegment(x)
		h := p.t[i+1] - p.t[i]
		l, r := p.t[i+1]-x, x-p.t[i]
		return -p.m[i]*l*l/(2*h) + p.m[i+1]*r*r/(2*h) +
			(p.y[i+1]-p.y[i])/h - (p.m[i+1]-p.m[i])*h/6
	}
	k, u := p.quadraticPiece(x)
	return p.b[k] + 2*p.c[k]*u
}

func (p *Periodic) cubicSegment(x float64) int {
	n := p.segments()
	i := sort.Search(n, func(k int) bool { return x < p.t[k+1] })
	if i == n {
		i = n - 1
	}
	return i
}

func (p *Periodic) evalCubic(x float64) float64 {
	i := p.cubicSegment(x)
	h := p.t[i+1] - p.t[i]
	l, r := p.t[i+1]-x, x-p.t[i]
	return p.m[i]*l*l*l/(6*h) + p.m[i+1]*r*r*r/(6*h) +
		(p.y[i]-p.m[i]*h*h/6)*l/h + (p.y[i+1]-p.m[i+1]*h*h/6)*r/h
}

// quadraticPiece returns the piece covering x and the offset from its
// data site. The tail past the last knot wraps onto piece 0.
func (p *Periodic) quadraticPiece(x float64) (int, float64) {
	n := p.segments()
	k := sort.Search(n, func(i int) bool { return x < p.mids[i] })
	if k == n {
		return 0, x - p.Period()
	}
	return k, x - p.t[k]
}
