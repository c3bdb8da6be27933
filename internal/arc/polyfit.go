package arc

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// polynomial is a least-squares polynomial in a normalised abscissa
// t = (x - mid) / half, which keeps the Vandermonde matrix well conditioned
// for elevation angles up to 90 degrees.
type polynomial struct {
	coef      []float64
	mid, half float64
}

// polyfit fits a polynomial of the given order to (x, y) by QR least squares.
func polyfit(x, y []float64, order int) (*polynomial, error) {
	if len(x) <= order {
		return nil, fmt.Errorf("polyfit: %d points for order %d", len(x), order)
	}

	lo, hi := floats.Min(x), floats.Max(x)
	p := &polynomial{mid: (lo + hi) / 2, half: (hi - lo) / 2}
	if p.half == 0 {
		return nil, fmt.Errorf("polyfit: zero abscissa span")
	}

	a := mat.NewDense(len(x), order+1, nil)
	for i, xi := range x {
		t := p.normalize(xi)
		v := 1.0
		for j := 0; j <= order; j++ {
			a.Set(i, j, v)
			v *= t
		}
	}

	var c mat.VecDense
	if err := c.SolveVec(a, mat.NewVecDense(len(y), y)); err != nil {
		return nil, fmt.Errorf("polyfit: %w", err)
	}

	p.coef = make([]float64, order+1)
	for j := range p.coef {
		p.coef[j] = c.AtVec(j)
	}
	return p, nil
}

func (p *polynomial) normalize(x float64) float64 {
	return (x - p.mid) / p.half
}

// eval evaluates the polynomial at x using Horner's scheme.
func (p *polynomial) eval(x float64) float64 {
	t := p.normalize(x)
	var v float64
	for j := len(p.coef) - 1; j >= 0; j-- {
		v = v*t + p.coef[j]
	}
	return v
}
