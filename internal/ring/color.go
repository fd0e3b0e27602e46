package ring

// Color is an RGB triple with components in [0, 1].
type Color struct {
	R, G, B float64
}

// Lerp returns the component-wise linear blend between c and other.
func (c Color) Lerp(other Color, t float64) Color {
	return Color{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
	}
}

// Gradient is a three-stop color gradient indexed by intensity.
type Gradient struct {
	Low  Color
	Mid  Color
	High Color
}

// At interpolates the gradient piecewise-linearly across intensity thirds:
// [0,1/3) low→mid, [1/3,2/3) mid→high, [2/3,1] high→low.
//
// The last third wraps back to Low rather than saturating at High. That
// cyclic discontinuity at intensity 1 is the mapping's actual behavior and
// is kept on purpose.
func (g Gradient) At(t float64) Color {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	switch {
	case t < 1.0/3.0:
		return g.Low.Lerp(g.Mid, t*3)
	case t < 2.0/3.0:
		return g.Mid.Lerp(g.High, (t-1.0/3.0)*3)
	default:
		return g.High.Lerp(g.Low, (t-2.0/3.0)*3)
	}
}

// isZero reports whether the gradient has no stops set.
func (g Gradient) isZero() bool {
	return g.Low == (Color{}) && g.Mid == (Color{}) && g.High == (Color{})
}
