package layout

// PaddingRatio is the fraction of each cell dimension reserved as padding
// on every side when computing the inner content rectangle.
const PaddingRatio = 0.10

// minShrinkScale is the smallest scale a shrink percentage may produce.
// Shrinking never reduces a rectangle below 5% of its original size.
const minShrinkScale = 0.05

// Rect is an axis-aligned rectangle in page coordinates.
// The origin is the lower-left corner; y grows upward.
type Rect struct {
	X, Y, W, H float64
}

// CenterX returns the horizontal center of the rectangle.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the vertical center of the rectangle.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Area returns the area of the rectangle.
func (r Rect) Area() float64 { return r.W * r.H }

// Contains reports whether other lies fully inside r.
func (r Rect) Contains(other Rect) bool {
	return other.X >= r.X && other.Y >= r.Y &&
		other.X+other.W <= r.X+r.W && other.Y+other.H <= r.Y+r.H
}

// Inner returns the content rectangle after applying ratio as padding on
// all four sides. The padding is computed per dimension: ratio*W on the
// left and right, ratio*H on the top and bottom.
func (r Rect) Inner(ratio float64) Rect {
	padX := r.W * ratio
	padY := r.H * ratio
	return Rect{
		X: r.X + padX,
		Y: r.Y + padY,
		W: r.W - 2*padX,
		H: r.H - 2*padY,
	}
}

// Shrink scales the rectangle around its own center by a percentage in
// [0,100]. Values outside that range degrade to no shrink, and the scale
// is clamped so the result keeps at least 5% of the original size.
func (r Rect) Shrink(pct float64) Rect {
	if !(pct >= 0 && pct <= 100) { // also catches NaN
		pct = 0
	}
	scale := 1 - pct/100
	if scale < minShrinkScale {
		scale = minShrinkScale
	}
	if scale >= 1 {
		return r
	}
	w := r.W * scale
	h := r.H * scale
	return Rect{
		X: r.X + (r.W-w)/2,
		Y: r.Y + (r.H-h)/2,
		W: w,
		H: h,
	}
}
