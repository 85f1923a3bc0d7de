// Package geometry provides the coordinate types and transform math shared by
// the viewport, the compositor and the hit-test layer.
package geometry

import "math"

// Point2D is a position in image or screen space.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between p and q.
func (p Point2D) Distance(q Point2D) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Scale multiplies both coordinates by k.
func (p Point2D) Scale(k float64) Point2D {
	return Point2D{X: p.X * k, Y: p.Y * k}
}

// Rect is an axis-aligned box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Max returns the bottom-right corner.
func (r Rect) Max() Point2D {
	return Point2D{X: r.X + r.Width, Y: r.Y + r.Height}
}

// Size is a width/height pair. Natural image sizes start out empty until the
// image has been probed.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func NewSize(width, height float64) Size {
	return Size{Width: width, Height: height}
}

// Empty reports whether either dimension is unknown or zero.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// AffineTransform is a 2x3 matrix
//
//	[A B TX]
//	[C D TY]
//
// used where a transform carries rotation, such as the similarity estimated
// from control points.
type AffineTransform struct {
	A, B, TX float64
	C, D, TY float64
}

// Apply maps p through the matrix.
func (m AffineTransform) Apply(p Point2D) Point2D {
	return Point2D{
		X: m.A*p.X + m.B*p.Y + m.TX,
		Y: m.C*p.X + m.D*p.Y + m.TY,
	}
}

// Compose returns m∘n: n is applied first.
func (m AffineTransform) Compose(n AffineTransform) AffineTransform {
	return AffineTransform{
		A: m.A*n.A + m.B*n.C, B: m.A*n.B + m.B*n.D, TX: m.A*n.TX + m.B*n.TY + m.TX,
		C: m.C*n.A + m.D*n.C, D: m.C*n.B + m.D*n.D, TY: m.C*n.TX + m.D*n.TY + m.TY,
	}
}

// Inverse returns the inverse matrix. ok is false for a singular matrix.
func (m AffineTransform) Inverse() (inv AffineTransform, ok bool) {
	det := m.A*m.D - m.B*m.C
	if math.Abs(det) < 1e-12 {
		return AffineTransform{}, false
	}
	inv = AffineTransform{A: m.D / det, B: -m.B / det, C: -m.C / det, D: m.A / det}
	inv.TX = -(inv.A*m.TX + inv.B*m.TY)
	inv.TY = -(inv.C*m.TX + inv.D*m.TY)
	return inv, true
}
