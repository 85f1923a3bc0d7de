package geometry

import "math"

// Viewport limits shared by the controller and the fit computation.
const (
	DefaultMinScale   = 0.1
	DefaultMaxScale   = 8.0
	DefaultZoomFactor = 1.2
	DefaultFitPadding = 24.0
)

// Transform maps image space to screen space with a uniform scale followed by
// a translation: screen = image*Scale + (X, Y).
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// IdentityTransform is the transform a viewport starts from before any fit.
func IdentityTransform() Transform {
	return Transform{Scale: 1}
}

// divisor guards every division by Scale. A zero scale is treated as 1.
func (t Transform) divisor() float64 {
	if t.Scale == 0 {
		return 1
	}
	return t.Scale
}

// ScreenToImage maps a screen-space point into image space.
func (t Transform) ScreenToImage(screenX, screenY float64) Point2D {
	s := t.divisor()
	return Point2D{
		X: (screenX - t.X) / s,
		Y: (screenY - t.Y) / s,
	}
}

// ImageToScreen maps an image-space point into screen space.
func (t Transform) ImageToScreen(imageX, imageY float64) Point2D {
	return Point2D{
		X: imageX*t.Scale + t.X,
		Y: imageY*t.Scale + t.Y,
	}
}

// Affine returns the equivalent affine matrix.
func (t Transform) Affine() AffineTransform {
	return AffineTransform{A: t.Scale, D: t.Scale, TX: t.X, TY: t.Y}
}

// Then returns the transform that applies inner first and t afterwards.
func (t Transform) Then(inner Transform) Transform {
	return Transform{
		X:     inner.X*t.Scale + t.X,
		Y:     inner.Y*t.Scale + t.Y,
		Scale: inner.Scale * t.Scale,
	}
}

// ClampScale limits a scale to [minScale, maxScale].
func ClampScale(scale, minScale, maxScale float64) float64 {
	return math.Max(minScale, math.Min(maxScale, scale))
}

// FitTransform computes the transform that shows a whole image centered in a
// container with symmetric padding. It returns false when the image size is
// not known yet. If the padding leaves no room, it is dropped so the scale
// stays positive. The result is not clamped to the viewport limits.
func FitTransform(containerW, containerH, imageW, imageH, padding float64) (Transform, bool) {
	if imageW <= 0 || imageH <= 0 || containerW <= 0 || containerH <= 0 {
		return Transform{}, false
	}

	availW := containerW - 2*padding
	availH := containerH - 2*padding
	if availW <= 0 || availH <= 0 {
		availW, availH = containerW, containerH
	}

	scale := math.Min(availW/imageW, availH/imageH)
	return Transform{
		X:     (containerW - imageW*scale) / 2,
		Y:     (containerH - imageH*scale) / 2,
		Scale: scale,
	}, true
}

// ZoomAbout scales t by factor, clamped to [minScale, maxScale], keeping the
// image point under the pivot fixed on screen. A transform with zero scale is
// returned unchanged.
func ZoomAbout(t Transform, pivotX, pivotY, factor, minScale, maxScale float64) Transform {
	if t.Scale == 0 {
		return t
	}
	newScale := ClampScale(t.Scale*factor, minScale, maxScale)
	ratio := newScale / t.Scale
	return Transform{
		X:     pivotX - (pivotX-t.X)*ratio,
		Y:     pivotY - (pivotY-t.Y)*ratio,
		Scale: newScale,
	}
}
