// Package colorutil provides shared color utilities for layer palettes and
// overlay tinting.
package colorutil

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Common overlay colors used throughout the application.
var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Red   = color.RGBA{R: 220, G: 38, B: 38, A: 255}
	Green = color.RGBA{R: 5, G: 150, B: 105, A: 255}
	Brand = color.RGBA{R: 37, G: 99, B: 235, A: 255}
)

// ParseHex parses "#RRGGBB" or "#RGB" into an opaque color.
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// MustParseHex is ParseHex for compile-time palette literals.
func MustParseHex(s string) color.RGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// RGBToHSV converts RGB (0-255) to HSV with H in degrees [0, 360) and S, V in [0, 1].
func RGBToHSV(r, g, b float64) (h, s, v float64) {
	r /= 255.0
	g /= 255.0
	b /= 255.0

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	diff := maxC - minC

	v = maxC

	if maxC == 0 {
		s = 0
	} else {
		s = diff / maxC
	}

	if diff == 0 {
		h = 0
	} else if maxC == r {
		h = 60 * math.Mod((g-b)/diff, 6)
	} else if maxC == g {
		h = 60 * ((b-r)/diff + 2)
	} else {
		h = 60 * ((r-g)/diff + 4)
	}

	if h < 0 {
		h += 360
	}

	return h, s, v
}

// HueDegrees returns the hue of a hex color, or 0 for greys and unparsable input.
func HueDegrees(hex string) float64 {
	c, err := ParseHex(hex)
	if err != nil {
		return 0
	}
	h, s, _ := RGBToHSV(float64(c.R), float64(c.G), float64(c.B))
	if s == 0 {
		return 0
	}
	return h
}

// Matrix is a 3x3 linear color matrix applied to normalized RGB.
type Matrix [3][3]float64

// HueRotateMatrix builds the CSS filter hue-rotate() matrix.
func HueRotateMatrix(degrees float64) Matrix {
	rad := degrees * math.Pi / 180
	c := math.Cos(rad)
	s := math.Sin(rad)
	return Matrix{
		{0.213 + c*0.787 - s*0.213, 0.715 - c*0.715 - s*0.715, 0.072 - c*0.072 + s*0.928},
		{0.213 - c*0.213 + s*0.143, 0.715 + c*0.285 + s*0.140, 0.072 - c*0.072 - s*0.283},
		{0.213 - c*0.213 - s*0.787, 0.715 - c*0.715 + s*0.715, 0.072 + c*0.928 + s*0.072},
	}
}

// SaturateMatrix builds the CSS filter saturate() matrix.
func SaturateMatrix(amount float64) Matrix {
	return Matrix{
		{0.213 + 0.787*amount, 0.715 - 0.715*amount, 0.072 - 0.072*amount},
		{0.213 - 0.213*amount, 0.715 + 0.285*amount, 0.072 - 0.072*amount},
		{0.213 - 0.213*amount, 0.715 - 0.715*amount, 0.072 + 0.928*amount},
	}
}

// Mul returns m applied after o.
func (m Matrix) Mul(o Matrix) Matrix {
	var out Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += m[i][k] * o[k][j]
			}
		}
	}
	return out
}

// Apply transforms a normalized RGB triple, clamping to [0, 1].
func (m Matrix) Apply(r, g, b float64) (float64, float64, float64) {
	return clamp01(m[0][0]*r + m[0][1]*g + m[0][2]*b),
		clamp01(m[1][0]*r + m[1][1]*g + m[1][2]*b),
		clamp01(m[2][0]*r + m[2][1]*g + m[2][2]*b)
}

// TintMatrix is the overlay filter: hue-rotate(degrees) followed by saturate(2).
func TintMatrix(degrees float64) Matrix {
	return SaturateMatrix(2).Mul(HueRotateMatrix(degrees))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
