package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Similarity is a uniform-scale, rotation and translation transform. Rotation
// is in degrees, positive clockwise in screen space (y down).
type Similarity struct {
	X        float64
	Y        float64
	Scale    float64
	Rotation float64
}

// Apply maps a point through the similarity.
func (s Similarity) Apply(p Point2D) Point2D {
	return s.Affine().Apply(p)
}

// Affine returns the equivalent affine matrix.
func (s Similarity) Affine() AffineTransform {
	rad := s.Rotation * math.Pi / 180
	a := s.Scale * math.Cos(rad)
	b := s.Scale * math.Sin(rad)
	return AffineTransform{A: a, B: -b, TX: s.X, C: b, D: a, TY: s.Y}
}

// EstimateSimilarity fits the similarity that best maps src onto dst in the
// least-squares sense. At least two distinct correspondences are required.
func EstimateSimilarity(src, dst []Point2D) (Similarity, error) {
	if len(src) != len(dst) {
		return Similarity{}, fmt.Errorf("point count mismatch: %d vs %d", len(src), len(dst))
	}
	n := len(src)
	if n < 2 {
		return Similarity{}, fmt.Errorf("need at least 2 points, got %d", n)
	}

	// x' = a*x - b*y + tx
	// y' = b*x + a*y + ty
	A := mat.NewDense(n*2, 4, nil)
	B := mat.NewVecDense(n*2, nil)

	for i := 0; i < n; i++ {
		x, y := src[i].X, src[i].Y

		A.Set(i*2, 0, x)
		A.Set(i*2, 1, -y)
		A.Set(i*2, 2, 1)
		B.SetVec(i*2, dst[i].X)

		A.Set(i*2+1, 0, y)
		A.Set(i*2+1, 1, x)
		A.Set(i*2+1, 3, 1)
		B.SetVec(i*2+1, dst[i].Y)
	}

	var qr mat.QR
	qr.Factorize(A)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return Similarity{}, fmt.Errorf("solve similarity: %w", err)
	}

	a, b := params.AtVec(0), params.AtVec(1)
	scale := math.Hypot(a, b)
	if scale < 1e-12 || math.IsNaN(scale) {
		return Similarity{}, fmt.Errorf("degenerate correspondences")
	}

	return Similarity{
		X:        params.AtVec(2),
		Y:        params.AtVec(3),
		Scale:    scale,
		Rotation: math.Atan2(b, a) * 180 / math.Pi,
	}, nil
}

// Residual returns the RMS distance between s(src) and dst.
func (s Similarity) Residual(src, dst []Point2D) float64 {
	if len(src) == 0 || len(src) != len(dst) {
		return 0
	}
	var sum float64
	for i := range src {
		d := s.Apply(src[i]).Distance(dst[i])
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(src)))
}
