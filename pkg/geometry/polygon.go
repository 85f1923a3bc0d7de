package geometry

import "math"

// PointInPolygon reports whether p lies inside polygon by counting crossings
// of a horizontal ray cast to the right. Fewer than three vertices never
// contain a point.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	n := len(polygon)
	if n < 3 {
		return false
	}
	crossings := 0
	prev := polygon[n-1]
	for _, cur := range polygon {
		if (cur.Y > p.Y) != (prev.Y > p.Y) {
			x := cur.X + (p.Y-cur.Y)*(prev.X-cur.X)/(prev.Y-cur.Y)
			if p.X < x {
				crossings++
			}
		}
		prev = cur
	}
	return crossings%2 == 1
}

// PolygonFromPairs converts [x, y] vertex pairs as stored in drawing metadata.
func PolygonFromPairs(pairs [][2]float64) []Point2D {
	if len(pairs) == 0 {
		return nil
	}
	points := make([]Point2D, len(pairs))
	for i, v := range pairs {
		points[i] = Point2D{X: v[0], Y: v[1]}
	}
	return points
}

// BoundingBox returns the smallest axis-aligned box containing points.
func BoundingBox(points []Point2D) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	return Rect{X: lo.X, Y: lo.Y, Width: hi.X - lo.X, Height: hi.Y - lo.Y}
}

// TransformPoints applies t to every point.
func TransformPoints(t Transform, points []Point2D) []Point2D {
	out := make([]Point2D, len(points))
	for i, p := range points {
		out[i] = t.ImageToScreen(p.X, p.Y)
	}
	return out
}
