package canvas

import (
	"image"
	"image/color"
	"sort"

	"drawing-viewer/internal/drawing"
	"drawing-viewer/pkg/colorutil"
	"drawing-viewer/pkg/geometry"
)

// digitPatterns contains 3x5 pixel patterns for digits 0-9.
// Each digit is represented as 5 rows of 3 bits.
var digitPatterns = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

const markerRadius = 9

var (
	areaOutline = colorutil.Brand
	areaFill    = color.RGBA{R: 37, G: 99, B: 235, A: 56}
)

func markerColor(status drawing.PinStatus) color.RGBA {
	if status == drawing.PinResolved {
		return colorutil.Green
	}
	return colorutil.Red
}

// drawOverlay draws child areas first and pins on top.
func drawOverlay(output *image.RGBA, o Overlay, pixelScale float64) {
	for _, a := range o.Areas {
		if a.Hovered {
			fillPolygon(output, a.Points, areaFill)
		}
		thickness := 1
		if a.Hovered {
			thickness = 3
		}
		n := len(a.Points)
		for i := 0; i < n; i++ {
			p1 := a.Points[i]
			p2 := a.Points[(i+1)%n]
			drawLine(output, int(p1.X), int(p1.Y), int(p2.X), int(p2.Y), areaOutline, thickness)
		}
	}

	r := markerRadius * pixelScale
	scale := int(pixelScale + 0.5)
	if scale < 1 {
		scale = 1
	}
	for _, m := range o.Markers {
		col := markerColor(m.Status)
		drawDisc(output, m.X, m.Y, r+1.5*pixelScale, colorutil.White)
		drawDisc(output, m.X, m.Y, r, col)
		drawNumber(output, m.Number, int(m.X), int(m.Y), colorutil.White, scale)
	}
}

// blendPixel composites col over the pixel at (x, y) using col's alpha.
func blendPixel(output *image.RGBA, x, y int, col color.RGBA) {
	if !(image.Point{X: x, Y: y}).In(output.Bounds()) {
		return
	}
	if col.A == 255 {
		output.SetRGBA(x, y, col)
		return
	}
	a := float64(col.A) / 255
	dst := output.RGBAAt(x, y)
	mix := func(s, d uint8) uint8 {
		return uint8(float64(s)*a + float64(d)*(1-a) + 0.5)
	}
	output.SetRGBA(x, y, color.RGBA{
		R: mix(col.R, dst.R),
		G: mix(col.G, dst.G),
		B: mix(col.B, dst.B),
		A: 255,
	})
}

// fillPolygon fills a polygon using a scanline algorithm.
func fillPolygon(output *image.RGBA, points []geometry.Point2D, col color.RGBA) {
	if len(points) < 3 {
		return
	}
	bb := geometry.BoundingBox(points)
	bounds := output.Bounds()

	minY := int(bb.Y)
	maxY := int(bb.Max().Y)
	if minY < bounds.Min.Y {
		minY = bounds.Min.Y
	}
	if maxY >= bounds.Max.Y {
		maxY = bounds.Max.Y - 1
	}

	n := len(points)
	var xs []float64
	for y := minY; y <= maxY; y++ {
		fy := float64(y) + 0.5
		xs = xs[:0]
		for i := 0; i < n; i++ {
			p1 := points[i]
			p2 := points[(i+1)%n]
			if (p1.Y <= fy && p2.Y > fy) || (p2.Y <= fy && p1.Y > fy) {
				t := (fy - p1.Y) / (p2.Y - p1.Y)
				xs = append(xs, p1.X+t*(p2.X-p1.X))
			}
		}
		sort.Float64s(xs)

		for i := 0; i+1 < len(xs); i += 2 {
			x1, x2 := int(xs[i]+0.5), int(xs[i+1]+0.5)
			if x1 < bounds.Min.X {
				x1 = bounds.Min.X
			}
			if x2 > bounds.Max.X {
				x2 = bounds.Max.X
			}
			for x := x1; x < x2; x++ {
				blendPixel(output, x, y, col)
			}
		}
	}
}

// drawLine draws a line between two points using Bresenham's algorithm.
func drawLine(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	for {
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				blendPixel(output, x1+s, y1+t, col)
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// drawDisc draws a filled circle.
func drawDisc(output *image.RGBA, cx, cy, r float64, col color.RGBA) {
	r2 := r * r
	for y := int(cy - r - 1); y <= int(cy+r+1); y++ {
		for x := int(cx - r - 1); x <= int(cx+r+1); x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy <= r2 {
				blendPixel(output, x, y, col)
			}
		}
	}
}

// drawNumber draws n centered at (centerX, centerY) with the 3x5 digit font.
func drawNumber(output *image.RGBA, n int, centerX, centerY int, col color.RGBA, scale int) {
	if n < 0 {
		return
	}
	var digits []int
	for {
		digits = append([]int{n % 10}, digits...)
		n /= 10
		if n == 0 {
			break
		}
	}

	charWidth := 3 * scale
	charHeight := 5 * scale
	spacing := scale
	labelWidth := len(digits)*charWidth + (len(digits)-1)*spacing
	startX := centerX - labelWidth/2
	startY := centerY - charHeight/2

	for i, d := range digits {
		pattern := digitPatterns[d]
		charX := startX + i*(charWidth+spacing)
		for row := 0; row < 5; row++ {
			for c := 0; c < 3; c++ {
				if pattern[row]&(1<<(2-c)) == 0 {
					continue
				}
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						blendPixel(output, charX+c*scale+dx, startY+row*scale+dy, col)
					}
				}
			}
		}
	}
}
