package image

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"drawing-viewer/internal/compositor"
	"drawing-viewer/pkg/colorutil"
	"drawing-viewer/pkg/geometry"
)

// Background is the canvas color behind the drawing.
var Background = color.RGBA{243, 244, 246, 255}

// Source resolves a draw item's image name to decoded pixels.
type Source func(ctx context.Context, name string) (image.Image, error)

// CacheSource resolves names through a cache after mapping them to paths.
func CacheSource(c *Cache, resolve func(name string) string) Source {
	return func(ctx context.Context, name string) (image.Image, error) {
		layer, err := c.Get(ctx, resolve(name))
		if err != nil {
			return nil, err
		}
		return layer.Image, nil
	}
}

// Renderer draws a compositor draw list under a viewport transform.
type Renderer struct {
	Source     Source
	Background color.Color
	Scaler     xdraw.Transformer
}

// NewRenderer creates a renderer using bilinear resampling.
func NewRenderer(src Source) *Renderer {
	return &Renderer{
		Source:     src,
		Background: Background,
		Scaler:     xdraw.ApproxBiLinear,
	}
}

// Render produces a width x height frame. Items whose image cannot be loaded
// are skipped and reported in the returned error; the frame is still usable.
func (r *Renderer) Render(ctx context.Context, width, height int, list compositor.DrawList, view geometry.Transform) (*image.RGBA, error) {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{r.Background}, image.Point{}, draw.Src)

	var firstErr error
	for _, item := range list.Items() {
		if err := ctx.Err(); err != nil {
			return dst, err
		}
		src, err := r.Source(ctx, item.Image)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("layer %s %s: %w", item.Discipline, item.Version, err)
			}
			continue
		}
		r.renderItem(dst, src, item, view)
	}
	return dst, firstErr
}

// ItemTransform is the image-to-screen transform of one item: its relative
// alignment followed by the viewport transform.
func ItemTransform(item compositor.DrawItem, view geometry.Transform) geometry.Transform {
	if item.Relative == nil {
		return view
	}
	return view.Then(*item.Relative)
}

func (r *Renderer) renderItem(dst *image.RGBA, src image.Image, item compositor.DrawItem, view geometry.Transform) {
	t := ItemTransform(item, view)
	if t.Scale == 0 {
		return
	}

	layer := image.NewRGBA(dst.Bounds())
	m := f64.Aff3{t.Scale, 0, t.X, 0, t.Scale, t.Y}
	r.Scaler.Transform(layer, m, src, src.Bounds(), xdraw.Src, nil)

	var tint *colorutil.Matrix
	if item.Tinted {
		mat := colorutil.TintMatrix(item.HueRotate)
		tint = &mat
	}
	compositeLayer(dst, layer, item.Blend, item.Opacity, tint)
}

// compositeLayer blends a screen-aligned layer onto dst.
func compositeLayer(dst, layer *image.RGBA, mode compositor.BlendMode, opacity float64, tint *colorutil.Matrix) {
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			s := layer.RGBAAt(x, y)
			if s.A == 0 {
				continue
			}
			dst.SetRGBA(x, y, blend(dst.RGBAAt(x, y), s, mode, opacity, tint))
		}
	}
}

// blend performs the blend operation between two colors. src is
// alpha-premultiplied as stored in image.RGBA.
func blend(dst, src color.RGBA, mode compositor.BlendMode, opacity float64, tint *colorutil.Matrix) color.RGBA {
	sa := float64(src.A) / 255
	sf := [3]float64{
		float64(src.R) / 255 / sa,
		float64(src.G) / 255 / sa,
		float64(src.B) / 255 / sa,
	}
	df := [4]float64{float64(dst.R) / 255, float64(dst.G) / 255, float64(dst.B) / 255, float64(dst.A) / 255}

	if tint != nil {
		sf[0], sf[1], sf[2] = tint.Apply(sf[0], sf[1], sf[2])
	}

	var rf [3]float64
	switch mode {
	case compositor.BlendMultiply:
		rf[0] = sf[0] * df[0]
		rf[1] = sf[1] * df[1]
		rf[2] = sf[2] * df[2]
	default:
		rf = sf
	}

	// Apply opacity and alpha blending
	alpha := sa * opacity
	finalR := rf[0]*alpha + df[0]*(1-alpha)
	finalG := rf[1]*alpha + df[1]*(1-alpha)
	finalB := rf[2]*alpha + df[2]*(1-alpha)
	finalA := alpha + df[3]*(1-alpha)

	return color.RGBA{
		R: to8(finalR),
		G: to8(finalG),
		B: to8(finalB),
		A: to8(finalA),
	}
}

func to8(x float64) uint8 {
	return uint8(clamp(x, 0, 1)*255 + 0.5)
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
