// Package canvas provides the interactive drawing canvas.
package canvas

import (
	"drawing-viewer/internal/drawing"
	"drawing-viewer/internal/pins"
	"drawing-viewer/pkg/geometry"
)

// Area is a clickable child drawing outline in screen coordinates.
type Area struct {
	ID      string
	Label   string
	Points  []geometry.Point2D
	Hovered bool
}

// Marker is an issue pin in screen coordinates.
type Marker struct {
	ID     string
	X, Y   float64
	Number int
	Status drawing.PinStatus
}

// Overlay is everything drawn on top of the composited layers.
type Overlay struct {
	Areas   []Area
	Markers []Marker
}

// NewOverlay projects child drawing outlines through view. Pins without an
// issue number are numbered by position.
func NewOverlay(children []drawing.Drawing, hovered string, screenPins []pins.ScreenPin, view geometry.Transform) Overlay {
	var o Overlay
	for _, child := range children {
		pts := child.Position.Points()
		if len(pts) < 3 {
			continue
		}
		o.Areas = append(o.Areas, Area{
			ID:      child.ID,
			Label:   child.Name,
			Points:  geometry.TransformPoints(view, pts),
			Hovered: child.ID == hovered,
		})
	}
	for i, sp := range screenPins {
		n := sp.Pin.IssueNumber
		if n == 0 {
			n = i + 1
		}
		o.Markers = append(o.Markers, Marker{
			ID:     sp.Pin.ID,
			X:      sp.X,
			Y:      sp.Y,
			Number: n,
			Status: sp.Pin.Status,
		})
	}
	return o
}

// Scaled converts the overlay from device-independent units to pixels.
func (o Overlay) Scaled(ratio float64) Overlay {
	if ratio == 1 {
		return o
	}
	out := Overlay{
		Areas:   make([]Area, len(o.Areas)),
		Markers: make([]Marker, len(o.Markers)),
	}
	for i, a := range o.Areas {
		pts := make([]geometry.Point2D, len(a.Points))
		for j, p := range a.Points {
			pts[j] = p.Scale(ratio)
		}
		a.Points = pts
		out.Areas[i] = a
	}
	for i, m := range o.Markers {
		m.X *= ratio
		m.Y *= ratio
		out.Markers[i] = m
	}
	return out
}
