// Package pins maps pointer positions to child-drawing polygons and issue
// pins placed in image space.
package pins

import (
	"drawing-viewer/internal/drawing"
	"drawing-viewer/pkg/geometry"
)

// HitTester decides whether a point lies inside a polygon. Rendering
// front ends with native picking can supply their own.
type HitTester interface {
	TestPoint(polygon []geometry.Point2D, p geometry.Point2D) bool
}

// RayCaster is the default HitTester.
type RayCaster struct{}

// TestPoint implements HitTester.
func (RayCaster) TestPoint(polygon []geometry.Point2D, p geometry.Point2D) bool {
	return geometry.PointInPolygon(p, polygon)
}

// HitTesterFunc adapts a function to HitTester.
type HitTesterFunc func(polygon []geometry.Point2D, p geometry.Point2D) bool

// TestPoint implements HitTester.
func (f HitTesterFunc) TestPoint(polygon []geometry.Point2D, p geometry.Point2D) bool {
	return f(polygon, p)
}

// HitChild returns the first child whose position outline contains the
// image-space point. Children without a position are skipped.
func HitChild(tester HitTester, children []drawing.Drawing, p geometry.Point2D) (*drawing.Drawing, bool) {
	if tester == nil {
		tester = RayCaster{}
	}
	for i := range children {
		poly := children[i].Position.Points()
		if len(poly) < 3 {
			continue
		}
		if tester.TestPoint(poly, p) {
			return &children[i], true
		}
	}
	return nil, false
}

// NavigationTarget resolves where a click on a child drawing leads: the first
// discipline other than AllDisciplines that lists the drawing, at its latest
// revision.
func NavigationTarget(tree drawing.Tree, childID string) (drawing.Selection, bool) {
	for _, section := range tree {
		if section.Discipline == drawing.AllDisciplines {
			continue
		}
		for _, n := range section.Nodes {
			if n.DrawingID == childID {
				return drawing.Selection{
					DrawingID:       childID,
					Discipline:      section.Discipline,
					RevisionVersion: n.LatestVersion(),
				}, true
			}
		}
	}
	return drawing.Selection{}, false
}
