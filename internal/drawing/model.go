// Package drawing defines the revisioned drawing metadata consumed by the
// viewer: drawings, disciplines, regions, revisions and their geometry.
package drawing

import (
	"errors"
	"fmt"
	"time"

	"drawing-viewer/pkg/geometry"
)

// AllDisciplines is the pseudo-discipline the site plan is listed under.
const AllDisciplines = "전체"

// SitePlanID is the id of the root site-plan drawing.
const SitePlanID = "00"

var (
	// ErrNotFound is returned when a drawing id is not in the metadata.
	ErrNotFound = errors.New("drawing not found")
	// ErrNoMetadata is returned when metadata has not been loaded.
	ErrNoMetadata = errors.New("metadata not loaded")
)

// ImageTransform describes how a raster aligns with a reference image.
// A nil *ImageTransform means aligned with the base image.
type ImageTransform struct {
	RelativeTo string  `json:"relativeTo,omitempty"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Scale      float64 `json:"scale"`
	Rotation   float64 `json:"rotation"`
}

// IdentityImageTransform is the transform substituted for missing geometry.
func IdentityImageTransform() ImageTransform {
	return ImageTransform{Scale: 1}
}

// OrIdentity returns *t, or the identity transform when t is nil.
func (t *ImageTransform) OrIdentity() ImageTransform {
	if t == nil {
		return IdentityImageTransform()
	}
	return *t
}

// PolygonTransform positions a polygon outline.
type PolygonTransform struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation"`
}

// Polygon is an outline in image space.
type Polygon struct {
	Vertices         [][2]float64     `json:"vertices"`
	PolygonTransform PolygonTransform `json:"polygonTransform"`
}

// Points returns the vertices as geometry points.
func (p *Polygon) Points() []geometry.Point2D {
	if p == nil {
		return nil
	}
	return geometry.PolygonFromPairs(p.Vertices)
}

// Revision is one dated snapshot of a discipline's drawing.
type Revision struct {
	Version        string          `json:"version"`
	Image          string          `json:"image"`
	Date           string          `json:"date"`
	Description    string          `json:"description"`
	Changes        []string        `json:"changes"`
	ImageTransform *ImageTransform `json:"imageTransform,omitempty"`
	Polygon        *Polygon        `json:"polygon,omitempty"`
}

// Time parses Date. Unparsable or empty dates sort as the oldest.
func (r Revision) Time() time.Time {
	return ParseDate(r.Date)
}

// Region is a sub-area of a discipline with its own revision history.
type Region struct {
	Name      string     `json:"-"`
	Polygon   Polygon    `json:"polygon"`
	Revisions []Revision `json:"revisions"`
}

// Discipline holds one trade's revision history within a drawing.
type Discipline struct {
	Name           string          `json:"-"`
	Image          string          `json:"image,omitempty"`
	ImageTransform *ImageTransform `json:"imageTransform,omitempty"`
	Polygon        *Polygon        `json:"polygon,omitempty"`
	Regions        Regions         `json:"regions,omitempty"`
	Revisions      []Revision      `json:"revisions"`
}

// Position locates a child drawing inside its parent's image.
type Position struct {
	Vertices       [][2]float64   `json:"vertices"`
	ImageTransform ImageTransform `json:"imageTransform"`
}

// Points returns the position outline as geometry points.
func (p *Position) Points() []geometry.Point2D {
	if p == nil {
		return nil
	}
	return geometry.PolygonFromPairs(p.Vertices)
}

// Drawing is a node of the project's drawing hierarchy.
type Drawing struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Image       string      `json:"image"`
	Parent      *string     `json:"parent"`
	Position    *Position   `json:"position"`
	Disciplines Disciplines `json:"disciplines"`
}

// HasDisciplines reports whether the drawing carries discipline metadata at
// all. User-uploaded drawings do not.
func (d *Drawing) HasDisciplines() bool {
	return d != nil && d.Disciplines != nil
}

// Discipline returns the named discipline, if present.
func (d *Drawing) Discipline(name string) (*Discipline, bool) {
	if d == nil {
		return nil, false
	}
	for i := range d.Disciplines {
		if d.Disciplines[i].Name == name {
			return &d.Disciplines[i], true
		}
	}
	return nil, false
}

// ParentID returns the parent id or "" for root drawings.
func (d *Drawing) ParentID() string {
	if d == nil || d.Parent == nil {
		return ""
	}
	return *d.Parent
}

// Project describes the project the drawings belong to.
type Project struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// DisciplineInfo is an entry of the metadata discipline list.
type DisciplineInfo struct {
	Name string `json:"name"`
}

// Metadata is the root of a metadata.json document.
type Metadata struct {
	Project     Project          `json:"project"`
	Disciplines []DisciplineInfo `json:"disciplines"`
	Drawings    Drawings         `json:"drawings"`
}

// Drawing looks a drawing up by id.
func (m *Metadata) Drawing(id string) (*Drawing, error) {
	if m == nil {
		return nil, ErrNoMetadata
	}
	for i := range m.Drawings {
		if m.Drawings[i].ID == id {
			return &m.Drawings[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Children returns every drawing whose parent is parentID, in document order.
func (m *Metadata) Children(parentID string) []Drawing {
	if m == nil {
		return nil
	}
	var out []Drawing
	for _, d := range m.Drawings {
		if d.ParentID() == parentID {
			out = append(out, d)
		}
	}
	return out
}

// Selection identifies what the viewer currently shows.
type Selection struct {
	DrawingID       string `json:"drawingId"`
	Discipline      string `json:"discipline"`
	RevisionVersion string `json:"revisionVersion"`
}

// Key returns the "drawingId-discipline" key used by per-drawing stores.
func (s Selection) Key() string {
	return Key(s.DrawingID, s.Discipline)
}

// Key builds the "drawingId-discipline" store key.
func Key(drawingID, discipline string) string {
	return drawingID + "-" + discipline
}

// PinStatus is the lifecycle state of an issue pin.
type PinStatus string

const (
	PinOpen     PinStatus = "open"
	PinResolved PinStatus = "resolved"
)

// IssuePin marks an issue at an image-space pixel coordinate.
type IssuePin struct {
	ID              string    `json:"id"`
	DrawingID       string    `json:"drawingId"`
	Discipline      string    `json:"discipline"`
	RevisionVersion string    `json:"revisionVersion"`
	X               float64   `json:"x"`
	Y               float64   `json:"y"`
	IssueNumber     int       `json:"issueNumber"`
	Title           string    `json:"title"`
	Reporter        string    `json:"reporter"`
	Status          PinStatus `json:"status"`
}
