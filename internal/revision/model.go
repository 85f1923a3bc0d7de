// Package revision turns a drawing's disciplines, regions and revisions into
// ordered, colored layer groups.
package revision

import (
	"drawing-viewer/internal/drawing"
)

// Default layer opacities.
const (
	PrimaryOpacity    = 1.0
	ComparisonOpacity = 0.6
)

// LayerItem is one revision prepared for compositing.
type LayerItem struct {
	Revision       drawing.Revision
	Opacity        float64
	Color          string
	ImageTransform *drawing.ImageTransform
}

// Group is the newest-first layer list of one discipline.
type Group struct {
	Discipline  string
	DrawingName string
	Visible     bool
	Layers      []LayerItem
}

// Newest returns the first layer, if any.
func (g *Group) Newest() (LayerItem, bool) {
	if g == nil || len(g.Layers) == 0 {
		return LayerItem{}, false
	}
	return g.Layers[0], true
}

// Layer returns the layer whose revision version matches.
func (g *Group) Layer(version string) (LayerItem, bool) {
	if g == nil {
		return LayerItem{}, false
	}
	for _, l := range g.Layers {
		if l.Revision.Version == version {
			return l, true
		}
	}
	return LayerItem{}, false
}

// Clone returns a deep copy of the group's layer slice.
func (g Group) Clone() Group {
	layers := make([]LayerItem, len(g.Layers))
	copy(layers, g.Layers)
	g.Layers = layers
	return g
}

// Build derives the layer groups of every discipline of d. The selected
// discipline comes first and is the only visible group. Disciplines that end
// up with no layers are omitted.
func Build(d *drawing.Drawing, selected string) []Group {
	if d == nil {
		return nil
	}

	var primary, rest []Group
	for i := range d.Disciplines {
		disc := &d.Disciplines[i]
		isSelected := disc.Name == selected

		layers := buildLayers(disc, isSelected)
		if len(layers) == 0 {
			continue
		}

		g := Group{
			Discipline:  disc.Name,
			DrawingName: d.Name,
			Visible:     isSelected,
			Layers:      layers,
		}
		if isSelected {
			primary = append(primary, g)
		} else {
			rest = append(rest, g)
		}
	}

	return append(primary, rest...)
}

func buildLayers(disc *drawing.Discipline, selected bool) []LayerItem {
	revs := drawing.CollectRevisions(disc)
	drawing.SortNewestFirst(revs)

	layers := make([]LayerItem, 0, len(revs))
	for idx, rev := range revs {
		layers = append(layers, LayerItem{
			Revision:       rev,
			Opacity:        defaultOpacity(idx, selected),
			Color:          ColorAt(disc.Name, idx),
			ImageTransform: pickTransform(rev.ImageTransform, disc.ImageTransform),
		})
	}

	if len(layers) == 0 && disc.Image != "" {
		layers = append(layers, LayerItem{
			Revision: drawing.Revision{
				Version: disc.Name,
				Image:   disc.Image,
			},
			Opacity:        defaultOpacity(0, selected),
			Color:          ColorAt(disc.Name, 0),
			ImageTransform: pickTransform(nil, disc.ImageTransform),
		})
	}

	return layers
}

// BuildLocal builds the single group used for drawings that carry no
// discipline metadata, from revisions recorded in the local store. It returns
// nil when nothing has been recorded.
func BuildLocal(discipline, drawingName string, revisions []drawing.Revision) []Group {
	if len(revisions) == 0 {
		return nil
	}

	revs := make([]drawing.Revision, len(revisions))
	copy(revs, revisions)
	drawing.SortNewestFirst(revs)

	layers := make([]LayerItem, len(revs))
	for idx, rev := range revs {
		layers[idx] = LayerItem{
			Revision:       rev,
			Opacity:        defaultOpacity(idx, true),
			Color:          ColorAt(discipline, idx),
			ImageTransform: pickTransform(rev.ImageTransform, nil),
		}
	}

	return []Group{{
		Discipline:  discipline,
		DrawingName: drawingName,
		Visible:     true,
		Layers:      layers,
	}}
}

// NewLayer wraps a freshly added revision as the front layer of a group.
func NewLayer(discipline string, rev drawing.Revision) LayerItem {
	return LayerItem{
		Revision:       rev,
		Opacity:        PrimaryOpacity,
		Color:          ColorAt(discipline, 0),
		ImageTransform: pickTransform(rev.ImageTransform, nil),
	}
}

func defaultOpacity(idx int, selected bool) float64 {
	if selected && idx == 0 {
		return PrimaryOpacity
	}
	return ComparisonOpacity
}

func pickTransform(rev, disc *drawing.ImageTransform) *drawing.ImageTransform {
	if rev != nil {
		t := *rev
		return &t
	}
	if disc != nil {
		t := *disc
		return &t
	}
	return nil
}
