package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drawing-viewer/internal/drawing"
	"drawing-viewer/pkg/geometry"
)

func TestParsePairs(t *testing.T) {
	input := `# ref -> revision
0 0 10 20
100 0 210 20

0,100,10,220
`
	ref, img, err := parsePairs(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, ref, 3)
	assert.Equal(t, geometry.Point2D{X: 100, Y: 0}, ref[1])
	assert.Equal(t, geometry.Point2D{X: 10, Y: 220}, img[2])

	sim, err := geometry.EstimateSimilarity(ref, img)
	require.NoError(t, err)
	assert.InDelta(t, 2, sim.Scale, 1e-9)
	assert.InDelta(t, 10, sim.X, 1e-9)
	assert.InDelta(t, 20, sim.Y, 1e-9)
	assert.InDelta(t, 0, sim.Rotation, 1e-9)
}

func TestParsePairsErrors(t *testing.T) {
	_, _, err := parsePairs(strings.NewReader("1 2 3\n"))
	assert.ErrorContains(t, err, "line 1")

	_, _, err = parsePairs(strings.NewReader("1 2 3 x\n"))
	assert.Error(t, err)
}

func TestWriteTransform(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	m := &drawing.Metadata{
		Drawings: drawing.Drawings{{
			ID: "01", Name: "101동",
			Disciplines: drawing.Disciplines{{
				Name:      "구조",
				Revisions: []drawing.Revision{{Version: "S1", Image: "s1.png"}},
				Regions: drawing.Regions{{
					Name:      "A",
					Revisions: []drawing.Revision{{Version: "A1", Image: "a1.png"}},
				}},
			}},
		}},
	}
	require.NoError(t, m.Save(path))

	tr := drawing.ImageTransform{RelativeTo: "01.png", X: 10, Y: 20, Scale: 2}
	require.NoError(t, writeTransform(path, "01", "구조", "A1", tr))

	loaded, err := drawing.LoadMetadata(path)
	require.NoError(t, err)
	d, err := loaded.Drawing("01")
	require.NoError(t, err)
	disc, ok := d.Discipline("구조")
	require.True(t, ok)
	require.NotNil(t, disc.Regions[0].Revisions[0].ImageTransform)
	assert.Equal(t, tr, *disc.Regions[0].Revisions[0].ImageTransform)
	assert.Nil(t, disc.Revisions[0].ImageTransform)

	assert.Error(t, writeTransform(path, "01", "구조", "missing", tr))
	assert.Error(t, writeTransform(path, "01", "전기", "S1", tr))
	assert.ErrorIs(t, writeTransform(path, "99", "구조", "S1", tr), drawing.ErrNotFound)
}
