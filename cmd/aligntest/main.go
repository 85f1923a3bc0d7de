// Command aligntest estimates a revision's image transform from matched
// points and optionally writes it into metadata.json.
//
// The pairs file holds one correspondence per line:
//
//	refX refY imgX imgY
//
// where ref is a point in the reference (base) image and img the same
// feature in the revision image. Lines starting with # are ignored.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"drawing-viewer/internal/drawing"
	"drawing-viewer/pkg/geometry"
)

func main() {
	pairsPath := flag.String("pairs", "", "Path to point pairs file")
	metaPath := flag.String("meta", "", "metadata.json to update (optional)")
	drawingID := flag.String("drawing", "", "Drawing ID to update")
	discipline := flag.String("discipline", "", "Discipline to update")
	version := flag.String("revision", "", "Revision version to update")
	relativeTo := flag.String("relative-to", "", "Name of the reference image")
	flag.Parse()

	if *pairsPath == "" {
		fmt.Println("Usage: aligntest -pairs <file> [-meta metadata.json -drawing ID -discipline NAME -revision VERSION]")
		os.Exit(1)
	}

	f, err := os.Open(*pairsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open pairs: %v\n", err)
		os.Exit(1)
	}
	ref, img, err := parsePairs(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse pairs: %v\n", err)
		os.Exit(1)
	}

	sim, err := geometry.EstimateSimilarity(ref, img)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Estimation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== %d correspondences ===\n", len(ref))
	fmt.Printf("scale=%.6f rotation=%.3f° offset=(%.2f, %.2f)\n", sim.Scale, sim.Rotation, sim.X, sim.Y)
	fmt.Printf("RMS residual: %.3f px\n", sim.Residual(ref, img))

	t := toImageTransform(sim, *relativeTo)
	out, _ := json.MarshalIndent(t, "", "  ")
	fmt.Printf("\nimageTransform:\n%s\n", out)

	if *metaPath == "" {
		return
	}
	if err := writeTransform(*metaPath, *drawingID, *discipline, *version, t); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to update metadata: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nUpdated %s %s %s in %s\n", *drawingID, *discipline, *version, *metaPath)
}

// parsePairs reads "refX refY imgX imgY" lines.
func parsePairs(r io.Reader) (ref, img []geometry.Point2D, err error) {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.FieldsFunc(text, func(r rune) bool { return r == ' ' || r == '\t' || r == ',' })
		if len(fields) != 4 {
			return nil, nil, fmt.Errorf("line %d: want 4 numbers, got %d", line, len(fields))
		}
		var v [4]float64
		for i, s := range fields {
			if v[i], err = strconv.ParseFloat(s, 64); err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		ref = append(ref, geometry.Point2D{X: v[0], Y: v[1]})
		img = append(img, geometry.Point2D{X: v[2], Y: v[3]})
	}
	return ref, img, scanner.Err()
}

func toImageTransform(s geometry.Similarity, relativeTo string) drawing.ImageTransform {
	return drawing.ImageTransform{
		RelativeTo: relativeTo,
		X:          s.X,
		Y:          s.Y,
		Scale:      s.Scale,
		Rotation:   s.Rotation,
	}
}

// writeTransform stores t on one revision of the metadata file.
func writeTransform(path, drawingID, discipline, version string, t drawing.ImageTransform) error {
	m, err := drawing.LoadMetadata(path)
	if err != nil {
		return err
	}
	d, err := m.Drawing(drawingID)
	if err != nil {
		return err
	}
	disc, ok := d.Discipline(discipline)
	if !ok {
		return fmt.Errorf("drawing %s has no discipline %q", drawingID, discipline)
	}
	rev := findRevision(disc, version)
	if rev == nil {
		return fmt.Errorf("%s %s has no revision %q", drawingID, discipline, version)
	}
	rev.ImageTransform = &t
	return m.Save(path)
}

func findRevision(disc *drawing.Discipline, version string) *drawing.Revision {
	for i := range disc.Revisions {
		if disc.Revisions[i].Version == version {
			return &disc.Revisions[i]
		}
	}
	for i := range disc.Regions {
		for j := range disc.Regions[i].Revisions {
			if disc.Regions[i].Revisions[j].Version == version {
				return &disc.Regions[i].Revisions[j]
			}
		}
	}
	return nil
}
