package panels

import (
	"fmt"
	"math"
	"strings"

	"drawing-viewer/internal/drawing"
	"drawing-viewer/internal/revision"
)

// revisionLabel is the one-line title of a layer row.
func revisionLabel(l revision.LayerItem) string {
	parts := []string{l.Revision.Version}
	if l.Revision.Date != "" {
		parts = append(parts, l.Revision.Date)
	}
	if l.Revision.Description != "" {
		parts = append(parts, l.Revision.Description)
	}
	return strings.Join(parts, " · ")
}

// changesText lists a revision's changes, one per line.
func changesText(r drawing.Revision) string {
	if len(r.Changes) == 0 {
		return ""
	}
	return "- " + strings.Join(r.Changes, "\n- ")
}

func opacityPercent(opacity float64) float64 {
	return math.Round(opacity * 100)
}

// groupTitle names a layer group card.
func groupTitle(g revision.Group) string {
	if g.DrawingName == "" {
		return g.Discipline
	}
	return fmt.Sprintf("%s · %s", g.Discipline, g.DrawingName)
}

// pinLabel summarizes an issue pin for the issues list.
func pinLabel(p drawing.IssuePin) string {
	status := "open"
	if p.Status == drawing.PinResolved {
		status = "resolved"
	}
	return fmt.Sprintf("#%d %s (%s, %s) at %.0f,%.0f", p.IssueNumber, p.Title, p.RevisionVersion, status, p.X, p.Y)
}

// sectionTitle labels a tree accordion section.
func sectionTitle(s drawing.TreeSection) string {
	return fmt.Sprintf("%s (%d)", s.Discipline, len(s.Nodes))
}
