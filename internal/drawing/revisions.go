package drawing

import (
	"sort"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006.01.02",
	"2006/01/02",
}

// ParseDate parses a revision date. Empty or unparsable dates return the zero
// time so they order after every dated revision when sorting newest first.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// CollectRevisions returns the discipline's own revisions followed by every
// region's revisions, in document order.
func CollectRevisions(d *Discipline) []Revision {
	if d == nil {
		return nil
	}
	revs := make([]Revision, 0, len(d.Revisions))
	revs = append(revs, d.Revisions...)
	for _, region := range d.Regions {
		revs = append(revs, region.Revisions...)
	}
	return revs
}

// SortNewestFirst stably sorts revisions by date, newest first. Equal dates
// keep their input order.
func SortNewestFirst(revs []Revision) {
	sort.SliceStable(revs, func(i, j int) bool {
		return revs[i].Time().After(revs[j].Time())
	})
}

// SortOldestFirst stably sorts revisions by date, oldest first.
func SortOldestFirst(revs []Revision) {
	sort.SliceStable(revs, func(i, j int) bool {
		return revs[i].Time().Before(revs[j].Time())
	})
}

// FlattenRevisions collects and sorts a discipline's revisions oldest first,
// so the last element is the latest revision.
func FlattenRevisions(d *Discipline) []Revision {
	revs := CollectRevisions(d)
	SortOldestFirst(revs)
	return revs
}
