package pins

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"drawing-viewer/internal/drawing"
	"drawing-viewer/pkg/geometry"
)

// ScreenPin is a pin positioned for the current transform.
type ScreenPin struct {
	Pin drawing.IssuePin
	X   float64
	Y   float64
}

// Board holds issue pins and the placement mode.
type Board struct {
	mu       sync.RWMutex
	pins     []drawing.IssuePin
	placing  bool
	visible  bool
	reporter string
	newID    func() string
}

// NewBoard creates an empty board with pins visible.
func NewBoard(reporter string) *Board {
	return &Board{
		visible:  true,
		reporter: reporter,
		newID:    func() string { return uuid.NewString() },
	}
}

// BeginPlacement arms placement mode for the next click.
func (b *Board) BeginPlacement() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.placing = true
}

// CancelPlacement leaves placement mode without placing.
func (b *Board) CancelPlacement() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.placing = false
}

// Placing reports whether placement mode is active.
func (b *Board) Placing() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.placing
}

// Visible reports whether pins are shown.
func (b *Board) Visible() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.visible
}

// SetVisible shows or hides pins.
func (b *Board) SetVisible(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.visible = on
}

// Place converts a screen click through the current transform and stores a
// new pin for the selection. Placement mode ends afterwards. It returns
// false when placement mode is not active.
func (b *Board) Place(t geometry.Transform, screenX, screenY float64, sel drawing.Selection) (drawing.IssuePin, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.placing {
		return drawing.IssuePin{}, false
	}
	b.placing = false

	p := t.ScreenToImage(screenX, screenY)
	number := 1
	for _, existing := range b.pins {
		if existing.DrawingID == sel.DrawingID &&
			existing.Discipline == sel.Discipline &&
			existing.RevisionVersion == sel.RevisionVersion &&
			existing.IssueNumber >= number {
			number = existing.IssueNumber + 1
		}
	}

	pin := drawing.IssuePin{
		ID:              b.newID(),
		DrawingID:       sel.DrawingID,
		Discipline:      sel.Discipline,
		RevisionVersion: sel.RevisionVersion,
		X:               p.X,
		Y:               p.Y,
		IssueNumber:     number,
		Title:           fmt.Sprintf("New issue #%d", number),
		Reporter:        b.reporter,
		Status:          drawing.PinOpen,
	}
	b.pins = append(b.pins, pin)
	return pin, true
}

// Add stores an existing pin, e.g. one restored from disk.
func (b *Board) Add(pin drawing.IssuePin) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pins = append(b.pins, pin)
}

// Remove deletes a pin by id.
func (b *Board) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, p := range b.pins {
		if p.ID == id {
			b.pins = append(b.pins[:i], b.pins[i+1:]...)
			return true
		}
	}
	return false
}

// SetStatus updates a pin's status.
func (b *Board) SetStatus(id string, status drawing.PinStatus) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.pins {
		if b.pins[i].ID == id {
			b.pins[i].Status = status
			return true
		}
	}
	return false
}

// All returns a copy of every pin.
func (b *Board) All() []drawing.IssuePin {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]drawing.IssuePin, len(b.pins))
	copy(out, b.pins)
	return out
}

// ForSelection returns the pins of the selected drawing and discipline.
func (b *Board) ForSelection(sel drawing.Selection) []drawing.IssuePin {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []drawing.IssuePin
	for _, p := range b.pins {
		if p.DrawingID == sel.DrawingID && p.Discipline == sel.Discipline {
			out = append(out, p)
		}
	}
	return out
}

// ScreenPins maps the selection's pins to screen space. Hidden boards return
// nothing.
func (b *Board) ScreenPins(t geometry.Transform, sel drawing.Selection) []ScreenPin {
	if !b.Visible() {
		return nil
	}
	pins := b.ForSelection(sel)
	out := make([]ScreenPin, len(pins))
	for i, p := range pins {
		s := t.ImageToScreen(p.X, p.Y)
		out[i] = ScreenPin{Pin: p, X: s.X, Y: s.Y}
	}
	return out
}
