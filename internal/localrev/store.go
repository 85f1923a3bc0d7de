// Package localrev records revisions added to drawings that carry no
// discipline metadata, keyed by "drawingId-discipline".
package localrev

import (
	"context"
	"sync"

	"drawing-viewer/internal/drawing"
)

// Store is an append-only list of revisions per drawing and discipline.
type Store interface {
	Append(ctx context.Context, drawingID, discipline string, rev drawing.Revision) error
	List(ctx context.Context, drawingID, discipline string) ([]drawing.Revision, error)
	Delete(ctx context.Context, drawingID, discipline string) error
}

// MemoryStore keeps revisions in memory.
type MemoryStore struct {
	mu   sync.RWMutex
	revs map[string][]drawing.Revision
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{revs: make(map[string][]drawing.Revision)}
}

func (m *MemoryStore) Append(ctx context.Context, drawingID, discipline string, rev drawing.Revision) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := drawing.Key(drawingID, discipline)
	m.revs[key] = append(m.revs[key], rev)
	return nil
}

func (m *MemoryStore) List(ctx context.Context, drawingID, discipline string) ([]drawing.Revision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	revs := m.revs[drawing.Key(drawingID, discipline)]
	out := make([]drawing.Revision, len(revs))
	copy(out, revs)
	return out, nil
}

func (m *MemoryStore) Delete(ctx context.Context, drawingID, discipline string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.revs, drawing.Key(drawingID, discipline))
	return nil
}
