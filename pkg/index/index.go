// Package index holds the screenable entity set in memory. Search traffic is
// read-heavy with occasional bulk refreshes when a list update lands, so a
// single RWMutex over a flat slice is the right shape. Read methods hand back
// copied slices; callers iterate without ever holding the lock.
package index

import (
	"strings"
	"sync"

	"github.com/Ramsey-B/briar/pkg/merging"
	"github.com/Ramsey-B/briar/pkg/models"
)

// Index is the in-memory store screening runs against. Entities handed to the
// index are treated as immutable from that point on; updates replace records
// rather than editing them in place.
type Index struct {
	mu       sync.RWMutex
	entities []*models.Entity
	byID     map[string]*models.Entity
	merger   *merging.Merger
}

// New creates an empty index. The merger backs AddAllWithMerge.
func New(merger *merging.Merger) *Index {
	return &Index{
		byID:   make(map[string]*models.Entity),
		merger: merger,
	}
}

// AddAll appends entities without deduplication
func (i *Index) AddAll(entities []*models.Entity) {
	if len(entities) == 0 {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, e := range entities {
		if e == nil {
			continue
		}
		i.entities = append(i.entities, e)
		i.track(e)
	}
}

// AddAllWithMerge adds entities and folds cross-list duplicates, both within
// the new batch and against what the index already holds. The whole operation
// runs under one write lock; readers never observe a partial update.
func (i *Index) AddAllWithMerge(entities []*models.Entity) {
	if len(entities) == 0 {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	combined := make([]*models.Entity, 0, len(i.entities)+len(entities))
	combined = append(combined, i.entities...)
	combined = append(combined, entities...)
	i.replace(i.merger.Merge(combined))
}

// ReplaceAll swaps the full entity set atomically
func (i *Index) ReplaceAll(entities []*models.Entity) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.replace(entities)
}

// ReplaceAllWithMerge swaps the full entity set atomically, folding cross-list
// duplicates in the new set first. Index rebuilds use this so records upserted
// individually since the last rebuild get re-merged with their counterparts.
func (i *Index) ReplaceAllWithMerge(entities []*models.Entity) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.replace(i.merger.Merge(entities))
}

// Upsert replaces the record carrying the same source and source id, or
// appends when none exists. Returns true when an existing record was replaced.
func (i *Index) Upsert(e *models.Entity) bool {
	if e == nil {
		return false
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	key := idKey(e.Source, e.SourceID)
	if e.SourceID != "" {
		if _, ok := i.byID[key]; ok {
			for n, existing := range i.entities {
				if existing.Source == e.Source && strings.EqualFold(existing.SourceID, e.SourceID) {
					i.entities[n] = e
					i.byID[key] = e
					return true
				}
			}
		}
	}
	i.entities = append(i.entities, e)
	i.track(e)
	return false
}

// Remove drops the record carrying the given source and source id. Returns
// true when a record was removed.
func (i *Index) Remove(source models.SourceList, sourceID string) bool {
	if sourceID == "" {
		return false
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	kept := i.entities[:0]
	removed := false
	for _, e := range i.entities {
		if e.Source == source && strings.EqualFold(e.SourceID, sourceID) {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	if removed {
		i.entities = kept
		delete(i.byID, idKey(source, sourceID))
	}
	return removed
}

// All returns every entity in the index
func (i *Index) All() []*models.Entity {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]*models.Entity, len(i.entities))
	copy(out, i.entities)
	return out
}

// GetBySource returns the entities published by one list
func (i *Index) GetBySource(source models.SourceList) []*models.Entity {
	i.mu.RLock()
	defer i.mu.RUnlock()
	var out []*models.Entity
	for _, e := range i.entities {
		if e.Source == source {
			out = append(out, e)
		}
	}
	return out
}

// GetByType returns the entities of one entity type
func (i *Index) GetByType(entityType models.EntityType) []*models.Entity {
	i.mu.RLock()
	defer i.mu.RUnlock()
	var out []*models.Entity
	for _, e := range i.entities {
		if e.EntityType == entityType {
			out = append(out, e)
		}
	}
	return out
}

// FindBySourceID looks up a single record by its list identity
func (i *Index) FindBySourceID(source models.SourceList, sourceID string) (*models.Entity, bool) {
	if sourceID == "" {
		return nil, false
	}
	i.mu.RLock()
	defer i.mu.RUnlock()
	e, ok := i.byID[idKey(source, sourceID)]
	return e, ok
}

// Size returns the number of entities held
func (i *Index) Size() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entities)
}

// Clear empties the index
func (i *Index) Clear() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entities = nil
	i.byID = make(map[string]*models.Entity)
}

// replace installs a new entity set; callers hold the write lock
func (i *Index) replace(entities []*models.Entity) {
	i.entities = make([]*models.Entity, 0, len(entities))
	i.byID = make(map[string]*models.Entity, len(entities))
	for _, e := range entities {
		if e == nil {
			continue
		}
		i.entities = append(i.entities, e)
		i.track(e)
	}
}

// track registers an entity in the id lookup; callers hold the write lock
func (i *Index) track(e *models.Entity) {
	if e.SourceID == "" {
		return
	}
	i.byID[idKey(e.Source, e.SourceID)] = e
}

func idKey(source models.SourceList, sourceID string) string {
	return string(source) + "/" + strings.ToLower(sourceID)
}
