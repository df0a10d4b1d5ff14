package service

import (
	"sync"
	"sync/atomic"
	"time"

	"fleet-tracker/internal/tracking/model"

	"github.com/google/uuid"
)

// snapshot is one committed reconciliation result for an organization.
type snapshot struct {
	units    []model.TrackingUnit
	sequence uint64
	loaded   bool
	loadedAt time.Time
}

// Store is the process-wide cache of the last reconciled unit list, keyed by
// organization. Snapshots are replaced wholesale, never mutated field by
// field, so readers always see an internally-consistent list.
//
// Overlapping passes are resolved by completion order: Commit discards any
// pass whose sequence number is below the one already stored.
type Store struct {
	mu        sync.RWMutex
	snapshots map[uuid.UUID]*snapshot
	seq       atomic.Uint64
}

func NewStore() *Store {
	return &Store{
		snapshots: make(map[uuid.UUID]*snapshot),
	}
}

// NextSequence hands out the monotonic ordering token for a new pass.
func (s *Store) NextSequence() uint64 {
	return s.seq.Add(1)
}

// Loaded reports whether a snapshot is currently held for the organization.
// A cleared marker (after a failed pass) forces the next attempt through.
func (s *Store) Loaded(orgID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[orgID]
	return ok && snap.loaded
}

// Units returns the organization's current unit list and whether one exists.
// The returned slice is the committed snapshot; callers must not mutate it.
func (s *Store) Units(orgID uuid.UUID) ([]model.TrackingUnit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[orgID]
	if !ok {
		return nil, false
	}
	return snap.units, true
}

// Commit atomically replaces the organization's snapshot. Returns false when
// the pass lost the race to a later one and was discarded.
func (s *Store) Commit(orgID uuid.UUID, units []model.TrackingUnit, sequence uint64, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.snapshots[orgID]; ok && prev.sequence > sequence {
		return false
	}

	s.snapshots[orgID] = &snapshot{
		units:    units,
		sequence: sequence,
		loaded:   true,
		loadedAt: now,
	}
	return true
}

// Invalidate clears the loaded marker after a failed pass so the next
// attempt is not skipped by the cache, while leaving the previous units in
// place: stale-but-available beats empty.
func (s *Store) Invalidate(orgID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap, ok := s.snapshots[orgID]; ok {
		snap.loaded = false
	}
}
