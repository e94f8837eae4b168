// ============================================================================
// Eventphase Handler Registry
// ============================================================================
//
// Package: internal/registry
// File: registry.go
// Purpose: Per-event-type ordered sets of handler entries; registration
// and deregistration by id, and priority-ordered snapshots for dispatch.
//
// Design Philosophy:
//   Mirrors the teacher's hybrid job-manager design: one map is the
//   single source of truth (byID), and a secondary per-(type,phase)
//   index keeps listing fast. A registration-order sequence number
//   breaks priority ties, since Go's map iteration order is undefined
//   and slice order alone is not enough once entries from different
//   phases are interleaved in one call.
//
// Concurrency:
//   - sync.RWMutex protects all data structures.
//   - Snapshot() takes the lock once and returns a copy: per spec.md
//     §4.1, "the set of handlers consulted is a snapshot taken at
//     dispatch time; later registrations do not affect the in-flight
//     event."
//
// ============================================================================

package registry

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ChuLiYu/eventphase/pkg/events"
)

// ErrUnknownHandler identifies an unknown handler id. Unregister does
// not return it: it reports an unknown id by returning false.
var ErrUnknownHandler = errors.New("registry: handler id not found")

// HandlerID identifies a registered handler entry for later
// unregistration.
type HandlerID string

type location struct {
	eventType events.EventType
	phase     events.PhaseTag
	seq       uint64
}

type record struct {
	entry *events.HandlerEntry
	loc   location
}

// Registry holds the ordered sets of handler entries for every event
// type, keyed by phase tag within each type.
type Registry struct {
	mu      sync.RWMutex
	byID    map[HandlerID]*record
	byPhase map[events.EventType]map[events.PhaseTag][]HandlerID
	nextSeq uint64
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		byID:    make(map[HandlerID]*record),
		byPhase: make(map[events.EventType]map[events.PhaseTag][]HandlerID),
	}
}

// Register adds entry under eventType and returns an id usable with
// Unregister.
//
// Concurrency: protected by mutex.
func (r *Registry) Register(eventType events.EventType, entry *events.HandlerEntry) HandlerID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := HandlerID(uuid.NewString())
	r.nextSeq++
	loc := location{eventType: eventType, phase: entry.Phase(), seq: r.nextSeq}

	r.byID[id] = &record{entry: entry, loc: loc}

	byPhase, ok := r.byPhase[eventType]
	if !ok {
		byPhase = make(map[events.PhaseTag][]HandlerID)
		r.byPhase[eventType] = byPhase
	}
	byPhase[entry.Phase()] = append(byPhase[entry.Phase()], id)

	return id
}

// Unregister removes the handler entry with the given id. It returns
// false if no such entry exists.
//
// Concurrency: protected by mutex.
func (r *Registry) Unregister(id HandlerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)

	ids := r.byPhase[rec.loc.eventType][rec.loc.phase]
	for i, existing := range ids {
		if existing == id {
			r.byPhase[rec.loc.eventType][rec.loc.phase] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return true
}

// ListFor returns the handler entries registered for eventType and
// phase, ordered by ascending priority ordinal with ties broken by
// registration order (stable).
//
// Concurrency: protected by read lock.
func (r *Registry) ListFor(eventType events.EventType, phase events.PhaseTag) []*events.HandlerEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.orderedLocked(eventType, phase)
}

// Snapshot returns every phase's ordered handler list for eventType,
// taken under a single lock acquisition. The returned map is a
// dispatch-time snapshot: later Register/Unregister calls do not
// affect it.
//
// Concurrency: protected by read lock.
func (r *Registry) Snapshot(eventType events.EventType) map[events.PhaseTag][]*events.HandlerEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[events.PhaseTag][]*events.HandlerEntry)
	for phase := range r.byPhase[eventType] {
		out[phase] = r.orderedLocked(eventType, phase)
	}
	return out
}

// orderedLocked must be called with r.mu held (read or write).
func (r *Registry) orderedLocked(eventType events.EventType, phase events.PhaseTag) []*events.HandlerEntry {
	ids := r.byPhase[eventType][phase]
	if len(ids) == 0 {
		return nil
	}

	type ordered struct {
		entry *events.HandlerEntry
		seq   uint64
	}
	items := make([]ordered, 0, len(ids))
	for _, id := range ids {
		rec := r.byID[id]
		items = append(items, ordered{entry: rec.entry, seq: rec.loc.seq})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].entry.Priority() != items[j].entry.Priority() {
			return items[i].entry.Priority() < items[j].entry.Priority()
		}
		return items[i].seq < items[j].seq
	})

	out := make([]*events.HandlerEntry, len(items))
	for i, it := range items {
		out[i] = it.entry
	}
	return out
}
