package actor

import (
	"fmt"
	"sort"
	"sync"
)

// Roster tracks live actors and their locations, and provides the
// "everyone at a location" broadcast the combat engine relies on.
// All methods are safe for concurrent use.
type Roster struct {
	mu       sync.RWMutex
	actors   map[string]*Actor          // id → actor
	rooms    map[string]map[string]bool // locationID → set of actor IDs
}

// NewRoster creates an empty Roster.
func NewRoster() *Roster {
	return &Roster{
		actors: make(map[string]*Actor),
		rooms:  make(map[string]map[string]bool),
	}
}

// Add registers a and indexes it under its current location.
//
// Postcondition: returns an error if a's ID is already registered.
func (r *Roster) Add(a *Actor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actors[a.ID()]; exists {
		return fmt.Errorf("actor %q already registered", a.ID())
	}
	r.actors[a.ID()] = a
	r.indexLocked(a.ID(), a.LocationID())
	return nil
}

// Remove unregisters the actor with the given ID. Unknown IDs are a no-op.
func (r *Roster) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.actors[id]
	if !ok {
		return
	}
	r.unindexLocked(id, a.LocationID())
	delete(r.actors, id)
}

// Get returns the actor with the given ID.
func (r *Roster) Get(id string) (*Actor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actors[id]
	return a, ok
}

// Move relocates the actor and reindexes it.
//
// Postcondition: returns an error for unknown IDs; otherwise the actor's
// LocationID is locationID and room indexes are consistent.
func (r *Roster) Move(id, locationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.actors[id]
	if !ok {
		return fmt.Errorf("actor %q not registered", id)
	}
	r.unindexLocked(id, a.LocationID())
	a.MoveTo(locationID)
	r.indexLocked(id, locationID)
	return nil
}

// AtLocation returns the actors at locationID, sorted by ID for
// deterministic iteration.
func (r *Roster) AtLocation(locationID string) []*Actor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.rooms[locationID]))
	for id := range r.rooms[locationID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*Actor, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.actors[id])
	}
	return out
}

// Broadcast delivers text to every actor at locationID, best effort.
func (r *Roster) Broadcast(locationID, text string) {
	for _, a := range r.AtLocation(locationID) {
		a.Msg(text)
	}
}

func (r *Roster) indexLocked(id, locationID string) {
	if locationID == "" {
		return
	}
	set, ok := r.rooms[locationID]
	if !ok {
		set = make(map[string]bool)
		r.rooms[locationID] = set
	}
	set[id] = true
}

func (r *Roster) unindexLocked(id, locationID string) {
	set, ok := r.rooms[locationID]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(r.rooms, locationID)
	}
}
