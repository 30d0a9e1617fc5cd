package room

import (
	"sync"

	"github.com/google/uuid"
)

// Registry owns the set of active rooms and the connection → room index.
// All methods are safe for concurrent use. A connection is indexed exactly
// while it occupies a slot of a live room.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]*Room // room ID → room
	byConn map[string]*Room // conn ID → room
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string]*Room),
		byConn: make(map[string]*Room),
	}
}

// Create allocates a room pairing the two connections, with zero scores, no
// moves and no rematch intent, and records both index entries.
//
// Precondition: both conn IDs must be non-empty and distinct; threshold > 0.
// Postcondition: ByConn resolves both connections to the returned room.
func (g *Registry) Create(firstConn, firstNick, secondConn, secondNick string, threshold int) *Room {
	r := newRoom(uuid.NewString(), firstConn, firstNick, secondConn, secondNick, threshold)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.rooms[r.id] = r
	g.byConn[firstConn] = r
	g.byConn[secondConn] = r
	return r
}

// ByConn returns the live room the connection currently occupies.
func (g *Registry) ByConn(connID string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.byConn[connID]
	return r, ok
}

// ByID returns the live room with the given identifier.
func (g *Registry) ByID(id string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rooms[id]
	return r, ok
}

// HasConn reports whether the connection occupies any live room.
func (g *Registry) HasConn(connID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.byConn[connID]
	return ok
}

// ResetForRematch returns the room to round 1 with zeroed scores. Room
// identity and both index entries are unchanged.
func (g *Registry) ResetForRematch(r *Room) {
	r.reset()
}

// Destroy closes the room, cancelling its pending timers, and removes both
// index entries. Safe to call more than once; each entry is removed
// idempotently even after a prior partial teardown.
//
// Postcondition: No connection resolves to the room once Destroy returns.
func (g *Registry) Destroy(r *Room) {
	r.Close()

	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.rooms, r.id)
	for _, role := range []Role{RoleFirst, RoleSecond} {
		connID := r.slots[role].connID
		if cur, ok := g.byConn[connID]; ok && cur == r {
			delete(g.byConn, connID)
		}
	}
}

// RoomCount returns the number of live rooms.
func (g *Registry) RoomCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}
