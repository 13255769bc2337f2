package app

import "sync"

// Identity is the (room, player) pair a connection speaks for.
type Identity struct {
	RoomCode string
	PlayerID string
}

// Registry maps live connections to identities and back. One connection per player.
type Registry struct {
	mu       sync.RWMutex
	byConn   map[Conn]Identity
	byPlayer map[string]Conn
}

func NewRegistry() *Registry {
	return &Registry{
		byConn:   make(map[Conn]Identity),
		byPlayer: make(map[string]Conn),
	}
}

// Bind attaches conn to id and returns the identity it replaced, if any.
func (r *Registry) Bind(conn Conn, id Identity) (Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, had := r.byConn[conn]
	if had && r.byPlayer[prev.PlayerID] == conn {
		delete(r.byPlayer, prev.PlayerID)
	}
	r.byConn[conn] = id
	r.byPlayer[id.PlayerID] = conn
	return prev, had
}

func (r *Registry) Resolve(conn Conn) (Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byConn[conn]
	return id, ok
}

func (r *Registry) Lookup(playerID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.byPlayer[playerID]
	return conn, ok
}

// Unbind forgets conn and returns the identity it was bound to.
func (r *Registry) Unbind(conn Conn) (Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byConn[conn]
	if !ok {
		return Identity{}, false
	}
	delete(r.byConn, conn)
	if r.byPlayer[id.PlayerID] == conn {
		delete(r.byPlayer, id.PlayerID)
	}
	return id, true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}
