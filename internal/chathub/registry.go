package chathub

import "sync"

// Registry maps a user id to that user's current live connection.
// A later join replaces the earlier one. It also tracks every open
// connection, joined or not, so shutdown can close them all.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
	conns   map[Client]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]Client),
		conns:   make(map[Client]struct{}),
	}
}

// Track records an open connection before it has joined.
func (r *Registry) Track(c Client) {
	r.mu.Lock()
	r.conns[c] = struct{}{}
	r.mu.Unlock()
}

// Untrack forgets a closed connection.
func (r *Registry) Untrack(c Client) {
	r.mu.Lock()
	delete(r.conns, c)
	r.mu.Unlock()
}

// Register records c as userID's connection and returns the client it
// replaced, if any.
func (r *Registry) Register(userID string, c Client) Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.clients[userID]
	r.clients[userID] = c
	if prev == c {
		return nil
	}
	return prev
}

// Unregister forgets userID regardless of which connection is stored.
func (r *Registry) Unregister(userID string) {
	r.mu.Lock()
	delete(r.clients, userID)
	r.mu.Unlock()
}

// UnregisterClient removes userID only while c is still its current
// connection, so a late disconnect of a replaced socket is a no-op.
func (r *Registry) UnregisterClient(userID string, c Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.clients[userID]; ok && cur == c {
		delete(r.clients, userID)
		return true
	}
	return false
}

func (r *Registry) Lookup(userID string) (Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[userID]
	return c, ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// CloseAll closes and forgets every connection, joined or not (server shutdown).
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.conns
	for _, c := range r.clients {
		all[c] = struct{}{}
	}
	r.clients = make(map[string]Client)
	r.conns = make(map[Client]struct{})
	r.mu.Unlock()

	for c := range all {
		c.Close()
	}
}
