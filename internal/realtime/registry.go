// internal/realtime/registry.go

package realtime

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/solacelink/solace-backend/internal/users"
)

// Conn is one live connection handle. A user may hold any number of
// connections at once; each gets its own handle and send queue.
type Conn struct {
	id       uint64
	userID   uuid.UUID
	role     users.Role
	send     chan []byte
	done     chan struct{}
	lastBeat int64 // unix nanos, updated on every heartbeat

	closeOnce sync.Once
}

// UserID returns the identity the connection authenticated as.
func (c *Conn) UserID() uuid.UUID { return c.userID }

// Role returns the role captured at connect time. Delivery decisions
// re-resolve roles against the directory; this is informational only.
func (c *Conn) Role() users.Role { return c.role }

// Send is the outbound queue drained by the connection's write loop.
func (c *Conn) Send() <-chan []byte { return c.send }

// Done is closed when the connection is removed from the registry.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Touch records a heartbeat.
func (c *Conn) Touch() {
	atomic.StoreInt64(&c.lastBeat, time.Now().UnixNano())
}

// LastBeat reports when the connection last proved liveness.
func (c *Conn) LastBeat() time.Time {
	return time.Unix(0, atomic.LoadInt64(&c.lastBeat))
}

// trySend queues a payload without blocking. A full queue means the
// reader has stopped draining and the connection is as good as dead.
func (c *Conn) trySend(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Conn) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Registry tracks every live connection with indexes by user and by room.
// All three structures mutate under one lock so no push path ever sees a
// half-removed connection.
type Registry struct {
	mu     sync.RWMutex
	nextID uint64
	conns  map[uint64]*Conn
	byUser map[uuid.UUID]map[uint64]*Conn
	byRoom map[string]map[uint64]*Conn

	rooms map[uint64]map[string]bool // conn id -> joined rooms

	bufSize  int
	presence *Presence
}

func NewRegistry(bufSize int, presence *Presence) *Registry {
	return &Registry{
		conns:    make(map[uint64]*Conn),
		byUser:   make(map[uuid.UUID]map[uint64]*Conn),
		byRoom:   make(map[string]map[uint64]*Conn),
		rooms:    make(map[uint64]map[string]bool),
		bufSize:  bufSize,
		presence: presence,
	}
}

// Register admits a new connection for the given identity and returns its
// handle.
func (r *Registry) Register(userID uuid.UUID, role users.Role) *Conn {
	r.mu.Lock()
	r.nextID++
	c := &Conn{
		id:     r.nextID,
		userID: userID,
		role:   role,
		send:   make(chan []byte, r.bufSize),
		done:   make(chan struct{}),
	}
	c.Touch()

	r.conns[c.id] = c
	if r.byUser[userID] == nil {
		r.byUser[userID] = make(map[uint64]*Conn)
	}
	r.byUser[userID][c.id] = c
	r.rooms[c.id] = make(map[string]bool)
	total := len(r.conns)
	r.mu.Unlock()

	activeConnections.Set(float64(total))
	r.presence.MarkOnline(userID)
	return c
}

// Unregister removes a connection from every index atomically and signals
// its write loop to stop. Safe to call more than once.
func (r *Registry) Unregister(c *Conn) {
	r.mu.Lock()
	if _, ok := r.conns[c.id]; !ok {
		r.mu.Unlock()
		c.close()
		return
	}
	delete(r.conns, c.id)
	if peers := r.byUser[c.userID]; peers != nil {
		delete(peers, c.id)
		if len(peers) == 0 {
			delete(r.byUser, c.userID)
		}
	}
	for room := range r.rooms[c.id] {
		r.removeFromRoom(c.id, room)
	}
	delete(r.rooms, c.id)
	lastForUser := r.byUser[c.userID] == nil
	total := len(r.conns)
	r.mu.Unlock()

	c.close()
	activeConnections.Set(float64(total))
	if lastForUser {
		r.presence.MarkOffline(c.userID)
	}
}

// JoinRoom subscribes a connection to a room. Joining twice is a no-op.
func (r *Registry) JoinRoom(c *Conn, room string) {
	if room == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[c.id]; !ok {
		return
	}
	if r.byRoom[room] == nil {
		r.byRoom[room] = make(map[uint64]*Conn)
	}
	r.byRoom[room][c.id] = c
	r.rooms[c.id][room] = true
}

func (r *Registry) LeaveRoom(c *Conn, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[c.id]; !ok {
		return
	}
	r.removeFromRoom(c.id, room)
	delete(r.rooms[c.id], room)
}

// removeFromRoom requires r.mu held.
func (r *Registry) removeFromRoom(id uint64, room string) {
	if members := r.byRoom[room]; members != nil {
		delete(members, id)
		if len(members) == 0 {
			delete(r.byRoom, room)
		}
	}
}

// ConnectionsFor returns a snapshot of the user's live connections.
func (r *Registry) ConnectionsFor(userID uuid.UUID) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return collect(r.byUser[userID])
}

// ConnectionsInRoom returns a snapshot of a room's subscribers.
func (r *Registry) ConnectionsInRoom(room string) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return collect(r.byRoom[room])
}

// ConnectedUsers returns the distinct identities currently online.
func (r *Registry) ConnectedUsers() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(r.byUser))
	for id := range r.byUser {
		ids = append(ids, id)
	}
	return ids
}

// ActiveConnections reports the current connection count.
func (r *Registry) ActiveConnections() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Snapshot returns every live connection. Used by the liveness monitor.
func (r *Registry) Snapshot() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		all = append(all, c)
	}
	return all
}

// PushToUser delivers a payload to every connection of one user and
// reports how many accepted it. Connections with a full queue are evicted;
// a slow peer never stalls delivery to the rest.
func (r *Registry) PushToUser(userID uuid.UUID, payload []byte) int {
	return r.push(r.ConnectionsFor(userID), payload)
}

// PushToRoom delivers a payload to every subscriber of a room.
func (r *Registry) PushToRoom(room string, payload []byte) int {
	return r.push(r.ConnectionsInRoom(room), payload)
}

// PushToAll delivers a payload to every live connection.
func (r *Registry) PushToAll(payload []byte) int {
	return r.push(r.Snapshot(), payload)
}

func (r *Registry) push(targets []*Conn, payload []byte) int {
	var delivered int
	for _, c := range targets {
		if c.trySend(payload) {
			delivered++
			pushesTotal.WithLabelValues("delivered").Inc()
			continue
		}
		pushesTotal.WithLabelValues("dropped").Inc()
		log.Printf("Connection %d for user %s stopped draining, evicting", c.id, c.userID)
		r.Unregister(c)
	}
	return delivered
}

func collect(set map[uint64]*Conn) []*Conn {
	out := make([]*Conn, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}
