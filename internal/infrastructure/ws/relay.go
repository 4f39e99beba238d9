package ws

import (
	"sort"
	"sync"
)

// Conn is a relay member. Send must not block.
type Conn interface {
	ID() string
	Send(msg *Message) bool
}

// Observer receives relay activity, typically for metrics.
type Observer interface {
	RoomsChanged(active int)
	Broadcasted(delivered, dropped int)
}

type nopObserver struct{}

func (nopObserver) RoomsChanged(int) {}
func (nopObserver) Broadcasted(int, int) {}

// Relay maps rooms to the connections currently joined to them and fans
// messages out to those connections. It does not know whether a room exists.
type Relay struct {
	mu          sync.RWMutex
	rooms       map[string]map[string]Conn     // roomID -> connID -> conn
	memberships map[string]map[string]struct{} // connID -> roomIDs
	observer    Observer
}

func NewRelay(observer Observer) *Relay {
	if observer == nil {
		observer = nopObserver{}
	}

	return &Relay{
		rooms:       make(map[string]map[string]Conn),
		memberships: make(map[string]map[string]struct{}),
		observer:    observer,
	}
}

// Join adds conn to roomID. Joining twice is a no-op.
func (r *Relay) Join(conn Conn, roomID string) {
	if conn == nil || roomID == "" {
		return
	}

	r.mu.Lock()
	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[string]Conn)
		r.rooms[roomID] = members
	}
	members[conn.ID()] = conn

	joined, ok := r.memberships[conn.ID()]
	if !ok {
		joined = make(map[string]struct{})
		r.memberships[conn.ID()] = joined
	}
	joined[roomID] = struct{}{}
	active := len(r.rooms)
	r.mu.Unlock()

	r.observer.RoomsChanged(active)
}

// Leave removes connID from roomID if it was a member.
func (r *Relay) Leave(connID, roomID string) {
	r.mu.Lock()
	r.removeLocked(connID, roomID)
	active := len(r.rooms)
	r.mu.Unlock()

	r.observer.RoomsChanged(active)
}

// Disconnect removes connID from every room it joined.
func (r *Relay) Disconnect(connID string) {
	r.mu.Lock()
	for roomID := range r.memberships[connID] {
		r.removeLocked(connID, roomID)
	}
	active := len(r.rooms)
	r.mu.Unlock()

	r.observer.RoomsChanged(active)
}

func (r *Relay) removeLocked(connID, roomID string) {
	if members, ok := r.rooms[roomID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.rooms, roomID)
		}
	}

	if joined, ok := r.memberships[connID]; ok {
		delete(joined, roomID)
		if len(joined) == 0 {
			delete(r.memberships, connID)
		}
	}
}

// Broadcast delivers msg to every current member of roomID, the sender
// included, and returns the number of members that accepted it. Members with
// a full send buffer miss the message.
func (r *Relay) Broadcast(roomID string, msg *Message) int {
	r.mu.RLock()
	members := make([]Conn, 0, len(r.rooms[roomID]))
	for _, conn := range r.rooms[roomID] {
		members = append(members, conn)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, conn := range members {
		if conn.Send(msg) {
			delivered++
		}
	}

	r.observer.Broadcasted(delivered, len(members)-delivered)
	return delivered
}

// Members returns the sorted connection ids joined to roomID.
func (r *Relay) Members(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.rooms[roomID]))
	for id := range r.rooms[roomID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Rooms returns the sorted room ids connID has joined.
func (r *Relay) Rooms(connID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.memberships[connID]))
	for id := range r.memberships[connID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Relay) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}
