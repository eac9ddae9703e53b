package chat

import (
	"sync"
)

// Rooms is the fan-out index: conversation id -> the connections
// currently viewing it. Which room a connection is in lives in the
// ConnManager slot; this index only answers "who gets this publish".
type Rooms struct {
	mu      sync.RWMutex
	members map[string]map[string]*Client // conversation_id -> conn_id -> client
}

func NewRooms() *Rooms {
	return &Rooms{members: make(map[string]map[string]*Client)}
}

func (r *Rooms) Join(conversationID string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mm := r.members[conversationID]
	if mm == nil {
		mm = make(map[string]*Client)
		r.members[conversationID] = mm
	}
	mm[c.ConnID] = c
}

func (r *Rooms) Leave(conversationID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mm := r.members[conversationID]; mm != nil {
		delete(mm, connID)
		if len(mm) == 0 {
			delete(r.members, conversationID)
		}
	}
}

// Members snapshots the current membership. Broadcast iterates the
// snapshot, so one publish delivers at most once per connection even
// if membership shifts mid-delivery.
func (r *Rooms) Members(conversationID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mm := r.members[conversationID]
	if len(mm) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(mm))
	for _, c := range mm {
		out = append(out, c)
	}
	return out
}

// Contains reports whether a connection is in the room.
func (r *Rooms) Contains(conversationID, connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mm := r.members[conversationID]
	_, ok := mm[connID]
	return ok
}
