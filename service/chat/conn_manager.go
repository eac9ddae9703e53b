package chat

import (
	"sync"

	"FitProject/tools/errs"
)

// session pairs a client with its single current-room slot. The slot
// replaces scan-all-rooms bookkeeping: "at most one room per
// connection" is a field, not a convention.
type session struct {
	client *Client
	room   string // conversation id, "" when not viewing any
}

// ConnManager is the connection registry and presence tracker. One
// lock guards both indexes so membership/authorization reads never
// observe a connection mid-transition.
type ConnManager struct {
	mu     sync.RWMutex
	byConn map[string]*session           // conn_id -> session
	byUser map[string]map[string]*Client // user_id -> conn_id -> client
}

func NewConnManager() *ConnManager {
	return &ConnManager{
		byConn: make(map[string]*session),
		byUser: make(map[string]map[string]*Client),
	}
}

// Register records an authenticated connection. The user identity is
// immutable for the life of the session.
func (m *ConnManager) Register(c *Client) error {
	if c == nil || c.ConnID == "" || c.UserID == "" {
		return errs.ErrArgs.WrapMsg("conn/user empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byConn[c.ConnID]; exists {
		return errs.ErrArgs.WrapMsg("conn id exists", "conn", c.ConnID)
	}
	m.byConn[c.ConnID] = &session{client: c}

	mm := m.byUser[c.UserID]
	if mm == nil {
		mm = make(map[string]*Client)
		m.byUser[c.UserID] = mm
	}
	mm[c.ConnID] = c
	return nil
}

func (m *ConnManager) GetByConn(connID string) (*Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byConn[connID]
	if !ok {
		return nil, false
	}
	return s.client, true
}

// CurrentRoom returns the conversation the connection is viewing.
func (m *ConnManager) CurrentRoom(connID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byConn[connID]
	if !ok {
		return "", false
	}
	return s.room, true
}

// SetRoom swaps the current-room slot and returns what it replaced.
func (m *ConnManager) SetRoom(connID, room string) (prev string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byConn[connID]
	if !ok {
		return "", errs.ErrRecordNotFound.WrapMsg("connection", "conn", connID)
	}
	prev = s.room
	s.room = room
	return prev, nil
}

// ClearRoom empties the slot only if it still holds room; a join that
// already switched away wins.
func (m *ConnManager) ClearRoom(connID, room string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.byConn[connID]; ok && s.room == room {
		s.room = ""
	}
}

// Unregister drops the connection from both indexes and reports what
// the caller must tear down: the room left and whether this was the
// user's last connection on this gateway.
func (m *ConnManager) Unregister(connID string) (userID, roomLeft string, lastConn bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.byConn[connID]
	if !ok {
		return "", "", false
	}
	delete(m.byConn, connID)
	userID, roomLeft = s.client.UserID, s.room

	if mm := m.byUser[userID]; mm != nil {
		delete(mm, connID)
		if len(mm) == 0 {
			delete(m.byUser, userID)
			lastConn = true
		}
	}
	return userID, roomLeft, lastConn
}

func (m *ConnManager) IsOnline(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byUser[userID]) > 0
}

// ConnsOf lists the user's live connections.
func (m *ConnManager) ConnsOf(userID string) []*Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mm := m.byUser[userID]
	if len(mm) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(mm))
	for _, c := range mm {
		out = append(out, c)
	}
	return out
}
