package chat

import (
	"context"
	"time"

	"FitProject/logger"
	"FitProject/service/kafka"
	online "FitProject/service/storage"
	"FitProject/tools/errs"
	"FitProject/tools/ids"

	"github.com/gorilla/websocket"
)

type Config struct {
	GatewayID     string
	SendQueueSize int // per-connection outbound buffer
	FanoutWorkers int // notification pool
	FanoutQueue   int
	PresenceTTL   time.Duration // redis mirror key TTL
}

func (c *Config) norm() {
	if c.GatewayID == "" {
		c.GatewayID = "chat_gw-1"
	}
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = 256
	}
	if c.FanoutWorkers <= 0 {
		c.FanoutWorkers = 4
	}
	if c.FanoutQueue <= 0 {
		c.FanoutQueue = 1024
	}
	if c.PresenceTTL <= 0 {
		c.PresenceTTL = 2 * time.Minute
	}
}

// Server owns all gateway state: the connection registry, the room
// index, the dispatcher and the per-conversation pipeline. Everything
// is constructed here and passed down — no package-level live state —
// so tests can run several instances side by side.
type Server struct {
	conf   Config
	conns  *ConnManager
	rooms  *Rooms
	disp   *Dispatcher
	pipe   *Pipeline
	fanout *Fanout

	store Store
	auth  AuthFunc

	msgHandler kafka.ProducerHandler // nil disables the event stream
}

func NewServer(conf Config, store Store, auth AuthFunc) *Server {
	conf.norm()
	s := &Server{
		conf:   conf,
		conns:  NewConnManager(),
		rooms:  NewRooms(),
		disp:   NewDispatcher(),
		store:  store,
		auth:   auth,
		fanout: NewFanout(conf.FanoutWorkers, conf.FanoutQueue),
	}
	s.pipe = NewPipeline(s)
	registerHandlers(s.disp)
	return s
}

func (s *Server) GatewayID() string     { return s.conf.GatewayID }
func (s *Server) ConnMgr() *ConnManager { return s.conns }
func (s *Server) RoomIndex() *Rooms     { return s.rooms }

func (s *Server) SetMsgHandler(h kafka.ProducerHandler) { s.msgHandler = h }

// Register creates the session for a verified identity. Called after —
// and only after — the handshake credential check.
func (s *Server) Register(userID string, ws *websocket.Conn) (*Client, error) {
	c := NewClient(ids.GenerateString(), userID, ws, s.conf.SendQueueSize)
	if err := s.conns.Register(c); err != nil {
		return nil, err
	}
	s.touchPresence(userID)
	return c, nil
}

// Unregister tears the session down: room membership, presence, and
// the write pump (via the client's done channel).
func (s *Server) Unregister(connID string) {
	c, ok := s.conns.GetByConn(connID)
	userID, room, last := s.conns.Unregister(connID)
	if !ok {
		return
	}
	if room != "" {
		s.rooms.Leave(room, connID)
	}
	c.Close()
	if last {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := online.PresenceOffline(ctx, userID); err != nil {
			logger.Warnf("[chat] presence offline failed user=%s err=%v", userID, err)
		}
		cancel()
	}
}

// JoinRoom switches the connection's single current room: verify the
// caller is a participant, swap the slot, detach the previous room,
// attach the new one. A non-participant join fails, it never silently
// succeeds.
func (s *Server) JoinRoom(c *Client, conversationID string) error {
	if conversationID == "" {
		return errs.ErrArgs.WrapMsg("conversation id empty")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	parts, err := s.store.Participants(ctx, conversationID)
	cancel()
	if err != nil {
		return err
	}
	member := false
	for _, p := range parts {
		if p == c.UserID {
			member = true
			break
		}
	}
	if !member {
		return errs.ErrNoPermission.WrapMsg("not a participant", "conversation", conversationID)
	}

	prev, err := s.conns.SetRoom(c.ConnID, conversationID)
	if err != nil {
		return err
	}
	if prev == conversationID {
		s.rooms.Join(conversationID, c) // idempotent re-join
		return nil
	}
	if prev != "" {
		s.rooms.Leave(prev, c.ConnID)
	}
	s.rooms.Join(conversationID, c)
	return nil
}

func (s *Server) LeaveRoom(c *Client, conversationID string) {
	s.conns.ClearRoom(c.ConnID, conversationID)
	s.rooms.Leave(conversationID, c.ConnID)
}

// Broadcast enqueues the payload to every connection in the room.
// Called only from the conversation's pipeline worker, so calls for
// one room are already serialized; each member gets the payload at
// most once per call.
func (s *Server) Broadcast(conversationID string, payload []byte) {
	for _, c := range s.rooms.Members(conversationID) {
		s.enqueue(c, payload)
	}
}

// NotifyParticipants pings the conversation's participants that are
// online but not viewing the room, on every connection they hold.
func (s *Server) NotifyParticipants(msg *StoredMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	parts, err := s.store.Participants(ctx, msg.ConversationID)
	cancel()
	if err != nil {
		logger.Warnf("[chat] notify lookup failed conv=%s err=%v", msg.ConversationID, err)
		return
	}

	var targets []*Client
	for _, userID := range parts {
		for _, c := range s.conns.ConnsOf(userID) {
			if !s.rooms.Contains(msg.ConversationID, c.ConnID) {
				targets = append(targets, c)
			}
		}
	}
	s.fanout.Broadcast(targets, BuildConversationActivity(msg))
}

// enqueue never blocks: a viewer whose queue is full misses the frame
// and can recover from REST history. A closed client drops the frame;
// pipeline and fanout workers may still hold it after Unregister.
func (s *Server) enqueue(c *Client, payload []byte) {
	if c.Closed() {
		return
	}
	select {
	case c.Send <- payload:
	default:
		logger.Warnf("[chat] send queue full conn=%s user=%s, frame dropped", c.ConnID, c.UserID)
	}
}

func (s *Server) sendErrorTo(c *Client, conversationID string, err error) {
	s.enqueue(c, BuildSendError(conversationID, err))
}

func (s *Server) touchPresence(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := online.PresenceOnline(ctx, userID, s.conf.GatewayID, s.conf.PresenceTTL); err != nil {
		logger.Warnf("[chat] presence online failed user=%s err=%v", userID, err)
	}
}

// writePump is the single writer for one connection; gorilla conns do
// not allow concurrent writes. Exits when Unregister signals done.
func (s *Server) writePump(c *Client) {
	defer func() {
		if c.WS != nil {
			_ = c.WS.Close()
		}
	}()
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.Send:
			if c.WS == nil {
				continue
			}
			_ = c.WS.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.WS.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Infof("[chat] write failed conn=%s err=%v", c.ConnID, err)
				return
			}
		}
	}
}
