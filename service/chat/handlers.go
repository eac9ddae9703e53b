package chat

import (
	"FitProject/logger"
)

// Frame handlers. Each runs on the connection's read goroutine; the
// send path hops onto the conversation's pipeline worker so handler
// errors here are payload/room problems only.

type joinHandler struct{}

func (joinHandler) Type() string { return FrameJoinRoom }
func (joinHandler) Handle(s *Server, f *Frame, c *Client) error {
	p, err := f.RoomPayload()
	if err != nil {
		s.sendErrorTo(c, "", err)
		return err
	}
	if err := s.JoinRoom(c, p.ConversationID); err != nil {
		s.sendErrorTo(c, p.ConversationID, err)
		return err
	}
	s.enqueue(c, BuildRoomJoined(p.ConversationID))
	return nil
}

type leaveHandler struct{}

func (leaveHandler) Type() string { return FrameLeaveRoom }
func (leaveHandler) Handle(s *Server, f *Frame, c *Client) error {
	p, err := f.RoomPayload()
	if err != nil {
		s.sendErrorTo(c, "", err)
		return err
	}
	s.LeaveRoom(c, p.ConversationID)
	return nil
}

type sendHandler struct{}

func (sendHandler) Type() string { return FrameSendMessage }
func (sendHandler) Handle(s *Server, f *Frame, c *Client) error {
	p, err := f.SendPayload()
	if err != nil {
		s.sendErrorTo(c, "", err)
		return err
	}
	s.pipe.Submit(sendJob{conn: c, conversationID: p.ConversationID, body: p.Body})
	return nil
}

type pingHandler struct{}

func (pingHandler) Type() string { return FramePing }
func (pingHandler) Handle(s *Server, _ *Frame, c *Client) error {
	s.enqueue(c, BuildPong())
	s.touchPresence(c.UserID)
	return nil
}

func registerHandlers(d *Dispatcher) {
	d.Register(joinHandler{})
	d.Register(leaveHandler{})
	d.Register(sendHandler{})
	d.Register(pingHandler{})
	logger.Debugf("[chat] %d frame handlers registered", len(d.handlers))
}
