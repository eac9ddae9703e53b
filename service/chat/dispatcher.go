package chat

import (
	"github.com/golang/glog"
)

type Handler interface {
	Type() string
	Handle(s *Server, f *Frame, c *Client) error
}

type Dispatcher struct {
	handlers map[string]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler)}
}

func (d *Dispatcher) Register(h Handler) { d.handlers[h.Type()] = h }

// Dispatch routes a parsed frame; unknown types are logged and dropped
// so one bad client cannot take the read loop down.
func (d *Dispatcher) Dispatch(s *Server, f *Frame, c *Client) error {
	h, ok := d.handlers[f.Type]
	if !ok {
		glog.Infof("no handler for type=%v", f.Type)
		return nil
	}
	return h.Handle(s, f, c)
}
