package remote

import (
	"github.com/9600org/go-osc/osc"
)

// ExactDispatcher routes messages to the handler registered for their exact
// address. Bundles are dispatched in order on the calling goroutine.
type ExactDispatcher struct {
	handlers map[string]osc.Handler
}

var _ osc.Dispatcher = &ExactDispatcher{}

func NewExactDispatcher() *ExactDispatcher {
	return &ExactDispatcher{
		handlers: make(map[string]osc.Handler),
	}
}

func (s *ExactDispatcher) AddMsgHandler(addr string, f osc.HandlerFunc) error {
	s.handlers[addr] = f
	return nil
}

func (s *ExactDispatcher) Dispatch(packet osc.Packet) {
	switch p := packet.(type) {
	case *osc.Message:
		handler, ok := s.handlers[p.Address]
		if !ok {
			return
		}
		handler.HandleMessage(p)

	case *osc.Bundle:
		for _, message := range p.Messages {
			s.Dispatch(message)
		}
		for _, b := range p.Bundles {
			s.Dispatch(b)
		}
	}
}
