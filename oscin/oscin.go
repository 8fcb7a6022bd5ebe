// Package oscin exposes parameters and the transport to OSC control
// surfaces.
//
// For every parameter named NAME the following addresses are handled:
//
//	/param/NAME/value  f   set the value (gesture triggered)
//	/param/NAME/touch  i   1 when the control is touched, 0 when released
//	/param/NAME/mode   s   read, touch, latch or write
//
// and for the transport:
//
//	/transport/play    i   1 to play, 0 to stop
//	/transport/loop    ff  loop start and end; equal values turn looping off
//	/transport/locate  f   move the play head
//	/flush                 flush all recordings now
package oscin

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/hypebeast/go-osc/osc"
	"github.com/sirupsen/logrus"
	"github.com/vsariola/autorec"
	"github.com/vsariola/autorec/recorder"
)

// Server receives OSC messages and forwards them to a broker.
type Server struct {
	broker     *recorder.Broker
	log        logrus.FieldLogger
	dispatcher *osc.StandardDispatcher

	mu   sync.Mutex
	conn net.PacketConn
}

func NewServer(broker *recorder.Broker, log logrus.FieldLogger) *Server {
	s := &Server{broker: broker, log: log, dispatcher: osc.NewStandardDispatcher()}
	s.addTransportHandlers()
	return s
}

// Dispatcher returns the dispatcher routing the messages.
func (s *Server) Dispatcher() osc.Dispatcher { return s.dispatcher }

// AddParameter adds the handlers of p.
func (s *Server) AddParameter(p *autorec.Parameter) error {
	prefix := "/param/" + p.Name()
	if err := s.dispatcher.AddMsgHandler(prefix+"/value", func(msg *osc.Message) {
		if v, ok := floatArg(msg, 0); ok {
			s.send(recorder.ValueMsg{Param: p, Value: v, Trigger: autorec.GestureTrigger})
		}
	}); err != nil {
		return fmt.Errorf("osc: %w", err)
	}
	if err := s.dispatcher.AddMsgHandler(prefix+"/touch", func(msg *osc.Message) {
		if v, ok := floatArg(msg, 0); ok && v == 0 {
			s.send(recorder.GestureEndMsg{Param: p})
		}
	}); err != nil {
		return fmt.Errorf("osc: %w", err)
	}
	if err := s.dispatcher.AddMsgHandler(prefix+"/mode", func(msg *osc.Message) {
		str, ok := stringArg(msg, 0)
		if !ok {
			return
		}
		m, err := autorec.ParseMode(str)
		if err != nil {
			s.log.WithError(err).WithField("address", msg.Address).Warn("osc: bad mode")
			return
		}
		s.send(recorder.ModeMsg{Param: p, Mode: m})
	}); err != nil {
		return fmt.Errorf("osc: %w", err)
	}
	return nil
}

func (s *Server) addTransportHandlers() {
	s.dispatcher.AddMsgHandler("/transport/play", func(msg *osc.Message) {
		if v, ok := floatArg(msg, 0); ok {
			s.send(recorder.PlayMsg{Playing: v != 0})
		}
	})
	s.dispatcher.AddMsgHandler("/transport/loop", func(msg *osc.Message) {
		start, ok1 := floatArg(msg, 0)
		end, ok2 := floatArg(msg, 1)
		if ok1 && ok2 {
			s.send(recorder.LoopMsg{Loop: autorec.Range{Start: start, End: end}})
		}
	})
	s.dispatcher.AddMsgHandler("/transport/locate", func(msg *osc.Message) {
		if v, ok := floatArg(msg, 0); ok {
			s.send(recorder.PositionMsg{Position: v})
		}
	})
	s.dispatcher.AddMsgHandler("/flush", func(msg *osc.Message) {
		s.send(recorder.FlushMsg{})
	})
}

func (s *Server) send(msg any) {
	if !recorder.TrySend(s.broker.ToRecorder, msg) {
		s.log.WithField("type", fmt.Sprintf("%T", msg)).Warn("osc: recorder queue full, dropping message")
	}
}

// ListenAndServe listens on the UDP address addr and serves until Close is
// called.
func (s *Server) ListenAndServe(addr string) error {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return fmt.Errorf("osc: cannot listen on %s: %w", addr, err)
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	s.log.WithField("addr", conn.LocalAddr().String()).Info("osc server started")
	server := &osc.Server{Addr: addr, Dispatcher: s.dispatcher}
	if err := server.Serve(conn); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("osc: %w", err)
	}
	return nil
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func floatArg(msg *osc.Message, i int) (float64, bool) {
	if i >= len(msg.Arguments) {
		return 0, false
	}
	switch v := msg.Arguments[i].(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func stringArg(msg *osc.Message, i int) (string, bool) {
	if i >= len(msg.Arguments) {
		return "", false
	}
	v, ok := msg.Arguments[i].(string)
	return v, ok
}
