// Package remote exposes the controller of an instance as an OSC surface.
package remote

import (
	"context"
	"errors"
	"math"
	"net"

	"github.com/9600org/go-osc/osc"

	"github.com/justyntemme/jsgain/pkg/framework/debug"
	"github.com/justyntemme/jsgain/pkg/jsgain"
)

// Addresses of the surface.
const (
	AddrMessage   = "/jsgain/message"
	AddrLeftGain  = "/jsgain/gain/left"
	AddrRightGain = "/jsgain/gain/right"
	AddrLink      = "/jsgain/link"
	AddrBypass    = "/jsgain/bypass"
	AddrReset     = "/jsgain/reset"
	AddrStats     = "/jsgain/stats"
)

const maxPacketSize = 65507

// Target is the controller driven by the surface.
type Target interface {
	SendMessage(text string) jsgain.UIMessage
	SetLeftGain(normalized float64)
	SetRightGain(normalized float64)
	SetLink(link bool)
	SetBypass(bypass bool)
	PressResetMax(pressed bool)
	Stats() jsgain.Stats
}

// Surface maps OSC messages onto controller edits and reports the
// statistics back.
type Surface struct {
	target     Target
	reply      Client
	clock      jsgain.Clock
	dispatcher *ExactDispatcher
}

// NewSurface creates a surface driving target. reply may be nil when no
// statistics should be sent.
func NewSurface(target Target, reply Client, clock jsgain.Clock) *Surface {
	if clock == nil {
		clock = jsgain.SystemClock
	}
	s := &Surface{
		target:     target,
		reply:      reply,
		clock:      clock,
		dispatcher: NewExactDispatcher(),
	}
	s.dispatcher.AddMsgHandler(AddrMessage, func(m *osc.Message) {
		text, err := getStringArg(m, 0)
		if err != nil {
			debug.Warn("%s: %v", m.Address, err)
			return
		}
		s.target.SendMessage(text)
	})
	s.dispatcher.AddMsgHandler(AddrLeftGain, s.gainHandler(target.SetLeftGain))
	s.dispatcher.AddMsgHandler(AddrRightGain, s.gainHandler(target.SetRightGain))
	s.dispatcher.AddMsgHandler(AddrLink, boolHandler(target.SetLink))
	s.dispatcher.AddMsgHandler(AddrBypass, boolHandler(target.SetBypass))
	s.dispatcher.AddMsgHandler(AddrReset, boolHandler(target.PressResetMax))
	return s
}

func (s *Surface) gainHandler(set func(float64)) osc.HandlerFunc {
	return func(m *osc.Message) {
		v, err := getFloatArg(m, 0)
		if err != nil {
			debug.Warn("%s: %v", m.Address, err)
			return
		}
		set(math.Max(0, math.Min(1, float64(v))))
	}
}

func boolHandler(set func(bool)) osc.HandlerFunc {
	return func(m *osc.Message) {
		v, err := getBoolArg(m, 0)
		if err != nil {
			debug.Warn("%s: %v", m.Address, err)
			return
		}
		set(v)
	}
}

// Dispatch applies a packet received from the surface.
func (s *Surface) Dispatch(p osc.Packet) {
	s.dispatcher.Dispatch(p)
}

// StatsMessage builds the statistics report: sample rate, peak since the
// last reset and milliseconds since the last reset.
func (s *Surface) StatsMessage() *osc.Message {
	stats := s.target.Stats()
	elapsed := s.clock() - stats.ResetTime
	elapsed = max(0, min(elapsed, math.MaxInt32))
	return osc.NewMessage(AddrStats, float32(stats.SampleRate), float32(stats.MaxSinceReset), int32(elapsed))
}

// SendStats reports the statistics to the reply client.
func (s *Surface) SendStats() error {
	if s.reply == nil {
		return nil
	}
	return s.reply.Send(s.StatsMessage())
}

// Serve reads packets from conn until ctx is done or conn fails. Malformed
// packets are logged and skipped.
func (s *Surface) Serve(ctx context.Context, conn net.PacketConn) error {
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, maxPacketSize)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return ctx.Err()
			}
			return err
		}
		p, err := osc.ParsePacket(string(buf[:n]))
		if err != nil {
			debug.Warn("ignoring packet from %v: %v", from, err)
			continue
		}
		s.Dispatch(p)
	}
}
