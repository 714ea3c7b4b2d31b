// Package logger is the kernel task that drains log lines from an endpoint
// into the board's hal.Logger.
package logger

import (
	"sync/atomic"

	"sparkshell/hal"
	"sparkshell/sparkos/kernel"
	"sparkshell/sparkos/proto"
)

// drainMax bounds the lines handled in one Step so other tasks still run.
const drainMax = 8

// Service is the logger task. Its counters may be read from any goroutine.
type Service struct {
	log hal.Logger
	ep  kernel.Capability

	line    [kernel.MaxMessageBytes + 4]byte
	handled atomic.Uint64
	skipped atomic.Uint64
}

// New returns a logger task that receives on ep and writes to log. A nil log
// drains lines without writing them.
func New(log hal.Logger, ep kernel.Capability) *Service {
	return &Service{log: log, ep: ep}
}

// Step handles up to drainMax pending lines, then parks on the endpoint once
// it is empty.
func (s *Service) Step(ctx *kernel.Context) {
	for i := 0; i < drainMax; i++ {
		msg, ok := ctx.TryRecv(s.ep)
		if !ok {
			ctx.BlockOnRecv(s.ep)
			return
		}
		s.handle(&msg)
	}
}

// Handled reports how many lines reached the hal.Logger.
func (s *Service) Handled() uint64 { return s.handled.Load() }

// Skipped reports messages of the wrong kind or with an empty payload.
func (s *Service) Skipped() uint64 { return s.skipped.Load() }

func (s *Service) handle(msg *kernel.Message) {
	if proto.Kind(msg.Kind) != proto.MsgLogLine {
		s.skipped.Add(1)
		return
	}
	level, text, ok := proto.ParseLogLine(msg.Payload())
	if !ok {
		s.skipped.Add(1)
		return
	}
	if s.log == nil {
		return
	}

	b := append(s.line[:0], '[', level, ']', ' ')
	b = append(b, text...)
	s.log.WriteLineBytes(b)
	s.handled.Add(1)
}
