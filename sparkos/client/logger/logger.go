// Package logger sends log lines to the logger service endpoint.
package logger

import (
	"fmt"
	"sync"
	"sync/atomic"

	"sparkshell/sparkos/kernel"
	"sparkshell/sparkos/proto"
)

// Log sends a log line to the logger service from inside a task.
//
// The call is best-effort: it may drop on queue full.
func Log(ctx *kernel.Context, logCap kernel.Capability, level byte, line string) kernel.SendResult {
	if ctx == nil {
		return kernel.SendErrInvalidToCap
	}
	var buf [kernel.MaxMessageBytes]byte
	p := proto.AppendLogLine(buf[:0], level, []byte(line), len(buf))
	return ctx.SendToCapResult(logCap, uint16(proto.MsgLogLine), p)
}

// Poster delivers a message from outside any task. *kernel.Kernel satisfies it.
type Poster interface {
	Post(toCap kernel.Capability, kind uint16, payload []byte) kernel.SendResult
}

// Sink adapts structured log calls onto the logger endpoint. Each call
// becomes one line "msg key=value ...", truncated to the message size.
type Sink struct {
	k   Poster
	cap kernel.Capability

	mu      sync.Mutex
	text    []byte
	buf     []byte
	dropped atomic.Uint64
}

func NewSink(k Poster, logCap kernel.Capability) *Sink {
	return &Sink{
		k:    k,
		cap:  logCap,
		text: make([]byte, 0, kernel.MaxMessageBytes),
		buf:  make([]byte, 0, kernel.MaxMessageBytes),
	}
}

func (s *Sink) Debugw(msg string, kv ...any) { s.post(proto.LogDebug, msg, kv) }
func (s *Sink) Infow(msg string, kv ...any)  { s.post(proto.LogInfo, msg, kv) }
func (s *Sink) Warnw(msg string, kv ...any)  { s.post(proto.LogWarn, msg, kv) }

// Dropped reports lines lost to a full or missing endpoint.
func (s *Sink) Dropped() uint64 { return s.dropped.Load() }

func (s *Sink) post(level byte, msg string, kv []any) {
	if s == nil || s.k == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	text := append(s.text[:0], msg...)
	for i := 0; i < len(kv) && len(text) < kernel.MaxMessageBytes; i += 2 {
		if i+1 < len(kv) {
			text = fmt.Appendf(text, " %v=%v", kv[i], kv[i+1])
		} else {
			text = fmt.Appendf(text, " %v=?", kv[i])
		}
	}
	s.text = text[:0]
	b := proto.AppendLogLine(s.buf[:0], level, text, kernel.MaxMessageBytes)
	s.buf = b[:0]

	if res := s.k.Post(s.cap, uint16(proto.MsgLogLine), b); res != kernel.SendOK {
		s.dropped.Add(1)
	}
}
