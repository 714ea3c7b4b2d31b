package shell

import "sync/atomic"

// Stats is a snapshot of per-instance counters.
type Stats struct {
	BytesIn       uint64
	BytesOut      uint64
	Lines         uint64
	Commands      uint64
	UnknownCmds   uint64
	ArgErrors     uint64
	HandlerErrors uint64
	Panics        uint64
	WriteErrors   uint64
	Bells         uint64
}

// Add returns the field-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	s.BytesIn += o.BytesIn
	s.BytesOut += o.BytesOut
	s.Lines += o.Lines
	s.Commands += o.Commands
	s.UnknownCmds += o.UnknownCmds
	s.ArgErrors += o.ArgErrors
	s.HandlerErrors += o.HandlerErrors
	s.Panics += o.Panics
	s.WriteErrors += o.WriteErrors
	s.Bells += o.Bells
	return s
}

type counters struct {
	bytesIn       atomic.Uint64
	bytesOut      atomic.Uint64
	lines         atomic.Uint64
	commands      atomic.Uint64
	unknownCmds   atomic.Uint64
	argErrors     atomic.Uint64
	handlerErrors atomic.Uint64
	panics        atomic.Uint64
	writeErrors   atomic.Uint64
	bells         atomic.Uint64
}

// Stats returns the current counters.
func (s *Shell) Stats() Stats {
	c := &s.stats
	return Stats{
		BytesIn:       c.bytesIn.Load(),
		BytesOut:      c.bytesOut.Load(),
		Lines:         c.lines.Load(),
		Commands:      c.commands.Load(),
		UnknownCmds:   c.unknownCmds.Load(),
		ArgErrors:     c.argErrors.Load(),
		HandlerErrors: c.handlerErrors.Load(),
		Panics:        c.panics.Load(),
		WriteErrors:   c.writeErrors.Load(),
		Bells:         c.bells.Load(),
	}
}
