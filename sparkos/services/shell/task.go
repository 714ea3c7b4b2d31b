package shell

import (
	"context"
	"errors"
	"fmt"

	"sparkshell/sparkos/kernel"
)

func (s *Shell) start() {
	if s.started {
		return
	}
	s.started = true
	s.prompt()
}

// Run is the blocking task body: one blocking byte read per iteration until
// the exit command runs, ctx is done or the reader fails. It returns nil
// after exit and ctx.Err() on cancellation. Cancellation is observed between
// bytes; unblocking a pending read is up to the transport.
func (s *Shell) Run(ctx context.Context) error {
	if s.cfg.Mode != ModeBlocking {
		return ErrMode
	}
	if s.closed {
		return ErrClosed
	}
	s.start()

	var b [1]byte
	for {
		if s.exited.Load() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := s.r.Read(b[:])
		if n > 0 {
			s.handleByte(b[0])
		}
		if err != nil {
			if s.exited.Load() {
				return nil
			}
			s.log.Debugw("transport read ended", "error", err)
			return fmt.Errorf("shell: read: %w", err)
		}
	}
}

// Poll is the non-blocking task body. It consumes whatever input is pending
// without waiting and returns the number of bytes processed.
func (s *Shell) Poll() (int, error) {
	if s.cfg.Mode != ModeNonBlocking {
		return 0, ErrMode
	}
	if s.closed {
		return 0, ErrClosed
	}
	if s.exited.Load() {
		return 0, ErrExited
	}
	s.start()

	n, err := s.r.TryRead(s.rbuf)
	for i := 0; i < n; i++ {
		s.handleByte(s.rbuf[i])
		if s.exited.Load() {
			return i + 1, nil
		}
	}
	if err != nil {
		s.log.Debugw("transport read ended", "error", err)
		return n, fmt.Errorf("shell: read: %w", err)
	}
	return n, nil
}

// WithWakeup makes an idle Step park on c instead of the next tick. The
// transport's producer must send a message to c whenever input or a read
// error becomes pending. Capabilities without RightRecv are ignored.
func WithWakeup(c kernel.Capability) Option {
	return func(s *Shell) {
		if c.Has(kernel.RightRecv) {
			s.wake = c
		}
	}
}

// Step adapts Poll to the cooperative kernel. When idle the task parks on
// the wakeup endpoint, or until the next tick without one, and it leaves
// the scheduler once the shell exits or the transport fails.
func (s *Shell) Step(ctx *kernel.Context) {
	if s.wake.Valid() {
		for {
			if _, ok := ctx.TryRecv(s.wake); !ok {
				break
			}
		}
	}
	n, err := s.Poll()
	if err != nil || s.exited.Load() {
		if err != nil && !errors.Is(err, ErrExited) {
			s.log.Warnw("shell task stopped", "error", err)
		}
		ctx.Exit()
		return
	}
	if n > 0 {
		return
	}
	if s.wake.Valid() {
		ctx.BlockOnRecv(s.wake)
		return
	}
	ctx.BlockOnTick()
}
