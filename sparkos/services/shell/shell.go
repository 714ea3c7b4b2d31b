// Package shell is a line-oriented command interpreter for a byte-stream
// console. One Shell owns a line editor, a command registry, a history ring
// and a dispatcher; all working memory is sized from Config in New.
package shell

import (
	"errors"
	"fmt"
	"sync/atomic"

	"sparkshell/sparkos/kernel"
)

// Option customises a Shell at construction.
type Option func(*Shell)

// WithLogger routes diagnostics to l.
func WithLogger(l Logger) Option {
	return func(s *Shell) {
		if l != nil {
			s.log = l
		}
	}
}

// Shell is one interpreter instance bound to one transport.
//
// A Shell is driven by exactly one goroutine (Run) or one cooperative loop
// (Poll/Step). Output methods may be called from command handlers on that
// same goroutine. Stats is safe from any goroutine.
type Shell struct {
	cfg Config
	log Logger

	w Writer
	r Reader

	reg  Registry
	hist *History

	line    []byte // cap BufferSize-1
	cursor  int
	esc     [maxEscape]byte
	escLen  int
	afterCR bool

	tok   tokenizer
	argv  []string
	pbuf  boundedBuffer
	wbuf  []byte // CRLF expansion scratch
	rbuf  []byte // Poll read chunk
	seq   [16]byte
	lastW byte

	wake kernel.Capability

	started bool
	exited  atomic.Bool
	closed  bool

	stats counters
}

// New opens the transport's writer then its reader and returns a shell ready
// to run. On failure nothing stays open.
func New(t Transport, cfg Config, opts ...Option) (*Shell, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil transport", ErrShell)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w, err := t.OpenWriter()
	if err != nil {
		return nil, errors.Join(ErrOpenWriteHandle, err)
	}
	r, err := t.OpenReader()
	if err != nil {
		if cerr := w.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		return nil, errors.Join(ErrOpenReadHandle, err)
	}

	s := &Shell{
		cfg:  cfg,
		log:  nopLogger{},
		w:    w,
		r:    r,
		hist: NewHistory(cfg.HistoryDepth, cfg.BufferSize-1),
		line: make([]byte, 0, cfg.BufferSize-1),
		tok:  newTokenizer(cfg.BufferSize, cfg.MaxArgs),
		argv: make([]string, 0, cfg.MaxArgs),
		pbuf: boundedBuffer{b: make([]byte, 0, cfg.PrintfSize)},
		wbuf: make([]byte, 0, 64),
		rbuf: make([]byte, 32),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.registerBuiltins(); err != nil {
		_ = s.Close()
		return nil, err
	}
	s.log.Debugw("shell initialised",
		"prompt", cfg.Prompt,
		"buffer", cfg.BufferSize,
		"max_args", cfg.MaxArgs,
		"history", cfg.HistoryDepth,
		"mode", cfg.Mode.String(),
	)
	return s, nil
}

// Config returns the configuration the shell was built with.
func (s *Shell) Config() Config { return s.cfg }

// History exposes the history ring.
func (s *Shell) History() *History { return s.hist }

// Exited reports whether the exit command has run.
func (s *Shell) Exited() bool { return s.exited.Load() }

// Exit stops the shell after the current line. Run returns nil and Poll
// returns ErrExited from then on.
func (s *Shell) Exit() {
	if s.exited.CompareAndSwap(false, true) {
		s.log.Infow("shell exit requested")
	}
}

// RegisterCommand adds c to this shell's registry.
func (s *Shell) RegisterCommand(c *Command) error {
	if err := s.reg.Register(c); err != nil {
		return err
	}
	s.log.Debugw("command registered", "name", c.Name, "args", c.Args)
	return nil
}

// UnregisterCommand removes c, which must be the pointer that was registered.
func (s *Shell) UnregisterCommand(c *Command) error {
	if err := s.reg.Unregister(c); err != nil {
		return err
	}
	s.log.Debugw("command unregistered", "name", c.Name)
	return nil
}

// Lookup finds a registered command by name.
func (s *Shell) Lookup(name string) (*Command, bool) { return s.reg.Lookup(name) }

// Commands calls fn for each command in registration order.
func (s *Shell) Commands(fn func(*Command) bool) { s.reg.Each(fn) }

// Close releases both transport handles. It is safe to call more than once.
func (s *Shell) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	if err := s.r.Close(); err != nil {
		errs = append(errs, fmt.Errorf("shell: close reader: %w", err))
	}
	if err := s.w.Close(); err != nil {
		errs = append(errs, fmt.Errorf("shell: close writer: %w", err))
	}
	return errors.Join(errs...)
}
