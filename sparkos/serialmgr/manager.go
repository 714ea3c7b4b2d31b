// Package serialmgr adapts a hal.Serial byte stream to the shell transport
// contract: one write handle, one read handle, and a receive ring that the
// shell can drain with or without blocking.
package serialmgr

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"sparkshell/hal"
	"sparkshell/sparkos/services/shell"
)

var (
	ErrNoDevice    = errors.New("serialmgr: no serial device")
	ErrAlreadyOpen = errors.New("serialmgr: handle already open")
	ErrClosed      = errors.New("serialmgr: closed")
)

// DefaultRxBuffer is the receive ring size when none is configured.
const DefaultRxBuffer = 256

// Option configures a Manager.
type Option func(*Manager)

// WithRxBuffer sets the receive ring size, rounded up to a power of two.
func WithRxBuffer(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.rxSize = n
		}
	}
}

// WithoutPump disables the device read goroutine. Bytes must then be
// supplied with Feed, as a UART interrupt handler would.
func WithoutPump() Option {
	return func(m *Manager) { m.pump = false }
}

// WithRxNotify calls fn each time received bytes or a device error become
// visible to TryRead, and once on Close. fn runs on the feeding goroutine
// and must not block.
func WithRxNotify(fn func()) Option {
	return func(m *Manager) { m.rxNotify = fn }
}

// Manager owns a serial device and hands out at most one writer and one
// reader at a time.
type Manager struct {
	dev    hal.Serial
	rxSize int
	pump   bool

	wmu       sync.Mutex
	writeOpen atomic.Bool
	readOpen  atomic.Bool

	rx       *ring
	notify   chan struct{}
	rxNotify func()
	done     chan struct{}
	stopped  chan struct{}

	startOnce sync.Once
	closeOnce sync.Once

	errMu  sync.Mutex
	rxErr  error
	drops  atomic.Uint64
	closed atomic.Bool
}

// New returns a manager for dev. A nil dev makes every open fail.
func New(dev hal.Serial, opts ...Option) *Manager {
	m := &Manager{
		dev:     dev,
		rxSize:  DefaultRxBuffer,
		pump:    true,
		notify:  make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.rx = newRing(m.rxSize)
	return m
}

// OpenWriter implements shell.Transport.
func (m *Manager) OpenWriter() (shell.Writer, error) {
	if m.dev == nil {
		return nil, ErrNoDevice
	}
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if !m.writeOpen.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: writer", ErrAlreadyOpen)
	}
	return &writeHandle{m: m}, nil
}

// OpenReader implements shell.Transport. The first reader starts the device
// read loop unless WithoutPump was given.
func (m *Manager) OpenReader() (shell.Reader, error) {
	if m.dev == nil {
		return nil, ErrNoDevice
	}
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if !m.readOpen.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: reader", ErrAlreadyOpen)
	}
	m.startOnce.Do(func() {
		if m.pump {
			go m.readLoop()
		} else {
			close(m.stopped)
		}
	})
	return &readHandle{m: m}, nil
}

// Feed pushes received bytes into the ring. Only one goroutine may feed at a
// time; bytes that do not fit are dropped and counted.
func (m *Manager) Feed(p []byte) int {
	n := m.rx.write(p)
	if n < len(p) {
		m.drops.Add(uint64(len(p) - n))
	}
	if n > 0 {
		m.signal()
	}
	return n
}

// Dropped returns the number of received bytes lost to a full ring.
func (m *Manager) Dropped() uint64 { return m.drops.Load() }

// Buffered returns the number of bytes waiting in the ring.
func (m *Manager) Buffered() int { return m.rx.len() }

// Close wakes blocked readers and closes the device if it is an io.Closer.
// The read loop exits once the device read returns; see Stopped.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		m.closed.Store(true)
		close(m.done)
		m.startOnce.Do(func() { close(m.stopped) })
		if c, ok := m.dev.(io.Closer); ok {
			err = c.Close()
		}
		if m.rxNotify != nil {
			m.rxNotify()
		}
	})
	return err
}

// Stopped is closed when the device read loop has exited.
func (m *Manager) Stopped() <-chan struct{} { return m.stopped }

func (m *Manager) signal() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
	if m.rxNotify != nil {
		m.rxNotify()
	}
}

func (m *Manager) readLoop() {
	defer close(m.stopped)
	buf := make([]byte, 64)
	for {
		n, err := m.dev.Read(buf)
		if n > 0 {
			m.Feed(buf[:n])
		}
		if err != nil {
			m.errMu.Lock()
			m.rxErr = err
			m.errMu.Unlock()
			m.signal()
			return
		}
		select {
		case <-m.done:
			return
		default:
		}
	}
}

// Err returns the error that ended the device read loop, if any.
func (m *Manager) Err() error {
	m.errMu.Lock()
	defer m.errMu.Unlock()
	return m.rxErr
}

type writeHandle struct {
	m      *Manager
	closed atomic.Bool
}

func (w *writeHandle) Write(p []byte) (int, error) {
	if w.closed.Load() || w.m.closed.Load() {
		return 0, ErrClosed
	}
	w.m.wmu.Lock()
	defer w.m.wmu.Unlock()
	written := 0
	for written < len(p) {
		n, err := w.m.dev.Write(p[written:])
		written += n
		if err != nil {
			return written, err
		}
		if n == 0 {
			return written, io.ErrShortWrite
		}
	}
	return written, nil
}

func (w *writeHandle) Close() error {
	if w.closed.CompareAndSwap(false, true) {
		w.m.writeOpen.Store(false)
	}
	return nil
}

type readHandle struct {
	m      *Manager
	closed atomic.Bool
}

// Read blocks until the ring holds data, the device fails, or the handle or
// manager is closed. Buffered bytes are delivered before a device error.
func (r *readHandle) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		if r.closed.Load() {
			return 0, ErrClosed
		}
		if n := r.m.rx.read(p); n > 0 {
			return n, nil
		}
		if err := r.m.Err(); err != nil {
			return 0, err
		}
		select {
		case <-r.m.notify:
		case <-r.m.done:
			if n := r.m.rx.read(p); n > 0 {
				return n, nil
			}
			return 0, ErrClosed
		}
	}
}

// TryRead returns buffered bytes without waiting.
func (r *readHandle) TryRead(p []byte) (int, error) {
	if r.closed.Load() {
		return 0, ErrClosed
	}
	if n := r.m.rx.read(p); n > 0 {
		return n, nil
	}
	if err := r.m.Err(); err != nil {
		return 0, err
	}
	if r.m.closed.Load() {
		return 0, ErrClosed
	}
	return 0, nil
}

func (r *readHandle) Close() error {
	if r.closed.CompareAndSwap(false, true) {
		r.m.readOpen.Store(false)
	}
	return nil
}
