//go:build !tinygo

package hal

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// HostConfig selects the devices backing a host HAL.
type HostConfig struct {
	// Serial is the console device. Nil means the process stdio, not in raw mode.
	Serial Serial
	// Log receives hal.Logger lines and LED transitions. Nil discards them.
	Log *zap.Logger
	// Width and Height size the window framebuffer (default 320x320).
	Width, Height int
}

type hostHAL struct {
	logger *hostLogger
	led    *hostLED
	gpio   GPIO
	fb     *memFramebuffer
	kbd    *hostKeyboard
	t      *hostTime
	serial Serial
}

// New returns a host HAL backed by the process stdio.
func New() HAL {
	return NewHost(HostConfig{})
}

// NewHost returns a host HAL implementation.
func NewHost(cfg HostConfig) HAL {
	return newHostHAL(cfg)
}

func newHostHAL(cfg HostConfig) *hostHAL {
	zl := cfg.Log
	if zl == nil {
		zl = zap.NewNop()
	}
	if cfg.Width <= 0 {
		cfg.Width = 320
	}
	if cfg.Height <= 0 {
		cfg.Height = 320
	}
	serial := cfg.Serial
	if serial == nil {
		serial = newStdioSerial()
	}

	logger := &hostLogger{l: zl.Named("hal")}
	led := &hostLED{logger: logger}
	pins := []GPIOPin{newLEDPin("LED", led)}
	for i := 0; i < 7; i++ {
		pins = append(pins, newVirtualPin(fmt.Sprintf("GPIO%d", i+1), GPIOCapInput|GPIOCapOutput|GPIOCapPullUp|GPIOCapPullDown))
	}
	return &hostHAL{
		logger: logger,
		led:    led,
		gpio:   newPinTable(pins...),
		fb:     newMemFramebuffer(cfg.Width, cfg.Height),
		kbd:    newHostKeyboard(),
		t:      newHostTime(),
		serial: serial,
	}
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) LED() LED         { return h.led }
func (h *hostHAL) GPIO() GPIO       { return h.gpio }
func (h *hostHAL) Serial() Serial   { return h.serial }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Input() Input     { return hostInput{kbd: h.kbd} }
func (h *hostHAL) Time() Time       { return h.t }

type hostDisplay struct {
	fb *memFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostInput struct {
	kbd *hostKeyboard
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }

// hostLogger forwards kernel log lines to zap. Lines are never written to the
// console device so they cannot interleave with shell output.
type hostLogger struct {
	l *zap.Logger
}

func (l *hostLogger) WriteLineString(s string) { l.l.Info(s) }

func (l *hostLogger) WriteLineBytes(b []byte) { l.l.Info(string(b)) }

type hostLED struct {
	mu     sync.Mutex
	on     bool
	logger *hostLogger
}

func (l *hostLED) High() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = true
	l.logger.l.Debug("led", zap.Bool("on", true))
}

func (l *hostLED) Low() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = false
	l.logger.l.Debug("led", zap.Bool("on", false))
}

// On reports the last level written.
func (l *hostLED) On() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}
