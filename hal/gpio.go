package hal

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrPinUnsupported reports a mode or pull the pin cannot provide.
	ErrPinUnsupported = errors.New("unsupported by pin")
	// ErrPinNotOutput reports a write to a pin that is not an output.
	ErrPinNotOutput = errors.New("pin is not an output")
)

type GPIOMode uint8

const (
	GPIOModeInput GPIOMode = iota
	GPIOModeOutput
)

func (m GPIOMode) String() string {
	switch m {
	case GPIOModeInput:
		return "input"
	case GPIOModeOutput:
		return "output"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

type GPIOPull uint8

const (
	GPIOPullNone GPIOPull = iota
	GPIOPullUp
	GPIOPullDown
)

func (p GPIOPull) String() string {
	switch p {
	case GPIOPullNone:
		return "none"
	case GPIOPullUp:
		return "pull-up"
	case GPIOPullDown:
		return "pull-down"
	default:
		return fmt.Sprintf("pull(%d)", uint8(p))
	}
}

// GPIOCaps is the set of modes and pulls a pin supports.
type GPIOCaps uint8

const (
	GPIOCapInput GPIOCaps = 1 << iota
	GPIOCapOutput
	GPIOCapPullUp
	GPIOCapPullDown
)

// String lists the caps as the letters i, o, u and d.
func (c GPIOCaps) String() string {
	var b [4]byte
	out := b[:0]
	for i, ch := range [...]byte{'i', 'o', 'u', 'd'} {
		if c&(1<<i) != 0 {
			out = append(out, ch)
		}
	}
	return string(out)
}

// supports reports whether mode and pull are both within c.
func (c GPIOCaps) supports(mode GPIOMode, pull GPIOPull) error {
	var need GPIOCaps
	switch mode {
	case GPIOModeInput:
		need = GPIOCapInput
	case GPIOModeOutput:
		need = GPIOCapOutput
	default:
		return fmt.Errorf("%v: %w", mode, ErrPinUnsupported)
	}
	switch pull {
	case GPIOPullNone:
	case GPIOPullUp:
		need |= GPIOCapPullUp
	case GPIOPullDown:
		need |= GPIOCapPullDown
	default:
		return fmt.Errorf("%v: %w", pull, ErrPinUnsupported)
	}
	if c&need != need {
		return fmt.Errorf("%v/%v: %w", mode, pull, ErrPinUnsupported)
	}
	return nil
}

// GPIO is the board's pin table. Pin 0 is the board LED on every target.
type GPIO interface {
	PinCount() int
	Pin(id int) GPIOPin
}

type GPIOPin interface {
	Name() string
	Caps() GPIOCaps
	Configure(mode GPIOMode, pull GPIOPull) error
	Read() (level bool, err error)
	Write(level bool) error
}

type pinTable []GPIOPin

func (t pinTable) PinCount() int { return len(t) }

func (t pinTable) Pin(id int) GPIOPin {
	if id < 0 || id >= len(t) {
		return nil
	}
	return t[id]
}

// newPinTable drops nil pins so ids stay dense.
func newPinTable(pins ...GPIOPin) GPIO {
	t := make(pinTable, 0, len(pins))
	for _, p := range pins {
		if p != nil {
			t = append(t, p)
		}
	}
	return t
}

// virtualPin is a host pin. An input reads its pull level until something
// drives it as an output.
type virtualPin struct {
	name string
	caps GPIOCaps

	mu     sync.Mutex
	mode   GPIOMode
	pull   GPIOPull
	driven bool
	level  bool
}

func newVirtualPin(name string, caps GPIOCaps) *virtualPin {
	return &virtualPin{name: name, caps: caps}
}

func (p *virtualPin) Name() string   { return p.name }
func (p *virtualPin) Caps() GPIOCaps { return p.caps }

func (p *virtualPin) Configure(mode GPIOMode, pull GPIOPull) error {
	if err := p.caps.supports(mode, pull); err != nil {
		return fmt.Errorf("gpio %s: %w", p.name, err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode, p.pull = mode, pull
	if mode == GPIOModeInput {
		p.driven = false
	}
	return nil
}

func (p *virtualPin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode == GPIOModeInput && !p.driven {
		return p.pull == GPIOPullUp, nil
	}
	return p.level, nil
}

func (p *virtualPin) Write(level bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode != GPIOModeOutput {
		return fmt.Errorf("gpio %s: %w", p.name, ErrPinNotOutput)
	}
	p.driven, p.level = true, level
	return nil
}

// ledPin exposes the board LED as an output-only pin.
type ledPin struct {
	name string
	led  LED

	mu    sync.Mutex
	level bool
}

func newLEDPin(name string, led LED) GPIOPin {
	if led == nil {
		return nil
	}
	return &ledPin{name: name, led: led}
}

func (p *ledPin) Name() string   { return p.name }
func (p *ledPin) Caps() GPIOCaps { return GPIOCapOutput }

func (p *ledPin) Configure(mode GPIOMode, pull GPIOPull) error {
	if err := p.Caps().supports(mode, pull); err != nil {
		return fmt.Errorf("gpio %s: %w", p.name, err)
	}
	return nil
}

func (p *ledPin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level, nil
}

func (p *ledPin) Write(level bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
	if level {
		p.led.High()
		return nil
	}
	p.led.Low()
	return nil
}
