//go:build tinygo && baremetal

package hal

import (
	"fmt"
	"machine"
	"time"
)

// uartPort is the console UART. It is both the Serial device and the
// Logger; log lines end in CRLF.
type uartPort struct {
	uart *machine.UART
}

// Read polls until the UART has buffered at least one byte.
func (u *uartPort) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for u.uart.Buffered() == 0 {
		time.Sleep(time.Millisecond)
	}
	return u.uart.Read(p)
}

func (u *uartPort) Write(p []byte) (int, error) { return u.uart.Write(p) }

func (u *uartPort) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		u.uart.WriteByte(s[i])
	}
	u.crlf()
}

func (u *uartPort) WriteLineBytes(b []byte) {
	_, _ = u.uart.Write(b)
	u.crlf()
}

func (u *uartPort) crlf() {
	u.uart.WriteByte('\r')
	u.uart.WriteByte('\n')
}

type pinLED struct {
	pin machine.Pin
}

func (l *pinLED) High() { l.pin.High() }
func (l *pinLED) Low()  { l.pin.Low() }

// machinePin is a header pin with every mode and pull available.
type machinePin struct {
	pin    machine.Pin
	output bool
}

func (p *machinePin) Name() string { return fmt.Sprintf("GP%d", p.pin) }

func (p *machinePin) Caps() GPIOCaps {
	return GPIOCapInput | GPIOCapOutput | GPIOCapPullUp | GPIOCapPullDown
}

func (p *machinePin) Configure(mode GPIOMode, pull GPIOPull) error {
	if err := p.Caps().supports(mode, pull); err != nil {
		return fmt.Errorf("gpio %s: %w", p.Name(), err)
	}
	m := machine.PinInput
	switch {
	case mode == GPIOModeOutput:
		m = machine.PinOutput
	case pull == GPIOPullUp:
		m = machine.PinInputPullup
	case pull == GPIOPullDown:
		m = machine.PinInputPulldown
	}
	p.pin.Configure(machine.PinConfig{Mode: m})
	p.output = mode == GPIOModeOutput
	return nil
}

func (p *machinePin) Read() (bool, error) { return p.pin.Get(), nil }

func (p *machinePin) Write(level bool) error {
	if !p.output {
		return fmt.Errorf("gpio %s: %w", p.Name(), ErrPinNotOutput)
	}
	p.pin.Set(level)
	return nil
}
