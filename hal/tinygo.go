//go:build tinygo && baremetal

package hal

import (
	"machine"
	"time"
)

const (
	uartBaud     = 115200
	tickInterval = time.Millisecond
)

// boardPins are the header pins exposed after the LED.
var boardPins = []machine.Pin{machine.GP2, machine.GP3, machine.GP4, machine.GP5}

type tinyGoHAL struct {
	uart *uartPort
	led  *pinLED
	gpio GPIO
	t    *tinyGoTime
}

// New returns the Pico 2 (RP2350) HAL.
//
// UART0 on GP0 (TX) / GP1 (RX), 115200 8N1, carries both the shell console
// and log lines. The board has no display or keyboard.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{BaudRate: uartBaud, TX: machine.GP0, RX: machine.GP1})

	machine.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led := &pinLED{pin: machine.LED}

	pins := []GPIOPin{newLEDPin("LED", led)}
	for _, p := range boardPins {
		pins = append(pins, &machinePin{pin: p})
	}
	return &tinyGoHAL{
		uart: &uartPort{uart: uart},
		led:  led,
		gpio: newPinTable(pins...),
		t:    startTinyGoTime(tickInterval),
	}
}

func (h *tinyGoHAL) Logger() Logger   { return h.uart }
func (h *tinyGoHAL) LED() LED         { return h.led }
func (h *tinyGoHAL) GPIO() GPIO       { return h.gpio }
func (h *tinyGoHAL) Serial() Serial   { return h.uart }
func (h *tinyGoHAL) Display() Display { return noDisplay{} }
func (h *tinyGoHAL) Input() Input     { return noInput{} }
func (h *tinyGoHAL) Time() Time       { return h.t }

type noDisplay struct{}

func (noDisplay) Framebuffer() Framebuffer { return nil }

type noInput struct{}

func (noInput) Keyboard() Keyboard { return nil }

// tinyGoTime publishes a sequence number every interval, dropping ticks the
// consumer has not taken.
type tinyGoTime struct {
	ch chan uint64
}

func startTinyGoTime(interval time.Duration) *tinyGoTime {
	t := &tinyGoTime{ch: make(chan uint64, 16)}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		var seq uint64
		for range ticker.C {
			seq++
			select {
			case t.ch <- seq:
			default:
			}
		}
	}()
	return t
}

func (t *tinyGoTime) Ticks() <-chan uint64 { return t.ch }
