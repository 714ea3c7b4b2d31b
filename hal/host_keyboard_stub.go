//go:build !tinygo && !cgo

package hal

// Without the window backend the keyboard exists but stays silent.
type hostKeyboard struct{ ch chan KeyEvent }

func newHostKeyboard() *hostKeyboard { return &hostKeyboard{ch: make(chan KeyEvent)} }

func (k *hostKeyboard) Events() <-chan KeyEvent { return k.ch }

func (k *hostKeyboard) poll() {}
