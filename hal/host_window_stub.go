//go:build !tinygo && !cgo

package hal

import "fmt"

// RunWindow needs the cgo ebiten backend.
func RunWindow(HostConfig, func(HAL) (func() error, error)) error {
	return fmt.Errorf("window transport: %w (rebuild with CGO_ENABLED=1)", ErrNotImplemented)
}
