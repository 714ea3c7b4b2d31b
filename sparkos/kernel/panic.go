package kernel

// PanicInfo describes a recovered task panic.
type PanicInfo struct {
	TaskID TaskID
	Value  any
	Stack  []byte
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithPanicHandler calls fn for the first task panic on the kernel. fn runs
// on the stepping goroutine and must not panic.
func WithPanicHandler(fn func(PanicInfo)) Option {
	return func(k *Kernel) { k.onPanic = fn }
}

// Panicked reports whether any task on k has panicked.
func (k *Kernel) Panicked() bool { return k.panicked.Load() }

func (k *Kernel) taskPanicked(id TaskID, v any) {
	if !k.panicked.CompareAndSwap(false, true) || k.onPanic == nil {
		return
	}
	k.onPanic(PanicInfo{TaskID: id, Value: v, Stack: captureStack()})
}
