package serialmgr

import "sync/atomic"

// ring is a fixed-size single-producer, single-consumer byte queue. The
// producer side may run in an interrupt-style context: it never blocks and
// never allocates.
type ring struct {
	_    [0]func() // prevent accidental copying.
	head atomic.Uint32
	tail atomic.Uint32
	mask uint32
	buf  []byte
}

func newRing(size int) *ring {
	n := 16
	for n < size {
		n <<= 1
	}
	return &ring{mask: uint32(n - 1), buf: make([]byte, n)}
}

// write enqueues as much of p as fits and returns the count.
func (r *ring) write(p []byte) int {
	head := r.head.Load()
	tail := r.tail.Load()
	free := uint32(len(r.buf)) - (head - tail)
	n := uint32(len(p))
	if n > free {
		n = free
	}
	for i := uint32(0); i < n; i++ {
		r.buf[(head+i)&r.mask] = p[i]
	}
	r.head.Store(head + n)
	return int(n)
}

// read dequeues up to len(p) bytes.
func (r *ring) read(p []byte) int {
	tail := r.tail.Load()
	head := r.head.Load()
	n := head - tail
	if uint32(len(p)) < n {
		n = uint32(len(p))
	}
	for i := uint32(0); i < n; i++ {
		p[i] = r.buf[(tail+i)&r.mask]
	}
	r.tail.Store(tail + n)
	return int(n)
}

func (r *ring) len() int { return int(r.head.Load() - r.tail.Load()) }

func (r *ring) cap() int { return len(r.buf) }
