package serialmgr

import (
	"runtime"
	"sync"
	"testing"
)

func TestRingRoundsUpToPowerOfTwo(t *testing.T) {
	for _, tc := range []struct{ in, want int }{{0, 16}, {16, 16}, {17, 32}, {200, 256}} {
		if got := newRing(tc.in).cap(); got != tc.want {
			t.Fatalf("newRing(%d).cap() = %d; want %d", tc.in, got, tc.want)
		}
	}
}

func TestRingFullAndWrap(t *testing.T) {
	r := newRing(16)
	if n := r.write(make([]byte, 20)); n != 16 {
		t.Fatalf("write() = %d when filling; want 16", n)
	}
	if n := r.write([]byte{1}); n != 0 {
		t.Fatalf("write() = %d when full; want 0", n)
	}

	buf := make([]byte, 10)
	if n := r.read(buf); n != 10 {
		t.Fatalf("read() = %d; want 10", n)
	}
	if n := r.write([]byte("0123456789")); n != 10 {
		t.Fatalf("write() = %d after drain; want 10", n)
	}
	if got := r.len(); got != 16 {
		t.Fatalf("len() = %d; want 16", got)
	}

	out := make([]byte, 32)
	n := r.read(out)
	if n != 16 || string(out[6:16]) != "0123456789" {
		t.Fatalf("read() = %d %q; want 16 bytes ending in the wrapped write", n, out[:n])
	}
	if n := r.read(out); n != 0 {
		t.Fatalf("read() = %d on empty; want 0", n)
	}
}

func TestRingConcurrentProducerConsumer(t *testing.T) {
	oldProcs := runtime.GOMAXPROCS(2)
	defer runtime.GOMAXPROCS(oldProcs)

	const total = 100_000
	r := newRing(64)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		var b [1]byte
		for i := 0; i < total; {
			b[0] = byte(i)
			if r.write(b[:]) == 1 {
				i++
				continue
			}
			runtime.Gosched()
		}
	}()

	buf := make([]byte, 7)
	next := 0
	for next < total {
		n := r.read(buf)
		if n == 0 {
			runtime.Gosched()
			continue
		}
		for _, b := range buf[:n] {
			if b != byte(next) {
				t.Fatalf("byte %d = %d; want %d", next, b, byte(next))
			}
			next++
		}
	}
	wg.Wait()
}
