package shell

// History is a fixed ring of recent lines plus a recall cursor. All storage
// is allocated up front.
type History struct {
	slots [][]byte
	head  int // next slot to write
	count int
	pos   int // recall position, -1 when not recalling; 0 is the newest entry
}

// NewHistory returns a ring of depth entries of at most width bytes each.
func NewHistory(depth, width int) *History {
	h := &History{pos: -1}
	if depth <= 0 {
		return h
	}
	backing := make([]byte, depth*width)
	h.slots = make([][]byte, depth)
	for i := range h.slots {
		h.slots[i] = backing[i*width : i*width : (i+1)*width]
	}
	return h
}

// Depth returns the ring capacity.
func (h *History) Depth() int { return len(h.slots) }

// Len returns the number of stored entries.
func (h *History) Len() int { return h.count }

// Push records line as the newest entry, evicting the oldest when full.
// Empty lines and repeats of the newest entry are skipped; long lines are
// truncated to the slot width. It reports whether an entry was stored.
func (h *History) Push(line []byte) bool {
	if len(h.slots) == 0 || len(line) == 0 {
		return false
	}
	if h.count > 0 && string(h.At(0)) == string(line) {
		return false
	}
	slot := h.slots[h.head]
	if len(line) > cap(slot) {
		line = line[:cap(slot)]
	}
	h.slots[h.head] = append(slot[:0], line...)
	h.head = (h.head + 1) % len(h.slots)
	if h.count < len(h.slots) {
		h.count++
	}
	return true
}

// At returns entry i, where 0 is the newest. The slice aliases ring storage.
func (h *History) At(i int) []byte {
	if i < 0 || i >= h.count {
		return nil
	}
	idx := (h.head - 1 - i + 2*len(h.slots)) % len(h.slots)
	return h.slots[idx]
}

// Older moves the recall cursor one entry back. It returns false at the
// oldest entry or when the ring is empty.
func (h *History) Older() ([]byte, bool) {
	if h.pos+1 >= h.count {
		return nil, false
	}
	h.pos++
	return h.At(h.pos), true
}

// Newer moves the recall cursor one entry forward. It returns false when
// already at the newest entry or not recalling.
func (h *History) Newer() ([]byte, bool) {
	if h.pos <= 0 {
		return nil, false
	}
	h.pos--
	return h.At(h.pos), true
}

// ResetCursor ends recall; the next Older returns the newest entry.
func (h *History) ResetCursor() { h.pos = -1 }
