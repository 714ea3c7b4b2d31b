// Package proto defines the kernel message kinds and their payload codecs.
package proto

// Kind is the kernel.Message.Kind of a message.
type Kind uint16

const (
	MsgLogLine Kind = iota + 1
	// MsgRxReady has no payload. It wakes a task parked on console input.
	MsgRxReady
)

func (k Kind) String() string {
	switch k {
	case MsgLogLine:
		return "log_line"
	case MsgRxReady:
		return "rx_ready"
	}
	return "unknown"
}

// Log levels carried in the first payload byte of MsgLogLine.
const (
	LogDebug byte = 'D'
	LogInfo  byte = 'I'
	LogWarn  byte = 'W'
)

// AppendLogLine encodes a MsgLogLine payload into dst, truncating the text so
// the result fits in limit bytes.
//
// Convention:
// - Byte 0 is the level, the rest is UTF-8 text without a trailing newline.
// - Delivery is best-effort; callers may drop on overflow.
func AppendLogLine(dst []byte, level byte, text []byte, limit int) []byte {
	if limit <= 0 {
		return dst
	}
	dst = append(dst, level)
	if room := limit - 1; len(text) > room {
		text = text[:room]
	}
	return append(dst, text...)
}

// ParseLogLine splits a MsgLogLine payload into level and text.
func ParseLogLine(p []byte) (level byte, text []byte, ok bool) {
	if len(p) == 0 {
		return 0, nil, false
	}
	return p[0], p[1:], true
}
