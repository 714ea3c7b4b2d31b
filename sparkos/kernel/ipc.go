package kernel

// Endpoint identifies an IPC destination.
type Endpoint uint8

// Rights are the operations a capability allows.
type Rights uint8

const (
	RightSend Rights = 1 << iota
	RightRecv
)

// Capability grants access to an endpoint. The zero value grants nothing.
type Capability struct {
	ep     Endpoint
	rights Rights
}

func (c Capability) Valid() bool { return c.rights != 0 }

func (c Capability) can(r Rights) bool { return c.rights&r == r && r != 0 }

// Has reports whether c carries every right in r.
func (c Capability) Has(r Rights) bool { return c.can(r) }

// Restrict keeps only the rights also present in rights.
func (c Capability) Restrict(rights Rights) Capability {
	if r := c.rights & rights; r != 0 {
		return Capability{ep: c.ep, rights: r}
	}
	return Capability{}
}

// MaxMessageBytes is the largest payload a message carries.
const MaxMessageBytes = 128

// Message is a fixed-size IPC envelope. From is 0 for posts from outside
// any task.
type Message struct {
	From Endpoint
	To   Endpoint
	Kind uint16
	Len  uint16
	Data [MaxMessageBytes]byte
}

// Payload returns the valid portion of Data.
func (m *Message) Payload() []byte {
	return m.Data[:min(int(m.Len), MaxMessageBytes)]
}

type SendResult uint8

const (
	SendOK SendResult = iota
	SendErrInvalidToCap
	SendErrToNoSendRight
	SendErrNoEndpoint
	SendErrPayloadTooLarge
	SendErrQueueFull
)

var sendResultNames = [...]string{
	SendOK:                 "ok",
	SendErrInvalidToCap:    "invalid to capability",
	SendErrToNoSendRight:   "to capability has no send right",
	SendErrNoEndpoint:      "no such endpoint",
	SendErrPayloadTooLarge: "payload too large",
	SendErrQueueFull:       "queue full",
}

func (r SendResult) String() string {
	if int(r) < len(sendResultNames) {
		return sendResultNames[r]
	}
	return "unknown"
}

// mailbox is a fixed ring of mailboxSlots messages. head and tail are free
// running; their difference is the fill level.
type mailbox struct {
	head, tail uint8
	slots      [mailboxSlots]Message
}

func (mb *mailbox) len() int { return int(mb.head - mb.tail) }

// push copies a message into the next slot, or reports false when full.
func (mb *mailbox) push(from, to Endpoint, kind uint16, payload []byte) bool {
	if mb.len() >= mailboxSlots {
		return false
	}
	m := &mb.slots[mb.head%mailboxSlots]
	m.From, m.To, m.Kind = from, to, kind
	m.Len = uint16(copy(m.Data[:], payload))
	mb.head++
	return true
}

func (mb *mailbox) pop() (Message, bool) {
	if mb.len() == 0 {
		return Message{}, false
	}
	m := mb.slots[mb.tail%mailboxSlots]
	mb.tail++
	return m, true
}
