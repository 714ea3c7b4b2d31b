package kernel

// Context provides task-local access to kernel operations for the duration
// of one Step call.
type Context struct {
	k      *Kernel
	taskID TaskID

	blockOnTick bool
	blockOnRecv bool
	blockOn     Endpoint
	exited      bool
}

// TaskID returns the current task ID.
func (c *Context) TaskID() TaskID { return c.taskID }

// TryRecv reads one message from the capability endpoint without blocking.
func (c *Context) TryRecv(epCap Capability) (Message, bool) {
	if !epCap.can(RightRecv) {
		return Message{}, false
	}
	return c.k.recv(epCap.ep)
}

// BlockOnRecv parks the task until a message is sent to epCap.
func (c *Context) BlockOnRecv(epCap Capability) {
	if !epCap.can(RightRecv) {
		return
	}
	c.blockOnRecv = true
	c.blockOn = epCap.ep
}

// BlockOnTick parks the task until the next kernel tick.
func (c *Context) BlockOnTick() { c.blockOnTick = true }

// Exit removes the task from the scheduler after the current step.
func (c *Context) Exit() { c.exited = true }

// SendToCapResult sends a message to the capability endpoint.
//
// The message From field is set to 0 (unknown).
func (c *Context) SendToCapResult(toCap Capability, kind uint16, payload []byte) SendResult {
	return c.k.Post(toCap, kind, payload)
}

// Exited reports whether Exit was called during this step.
func (c *Context) Exited() bool { return c.exited }

// NowTick returns the current tick value.
func (c *Context) NowTick() uint64 {
	if c.k == nil {
		return 0
	}
	return c.k.NowTick()
}
