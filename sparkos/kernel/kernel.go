package kernel

import (
	"fmt"
	"sync"
	"sync/atomic"
)

const (
	maxTasks     = 32
	maxEndpoints = 32
	mailboxSlots = 8
)

type TaskID uint8

// Task is a cooperative unit of execution.
type Task interface {
	Step(*Context)
}

type endpointState struct {
	q        mailbox
	waitMask uint32
}

type taskState struct {
	task     Task
	runnable bool
	dead     bool
}

// Kernel is a minimal cooperative scheduler plus IPC router.
//
// Tasks are stepped from a single goroutine. Post, Tick and TickTo may be
// called from any goroutine.
type Kernel struct {
	mu sync.Mutex

	endpoints     [maxEndpoints]endpointState
	endpointCount Endpoint

	tasks     [maxTasks]taskState
	taskCount TaskID

	rr TaskID

	tick         uint64
	tickWaitMask uint32

	onPanic  func(PanicInfo)
	panicked atomic.Bool
}

func New(opts ...Option) *Kernel {
	k := &Kernel{}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// NewEndpoint allocates a new endpoint and returns a capability for it.
func (k *Kernel) NewEndpoint(rights Rights) Capability {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.endpointCount >= maxEndpoints || rights == 0 {
		return Capability{}
	}
	ep := k.endpointCount
	k.endpointCount++
	return Capability{ep: ep, rights: rights}
}

// AddTask registers a task and returns its ID.
func (k *Kernel) AddTask(t Task) (TaskID, error) {
	if t == nil {
		return 0, fmt.Errorf("kernel: nil task")
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.taskCount >= maxTasks {
		return 0, fmt.Errorf("kernel: task table full (%d)", maxTasks)
	}
	id := k.taskCount
	k.taskCount++
	k.tasks[id] = taskState{task: t, runnable: true}
	return id, nil
}

// Step runs at most one runnable task step and reports whether one ran.
func (k *Kernel) Step() bool {
	k.mu.Lock()
	if k.taskCount == 0 {
		k.mu.Unlock()
		return false
	}

	var (
		id    TaskID
		task  Task
		found bool
	)
	for i := TaskID(0); i < k.taskCount; i++ {
		cand := (k.rr + i) % k.taskCount
		st := &k.tasks[cand]
		if st.task == nil || st.dead || !st.runnable {
			continue
		}
		id, task, found = cand, st.task, true
		k.rr = (cand + 1) % k.taskCount
		break
	}
	k.mu.Unlock()
	if !found {
		return false
	}

	ctx := &Context{k: k, taskID: id}
	k.runTask(ctx, task)

	k.mu.Lock()
	defer k.mu.Unlock()
	st := &k.tasks[id]
	switch {
	case ctx.exited:
		st.dead = true
		st.runnable = false
	case ctx.blockOnTick:
		st.runnable = false
		k.tickWaitMask |= 1 << id
	case ctx.blockOnRecv:
		ep := &k.endpoints[ctx.blockOn]
		if ep.q.len() > 0 {
			// A message arrived while the task was running.
			break
		}
		st.runnable = false
		ep.waitMask |= 1 << id
	}
	return true
}

// RunBudget steps runnable tasks until none is runnable or budget steps ran.
func (k *Kernel) RunBudget(budget int) int {
	n := 0
	for n < budget && k.Step() {
		n++
	}
	return n
}

func (k *Kernel) runTask(ctx *Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			ctx.exited = true
			k.taskPanicked(ctx.taskID, r)
		}
	}()
	task.Step(ctx)
}

// Tick advances the tick counter by one and wakes tasks blocked via
// Context.BlockOnTick.
func (k *Kernel) Tick() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.tick++
	k.wakeTickWaitersLocked()
}

// TickTo sets the tick counter to seq if it is ahead of the current value.
func (k *Kernel) TickTo(seq uint64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if seq <= k.tick {
		return
	}
	k.tick = seq
	k.wakeTickWaitersLocked()
}

// NowTick returns the current tick counter.
func (k *Kernel) NowTick() uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.tick
}

func (k *Kernel) wakeTickWaitersLocked() {
	wait := k.tickWaitMask
	if wait == 0 {
		return
	}
	for tid := TaskID(0); tid < k.taskCount; tid++ {
		if wait&(1<<tid) == 0 || k.tasks[tid].dead {
			continue
		}
		k.tasks[tid].runnable = true
	}
	k.tickWaitMask = 0
}

// Post delivers a message from outside any task.
//
// The message From field is set to 0 (unknown).
func (k *Kernel) Post(toCap Capability, kind uint16, payload []byte) SendResult {
	if !toCap.Valid() {
		return SendErrInvalidToCap
	}
	if !toCap.can(RightSend) {
		return SendErrToNoSendRight
	}
	return k.send(0, toCap.ep, kind, payload)
}

func (k *Kernel) send(from, to Endpoint, kind uint16, payload []byte) SendResult {
	if len(payload) > MaxMessageBytes {
		return SendErrPayloadTooLarge
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if to >= k.endpointCount {
		return SendErrNoEndpoint
	}

	ep := &k.endpoints[to]
	if !ep.q.push(from, to, kind, payload) {
		return SendErrQueueFull
	}

	wait := ep.waitMask
	if wait == 0 {
		return SendOK
	}
	for tid := TaskID(0); tid < k.taskCount; tid++ {
		if wait&(1<<tid) == 0 {
			continue
		}
		if !k.tasks[tid].dead {
			k.tasks[tid].runnable = true
		}
		ep.waitMask &^= 1 << tid
	}
	return SendOK
}

func (k *Kernel) recv(to Endpoint) (Message, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if to >= k.endpointCount {
		return Message{}, false
	}
	return k.endpoints[to].q.pop()
}
