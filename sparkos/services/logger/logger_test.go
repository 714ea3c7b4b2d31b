package logger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparkshell/sparkos/kernel"
	"sparkshell/sparkos/proto"
)

type lineLog struct{ lines []string }

func (l *lineLog) WriteLineString(s string) { l.lines = append(l.lines, s) }
func (l *lineLog) WriteLineBytes(b []byte)  { l.lines = append(l.lines, string(b)) }

func post(t *testing.T, k *kernel.Kernel, ep kernel.Capability, level byte, text string) {
	t.Helper()
	p := proto.AppendLogLine(nil, level, []byte(text), kernel.MaxMessageBytes)
	require.Equal(t, kernel.SendOK, k.Post(ep, uint16(proto.MsgLogLine), p))
}

func TestServiceDrainsLines(t *testing.T) {
	k := kernel.New()
	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	out := &lineLog{}
	svc := New(out, ep.Restrict(kernel.RightRecv))
	_, err := k.AddTask(svc)
	require.NoError(t, err)

	post(t, k, ep, proto.LogInfo, "shell ready")
	post(t, k, ep, proto.LogWarn, "write failed")
	require.Equal(t, kernel.SendOK, k.Post(ep, 99, []byte("other")))

	k.RunBudget(4)
	assert.Equal(t, []string{"[I] shell ready", "[W] write failed"}, out.lines)
	assert.Equal(t, uint64(2), svc.Handled())
	assert.Equal(t, uint64(1), svc.Skipped())

	assert.False(t, k.Step(), "task parks on an empty endpoint")

	post(t, k, ep, proto.LogDebug, "again")
	assert.True(t, k.Step(), "a new line wakes the task")
	assert.Equal(t, "[D] again", out.lines[len(out.lines)-1])
}

func TestServiceBoundsWorkPerStep(t *testing.T) {
	k := kernel.New()
	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	out := &lineLog{}
	_, err := k.AddTask(New(out, ep))
	require.NoError(t, err)

	for i := 0; i < drainMax; i++ {
		post(t, k, ep, proto.LogInfo, "x")
	}
	require.True(t, k.Step())
	assert.Len(t, out.lines, drainMax)
	assert.True(t, k.Step(), "still runnable after a full drain")
	assert.False(t, k.Step())
}

func TestServiceWithoutLogger(t *testing.T) {
	k := kernel.New()
	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	svc := New(nil, ep)
	_, err := k.AddTask(svc)
	require.NoError(t, err)

	post(t, k, ep, proto.LogInfo, "dropped")
	k.RunBudget(2)
	assert.Equal(t, uint64(0), svc.Handled())
}

type syncLog struct {
	mu sync.Mutex
	n  int
}

func (l *syncLog) WriteLineString(string) { l.WriteLineBytes(nil) }

func (l *syncLog) WriteLineBytes([]byte) {
	l.mu.Lock()
	l.n++
	l.mu.Unlock()
}

func TestServiceCountersReadConcurrently(t *testing.T) {
	k := kernel.New()
	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	svc := New(&syncLog{}, ep)
	_, err := k.AddTask(svc)
	require.NoError(t, err)

	const lines = 64
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < lines; i++ {
			for k.Post(ep, uint16(proto.MsgLogLine), []byte("Ix")) != kernel.SendOK {
				k.RunBudget(1)
			}
			k.RunBudget(2)
		}
		k.RunBudget(4)
	}()

	for {
		select {
		case <-done:
			assert.Equal(t, uint64(lines), svc.Handled())
			assert.Zero(t, svc.Skipped())
			return
		default:
			_ = svc.Handled()
			_ = svc.Skipped()
		}
	}
}
