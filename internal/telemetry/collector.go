// Package telemetry exports shell counters to Prometheus.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"sparkshell/sparkos/services/shell"
)

const namespace = "sparkshell"

// Source is a live shell instance.
type Source interface {
	Stats() shell.Stats
}

type counterDesc struct {
	desc *prometheus.Desc
	get  func(shell.Stats) uint64
}

func newCounter(name, help string, get func(shell.Stats) uint64) counterDesc {
	return counterDesc{
		desc: prometheus.NewDesc(prometheus.BuildFQName(namespace, "shell", name), help, nil, nil),
		get:  get,
	}
}

// Collector sums the counters of every tracked shell. Counters of shells
// that are no longer tracked are kept, so totals never go down.
type Collector struct {
	mu      sync.Mutex
	live    map[uint64]Source
	drops   map[uint64]func() uint64
	nextID  uint64
	retired shell.Stats
	dropped uint64

	counters []counterDesc
	sessions *prometheus.Desc
	rxDrops  *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

func NewCollector() *Collector {
	return &Collector{
		live:  make(map[uint64]Source),
		drops: make(map[uint64]func() uint64),
		counters: []counterDesc{
			newCounter("bytes_in_total", "Bytes read from the transport.", func(s shell.Stats) uint64 { return s.BytesIn }),
			newCounter("bytes_out_total", "Bytes written to the transport.", func(s shell.Stats) uint64 { return s.BytesOut }),
			newCounter("lines_total", "Lines accepted by the editor.", func(s shell.Stats) uint64 { return s.Lines }),
			newCounter("commands_total", "Commands dispatched to a handler.", func(s shell.Stats) uint64 { return s.Commands }),
			newCounter("unknown_commands_total", "Lines naming no registered command.", func(s shell.Stats) uint64 { return s.UnknownCmds }),
			newCounter("usage_errors_total", "Dispatches rejected for argument count.", func(s shell.Stats) uint64 { return s.ArgErrors }),
			newCounter("handler_errors_total", "Handlers that returned an error.", func(s shell.Stats) uint64 { return s.HandlerErrors }),
			newCounter("handler_panics_total", "Handlers that panicked.", func(s shell.Stats) uint64 { return s.Panics }),
			newCounter("write_errors_total", "Failed transport writes.", func(s shell.Stats) uint64 { return s.WriteErrors }),
			newCounter("bells_total", "Bells rung by the editor.", func(s shell.Stats) uint64 { return s.Bells }),
		},
		sessions: prometheus.NewDesc(prometheus.BuildFQName(namespace, "shell", "sessions"), "Shell instances currently running.", nil, nil),
		rxDrops:  prometheus.NewDesc(prometheus.BuildFQName(namespace, "serial", "rx_dropped_bytes_total"), "Input bytes lost to a full receive ring.", nil, nil),
	}
}

// Track adds src to the totals until the returned func is called.
func (c *Collector) Track(src Source) (untrack func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.live[id] = src
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.retired = c.retired.Add(src.Stats())
			delete(c.live, id)
		})
	}
}

// TrackDrops adds a receive-drop counter, such as serialmgr.Manager.Dropped.
func (c *Collector) TrackDrops(dropped func() uint64) (untrack func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.drops[id] = dropped
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.dropped += dropped()
			delete(c.drops, id)
		})
	}
}

// Totals returns the summed counters and the number of live shells.
func (c *Collector) Totals() (shell.Stats, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := c.retired
	for _, src := range c.live {
		total = total.Add(src.Stats())
	}
	return total, len(c.live)
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, cd := range c.counters {
		ch <- cd.desc
	}
	ch <- c.sessions
	ch <- c.rxDrops
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	total, live := c.Totals()
	for _, cd := range c.counters {
		ch <- prometheus.MustNewConstMetric(cd.desc, prometheus.CounterValue, float64(cd.get(total)))
	}
	ch <- prometheus.MustNewConstMetric(c.sessions, prometheus.GaugeValue, float64(live))

	c.mu.Lock()
	dropped := c.dropped
	for _, fn := range c.drops {
		dropped += fn()
	}
	c.mu.Unlock()
	ch <- prometheus.MustNewConstMetric(c.rxDrops, prometheus.CounterValue, float64(dropped))
}
