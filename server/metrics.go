package server

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"arenashooter/game"
)

// RouterStatsFunc reads router counters. It is called on the loop goroutine.
type RouterStatsFunc func() game.RouterStats

// LoopMetrics records per-frame loop figures. It is written by the loop
// goroutine and read by HTTP handlers.
type LoopMetrics struct {
	Frames       int64
	Steps        int64
	DroppedSteps int64
	TotalWorkNs  int64
	TotalSleepNs int64
	LastWorkNs   int64

	OSEvents          int64
	ConsumedByUI      int64
	CommandEvents     int64
	UnhandledCommands int64
	InputsDropped     int64

	router  RouterStatsFunc
	dropped func() int64
}

// NewLoopMetrics creates metrics. router and dropped may be nil.
func NewLoopMetrics(router RouterStatsFunc, dropped func() int64) *LoopMetrics {
	return &LoopMetrics{router: router, dropped: dropped}
}

// ObserveFrame implements game.FrameObserver.
func (m *LoopMetrics) ObserveFrame(r game.FrameReport) {
	atomic.AddInt64(&m.Frames, 1)
	atomic.AddInt64(&m.Steps, int64(r.Steps))
	atomic.AddInt64(&m.DroppedSteps, int64(r.DroppedSteps))
	atomic.AddInt64(&m.TotalWorkNs, int64(r.Work))
	atomic.AddInt64(&m.TotalSleepNs, int64(r.Sleep))
	atomic.StoreInt64(&m.LastWorkNs, int64(r.Work))

	if m.router != nil {
		rs := m.router()
		atomic.StoreInt64(&m.OSEvents, int64(rs.OSEvents))
		atomic.StoreInt64(&m.ConsumedByUI, int64(rs.ConsumedByUI))
		atomic.StoreInt64(&m.CommandEvents, int64(rs.CommandEvents))
		atomic.StoreInt64(&m.UnhandledCommands, int64(rs.UnhandledCommands))
	}
	if m.dropped != nil {
		atomic.StoreInt64(&m.InputsDropped, m.dropped())
	}
}

func (m *LoopMetrics) avgWorkMs() float64 {
	frames := atomic.LoadInt64(&m.Frames)
	if frames == 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&m.TotalWorkNs)) / float64(frames) / 1e6
}

// Snapshot returns a read-only copy for JSON output.
func (m *LoopMetrics) Snapshot() map[string]any {
	return map[string]any{
		"frames":             atomic.LoadInt64(&m.Frames),
		"steps":              atomic.LoadInt64(&m.Steps),
		"dropped_steps":      atomic.LoadInt64(&m.DroppedSteps),
		"avg_work_ms":        m.avgWorkMs(),
		"last_work_ms":       float64(atomic.LoadInt64(&m.LastWorkNs)) / 1e6,
		"total_sleep_ms":     float64(atomic.LoadInt64(&m.TotalSleepNs)) / 1e6,
		"os_events":          atomic.LoadInt64(&m.OSEvents),
		"consumed_by_ui":     atomic.LoadInt64(&m.ConsumedByUI),
		"command_events":     atomic.LoadInt64(&m.CommandEvents),
		"unhandled_commands": atomic.LoadInt64(&m.UnhandledCommands),
		"inputs_dropped":     atomic.LoadInt64(&m.InputsDropped),
	}
}

// NewRegistry exports m on a private Prometheus registry.
func NewRegistry(m *LoopMetrics) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	counter := func(name, help string, v *int64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "arenashooter",
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(atomic.LoadInt64(v)) })
	}
	reg.MustRegister(
		counter("frames_total", "Rendered frames.", &m.Frames),
		counter("steps_total", "Fixed simulation steps.", &m.Steps),
		counter("dropped_steps_total", "Simulation steps dropped by the catch-up bound.", &m.DroppedSteps),
		counter("os_events_total", "OS events routed.", &m.OSEvents),
		counter("ui_consumed_events_total", "OS events consumed by the UI.", &m.ConsumedByUI),
		counter("command_events_total", "UI command events routed.", &m.CommandEvents),
		counter("unhandled_command_events_total", "Command events no handler claimed.", &m.UnhandledCommands),
		counter("inputs_dropped_total", "Input events dropped by a full queue.", &m.InputsDropped),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "arenashooter",
			Name:      "frame_work_avg_ms",
			Help:      "Average update plus render time per frame.",
		}, m.avgWorkMs),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "arenashooter",
			Name:      "frame_work_last_ms",
			Help:      "Update plus render time of the last frame.",
		}, func() float64 { return float64(atomic.LoadInt64(&m.LastWorkNs)) / 1e6 }),
	)
	return reg
}
