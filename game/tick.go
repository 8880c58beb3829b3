package game

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	// TicksPerSecond is the default fixed simulation rate.
	TicksPerSecond = 60
	// TargetFPS is the default render rate cap.
	TargetFPS = 60
)

// Simulation is what a Loop drives.
type Simulation interface {
	// Running reports whether the loop should keep going.
	Running() bool
	Update(t SimTime)
	Render() error
}

// Dispatcher drains one step's worth of input.
type Dispatcher interface {
	DispatchStep()
}

// FrameReport describes one iteration of the loop.
type FrameReport struct {
	Steps        int
	DroppedSteps int
	Work         time.Duration
	Sleep        time.Duration
	Time         SimTime
}

// FrameObserver receives a report after every frame.
type FrameObserver interface {
	ObserveFrame(r FrameReport)
}

// LoopConfig configures a Loop. Zero values select the defaults.
type LoopConfig struct {
	TicksPerSecond int
	TargetFPS      int
	// MaxCatchUpSteps bounds the updates run between two renders. Zero means
	// unbounded; excess backlog is dropped when the bound is hit.
	MaxCatchUpSteps int
}

// Loop is a fixed timestep scheduler: simulation runs at a constant rate
// against the wall clock, rendering happens once per iteration and is capped
// at the target frame rate.
type Loop struct {
	clock      Clock
	router     Dispatcher
	sim        Simulation
	observer   FrameObserver
	log        *zap.Logger
	maxCatchUp int
	targetFPS  atomic.Int64

	time SimTime
}

func NewLoop(cfg LoopConfig, clock Clock, router Dispatcher, sim Simulation, log *zap.Logger) *Loop {
	tps := cfg.TicksPerSecond
	if tps <= 0 {
		tps = TicksPerSecond
	}
	fps := cfg.TargetFPS
	if fps <= 0 {
		fps = TargetFPS
	}
	if clock == nil {
		clock = NewRealClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	l := &Loop{
		clock:      clock,
		router:     router,
		sim:        sim,
		log:        log,
		maxCatchUp: cfg.MaxCatchUpSteps,
		time:       SimTime{Delta: time.Second / time.Duration(tps)},
	}
	l.targetFPS.Store(int64(fps))
	return l
}

// SetObserver installs o to receive per-frame reports.
func (l *Loop) SetObserver(o FrameObserver) { l.observer = o }

// SetTargetFPS changes the render cap. Safe to call from any goroutine.
func (l *Loop) SetTargetFPS(fps int) {
	if fps > 0 {
		l.targetFPS.Store(int64(fps))
	}
}

// TargetFPS returns the current render cap.
func (l *Loop) TargetFPS() int { return int(l.targetFPS.Load()) }

// Time returns the simulated clock.
func (l *Loop) Time() SimTime { return l.time }

// Run drives the simulation until it stops running or ctx is done. A render
// failure ends the loop and is returned.
func (l *Loop) Run(ctx context.Context) error {
	start := l.clock.Now()
	delta := l.time.Delta
	var dropped time.Duration

	for l.sim.Running() && ctx.Err() == nil {
		frameStart := l.clock.Now()
		backlog := frameStart - start - dropped - l.time.Elapsed

		// Catch up on banked wall time in whole steps.
		report := FrameReport{}
		for backlog >= delta {
			if l.maxCatchUp > 0 && report.Steps == l.maxCatchUp {
				report.DroppedSteps = int(backlog / delta)
				dropped += time.Duration(report.DroppedSteps) * delta
				l.log.Warn("simulation backlog dropped",
					zap.Int("steps", report.DroppedSteps),
					zap.Duration("backlog", backlog))
				break
			}
			l.time.Elapsed += delta
			l.router.DispatchStep()
			l.sim.Update(l.time)
			backlog -= delta
			report.Steps++
		}

		if err := l.sim.Render(); err != nil {
			return fmt.Errorf("render at %s: %w", l.time.Elapsed, err)
		}

		report.Work = l.clock.Now() - frameStart
		if period := time.Second / time.Duration(l.targetFPS.Load()); report.Work < period {
			report.Sleep = period - report.Work
			l.clock.Sleep(report.Sleep)
		}
		report.Time = l.time
		if l.observer != nil {
			l.observer.ObserveFrame(report)
		}
	}
	return nil
}
