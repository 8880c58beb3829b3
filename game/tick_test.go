package game_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"arenashooter/game"
)

const delta = time.Second / 60

// manualClock runs the loop on a mock clock. Sleep advances the mock instead
// of blocking on it.
type manualClock struct {
	game.Clock
	mock   *clock.Mock
	sleeps []time.Duration
}

func newManualClock() *manualClock {
	m := clock.NewMock()
	return &manualClock{Clock: game.NewClock(m), mock: m}
}

func (c *manualClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.mock.Add(d)
}

func (c *manualClock) advance(d time.Duration) { c.mock.Add(d) }

// scriptedSim advances the manual clock by a scripted amount of work per
// render and records what the loop asked of it.
type scriptedSim struct {
	t          *testing.T
	clock      *manualClock
	frames     int
	renderWork func(frame int) time.Duration
	renderErr  error
	// skipBanked disables the banked time check for runs that drop backlog.
	skipBanked bool

	trace            []string
	updates          []game.SimTime
	updatesPerRender []int
	sinceRender      int
	renders          int
}

func (s *scriptedSim) Running() bool { return s.renders < s.frames }

func (s *scriptedSim) Update(t game.SimTime) {
	s.trace = append(s.trace, "update")
	s.updates = append(s.updates, t)
	s.sinceRender++
}

func (s *scriptedSim) Render() error {
	s.trace = append(s.trace, "render")

	// After catch-up, less than one step of wall time may remain banked.
	var elapsed time.Duration
	if n := len(s.updates); n > 0 {
		elapsed = s.updates[n-1].Elapsed
	}
	if !s.skipBanked {
		banked := s.clock.Now() - elapsed
		assert.GreaterOrEqual(s.t, banked, time.Duration(0))
		assert.Less(s.t, banked, delta)
	}

	s.updatesPerRender = append(s.updatesPerRender, s.sinceRender)
	s.sinceRender = 0
	s.renders++
	if s.renderWork != nil {
		s.clock.advance(s.renderWork(s.renders))
	}
	return s.renderErr
}

type countingDispatcher struct {
	sim   *scriptedSim
	steps int
}

func (d *countingDispatcher) DispatchStep() {
	d.steps++
	if d.sim != nil {
		d.sim.trace = append(d.sim.trace, "dispatch")
	}
}

type frameLog struct {
	reports []game.FrameReport
}

func (f *frameLog) ObserveFrame(r game.FrameReport) { f.reports = append(f.reports, r) }

func newLoop(cfg game.LoopConfig, sim *scriptedSim) (*game.Loop, *countingDispatcher) {
	d := &countingDispatcher{sim: sim}
	return game.NewLoop(cfg, sim.clock, d, sim, zap.NewNop()), d
}

func TestLoopCatchesUpAfterStall(t *testing.T) {
	clock := newManualClock()
	sim := &scriptedSim{t: t, clock: clock, frames: 2, renderWork: func(frame int) time.Duration {
		if frame == 1 {
			return 50 * time.Millisecond
		}
		return 0
	}}
	loop, d := newLoop(game.LoopConfig{}, sim)

	require.NoError(t, loop.Run(context.Background()))
	assert.Equal(t, []int{0, 3}, sim.updatesPerRender)
	assert.Equal(t, 3, d.steps)
	assert.Equal(t, []time.Duration{time.Second / 60}, clock.sleeps, "only the cheap second frame sleeps")
	assert.Equal(t, []string{"render", "dispatch", "update", "dispatch", "update", "dispatch", "update", "render"}, sim.trace)
}

func TestLoopStepsAreFixed(t *testing.T) {
	clock := newManualClock()
	work := []time.Duration{3 * time.Millisecond, 41 * time.Millisecond, 7 * time.Millisecond, 0, 120 * time.Millisecond, 16 * time.Millisecond, 17 * time.Millisecond}
	sim := &scriptedSim{t: t, clock: clock, frames: 60, renderWork: func(frame int) time.Duration {
		return work[frame%len(work)]
	}}
	loop, _ := newLoop(game.LoopConfig{}, sim)
	require.NoError(t, loop.Run(context.Background()))

	require.NotEmpty(t, sim.updates)
	for i, u := range sim.updates {
		assert.Equal(t, delta, u.Delta)
		assert.Equal(t, time.Duration(i+1)*delta, u.Elapsed)
	}
	assert.Equal(t, loop.Time(), sim.updates[len(sim.updates)-1])
}

func TestLoopCapsFrameRate(t *testing.T) {
	t.Run("sleeps the rest of the frame", func(t *testing.T) {
		clock := newManualClock()
		sim := &scriptedSim{t: t, clock: clock, frames: 4, renderWork: func(int) time.Duration { return 5 * time.Millisecond }}
		loop, _ := newLoop(game.LoopConfig{TargetFPS: 60}, sim)
		require.NoError(t, loop.Run(context.Background()))

		period := time.Second / 60
		require.Len(t, clock.sleeps, 4)
		for _, s := range clock.sleeps {
			assert.Equal(t, period-5*time.Millisecond, s)
		}
		assert.Equal(t, 4*period, clock.Now())
	})

	t.Run("never sleeps when over budget", func(t *testing.T) {
		clock := newManualClock()
		sim := &scriptedSim{t: t, clock: clock, frames: 4, renderWork: func(int) time.Duration { return 30 * time.Millisecond }}
		loop, _ := newLoop(game.LoopConfig{TargetFPS: 60}, sim)
		require.NoError(t, loop.Run(context.Background()))
		assert.Empty(t, clock.sleeps)
	})

	t.Run("target can change at runtime", func(t *testing.T) {
		clock := newManualClock()
		sim := &scriptedSim{t: t, clock: clock, frames: 1}
		loop, _ := newLoop(game.LoopConfig{TargetFPS: 60}, sim)
		loop.SetTargetFPS(20)
		loop.SetTargetFPS(-1)
		assert.Equal(t, 20, loop.TargetFPS())
		require.NoError(t, loop.Run(context.Background()))
		assert.Equal(t, []time.Duration{50 * time.Millisecond}, clock.sleeps)
	})
}

func TestLoopBoundedCatchUp(t *testing.T) {
	clock := newManualClock()
	sim := &scriptedSim{t: t, clock: clock, frames: 2, renderWork: func(frame int) time.Duration {
		if frame == 1 {
			return 100 * time.Millisecond
		}
		return 0
	}}
	sim.skipBanked = true
	loop, _ := newLoop(game.LoopConfig{MaxCatchUpSteps: 2}, sim)
	frames := &frameLog{}
	loop.SetObserver(frames)

	require.NoError(t, loop.Run(context.Background()))
	require.Len(t, frames.reports, 2)
	assert.Equal(t, 2, frames.reports[1].Steps)
	assert.Equal(t, 4, frames.reports[1].DroppedSteps)
	assert.Equal(t, 2*delta, frames.reports[1].Time.Elapsed)
	assert.Equal(t, []int{0, 2}, sim.updatesPerRender)
}

func TestLoopRenderFailureIsFatal(t *testing.T) {
	clock := newManualClock()
	boom := errors.New("device lost")
	sim := &scriptedSim{t: t, clock: clock, frames: 10, renderErr: boom}
	loop, _ := newLoop(game.LoopConfig{}, sim)

	err := loop.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, sim.renders)
}

func TestLoopStopsOnContext(t *testing.T) {
	clock := newManualClock()
	sim := &scriptedSim{t: t, clock: clock, frames: 10}
	loop, _ := newLoop(game.LoopConfig{}, sim)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, loop.Run(ctx))
	assert.Zero(t, sim.renders)
}

func TestNewClockMeasuresFromCreation(t *testing.T) {
	m := clock.NewMock()
	m.Add(time.Hour)
	c := game.NewClock(m)
	assert.Equal(t, time.Duration(0), c.Now())

	m.Add(5 * time.Millisecond)
	assert.Equal(t, 5*time.Millisecond, c.Now())

	done := make(chan struct{})
	go func() {
		c.Sleep(10 * time.Millisecond)
		close(done)
	}()
	require.Eventually(t, func() bool {
		m.Add(10 * time.Millisecond)
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, c.Now(), 15*time.Millisecond)
}
