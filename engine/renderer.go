package engine

import (
	"fmt"
	"io"
	"time"
)

// Statistics describes recent render timing.
type Statistics struct {
	// PureFrameTime is the time spent inside the last Render call.
	PureFrameTime time.Duration
	// CappedFrameTime is the interval between the last two Render calls,
	// including any frame limiting sleep.
	CappedFrameTime time.Duration
	// FramesPerSecond is the number of frames rendered during the last
	// complete second.
	FramesPerSecond int
	// PotentialFramesPerSecond is what FPS would be without limiting.
	PotentialFramesPerSecond int
}

// Renderer is a headless renderer. It walks the visible scene and UI state
// and optionally writes a one line summary per frame to out.
type Renderer struct {
	now func() time.Time
	out io.Writer

	frames      uint64
	lastFrame   time.Time
	windowStart time.Time
	windowCount int
	stats       Statistics
}

// NewRenderer creates a renderer. out may be nil.
func NewRenderer(out io.Writer, now func() time.Time) *Renderer {
	if now == nil {
		now = time.Now
	}
	return &Renderer{out: out, now: now}
}

// Frames returns the number of frames rendered so far.
func (r *Renderer) Frames() uint64 { return r.frames }

// Statistics returns timing for the most recent frames.
func (r *Renderer) Statistics() Statistics { return r.stats }

func (r *Renderer) render(scenes []*Scene, ui *UI) error {
	start := r.now()

	particles := 0
	for _, s := range scenes {
		for _, ps := range s.ParticleSystems {
			particles += ps.Alive()
		}
	}
	widgets := 0
	for i := range ui.widgets {
		if ui.IsVisible(WidgetHandle(i + 1)) {
			widgets++
		}
	}
	if r.out != nil {
		if _, err := fmt.Fprintf(r.out, "frame=%d scenes=%d particles=%d widgets=%d\n",
			r.frames, len(scenes), particles, widgets); err != nil {
			return fmt.Errorf("present frame %d: %w", r.frames, err)
		}
	}

	end := r.now()
	r.frames++
	r.stats.PureFrameTime = end.Sub(start)
	if !r.lastFrame.IsZero() {
		r.stats.CappedFrameTime = end.Sub(r.lastFrame)
	}
	r.lastFrame = end
	if r.stats.PureFrameTime > 0 {
		r.stats.PotentialFramesPerSecond = int(time.Second / r.stats.PureFrameTime)
	}

	if r.windowStart.IsZero() {
		r.windowStart = end
	}
	r.windowCount++
	if end.Sub(r.windowStart) >= time.Second {
		r.stats.FramesPerSecond = r.windowCount
		r.windowCount = 0
		r.windowStart = end
	}
	return nil
}
