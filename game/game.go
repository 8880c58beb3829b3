package game

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"arenashooter/engine"
	"arenashooter/visitor"
)

const (
	DefaultSaveBinaryPath = "save.bin"
	DefaultSaveTextPath   = "save.txt"
)

// Renderer draws frames and reports timing.
type Renderer interface {
	Render() error
	Statistics() engine.Statistics
}

// Stats is the diagnostic snapshot published after every frame.
type Stats struct {
	PureFrameTimeMs   float64 `json:"pureFrameTimeMs"`
	CappedFrameTimeMs float64 `json:"cappedFrameTimeMs"`
	FPS               int     `json:"fps"`
	PotentialFPS      int     `json:"potentialFps"`
	UptimeSec         float64 `json:"uptimeSec"`
	Session           string  `json:"session,omitempty"`
	MenuVisible       bool    `json:"menuVisible"`
}

// StatsSink receives statistics from the loop goroutine. It must not block.
type StatsSink interface {
	PublishStats(s Stats)
}

// Options configures a Game. Zero values select defaults.
type Options struct {
	SaveBinaryPath string
	SaveTextPath   string
	// Renderer defaults to the engine's headless renderer.
	Renderer Renderer
	// Sessions defaults to LevelFactory.
	Sessions SessionFactory
	Stats    StatsSink
}

// Game is the application controller. It owns the single session, the menu
// and the start/save/load/quit commands. All methods run on the loop
// goroutine.
type Game struct {
	eng      *engine.Engine
	menu     *Menu
	router   *EventRouter
	renderer Renderer
	sessions SessionFactory
	stats    StatsSink
	log      *zap.Logger

	saveBinary string
	saveText   string

	session   Session
	running   bool
	time      SimTime
	debugText engine.WidgetHandle
	debug     strings.Builder
}

// NewGame builds the menu and debug overlay on eng and wires an EventRouter
// reading OS events from source.
func NewGame(eng *engine.Engine, source EventSource, opts Options, log *zap.Logger) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Game{
		eng:        eng,
		renderer:   opts.Renderer,
		sessions:   opts.Sessions,
		stats:      opts.Stats,
		log:        log,
		saveBinary: opts.SaveBinaryPath,
		saveText:   opts.SaveTextPath,
		running:    true,
	}
	if g.renderer == nil {
		g.renderer = eng
	}
	if g.sessions == nil {
		g.sessions = LevelFactory{Log: log}
	}
	if g.saveBinary == "" {
		g.saveBinary = DefaultSaveBinaryPath
	}
	if g.saveText == "" {
		g.saveText = DefaultSaveTextPath
	}
	g.menu = NewMenu(eng, log)
	g.debugText = eng.UI.Add(engine.Widget{
		Kind:    engine.WidgetText,
		Bounds:  engine.Rect{W: 400, H: 200},
		Visible: true,
	})
	g.router = NewEventRouter(source, eng.UI, g, g.menu, g)
	g.router.ObserveInput(g.menu)
	return g
}

// Router returns the event router driven by the loop.
func (g *Game) Router() *EventRouter { return g.router }

// Menu returns the main menu.
func (g *Game) Menu() *Menu { return g.menu }

// Session returns the active session, or nil.
func (g *Game) Session() Session { return g.session }

// Running reports whether quit has not been requested.
func (g *Game) Running() bool { return g.running }

// StartNewSession replaces any active session with a fresh one.
func (g *Game) StartNewSession() error {
	g.destroySession()
	s, err := g.sessions.New(g.eng)
	if err != nil {
		g.log.Error("failed to start a new game", zap.Error(err))
		return err
	}
	g.session = s
	g.log.Info("new game started", zap.String("session", s.ID()))
	g.SetMenuVisible(false)
	return nil
}

// Save writes engine state then level state to the binary and text
// artifacts. The live session is never modified.
func (g *Game) Save() error {
	if err := g.save(); err != nil {
		g.log.Error("failed to make a save", zap.String("reason", err.Error()))
		return err
	}
	g.log.Info("successfully saved", zap.String("path", g.saveBinary))
	return nil
}

func (g *Game) save() error {
	w := visitor.NewWriter()
	if err := w.Object("Engine", g.eng); err != nil {
		return fmt.Errorf("save engine state: %w", err)
	}
	err := w.Region("Level", func(w *visitor.Writer) error {
		w.Bool("Active", g.session != nil)
		if g.session == nil {
			return nil
		}
		return w.Object("Data", g.session)
	})
	if err != nil {
		return fmt.Errorf("save game state: %w", err)
	}
	tree := w.Tree()
	if err := visitor.SaveBinary(g.saveBinary, tree); err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	if err := visitor.SaveText(g.saveText, tree); err != nil {
		return fmt.Errorf("write save dump: %w", err)
	}
	return nil
}

// Load destroys the current session, then restores engine and level state
// from the binary artifact. Nothing is applied unless the whole save decodes;
// on failure the application is left without a session.
func (g *Game) Load() error {
	g.destroySession()
	if err := g.load(); err != nil {
		g.log.Error("failed to load a save", zap.String("reason", err.Error()))
		return err
	}
	g.log.Info("game state successfully loaded", zap.String("path", g.saveBinary))
	g.SetMenuVisible(false)
	return nil
}

func (g *Game) load() error {
	r, err := visitor.LoadBinary(g.saveBinary)
	if err != nil {
		return err
	}

	var st *engine.State
	err = r.Region("Engine", func(r *visitor.Reader) error {
		st, err = g.eng.LoadState(r)
		return err
	})
	if err != nil {
		return fmt.Errorf("load engine state: %w", err)
	}

	var s Session
	err = r.Region("Level", func(r *visitor.Reader) error {
		active, err := r.Bool("Active")
		if err != nil || !active {
			return err
		}
		return r.Region("Data", func(r *visitor.Reader) error {
			s, err = g.sessions.Load(r, g.eng, st)
			return err
		})
	})
	if err != nil {
		return fmt.Errorf("load game state: %w", err)
	}

	g.eng.Apply(st)
	g.session = s
	return nil
}

// Quit destroys the session and stops the loop.
func (g *Game) Quit() {
	g.destroySession()
	g.running = false
}

// Shutdown releases the session after the loop has returned.
func (g *Game) Shutdown() { g.destroySession() }

func (g *Game) destroySession() {
	if g.session == nil {
		return
	}
	s := g.session
	g.session = nil
	s.Destroy()
	g.log.Info("session destroyed", zap.String("session", s.ID()))
}

func (g *Game) SetMenuVisible(visible bool) { g.menu.SetVisible(visible) }

func (g *Game) IsMenuVisible() bool { return g.menu.IsVisible() }

// ActiveInput implements Controls.
func (g *Game) ActiveInput() InputHandler {
	if g.session == nil {
		return nil
	}
	return g.session
}

// RequestStop implements Controls.
func (g *Game) RequestStop() { g.running = false }

// ToggleMenu implements Controls.
func (g *Game) ToggleMenu() { g.SetMenuVisible(!g.IsMenuVisible()) }

// ProcessCommandEvent runs the command bound to a clicked menu button.
func (g *Game) ProcessCommandEvent(ev *engine.CommandEvent) {
	if ev.Kind != engine.CommandClick {
		return
	}
	// Each command logs its own failure.
	switch ev.Source {
	case g.menu.BtnNewGame:
		_ = g.StartNewSession()
	case g.menu.BtnSaveGame:
		_ = g.Save()
	case g.menu.BtnLoadGame:
		_ = g.Load()
	case g.menu.BtnQuitGame:
		g.Quit()
	default:
		return
	}
	ev.Handled = true
}

// Update advances the session, then the engine, by one fixed step.
func (g *Game) Update(t SimTime) {
	g.time = t
	if g.session != nil {
		g.session.Update(t)
	}
	g.eng.Update(t.DeltaSeconds())
}

// Render refreshes the statistics overlay and draws a frame.
func (g *Game) Render() error {
	st := g.updateStatistics()
	if err := g.renderer.Render(); err != nil {
		return err
	}
	if g.stats != nil {
		g.stats.PublishStats(st)
	}
	return nil
}

func (g *Game) updateStatistics() Stats {
	rs := g.renderer.Statistics()
	st := Stats{
		PureFrameTimeMs:   ms(rs.PureFrameTime),
		CappedFrameTimeMs: ms(rs.CappedFrameTime),
		FPS:               rs.FramesPerSecond,
		PotentialFPS:      rs.PotentialFramesPerSecond,
		UptimeSec:         g.time.ElapsedSeconds(),
		MenuVisible:       g.IsMenuVisible(),
	}
	if g.session != nil {
		st.Session = g.session.ID()
	}

	g.debug.Reset()
	fmt.Fprintf(&g.debug, "Pure frame time: %.2f ms\n", st.PureFrameTimeMs)
	fmt.Fprintf(&g.debug, "Capped frame time: %.2f ms\n", st.CappedFrameTimeMs)
	fmt.Fprintf(&g.debug, "FPS: %d\n", st.FPS)
	fmt.Fprintf(&g.debug, "Potential FPS: %d\n", st.PotentialFPS)
	fmt.Fprintf(&g.debug, "Up time: %.2f s", st.UptimeSec)
	g.eng.UI.SetText(g.debugText, g.debug.String())
	return st
}

// DebugText returns the current statistics overlay text.
func (g *Game) DebugText() string {
	if w := g.eng.UI.Widget(g.debugText); w != nil {
		return w.Text
	}
	return ""
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
