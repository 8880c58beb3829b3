package game_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arenashooter/engine"
	"arenashooter/game"
)

type sliceSource struct {
	events []engine.Event
}

func (s *sliceSource) PollEvents(fn func(engine.Event)) {
	events := s.events
	s.events = nil
	for _, ev := range events {
		fn(ev)
	}
}

type fakeUI struct {
	trace    *[]string
	consume  func(engine.Event) bool
	commands []engine.CommandEvent
}

func (u *fakeUI) ProcessInputEvent(ev engine.Event) bool {
	*u.trace = append(*u.trace, "ui")
	return u.consume != nil && u.consume(ev)
}

func (u *fakeUI) PollCommandEvent() (engine.CommandEvent, bool) {
	if len(u.commands) == 0 {
		return engine.CommandEvent{}, false
	}
	ev := u.commands[0]
	u.commands = u.commands[1:]
	return ev, true
}

type recordingInput struct {
	trace *[]string
	seen  []engine.Event
}

func (r *recordingInput) ProcessInputEvent(ev *engine.RoutedEvent) {
	*r.trace = append(*r.trace, "session")
	r.seen = append(r.seen, ev.Event)
}

type fakeControls struct {
	input   game.InputHandler
	stops   int
	toggles int
}

func (c *fakeControls) ActiveInput() game.InputHandler { return c.input }
func (c *fakeControls) RequestStop()                   { c.stops++ }
func (c *fakeControls) ToggleMenu()                    { c.toggles++ }

type claimingHandler struct {
	name   string
	trace  *[]string
	claims engine.WidgetHandle
	seen   []engine.WidgetHandle
}

func (h *claimingHandler) ProcessCommandEvent(ev *engine.CommandEvent) {
	*h.trace = append(*h.trace, h.name)
	h.seen = append(h.seen, ev.Source)
	if ev.Source == h.claims {
		ev.Handled = true
	}
}

func TestRouterUIConsumedEventsNeverReachSession(t *testing.T) {
	var trace []string
	click := engine.MouseInput{Button: engine.MouseLeft, Pressed: true}
	key := engine.KeyboardInput{Key: engine.KeyW, Pressed: true}

	src := &sliceSource{events: []engine.Event{click, key}}
	ui := &fakeUI{trace: &trace, consume: func(ev engine.Event) bool { return ev == click }}
	session := &recordingInput{trace: &trace}
	controls := &fakeControls{input: session}

	r := game.NewEventRouter(src, ui, controls)
	r.DispatchStep()

	assert.Equal(t, []engine.Event{key}, session.seen)
	assert.Equal(t, []string{"ui", "ui", "session"}, trace)
	assert.Equal(t, game.RouterStats{OSEvents: 2, ConsumedByUI: 1}, r.Stats())
}

type observingInput struct {
	trace    *[]string
	controls *fakeControls
	seen     []engine.RoutedEvent
	toggles  []int
}

func (o *observingInput) ProcessInputEvent(ev *engine.RoutedEvent) {
	*o.trace = append(*o.trace, "observer")
	o.seen = append(o.seen, *ev)
	o.toggles = append(o.toggles, o.controls.toggles)
}

func TestRouterObserversSeeEveryEvent(t *testing.T) {
	var trace []string
	click := engine.MouseInput{Button: engine.MouseLeft, Pressed: true}
	escape := engine.KeyboardInput{Key: engine.KeyEscape, Pressed: true}

	src := &sliceSource{events: []engine.Event{click, escape}}
	ui := &fakeUI{trace: &trace, consume: func(ev engine.Event) bool { return ev == click }}
	controls := &fakeControls{input: &recordingInput{trace: &trace}}
	obs := &observingInput{trace: &trace, controls: controls}

	r := game.NewEventRouter(src, ui, controls)
	r.ObserveInput(obs)
	r.DispatchStep()

	assert.Equal(t, []string{"ui", "observer", "ui", "session", "observer"}, trace)
	assert.Equal(t, []engine.RoutedEvent{{Event: click, Handled: true}, {Event: escape}}, obs.seen)
	assert.Equal(t, []int{0, 1}, obs.toggles, "global reactions run before observers")
}

func TestRouterWithoutSession(t *testing.T) {
	var trace []string
	src := &sliceSource{events: []engine.Event{engine.KeyboardInput{Key: engine.KeyW, Pressed: true}}}
	r := game.NewEventRouter(src, &fakeUI{trace: &trace}, &fakeControls{})
	r.DispatchStep()
	assert.Equal(t, []string{"ui"}, trace)
}

func TestRouterGlobalReactionsAlwaysApply(t *testing.T) {
	var trace []string
	escape := engine.KeyboardInput{Key: engine.KeyEscape, Pressed: true}
	src := &sliceSource{events: []engine.Event{
		escape,
		engine.KeyboardInput{Key: engine.KeyEscape, Pressed: false},
		engine.CloseRequested{},
	}}
	// The UI swallowing an event must not suppress global reactions.
	ui := &fakeUI{trace: &trace, consume: func(engine.Event) bool { return true }}
	controls := &fakeControls{}

	game.NewEventRouter(src, ui, controls).DispatchStep()
	assert.Equal(t, 1, controls.toggles)
	assert.Equal(t, 1, controls.stops)
}

func TestRouterCommandHandling(t *testing.T) {
	var trace []string
	ui := &fakeUI{trace: &trace, commands: []engine.CommandEvent{
		{Source: 1, Kind: engine.CommandClick},
		{Source: 2, Kind: engine.CommandClick},
		{Source: 3, Kind: engine.CommandClick},
	}}
	src := &sliceSource{events: []engine.Event{engine.CursorMoved{X: 1, Y: 1}}}
	menu := &claimingHandler{name: "menu", trace: &trace, claims: 1}
	app := &claimingHandler{name: "app", trace: &trace, claims: 2}

	r := game.NewEventRouter(src, ui, &fakeControls{}, menu, app)
	r.DispatchStep()

	// OS events first, then commands in FIFO order; a claimed command is
	// hidden from later handlers only.
	assert.Equal(t, []string{"ui", "menu", "menu", "app", "menu", "app"}, trace)
	assert.Equal(t, []engine.WidgetHandle{1, 2, 3}, menu.seen)
	assert.Equal(t, []engine.WidgetHandle{2, 3}, app.seen)
	assert.Equal(t, uint64(3), r.Stats().CommandEvents)
	assert.Equal(t, uint64(1), r.Stats().UnhandledCommands)
}

func TestRouterMenuToggleAcrossSteps(t *testing.T) {
	g, q := newTestGame(t)
	g.SetMenuVisible(false)

	press := engine.KeyboardInput{Key: engine.KeyEscape, Pressed: true}
	release := engine.KeyboardInput{Key: engine.KeyEscape, Pressed: false}

	require.True(t, q.Push(press))
	require.True(t, q.Push(release))
	g.Router().DispatchStep()
	assert.True(t, g.IsMenuVisible())

	require.True(t, q.Push(press))
	require.True(t, q.Push(release))
	g.Router().DispatchStep()
	assert.False(t, g.IsMenuVisible())
}
