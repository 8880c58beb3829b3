package game

import (
	"go.uber.org/zap"

	"arenashooter/engine"
)

const (
	menuMusicPath  = "data/sounds/menu_theme.ogg"
	menuButtonPath = "data/ui/button.png"
	menuKnobPath   = "data/ui/circle.png"
	menuMusicGain  = 0.25
)

// Menu is the main menu: session buttons plus a music volume slider.
type Menu struct {
	ui    *engine.UI
	sound *engine.SoundContext

	root        engine.WidgetHandle
	BtnNewGame  engine.WidgetHandle
	BtnSaveGame engine.WidgetHandle
	BtnLoadGame engine.WidgetHandle
	BtnQuitGame engine.WidgetHandle
	MusicVolume engine.WidgetHandle

	music engine.SourceHandle
}

// NewMenu builds the menu widgets and starts the menu music. Missing assets
// are logged and skipped.
func NewMenu(eng *engine.Engine, log *zap.Logger) *Menu {
	m := &Menu{ui: eng.UI, sound: eng.Sound}

	texture, err := eng.Resources.RequestTexture(menuButtonPath, engine.TextureRGBA8)
	if err != nil {
		log.Warn("menu texture unavailable", zap.String("path", menuButtonPath), zap.Error(err))
	}
	knob, err := eng.Resources.RequestTexture(menuKnobPath, engine.TextureRGBA8)
	if err != nil {
		log.Warn("menu texture unavailable", zap.String("path", menuKnobPath), zap.Error(err))
	}

	m.root = m.ui.Add(engine.Widget{
		Kind:    engine.WidgetPanel,
		Bounds:  engine.Rect{X: 300, Y: 150, W: 200, H: 300},
		Visible: true,
	})
	button := func(row int, text string) engine.WidgetHandle {
		return m.ui.Add(engine.Widget{
			Kind:    engine.WidgetButton,
			Parent:  m.root,
			Bounds:  engine.Rect{X: 310, Y: 160 + float32(row)*55, W: 180, H: 45},
			Visible: true,
			Text:    text,
			Texture: texture,
		})
	}
	m.BtnNewGame = button(0, "New Game")
	m.BtnSaveGame = button(1, "Save Game")
	m.BtnLoadGame = button(2, "Load Game")
	m.BtnQuitGame = button(3, "Quit")
	m.MusicVolume = m.ui.Add(engine.Widget{
		Kind:    engine.WidgetScrollBar,
		Parent:  m.root,
		Bounds:  engine.Rect{X: 310, Y: 390, W: 180, H: 30},
		Visible: true,
		Texture: knob,
		Min:     0,
		Max:     1,
		Step:    0.05,
		Value:   menuMusicGain,
	})

	buf, err := eng.Resources.RequestSoundBuffer(menuMusicPath, engine.BufferStream)
	if err != nil {
		log.Warn("menu music unavailable", zap.String("path", menuMusicPath), zap.Error(err))
		return m
	}
	m.music = m.sound.Add(&engine.Source{Buffer: buf, Gain: menuMusicGain, Playing: true})
	return m
}

func (m *Menu) IsVisible() bool { return m.ui.IsVisible(m.root) }

func (m *Menu) SetVisible(visible bool) { m.ui.SetVisible(m.root, visible) }

// Volume returns the music gain selected on the slider.
func (m *Menu) Volume() float32 {
	if src := m.sound.Source(m.music); src != nil {
		return src.Gain
	}
	return m.ui.Widget(m.MusicVolume).Value
}

// ProcessInputEvent keeps the menu centred in the window.
func (m *Menu) ProcessInputEvent(ev *engine.RoutedEvent) {
	e, ok := ev.Event.(engine.Resized)
	if !ok {
		return
	}
	root := m.ui.Widget(m.root)
	if root == nil {
		return
	}
	x := (e.Width - root.Bounds.W) / 2
	y := (e.Height - root.Bounds.H) / 2
	m.ui.Move(m.root, x-root.Bounds.X, y-root.Bounds.Y)
}

// ProcessCommandEvent handles the menu's own settings controls.
func (m *Menu) ProcessCommandEvent(ev *engine.CommandEvent) {
	switch ev.Kind {
	case engine.CommandValueChanged:
		if ev.Source != m.MusicVolume {
			return
		}
		if src := m.sound.Source(m.music); src != nil {
			src.Gain = ev.Value
		}
		ev.Handled = true
	case engine.CommandClick:
	}
}
