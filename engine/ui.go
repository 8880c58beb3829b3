package engine

// WidgetHandle addresses a widget in a UI. The zero handle is "none".
type WidgetHandle uint32

// WidgetKind discriminates widget behaviour. Every switch over it is
// exhaustive.
type WidgetKind int

const (
	WidgetPanel WidgetKind = iota
	WidgetButton
	WidgetScrollBar
	WidgetText
)

// Rect is an axis aligned rectangle in window coordinates.
type Rect struct {
	X, Y, W, H float32
}

func (r Rect) contains(x, y float32) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.W && y < r.Y+r.H
}

// Widget is a headless UI element. Styling is not modelled.
type Widget struct {
	Kind    WidgetKind
	Parent  WidgetHandle
	Bounds  Rect
	Visible bool
	Text    string
	Texture TextureHandle

	// Scroll bar range and value.
	Min, Max, Value, Step float32
}

// UI is a retained widget tree that hit-tests pointer input and raises
// command events for activated controls.
type UI struct {
	widgets  []Widget
	cursor   [2]float32
	commands []CommandEvent
}

func NewUI() *UI {
	return &UI{}
}

// Add inserts w and returns its handle.
func (u *UI) Add(w Widget) WidgetHandle {
	u.widgets = append(u.widgets, w)
	return WidgetHandle(len(u.widgets))
}

// Widget returns a pointer to the widget behind h, or nil.
func (u *UI) Widget(h WidgetHandle) *Widget {
	if h == 0 || int(h) > len(u.widgets) {
		return nil
	}
	return &u.widgets[h-1]
}

// SetVisible changes the visibility flag of h.
func (u *UI) SetVisible(h WidgetHandle, visible bool) {
	if w := u.Widget(h); w != nil {
		w.Visible = visible
	}
}

// IsVisible reports whether h and all of its ancestors are visible.
func (u *UI) IsVisible(h WidgetHandle) bool {
	for h != 0 {
		w := u.Widget(h)
		if w == nil || !w.Visible {
			return false
		}
		h = w.Parent
	}
	return true
}

// SetText replaces the text of h.
func (u *UI) SetText(h WidgetHandle, text string) {
	if w := u.Widget(h); w != nil {
		w.Text = text
	}
}

// Move shifts h and all of its descendants by (dx, dy).
func (u *UI) Move(h WidgetHandle, dx, dy float32) {
	if u.Widget(h) == nil {
		return
	}
	for i := range u.widgets {
		if u.within(WidgetHandle(i+1), h) {
			u.widgets[i].Bounds.X += dx
			u.widgets[i].Bounds.Y += dy
		}
	}
}

// within reports whether h is root or one of its descendants.
func (u *UI) within(h, root WidgetHandle) bool {
	for h != 0 {
		if h == root {
			return true
		}
		w := u.Widget(h)
		if w == nil {
			return false
		}
		h = w.Parent
	}
	return false
}

// ProcessInputEvent offers ev to the widget tree. It returns true when the
// event was consumed by a widget and must not reach gameplay.
func (u *UI) ProcessInputEvent(ev Event) bool {
	switch e := ev.(type) {
	case CursorMoved:
		u.cursor = [2]float32{e.X, e.Y}
		return u.hit() != 0
	case MouseInput:
		h := u.hit()
		if h == 0 {
			return false
		}
		if e.Button == MouseLeft && e.Pressed {
			u.activate(h)
		}
		return true
	case KeyboardInput:
		return false
	case CloseRequested, Resized:
		return false
	default:
		return false
	}
}

// PollCommandEvent pops the oldest pending command event.
func (u *UI) PollCommandEvent() (CommandEvent, bool) {
	if len(u.commands) == 0 {
		return CommandEvent{}, false
	}
	ev := u.commands[0]
	u.commands = u.commands[1:]
	return ev, true
}

func (u *UI) activate(h WidgetHandle) {
	w := u.Widget(h)
	switch w.Kind {
	case WidgetButton:
		u.commands = append(u.commands, CommandEvent{Source: h, Kind: CommandClick})
	case WidgetScrollBar:
		v := w.Min
		if w.Bounds.W > 0 {
			v += (u.cursor[0] - w.Bounds.X) / w.Bounds.W * (w.Max - w.Min)
		}
		if w.Step > 0 {
			v = w.Min + float32(int((v-w.Min)/w.Step+0.5))*w.Step
		}
		v = clamp(v, w.Min, w.Max)
		if v != w.Value {
			w.Value = v
			u.commands = append(u.commands, CommandEvent{Source: h, Kind: CommandValueChanged, Value: v})
		}
	case WidgetPanel, WidgetText:
	}
}

// hit returns the topmost interactive visible widget under the cursor. Later
// widgets are drawn above earlier ones.
func (u *UI) hit() WidgetHandle {
	for i := len(u.widgets) - 1; i >= 0; i-- {
		h := WidgetHandle(i + 1)
		w := &u.widgets[i]
		switch w.Kind {
		case WidgetText:
			continue
		case WidgetPanel, WidgetButton, WidgetScrollBar:
		}
		if w.Bounds.contains(u.cursor[0], u.cursor[1]) && u.IsVisible(h) {
			return h
		}
	}
	return 0
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
