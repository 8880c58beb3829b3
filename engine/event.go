package engine

// Event is an OS level input event. The set of implementations is closed;
// consumers switch over the concrete types.
type Event interface {
	isEvent()
}

// Key identifies a keyboard key.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyW
	KeyA
	KeyS
	KeyD
	KeySpace
	KeyEnter
)

// MouseButton identifies a pointer button.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

// CloseRequested is sent when the window (or remote client) asks to quit.
type CloseRequested struct{}

// KeyboardInput is a key press or release.
type KeyboardInput struct {
	Key     Key
	Pressed bool
}

// CursorMoved reports the pointer position in window coordinates.
type CursorMoved struct {
	X, Y float32
}

// MouseInput is a pointer button press or release at the last cursor position.
type MouseInput struct {
	Button  MouseButton
	Pressed bool
}

// Resized reports the new window size.
type Resized struct {
	Width, Height float32
}

func (CloseRequested) isEvent() {}
func (KeyboardInput) isEvent()  {}
func (CursorMoved) isEvent()    {}
func (MouseInput) isEvent()     {}
func (Resized) isEvent()        {}

// RoutedEvent wraps an OS event for one dispatch pass. Handled only ever goes
// from false to true.
type RoutedEvent struct {
	Event   Event
	Handled bool
}

// CommandKind tags an application level event raised by a widget.
type CommandKind int

const (
	CommandClick CommandKind = iota
	CommandValueChanged
)

func (k CommandKind) String() string {
	switch k {
	case CommandClick:
		return "click"
	case CommandValueChanged:
		return "value_changed"
	default:
		return "unknown"
	}
}

// CommandEvent is raised by the UI when a control is activated.
type CommandEvent struct {
	Source  WidgetHandle
	Kind    CommandKind
	Value   float32
	Handled bool
}
