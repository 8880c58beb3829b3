package game

import "arenashooter/engine"

// EventSource yields the OS events pending at the start of a step.
type EventSource interface {
	PollEvents(fn func(engine.Event))
}

// InputLayer is the UI: it sees every OS event first and may consume it.
type InputLayer interface {
	ProcessInputEvent(ev engine.Event) bool
	PollCommandEvent() (engine.CommandEvent, bool)
}

// InputHandler receives OS events the UI did not consume.
type InputHandler interface {
	ProcessInputEvent(ev *engine.RoutedEvent)
}

// CommandHandler receives command events. A handler that recognizes the
// source marks the event Handled, which hides it from later handlers.
type CommandHandler interface {
	ProcessCommandEvent(ev *engine.CommandEvent)
}

// Controls are the global reactions applied to every OS event.
type Controls interface {
	// ActiveInput returns the session input handler, or nil without a session.
	ActiveInput() InputHandler
	RequestStop()
	ToggleMenu()
}

// EventRouter dispatches one step's worth of events. OS events are handled
// first, in arrival order, then command events in the order the UI raised
// them.
type EventRouter struct {
	source   EventSource
	ui       InputLayer
	controls Controls
	handlers []CommandHandler
	// observers see every OS event after the global reactions, handled or not.
	observers []InputHandler

	pending []engine.RoutedEvent

	osEvents      uint64
	consumedByUI  uint64
	commandEvents uint64
	unhandledCmds uint64
}

func NewEventRouter(source EventSource, ui InputLayer, controls Controls, handlers ...CommandHandler) *EventRouter {
	return &EventRouter{
		source:   source,
		ui:       ui,
		controls: controls,
		handlers: handlers,
	}
}

// ObserveInput registers h to receive every OS event once the UI, the session
// and the global reactions have seen it.
func (r *EventRouter) ObserveInput(h InputHandler) {
	r.observers = append(r.observers, h)
}

// DispatchStep drains OS events, then command events.
func (r *EventRouter) DispatchStep() {
	r.pending = r.pending[:0]
	r.source.PollEvents(func(ev engine.Event) {
		r.pending = append(r.pending, engine.RoutedEvent{Event: ev})
	})
	for i := range r.pending {
		r.dispatchInput(&r.pending[i])
	}

	for {
		cmd, ok := r.ui.PollCommandEvent()
		if !ok {
			break
		}
		r.dispatchCommand(&cmd)
	}
}

func (r *EventRouter) dispatchInput(ev *engine.RoutedEvent) {
	r.osEvents++

	// The UI sees events first so that clicking a button does not also fire
	// the current weapon.
	if r.ui.ProcessInputEvent(ev.Event) {
		ev.Handled = true
		r.consumedByUI++
	} else if h := r.controls.ActiveInput(); h != nil {
		h.ProcessInputEvent(ev)
	}

	switch e := ev.Event.(type) {
	case engine.CloseRequested:
		r.controls.RequestStop()
	case engine.KeyboardInput:
		if e.Pressed && e.Key == engine.KeyEscape {
			r.controls.ToggleMenu()
		}
	case engine.CursorMoved, engine.MouseInput, engine.Resized:
	}

	for _, o := range r.observers {
		o.ProcessInputEvent(ev)
	}
}

func (r *EventRouter) dispatchCommand(ev *engine.CommandEvent) {
	r.commandEvents++
	for _, h := range r.handlers {
		if ev.Handled {
			return
		}
		h.ProcessCommandEvent(ev)
	}
	if !ev.Handled {
		r.unhandledCmds++
	}
}

// RouterStats counts dispatched events since creation.
type RouterStats struct {
	OSEvents          uint64
	ConsumedByUI      uint64
	CommandEvents     uint64
	UnhandledCommands uint64
}

func (r *EventRouter) Stats() RouterStats {
	return RouterStats{
		OSEvents:          r.osEvents,
		ConsumedByUI:      r.consumedByUI,
		CommandEvents:     r.commandEvents,
		UnhandledCommands: r.unhandledCmds,
	}
}
