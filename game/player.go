package game

import (
	"math"

	"arenashooter/engine"
	"arenashooter/visitor"
)

const (
	playerSpeed       = 5.0   // units per second
	mouseSensitivity  = 0.005 // radians per pixel
	playerStartHealth = 100
)

type moveDir int

const (
	moveForward moveDir = iota
	moveBackward
	moveLeft
	moveRight
	moveCount
)

// Player is the locally controlled character of a level.
type Player struct {
	Position visitor.Vec3
	Yaw      float32
	Health   int64
	Shots    uint64

	move      [moveCount]bool
	cursorX   float32
	hasCursor bool
}

func newPlayer() *Player {
	return &Player{Health: playerStartHealth}
}

// ProcessInputEvent applies an OS event that reached gameplay.
func (p *Player) ProcessInputEvent(ev *engine.RoutedEvent) {
	switch e := ev.Event.(type) {
	case engine.KeyboardInput:
		switch e.Key {
		case engine.KeyW:
			p.move[moveForward] = e.Pressed
		case engine.KeyS:
			p.move[moveBackward] = e.Pressed
		case engine.KeyA:
			p.move[moveLeft] = e.Pressed
		case engine.KeyD:
			p.move[moveRight] = e.Pressed
		}
	case engine.CursorMoved:
		if p.hasCursor {
			p.Yaw += (e.X - p.cursorX) * mouseSensitivity
		}
		p.cursorX, p.hasCursor = e.X, true
	case engine.MouseInput:
		if e.Button == engine.MouseLeft && e.Pressed {
			p.Shots++
		}
	case engine.CloseRequested, engine.Resized:
	}
}

// Update moves the player along its facing for one step.
func (p *Player) Update(t SimTime) {
	var fwd, side float64
	if p.move[moveForward] {
		fwd++
	}
	if p.move[moveBackward] {
		fwd--
	}
	if p.move[moveRight] {
		side++
	}
	if p.move[moveLeft] {
		side--
	}
	if fwd == 0 && side == 0 {
		return
	}
	if l := math.Hypot(fwd, side); l > 1 {
		fwd, side = fwd/l, side/l
	}
	sin, cos := math.Sincos(float64(p.Yaw))
	step := playerSpeed * float64(t.DeltaSeconds())
	p.Position[0] += float32((fwd*sin + side*cos) * step)
	p.Position[2] += float32((fwd*cos - side*sin) * step)
}

func (p *Player) Save(w *visitor.Writer) error {
	w.Vec3("Position", p.Position)
	w.Float32("Yaw", p.Yaw)
	w.Int64("Health", p.Health)
	w.Uint64("Shots", p.Shots)
	return nil
}

func (p *Player) Load(r *visitor.Reader) error {
	var err error
	if p.Position, err = r.Vec3("Position"); err != nil {
		return err
	}
	if p.Yaw, err = r.Float32("Yaw"); err != nil {
		return err
	}
	if p.Health, err = r.Int64("Health"); err != nil {
		return err
	}
	p.Shots, err = r.Uint64("Shots")
	return err
}
