package game

import (
	"math"

	"arenashooter/engine"
	"arenashooter/visitor"
)

// CylinderEmitterKind is the registry kind of CylinderEmitter.
const CylinderEmitterKind = "cylinder"

// CylinderEmitter spawns particles inside a vertical cylinder. It is the
// game's custom emitter and must be registered before levels are created or
// loaded.
type CylinderEmitter struct {
	Radius float32
	Height float32
}

// RegisterEmitters adds the game's custom emitters to reg.
func RegisterEmitters(reg *engine.EmitterRegistry) {
	reg.Register(CylinderEmitterKind, func() engine.Emitter { return &CylinderEmitter{} })
}

func (e *CylinderEmitter) Kind() string { return CylinderEmitterKind }

func (e *CylinderEmitter) Spawn(u [3]float32) engine.Particle {
	angle := 2 * math.Pi * float64(u[0])
	r := float64(e.Radius) * math.Sqrt(float64(u[1]))
	return engine.Particle{
		Position: visitor.Vec3{
			float32(r * math.Cos(angle)),
			u[2] * e.Height,
			float32(r * math.Sin(angle)),
		},
		Velocity: visitor.Vec3{0, 1, 0},
	}
}

func (e *CylinderEmitter) Save(w *visitor.Writer) error {
	w.Float32("Radius", e.Radius)
	w.Float32("Height", e.Height)
	return nil
}

func (e *CylinderEmitter) Load(r *visitor.Reader) (err error) {
	if e.Radius, err = r.Float32("Radius"); err != nil {
		return err
	}
	e.Height, err = r.Float32("Height")
	return err
}
