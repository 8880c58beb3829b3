package engine

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"arenashooter/visitor"
)

// ErrUnknownEmitter is returned by EmitterRegistry.Create for an unregistered
// kind.
var ErrUnknownEmitter = errors.New("unknown emitter kind")

// Emitter decides where new particles appear. u holds three uniform numbers
// in [0, 1).
type Emitter interface {
	Kind() string
	Spawn(u [3]float32) Particle
	visitor.Saver
	visitor.Loader
}

// EmitterFactory builds a zero emitter of one kind, ready to be loaded.
type EmitterFactory func() Emitter

// EmitterRegistry maps emitter kinds to factories. It is built once at
// startup and handed to whatever needs to recreate emitters.
type EmitterRegistry struct {
	factories map[string]EmitterFactory
}

// NewEmitterRegistry returns a registry holding the built-in emitters.
func NewEmitterRegistry() *EmitterRegistry {
	r := &EmitterRegistry{factories: make(map[string]EmitterFactory)}
	r.Register(SphereEmitterKind, func() Emitter { return &SphereEmitter{} })
	r.Register(BoxEmitterKind, func() Emitter { return &BoxEmitter{} })
	return r
}

// Register adds or replaces the factory for kind.
func (r *EmitterRegistry) Register(kind string, f EmitterFactory) {
	r.factories[kind] = f
}

// Create returns a new emitter of the given kind.
func (r *EmitterRegistry) Create(kind string) (Emitter, error) {
	f, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEmitter, kind)
	}
	return f(), nil
}

// Kinds lists registered kinds in sorted order.
func (r *EmitterRegistry) Kinds() []string {
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

const (
	SphereEmitterKind = "sphere"
	BoxEmitterKind    = "box"
)

// SphereEmitter spawns particles inside a sphere around the system origin.
type SphereEmitter struct {
	Radius float32
}

func (e *SphereEmitter) Kind() string { return SphereEmitterKind }

func (e *SphereEmitter) Spawn(u [3]float32) Particle {
	theta := 2 * math.Pi * float64(u[0])
	phi := math.Acos(2*float64(u[1]) - 1)
	r := float64(e.Radius) * math.Cbrt(float64(u[2]))
	return Particle{Position: visitor.Vec3{
		float32(r * math.Sin(phi) * math.Cos(theta)),
		float32(r * math.Cos(phi)),
		float32(r * math.Sin(phi) * math.Sin(theta)),
	}}
}

func (e *SphereEmitter) Save(w *visitor.Writer) error {
	w.Float32("Radius", e.Radius)
	return nil
}

func (e *SphereEmitter) Load(r *visitor.Reader) (err error) {
	e.Radius, err = r.Float32("Radius")
	return err
}

// BoxEmitter spawns particles inside an axis aligned box.
type BoxEmitter struct {
	Size visitor.Vec3
}

func (e *BoxEmitter) Kind() string { return BoxEmitterKind }

func (e *BoxEmitter) Spawn(u [3]float32) Particle {
	var p Particle
	for i := range p.Position {
		p.Position[i] = (u[i] - 0.5) * e.Size[i]
	}
	return p
}

func (e *BoxEmitter) Save(w *visitor.Writer) error {
	w.Vec3("Size", e.Size)
	return nil
}

func (e *BoxEmitter) Load(r *visitor.Reader) (err error) {
	e.Size, err = r.Vec3("Size")
	return err
}
