package engine

import (
	"fmt"

	"arenashooter/visitor"
)

// Particle is a single simulated particle.
type Particle struct {
	Position visitor.Vec3
	Velocity visitor.Vec3
	Age      float32
}

// ParticleSystem spawns particles from an emitter at a fixed rate. Spawn
// positions come from a hash of (Seed, spawned count), so a restored system
// continues the same sequence. Live particles are transient and not saved.
type ParticleSystem struct {
	Emitter      Emitter
	Origin       visitor.Vec3
	SpawnRate    float32 // particles per second
	Lifetime     float32 // seconds
	MaxParticles int
	Seed         uint32

	spawned   uint64
	spawnDebt float32
	particles []Particle
}

// Alive returns the number of live particles.
func (ps *ParticleSystem) Alive() int { return len(ps.particles) }

// Spawned returns how many particles were ever emitted.
func (ps *ParticleSystem) Spawned() uint64 { return ps.spawned }

func (ps *ParticleSystem) update(dt float32) {
	live := ps.particles[:0]
	for _, p := range ps.particles {
		p.Age += dt
		if p.Age >= ps.Lifetime {
			continue
		}
		for i := range p.Position {
			p.Position[i] += p.Velocity[i] * dt
		}
		live = append(live, p)
	}
	ps.particles = live

	if ps.Emitter == nil {
		return
	}
	ps.spawnDebt += ps.SpawnRate * dt
	for ps.spawnDebt >= 1 {
		ps.spawnDebt--
		if len(ps.particles) >= ps.MaxParticles {
			continue
		}
		p := ps.Emitter.Spawn(ps.uniform())
		for i := range p.Position {
			p.Position[i] += ps.Origin[i]
		}
		ps.particles = append(ps.particles, p)
		ps.spawned++
	}
}

func (ps *ParticleSystem) uniform() [3]float32 {
	var u [3]float32
	for i := range u {
		h := hash32(ps.Seed ^ uint32(ps.spawned)*0x9e3779b1 ^ uint32(i)*0x85ebca6b)
		u[i] = float32(h>>8) / float32(1<<24)
	}
	return u
}

// hash32 is a murmur style finalizer.
func hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

func (ps *ParticleSystem) Save(w *visitor.Writer) error {
	if ps.Emitter == nil {
		return fmt.Errorf("particle system without emitter")
	}
	w.Vec3("Origin", ps.Origin)
	w.Float32("SpawnRate", ps.SpawnRate)
	w.Float32("Lifetime", ps.Lifetime)
	w.Int("MaxParticles", ps.MaxParticles)
	w.Uint64("Seed", uint64(ps.Seed))
	w.Uint64("Spawned", ps.spawned)
	w.Float32("SpawnDebt", ps.spawnDebt)
	w.String("EmitterKind", ps.Emitter.Kind())
	return w.Object("Emitter", ps.Emitter)
}

// loadParticleSystem restores a system, recreating its emitter through
// registry.
func loadParticleSystem(r *visitor.Reader, registry *EmitterRegistry) (*ParticleSystem, error) {
	ps := &ParticleSystem{}
	var err error
	if ps.Origin, err = r.Vec3("Origin"); err != nil {
		return nil, err
	}
	if ps.SpawnRate, err = r.Float32("SpawnRate"); err != nil {
		return nil, err
	}
	if ps.Lifetime, err = r.Float32("Lifetime"); err != nil {
		return nil, err
	}
	if ps.MaxParticles, err = r.Int("MaxParticles"); err != nil {
		return nil, err
	}
	seed, err := r.Uint64("Seed")
	if err != nil {
		return nil, err
	}
	ps.Seed = uint32(seed)
	if ps.spawned, err = r.Uint64("Spawned"); err != nil {
		return nil, err
	}
	if ps.spawnDebt, err = r.Float32("SpawnDebt"); err != nil {
		return nil, err
	}
	kind, err := r.String("EmitterKind")
	if err != nil {
		return nil, err
	}
	if ps.Emitter, err = registry.Create(kind); err != nil {
		return nil, err
	}
	if err := r.Object("Emitter", ps.Emitter); err != nil {
		return nil, err
	}
	return ps, nil
}
