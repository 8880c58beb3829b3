package engine

import (
	"fmt"
	"strconv"

	"arenashooter/visitor"
)

// SceneHandle addresses a scene owned by an Engine. Zero is "none".
type SceneHandle uint32

// Scene groups the simulated objects of one level.
type Scene struct {
	Name            string
	ParticleSystems []*ParticleSystem
}

func (s *Scene) update(dt float32) {
	for _, ps := range s.ParticleSystems {
		ps.update(dt)
	}
}

func (s *Scene) Save(w *visitor.Writer) error {
	w.String("Name", s.Name)
	w.Int("ParticleSystemCount", len(s.ParticleSystems))
	for i, ps := range s.ParticleSystems {
		if err := w.Object(particleSystemName(i), ps); err != nil {
			return err
		}
	}
	return nil
}

func loadScene(r *visitor.Reader, registry *EmitterRegistry) (*Scene, error) {
	s := &Scene{}
	var err error
	if s.Name, err = r.String("Name"); err != nil {
		return nil, err
	}
	n, err := r.Int("ParticleSystemCount")
	if err != nil {
		return nil, err
	}
	if n < 0 || n > len(r.Regions()) {
		return nil, &visitor.PathError{Path: append(r.Path(), "ParticleSystemCount"), Err: fmt.Errorf("count %d out of range", n)}
	}
	for i := 0; i < n; i++ {
		err := r.Region(particleSystemName(i), func(r *visitor.Reader) error {
			ps, err := loadParticleSystem(r, registry)
			if err != nil {
				return err
			}
			s.ParticleSystems = append(s.ParticleSystems, ps)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func particleSystemName(i int) string { return "ParticleSystem" + strconv.Itoa(i) }

func sceneName(h SceneHandle) string { return "Scene" + strconv.FormatUint(uint64(h), 10) }
