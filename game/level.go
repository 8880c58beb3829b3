package game

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"arenashooter/engine"
	"arenashooter/visitor"
)

const floorTexturePath = "data/textures/floor.jpg"

// Session is the single active level. It is created by a SessionFactory and
// always destroyed before being replaced.
type Session interface {
	InputHandler
	visitor.Saver
	ID() string
	Update(t SimTime)
	Destroy()
}

// SessionFactory creates sessions, either fresh or from a save.
type SessionFactory interface {
	New(eng *engine.Engine) (Session, error)
	// Load decodes a session from r. st is the engine state being loaded
	// alongside it; it is applied only after Load succeeds.
	Load(r *visitor.Reader, eng *engine.Engine, st *engine.State) (Session, error)
}

// Level is the playable arena.
type Level struct {
	id     uuid.UUID
	eng    *engine.Engine
	scene  engine.SceneHandle
	player *Player
}

// LevelFactory builds Levels.
type LevelFactory struct {
	Log *zap.Logger
}

func (f LevelFactory) New(eng *engine.Engine) (Session, error) {
	if _, err := eng.Resources.RequestTexture(floorTexturePath, engine.TextureRGB8); err != nil && f.Log != nil {
		f.Log.Warn("level texture unavailable", zap.String("path", floorTexturePath), zap.Error(err))
	}
	emitter, err := eng.Emitters.Create(CylinderEmitterKind)
	if err != nil {
		return nil, fmt.Errorf("create level: %w", err)
	}
	e, ok := emitter.(*CylinderEmitter)
	if !ok {
		return nil, fmt.Errorf("create level: %q emitter is %T", CylinderEmitterKind, emitter)
	}
	e.Radius, e.Height = 1, 0.5

	id := uuid.New()
	scene := eng.AddScene(&engine.Scene{
		Name: "arena-" + id.String(),
		ParticleSystems: []*engine.ParticleSystem{{
			Emitter:      emitter,
			Origin:       visitor.Vec3{0, 0, 10},
			SpawnRate:    30,
			Lifetime:     2,
			MaxParticles: 256,
			Seed:         id.ID(),
		}},
	})
	return &Level{id: id, eng: eng, scene: scene, player: newPlayer()}, nil
}

func (f LevelFactory) Load(r *visitor.Reader, eng *engine.Engine, st *engine.State) (Session, error) {
	l := &Level{eng: eng, player: newPlayer()}
	s, err := r.String("Id")
	if err != nil {
		return nil, err
	}
	if l.id, err = uuid.Parse(s); err != nil {
		return nil, fmt.Errorf("parse Id: %w", err)
	}
	h, err := r.Uint64("Scene")
	if err != nil {
		return nil, err
	}
	l.scene = engine.SceneHandle(h)
	if !st.HasScene(l.scene) {
		return nil, fmt.Errorf("level scene %d missing from engine state", h)
	}
	if err := r.Object("Player", l.player); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Level) ID() string { return l.id.String() }

// Player returns the local player.
func (l *Level) Player() *Player { return l.player }

// Scene returns the engine scene owned by the level.
func (l *Level) Scene() engine.SceneHandle { return l.scene }

func (l *Level) Update(t SimTime) { l.player.Update(t) }

func (l *Level) ProcessInputEvent(ev *engine.RoutedEvent) { l.player.ProcessInputEvent(ev) }

// Destroy releases the level's scene.
func (l *Level) Destroy() { l.eng.RemoveScene(l.scene) }

func (l *Level) Save(w *visitor.Writer) error {
	w.String("Id", l.id.String())
	w.Uint64("Scene", uint64(l.scene))
	return w.Object("Player", l.player)
}
