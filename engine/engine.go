package engine

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"arenashooter/visitor"
)

// Config configures a headless engine.
type Config struct {
	AssetRoot string
	// FrameOut receives one summary line per rendered frame. Optional.
	FrameOut io.Writer
	// Now is the time source for render statistics. Defaults to time.Now.
	Now func() time.Time
	// Emitters is the emitter registry used to recreate particle systems on
	// load. Defaults to a registry with the built-in kinds.
	Emitters *EmitterRegistry
}

// Engine owns the collaborators used by the application core: UI, renderer,
// resources, sound and the scenes of the running level.
type Engine struct {
	UI        *UI
	Resources *ResourceManager
	Sound     *SoundContext
	Emitters  *EmitterRegistry

	renderer  *Renderer
	scenes    map[SceneHandle]*Scene
	nextScene SceneHandle
	uptime    float64
}

func New(cfg Config) *Engine {
	emitters := cfg.Emitters
	if emitters == nil {
		emitters = NewEmitterRegistry()
	}
	return &Engine{
		UI:        NewUI(),
		Resources: NewResourceManager(cfg.AssetRoot),
		Sound:     NewSoundContext(),
		Emitters:  emitters,
		renderer:  NewRenderer(cfg.FrameOut, cfg.Now),
		scenes:    make(map[SceneHandle]*Scene),
		nextScene: 1,
	}
}

// AddScene takes ownership of s.
func (e *Engine) AddScene(s *Scene) SceneHandle {
	h := e.nextScene
	e.nextScene++
	e.scenes[h] = s
	return h
}

// Scene returns the scene behind h, or nil.
func (e *Engine) Scene(h SceneHandle) *Scene { return e.scenes[h] }

// RemoveScene drops the scene behind h.
func (e *Engine) RemoveScene(h SceneHandle) { delete(e.scenes, h) }

// SceneCount returns the number of live scenes.
func (e *Engine) SceneCount() int { return len(e.scenes) }

func (e *Engine) sortedHandles() []SceneHandle {
	hs := make([]SceneHandle, 0, len(e.scenes))
	for h := range e.scenes {
		hs = append(hs, h)
	}
	sort.Slice(hs, func(i, j int) bool { return hs[i] < hs[j] })
	return hs
}

// Update advances engine owned simulation by dt seconds.
func (e *Engine) Update(dt float32) {
	for _, h := range e.sortedHandles() {
		e.scenes[h].update(dt)
	}
	e.Sound.update(float64(dt))
	e.uptime += float64(dt)
}

// Render draws one frame.
func (e *Engine) Render() error {
	hs := e.sortedHandles()
	scenes := make([]*Scene, 0, len(hs))
	for _, h := range hs {
		scenes = append(scenes, e.scenes[h])
	}
	return e.renderer.render(scenes, e.UI)
}

// Statistics returns render timing.
func (e *Engine) Statistics() Statistics { return e.renderer.Statistics() }

// Save writes the persistent engine state: uptime, sound and scenes.
func (e *Engine) Save(w *visitor.Writer) error {
	w.Float64("Uptime", e.uptime)
	w.Uint64("NextScene", uint64(e.nextScene))
	if err := w.Object("Sound", e.Sound); err != nil {
		return err
	}
	return w.Region("Scenes", func(w *visitor.Writer) error {
		for _, h := range e.sortedHandles() {
			if err := w.Object(sceneName(h), e.scenes[h]); err != nil {
				return err
			}
		}
		return nil
	})
}

// State is engine state decoded from a save but not yet applied.
type State struct {
	uptime    float64
	nextScene SceneHandle
	sound     *SoundContext
	scenes    map[SceneHandle]*Scene
}

// HasScene reports whether the staged state contains h.
func (s *State) HasScene(h SceneHandle) bool {
	_, ok := s.scenes[h]
	return ok
}

// LoadState decodes engine state from r without touching the live engine.
func (e *Engine) LoadState(r *visitor.Reader) (*State, error) {
	st := &State{sound: NewSoundContext(), scenes: make(map[SceneHandle]*Scene)}
	var err error
	if st.uptime, err = r.Float64("Uptime"); err != nil {
		return nil, err
	}
	next, err := r.Uint64("NextScene")
	if err != nil {
		return nil, err
	}
	st.nextScene = SceneHandle(next)
	if err := r.Object("Sound", st.sound); err != nil {
		return nil, err
	}
	err = r.Region("Scenes", func(r *visitor.Reader) error {
		for _, name := range r.Regions() {
			h, err := parseSceneName(name)
			if err != nil {
				return err
			}
			err = r.Region(name, func(r *visitor.Reader) error {
				s, err := loadScene(r, e.Emitters)
				if err != nil {
					return err
				}
				st.scenes[h] = s
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// AddScene hands out nextScene, so it must lie above every restored handle.
	for h := range st.scenes {
		if h >= st.nextScene {
			return nil, &visitor.PathError{
				Path: append(r.Path(), "NextScene"),
				Err:  fmt.Errorf("%d does not exceed restored scene %d", st.nextScene, h),
			}
		}
	}
	if st.nextScene == 0 {
		return nil, &visitor.PathError{Path: append(r.Path(), "NextScene"), Err: fmt.Errorf("zero handle")}
	}
	return st, nil
}

// Apply replaces the live engine state with st.
func (e *Engine) Apply(st *State) {
	e.uptime = st.uptime
	e.nextScene = st.nextScene
	e.Sound.MasterGain = st.sound.MasterGain
	e.Sound.sources = st.sound.sources
	e.scenes = st.scenes
}

func parseSceneName(name string) (SceneHandle, error) {
	num, ok := strings.CutPrefix(name, "Scene")
	if !ok {
		return 0, fmt.Errorf("unexpected region %q", name)
	}
	h, err := strconv.ParseUint(num, 10, 32)
	if err != nil || h == 0 {
		return 0, fmt.Errorf("bad scene handle %q", name)
	}
	return SceneHandle(h), nil
}
