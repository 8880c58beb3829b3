package engine

import (
	"fmt"
	"strconv"

	"arenashooter/visitor"
)

// SourceHandle addresses a sound source.
type SourceHandle uint32

// Source is a playing (or paused) sound. Mixing is not modelled; only the
// state that is saved and shown is kept.
type Source struct {
	Buffer   BufferHandle
	Gain     float32
	Playing  bool
	Position float64 // seconds played
}

// SoundContext holds the active sources.
type SoundContext struct {
	MasterGain float32
	sources    []*Source
}

func NewSoundContext() *SoundContext {
	return &SoundContext{MasterGain: 1}
}

// Add registers src and returns its handle.
func (c *SoundContext) Add(src *Source) SourceHandle {
	c.sources = append(c.sources, src)
	return SourceHandle(len(c.sources))
}

// Source returns the source behind h, or nil.
func (c *SoundContext) Source(h SourceHandle) *Source {
	if h == 0 || int(h) > len(c.sources) {
		return nil
	}
	return c.sources[h-1]
}

func (c *SoundContext) update(dt float64) {
	for _, s := range c.sources {
		if s.Playing {
			s.Position += dt
		}
	}
}

func (c *SoundContext) Save(w *visitor.Writer) error {
	w.Float32("MasterGain", c.MasterGain)
	w.Int("SourceCount", len(c.sources))
	for i, s := range c.sources {
		s := s
		if err := w.Region(sourceName(i), func(w *visitor.Writer) error {
			w.Uint64("Buffer", uint64(s.Buffer))
			w.Float32("Gain", s.Gain)
			w.Bool("Playing", s.Playing)
			w.Float64("Position", s.Position)
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

func (c *SoundContext) Load(r *visitor.Reader) error {
	gain, err := r.Float32("MasterGain")
	if err != nil {
		return err
	}
	n, err := r.Int("SourceCount")
	if err != nil {
		return err
	}
	if n < 0 || n > len(r.Regions()) {
		return &visitor.PathError{Path: append(r.Path(), "SourceCount"), Err: fmt.Errorf("count %d out of range", n)}
	}
	var sources []*Source
	for i := 0; i < n; i++ {
		s := &Source{}
		if err := r.Region(sourceName(i), func(r *visitor.Reader) error {
			b, err := r.Uint64("Buffer")
			if err != nil {
				return err
			}
			s.Buffer = BufferHandle(b)
			if s.Gain, err = r.Float32("Gain"); err != nil {
				return err
			}
			if s.Playing, err = r.Bool("Playing"); err != nil {
				return err
			}
			s.Position, err = r.Float64("Position")
			return err
		}); err != nil {
			return err
		}
		sources = append(sources, s)
	}
	c.MasterGain = gain
	c.sources = sources
	return nil
}

func sourceName(i int) string { return "Source" + strconv.Itoa(i) }
