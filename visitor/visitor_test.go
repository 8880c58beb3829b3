package visitor_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"arenashooter/visitor"
)

type player struct {
	Name     string
	Health   int64
	Position visitor.Vec3
	Alive    bool
}

func (p *player) Save(w *visitor.Writer) error {
	w.String("Name", p.Name)
	w.Int64("Health", p.Health)
	w.Vec3("Position", p.Position)
	w.Bool("Alive", p.Alive)
	return nil
}

func (p *player) Load(r *visitor.Reader) error {
	var err error
	if p.Name, err = r.String("Name"); err != nil {
		return err
	}
	if p.Health, err = r.Int64("Health"); err != nil {
		return err
	}
	if p.Position, err = r.Vec3("Position"); err != nil {
		return err
	}
	p.Alive, err = r.Bool("Alive")
	return err
}

func sampleTree(t *testing.T) *visitor.Node {
	t.Helper()
	w := visitor.NewWriter()
	err := w.Region("Engine", func(w *visitor.Writer) error {
		w.Float64("Time", 12.5)
		w.Uint64("Frames", 750)
		w.Float32("Gain", 0.25)
		w.Bytes("Blob", []byte{1, 2, 3})
		return w.Region("Scenes", func(w *visitor.Writer) error {
			w.Int("Count", 0)
			return nil
		})
	})
	require.NoError(t, err)
	require.NoError(t, w.Region("Level", func(w *visitor.Writer) error {
		w.Int64("Health", 80)
		return w.Object("Player", &player{Name: "p1", Health: 42, Position: visitor.Vec3{1, 2, 3}, Alive: true})
	}))
	require.NoError(t, w.Err())
	return w.Tree()
}

func TestBinaryRoundTrip(t *testing.T) {
	tree := sampleTree(t)

	var buf bytes.Buffer
	require.NoError(t, visitor.EncodeBinary(&buf, tree))
	got, err := visitor.DecodeBinary(&buf)
	require.NoError(t, err)
	assert.True(t, tree.Equal(got))

	r := visitor.NewReader(got)
	var p player
	require.NoError(t, r.Region("Level", func(r *visitor.Reader) error {
		h, err := r.Int64("Health")
		assert.Equal(t, int64(80), h)
		if err != nil {
			return err
		}
		return r.Object("Player", &p)
	}))
	assert.Equal(t, player{Name: "p1", Health: 42, Position: visitor.Vec3{1, 2, 3}, Alive: true}, p)
}

func TestSaveLoadFiles(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "save.bin")
	txt := filepath.Join(dir, "save.txt")
	tree := sampleTree(t)

	require.NoError(t, visitor.SaveBinary(bin, tree))
	require.NoError(t, visitor.SaveText(txt, tree))

	r, err := visitor.LoadBinary(bin)
	require.NoError(t, err)
	assert.True(t, tree.Equal(r.Tree()))

	text, err := os.ReadFile(txt)
	require.NoError(t, err)
	assert.Contains(t, string(text), "Health: 80 # int64")
	assert.Contains(t, string(text), "Player:")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temporary files must not be left behind")
}

func TestSaveBinaryReplacesPrevious(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "save.bin")
	require.NoError(t, visitor.SaveBinary(bin, sampleTree(t)))

	w := visitor.NewWriter()
	require.NoError(t, w.Region("Level", func(w *visitor.Writer) error {
		w.Int64("Health", 12)
		return nil
	}))
	require.NoError(t, visitor.SaveBinary(bin, w.Tree()))

	r, err := visitor.LoadBinary(bin)
	require.NoError(t, err)
	assert.True(t, w.Tree().Equal(r.Tree()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestOrderIndependence(t *testing.T) {
	a := visitor.NewWriter()
	a.Int("X", 1)
	a.Int("Y", 2)
	b := visitor.NewWriter()
	b.Int("Y", 2)
	b.Int("X", 1)
	assert.True(t, a.Tree().Equal(b.Tree()))
}

func TestCorruptedKindNamesField(t *testing.T) {
	w := visitor.NewWriter()
	require.NoError(t, w.Region("Level", func(w *visitor.Writer) error {
		w.Int64("Health", 80)
		return nil
	}))
	var buf bytes.Buffer
	require.NoError(t, visitor.EncodeBinary(&buf, w.Tree()))
	data := buf.Bytes()

	// fixstr "Health" is followed by the one byte kind tag.
	name := append([]byte{0xa6}, "Health"...)
	at := bytes.Index(data, name)
	require.GreaterOrEqual(t, at, 0)

	t.Run("unknown kind", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[at+len(name)] = 0x7f
		_, err := visitor.DecodeBinary(bytes.NewReader(bad))
		require.Error(t, err)
		assert.ErrorIs(t, err, visitor.ErrUnknownKind)
		var pe *visitor.PathError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, []string{"Level", "Health"}, pe.Path)
	})

	t.Run("other valid kind", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[at+len(name)] = byte(visitor.KindUint64)
		tree, err := visitor.DecodeBinary(bytes.NewReader(bad))
		require.NoError(t, err)
		err = visitor.NewReader(tree).Region("Level", func(r *visitor.Reader) error {
			_, err := r.Int64("Health")
			return err
		})
		assert.ErrorIs(t, err, visitor.ErrKindMismatch)
		assert.Contains(t, err.Error(), "Level.Health")
	})
}

func TestReaderErrorsCarryPath(t *testing.T) {
	r := visitor.NewReader(sampleTree(t))

	err := r.Region("Level", func(r *visitor.Reader) error {
		return r.Object("Player", visitorFunc(func(r *visitor.Reader) error {
			_, err := r.Float64("Mana")
			return err
		}))
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, visitor.ErrNotFound)
	assert.Equal(t, "Level.Player.Mana: not found", err.Error())

	err = r.Region("Missing", func(*visitor.Reader) error { return nil })
	assert.ErrorIs(t, err, visitor.ErrNotFound)
	assert.Contains(t, err.Error(), "Missing")

	sentinel := errors.New("boom")
	calls := 0
	err = r.Region("Engine", func(r *visitor.Reader) error {
		calls++
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, "Engine: boom", err.Error())
	assert.Equal(t, 1, calls)
}

type visitorFunc func(r *visitor.Reader) error

func (f visitorFunc) Load(r *visitor.Reader) error { return f(r) }

func TestDuplicateNames(t *testing.T) {
	w := visitor.NewWriter()
	err := w.Region("Level", func(w *visitor.Writer) error {
		w.Int("Health", 1)
		w.Int("Health", 2)
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, visitor.ErrDuplicateName)
	assert.Contains(t, err.Error(), "Level.Health")

	w = visitor.NewWriter()
	w.Int("Level", 1)
	err = w.Region("Level", func(*visitor.Writer) error { return nil })
	assert.ErrorIs(t, err, visitor.ErrDuplicateName)
}

func TestWriterErrorIsSticky(t *testing.T) {
	w := visitor.NewWriter()
	sentinel := errors.New("cannot save")
	err := w.Region("A", func(w *visitor.Writer) error {
		return w.Region("B", func(*visitor.Writer) error { return sentinel })
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, "A.B: cannot save", err.Error())

	w.Int("Later", 1)
	_, ok := w.Tree().Field("Later")
	assert.False(t, ok)
	assert.ErrorIs(t, w.Err(), sentinel)
}

func TestSaveBinaryFailureLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "save.bin")
	err := visitor.SaveBinary(path, sampleTree(t))
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := visitor.DecodeBinary(bytes.NewReader([]byte("hello")))
	assert.ErrorIs(t, err, visitor.ErrBadMagic)

	// An empty stream keeps the read error alongside the sentinel.
	_, err = visitor.DecodeBinary(bytes.NewReader(nil))
	assert.ErrorIs(t, err, visitor.ErrBadMagic)
	assert.ErrorIs(t, err, io.EOF)

	var other bytes.Buffer
	require.NoError(t, msgpack.NewEncoder(&other).EncodeString("NOPE"))
	_, err = visitor.DecodeBinary(&other)
	assert.ErrorIs(t, err, visitor.ErrBadMagic)
	assert.Contains(t, err.Error(), `"NOPE"`)

	var buf bytes.Buffer
	require.NoError(t, visitor.EncodeBinary(&buf, sampleTree(t)))
	truncated := buf.Bytes()[:buf.Len()/2]
	_, err = visitor.DecodeBinary(bytes.NewReader(truncated))
	assert.Error(t, err)
}
