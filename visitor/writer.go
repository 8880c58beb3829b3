package visitor

import "fmt"

// Saver writes its state into the region it is given.
type Saver interface {
	Save(w *Writer) error
}

// Writer builds a state tree in memory. It is a scoped context: the writer
// passed to a Region callback is bound to that region only.
//
// Primitive writes do not return errors; the first failure is kept and
// reported by Err, Region and Object.
type Writer struct {
	node  *Node
	path  []string
	state *writeState
}

type writeState struct {
	err error
}

// NewWriter returns a writer bound to a fresh unnamed root region.
func NewWriter() *Writer {
	return &Writer{node: NewNode(""), state: &writeState{}}
}

// Tree returns the root of the tree built so far.
func (w *Writer) Tree() *Node {
	return w.node
}

// Err returns the first error recorded by any writer of this tree.
func (w *Writer) Err() error { return w.state.err }

// Path returns the dotted path of the region the writer is bound to.
func (w *Writer) Path() []string { return append([]string(nil), w.path...) }

func (w *Writer) fail(err error) {
	if w.state.err == nil {
		w.state.err = err
	}
}

func (w *Writer) put(name string, kind Kind, v any) {
	if w.state.err != nil {
		return
	}
	if w.node.has(name) {
		w.fail(&PathError{Path: join(w.path, name), Err: ErrDuplicateName})
		return
	}
	w.node.Fields = append(w.node.Fields, Field{Name: name, Kind: kind, Value: v})
}

func (w *Writer) Bool(name string, v bool)       { w.put(name, KindBool, v) }
func (w *Writer) Int64(name string, v int64)     { w.put(name, KindInt64, v) }
func (w *Writer) Uint64(name string, v uint64)   { w.put(name, KindUint64, v) }
func (w *Writer) Float32(name string, v float32) { w.put(name, KindFloat32, v) }
func (w *Writer) Float64(name string, v float64) { w.put(name, KindFloat64, v) }
func (w *Writer) String(name string, v string)   { w.put(name, KindString, v) }
func (w *Writer) Vec3(name string, v Vec3)       { w.put(name, KindVec3, v) }

// Bytes stores a copy of v.
func (w *Writer) Bytes(name string, v []byte) {
	w.put(name, KindBytes, append([]byte{}, v...))
}

// Int stores v as an int64.
func (w *Writer) Int(name string, v int) { w.Int64(name, int64(v)) }

// Region creates a child region and calls fn with a writer bound to it.
func (w *Writer) Region(name string, fn func(w *Writer) error) error {
	if w.state.err != nil {
		return w.state.err
	}
	if w.node.has(name) {
		w.fail(&PathError{Path: join(w.path, name), Err: ErrDuplicateName})
		return w.state.err
	}
	child := NewNode(name)
	w.node.Children = append(w.node.Children, child)
	cw := &Writer{node: child, path: join(w.path, name), state: w.state}
	if err := fn(cw); err != nil {
		w.fail(pathErr(cw.path, err))
	}
	return w.state.err
}

// Object writes s into its own region called name.
func (w *Writer) Object(name string, s Saver) error {
	if s == nil {
		return w.Region(name, func(*Writer) error {
			return fmt.Errorf("nil object")
		})
	}
	return w.Region(name, s.Save)
}
