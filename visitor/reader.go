package visitor

// Loader restores its state from the region it is given.
type Loader interface {
	Load(r *Reader) error
}

// Reader looks fields and regions up by name in a decoded tree. Lookups never
// depend on the order things were written in.
type Reader struct {
	node *Node
	path []string
}

// NewReader returns a reader bound to the root of tree.
func NewReader(tree *Node) *Reader {
	return &Reader{node: tree}
}

// Tree returns the region the reader is bound to.
func (r *Reader) Tree() *Node { return r.node }

// Path returns the dotted path of the region the reader is bound to.
func (r *Reader) Path() []string { return append([]string(nil), r.path...) }

// Has reports whether the current region holds a field or region called name.
func (r *Reader) Has(name string) bool { return r.node.has(name) }

func (r *Reader) get(name string, kind Kind) (any, error) {
	f, ok := r.node.Field(name)
	if !ok {
		return nil, &PathError{Path: join(r.path, name), Err: ErrNotFound}
	}
	if f.Kind != kind {
		return nil, &PathError{Path: join(r.path, name), Err: kindMismatch(kind, f.Kind)}
	}
	return f.Value, nil
}

func value[T any](r *Reader, name string, kind Kind) (T, error) {
	var zero T
	v, err := r.get(name, kind)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, &PathError{Path: join(r.path, name), Err: kindMismatch(kind, kind)}
	}
	return t, nil
}

func (r *Reader) Bool(name string) (bool, error)       { return value[bool](r, name, KindBool) }
func (r *Reader) Int64(name string) (int64, error)     { return value[int64](r, name, KindInt64) }
func (r *Reader) Uint64(name string) (uint64, error)   { return value[uint64](r, name, KindUint64) }
func (r *Reader) Float32(name string) (float32, error) { return value[float32](r, name, KindFloat32) }
func (r *Reader) Float64(name string) (float64, error) { return value[float64](r, name, KindFloat64) }
func (r *Reader) String(name string) (string, error)   { return value[string](r, name, KindString) }
func (r *Reader) Bytes(name string) ([]byte, error)    { return value[[]byte](r, name, KindBytes) }
func (r *Reader) Vec3(name string) (Vec3, error)       { return value[Vec3](r, name, KindVec3) }

// Int reads an int64 field as int.
func (r *Reader) Int(name string) (int, error) {
	v, err := r.Int64(name)
	return int(v), err
}

// Region calls fn with a reader bound to the child region called name. The
// first error aborts the traversal and carries the path where it happened.
func (r *Reader) Region(name string, fn func(r *Reader) error) error {
	child, ok := r.node.Child(name)
	if !ok {
		return &PathError{Path: join(r.path, name), Err: ErrNotFound}
	}
	cr := &Reader{node: child, path: join(r.path, name)}
	if err := fn(cr); err != nil {
		return pathErr(cr.path, err)
	}
	return nil
}

// Object restores l from the region called name.
func (r *Reader) Object(name string, l Loader) error {
	return r.Region(name, l.Load)
}

// Regions returns the names of the sub-regions of the current region in
// stored order.
func (r *Reader) Regions() []string {
	names := make([]string, 0, len(r.node.Children))
	for _, c := range r.node.Children {
		names = append(names, c.Name)
	}
	return names
}
