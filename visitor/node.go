package visitor

import "fmt"

// Kind tags the value stored in a field. The numeric values are part of the
// binary format and must never be reordered.
type Kind uint8

const (
	KindBool Kind = iota + 1
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	KindString
	KindBytes
	KindVec3
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt64:
		return "int64"
	case KindUint64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindVec3:
		return "vec3"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k Kind) valid() bool { return k >= KindBool && k <= KindVec3 }

// Vec3 is a three component vector, stored as float32.
type Vec3 [3]float32

// Field is a named primitive value inside a region.
type Field struct {
	Name  string
	Kind  Kind
	Value any
}

// Node is a named region of the state tree.
type Node struct {
	Name     string
	Fields   []Field
	Children []*Node
}

// NewNode returns an empty region.
func NewNode(name string) *Node {
	return &Node{Name: name}
}

// Field returns the field with the given name.
func (n *Node) Field(name string) (Field, bool) {
	for _, f := range n.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Child returns the sub-region with the given name.
func (n *Node) Child(name string) (*Node, bool) {
	for _, c := range n.Children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// has reports whether a field or region already uses name. Fields and regions
// share one namespace.
func (n *Node) has(name string) bool {
	if _, ok := n.Field(name); ok {
		return true
	}
	_, ok := n.Child(name)
	return ok
}

// Equal reports whether two trees carry the same names and values. Order of
// fields and children is irrelevant because lookups are by name.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Name != o.Name || len(n.Fields) != len(o.Fields) || len(n.Children) != len(o.Children) {
		return false
	}
	for _, f := range n.Fields {
		g, ok := o.Field(f.Name)
		if !ok || g.Kind != f.Kind || !valueEqual(f.Kind, f.Value, g.Value) {
			return false
		}
	}
	for _, c := range n.Children {
		d, ok := o.Child(c.Name)
		if !ok || !c.Equal(d) {
			return false
		}
	}
	return true
}

func valueEqual(k Kind, a, b any) bool {
	if k == KindBytes {
		x, _ := a.([]byte)
		y, _ := b.([]byte)
		return string(x) == string(y)
	}
	return a == b
}
