package visitor

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	magic   = "VSTR"
	version = 1
)

// EncodeBinary writes tree as a self-describing msgpack stream:
//
//	magic, version, node
//	node  = name, [field...], [node...]
//	field = name, kind, value
//
// The kind tag is a positive fixint, so it occupies exactly one byte.
func EncodeBinary(w io.Writer, tree *Node) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.EncodeString(magic); err != nil {
		return err
	}
	if err := enc.EncodeUint(version); err != nil {
		return err
	}
	return encodeNode(enc, tree)
}

func encodeNode(enc *msgpack.Encoder, n *Node) error {
	if err := enc.EncodeString(n.Name); err != nil {
		return err
	}
	if err := enc.EncodeArrayLen(len(n.Fields)); err != nil {
		return err
	}
	for _, f := range n.Fields {
		if err := enc.EncodeString(f.Name); err != nil {
			return err
		}
		if err := enc.EncodeUint(uint64(f.Kind)); err != nil {
			return err
		}
		if err := encodeValue(enc, f); err != nil {
			return err
		}
	}
	if err := enc.EncodeArrayLen(len(n.Children)); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := encodeNode(enc, c); err != nil {
			return err
		}
	}
	return nil
}

func encodeValue(enc *msgpack.Encoder, f Field) error {
	switch f.Kind {
	case KindBool:
		return enc.EncodeBool(f.Value.(bool))
	case KindInt64:
		return enc.EncodeInt(f.Value.(int64))
	case KindUint64:
		return enc.EncodeUint(f.Value.(uint64))
	case KindFloat32:
		return enc.EncodeFloat32(f.Value.(float32))
	case KindFloat64:
		return enc.EncodeFloat64(f.Value.(float64))
	case KindString:
		return enc.EncodeString(f.Value.(string))
	case KindBytes:
		return enc.EncodeBytes(f.Value.([]byte))
	case KindVec3:
		v := f.Value.(Vec3)
		if err := enc.EncodeArrayLen(3); err != nil {
			return err
		}
		for _, c := range v {
			if err := enc.EncodeFloat32(c); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrUnknownKind, f.Kind)
	}
}

// DecodeBinary reads a tree written by EncodeBinary. Nothing is returned
// unless the whole stream decodes.
func DecodeBinary(r io.Reader) (*Node, error) {
	dec := msgpack.NewDecoder(r)
	m, err := dec.DecodeString()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadMagic, err)
	}
	if m != magic {
		return nil, fmt.Errorf("%w: got %q", ErrBadMagic, m)
	}
	v, err := dec.DecodeUint64()
	if err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if v != version {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, v)
	}
	return decodeNode(dec, nil, true)
}

func decodeNode(dec *msgpack.Decoder, parent []string, root bool) (*Node, error) {
	name, err := dec.DecodeString()
	if err != nil {
		return nil, &PathError{Path: join(parent, "?"), Err: fmt.Errorf("read region name: %w", err)}
	}
	path := parent
	if !root {
		path = join(parent, name)
	}
	n := NewNode(name)

	nf, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, &PathError{Path: path, Err: fmt.Errorf("read field count: %w", err)}
	}
	for i := 0; i < nf; i++ {
		f, err := decodeField(dec, path)
		if err != nil {
			return nil, err
		}
		if n.has(f.Name) {
			return nil, &PathError{Path: join(path, f.Name), Err: ErrDuplicateName}
		}
		n.Fields = append(n.Fields, f)
	}

	nc, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, &PathError{Path: path, Err: fmt.Errorf("read region count: %w", err)}
	}
	for i := 0; i < nc; i++ {
		c, err := decodeNode(dec, path, false)
		if err != nil {
			return nil, err
		}
		if n.has(c.Name) {
			return nil, &PathError{Path: join(path, c.Name), Err: ErrDuplicateName}
		}
		n.Children = append(n.Children, c)
	}
	return n, nil
}

func decodeField(dec *msgpack.Decoder, path []string) (Field, error) {
	name, err := dec.DecodeString()
	if err != nil {
		return Field{}, &PathError{Path: join(path, "?"), Err: fmt.Errorf("read field name: %w", err)}
	}
	fp := join(path, name)
	k, err := dec.DecodeUint8()
	if err != nil {
		return Field{}, &PathError{Path: fp, Err: fmt.Errorf("%w: %v", ErrUnknownKind, err)}
	}
	kind := Kind(k)
	if !kind.valid() {
		return Field{}, &PathError{Path: fp, Err: fmt.Errorf("%w: %d", ErrUnknownKind, k)}
	}
	v, err := decodeValue(dec, kind)
	if err != nil {
		return Field{}, &PathError{Path: fp, Err: fmt.Errorf("read %s value: %w", kind, err)}
	}
	return Field{Name: name, Kind: kind, Value: v}, nil
}

func decodeValue(dec *msgpack.Decoder, kind Kind) (any, error) {
	switch kind {
	case KindBool:
		return dec.DecodeBool()
	case KindInt64:
		return dec.DecodeInt64()
	case KindUint64:
		return dec.DecodeUint64()
	case KindFloat32:
		return dec.DecodeFloat32()
	case KindFloat64:
		return dec.DecodeFloat64()
	case KindString:
		return dec.DecodeString()
	case KindBytes:
		b, err := dec.DecodeBytes()
		if b == nil && err == nil {
			b = []byte{}
		}
		return b, err
	case KindVec3:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		if n != 3 {
			return nil, fmt.Errorf("vec3 has %d components", n)
		}
		var v Vec3
		for i := range v {
			if v[i], err = dec.DecodeFloat32(); err != nil {
				return nil, err
			}
		}
		return v, nil
	default:
		return nil, ErrUnknownKind
	}
}

// SaveBinary encodes tree fully in memory, then replaces the file at path.
func SaveBinary(path string, tree *Node) error {
	var buf bytes.Buffer
	if err := EncodeBinary(&buf, tree); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return writeFileAtomic(path, buf.Bytes())
}

// LoadBinary decodes the artifact at path and returns a reader over its root.
func LoadBinary(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tree, err := DecodeBinary(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return NewReader(tree), nil
}

// writeFileAtomic replaces path with data through a temporary sibling, so
// readers see either the old file or the complete new one.
func writeFileAtomic(path string, data []byte) error {
	return atomic.WriteFile(path, bytes.NewReader(data))
}
