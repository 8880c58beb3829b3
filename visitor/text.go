package visitor

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// EncodeText renders tree as an indented YAML document for humans. Each value
// carries its kind as a line comment. The text form is never read back.
func EncodeText(tree *Node) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.DocumentNode}
	doc.Content = append(doc.Content, textNode(tree))
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func textNode(n *Node) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range n.Fields {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: f.Name}
		val := textValue(f)
		val.LineComment = f.Kind.String()
		m.Content = append(m.Content, key, val)
	}
	for _, c := range n.Children {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: c.Name}
		m.Content = append(m.Content, key, textNode(c))
	}
	return m
}

func textValue(f Field) *yaml.Node {
	scalar := func(tag, v string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v}
	}
	switch f.Kind {
	case KindBool:
		return scalar("!!bool", strconv.FormatBool(f.Value.(bool)))
	case KindInt64:
		return scalar("!!int", strconv.FormatInt(f.Value.(int64), 10))
	case KindUint64:
		return scalar("!!int", strconv.FormatUint(f.Value.(uint64), 10))
	case KindFloat32:
		return scalar("!!float", strconv.FormatFloat(float64(f.Value.(float32)), 'g', -1, 32))
	case KindFloat64:
		return scalar("!!float", strconv.FormatFloat(f.Value.(float64), 'g', -1, 64))
	case KindString:
		return scalar("!!str", f.Value.(string))
	case KindBytes:
		return scalar("!!binary", base64.StdEncoding.EncodeToString(f.Value.([]byte)))
	case KindVec3:
		v := f.Value.(Vec3)
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, c := range v {
			seq.Content = append(seq.Content, scalar("!!float", strconv.FormatFloat(float64(c), 'g', -1, 32)))
		}
		return seq
	default:
		return scalar("!!str", fmt.Sprint(f.Value))
	}
}

// SaveText writes the text rendering of tree to path.
func SaveText(path string, tree *Node) error {
	b, err := EncodeText(tree)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return writeFileAtomic(path, b)
}
