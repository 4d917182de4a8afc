// Package normalized provides List, a sequence type that accepts the three
// surface forms a hand-written config uses for "one or more" values.
package normalized

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/0xmhha/indexer-codegen/pkg/jsonschema"
)

// List is an ordered sequence of T that decodes from null (empty), a single
// scalar (one element) or a sequence. It always encodes as a sequence.
type List[T any] struct {
	items []T
}

// From creates a list holding items in order.
func From[T any](items ...T) List[T] {
	if len(items) == 0 {
		return List[T]{}
	}
	out := make([]T, len(items))
	copy(out, items)
	return List[T]{items: out}
}

// Items returns a copy of the elements. The result is never nil.
func (l List[T]) Items() []T {
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of elements.
func (l List[T]) Len() int {
	return len(l.items)
}

// IsEmpty reports whether the list has no elements.
func (l List[T]) IsEmpty() bool {
	return len(l.items) == 0
}

// IsZero reports whether the list is empty. yaml omitempty relies on it.
func (l List[T]) IsZero() bool {
	return len(l.items) == 0
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *List[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}

	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			l.items = nil
			return nil
		}
		var item T
		if err := node.Decode(&item); err != nil {
			return err
		}
		l.items = []T{item}
		return nil
	case yaml.SequenceNode:
		var items []T
		if err := node.Decode(&items); err != nil {
			return err
		}
		*l = From(items...)
		return nil
	default:
		return fmt.Errorf("line %d: expected null, a single value or a sequence", node.Line)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (l List[T]) MarshalYAML() (interface{}, error) {
	return l.Items(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *List[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		l.items = nil
		return nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*l = From(items...)
		return nil
	}

	var item T
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return err
	}
	l.items = []T{item}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l List[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Items())
}

// JSONSchema implements jsonschema.Describer: a single item, a sequence of
// items, or null.
func (List[T]) JSONSchema(r *jsonschema.Reflector) jsonschema.Schema {
	item := r.For(reflect.TypeOf((*T)(nil)).Elem())
	return jsonschema.Schema{
		"anyOf": []jsonschema.Schema{
			item,
			{"type": "array", "items": item},
			{"type": "null"},
		},
	}
}
