// Package flatten turns event inputs with nested tuple types into an ordered
// list of leaf parameters, each remembering where it sits inside its tuple.
package flatten

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// EventParam is a single non-tuple value of an event
type EventParam struct {
	Name    string
	Type    abi.Type
	Indexed bool
}

// NestedEventParam is one of Leaf, TupleSlot or Tuple
type NestedEventParam interface {
	nestedEventParam()
}

// Leaf is a parameter that is not a tuple
type Leaf struct {
	Param EventParam
}

// TupleSlot is the value at Index inside the enclosing tuple
type TupleSlot struct {
	Index int
	Child NestedEventParam
}

// Tuple groups the slots of a tuple in declaration order
type Tuple struct {
	Children []NestedEventParam
}

func (Leaf) nestedEventParam()      {}
func (TupleSlot) nestedEventParam() {}
func (Tuple) nestedEventParam()     {}

// FlattenedEventParam is a leaf together with its accessor path. AccessorPath
// is nil for parameters declared directly on the event and otherwise holds
// the tuple indices from the outermost to the innermost tuple.
type FlattenedEventParam struct {
	Leaf         EventParam
	AccessorPath []int
}

// IsNested reports whether the parameter was declared inside a tuple
func (p FlattenedEventParam) IsNested() bool {
	return p.AccessorPath != nil
}

// EntityKeyName is the field name used on the generated entity: the leaf name,
// followed by the accessor indices joined with underscores.
func (p FlattenedEventParam) EntityKeyName() string {
	if p.AccessorPath == nil {
		return p.Leaf.Name
	}
	parts := make([]string, 0, len(p.AccessorPath)+1)
	parts = append(parts, p.Leaf.Name)
	for _, i := range p.AccessorPath {
		parts = append(parts, strconv.Itoa(i))
	}
	return strings.Join(parts, "_")
}

// EventKeyName is the name of the raw event parameter holding the value
func (p FlattenedEventParam) EventKeyName() string {
	return p.Leaf.Name
}

// FromArgument converts an ABI argument into its nested form. Tuple components
// take the name of the argument and are never indexed.
func FromArgument(arg abi.Argument) NestedEventParam {
	return fromType(arg.Name, arg.Type, arg.Indexed)
}

func fromType(name string, typ abi.Type, indexed bool) NestedEventParam {
	if typ.T != abi.TupleTy {
		return Leaf{Param: EventParam{Name: name, Type: typ, Indexed: indexed}}
	}

	children := make([]NestedEventParam, 0, len(typ.TupleElems))
	for i, elem := range typ.TupleElems {
		children = append(children, TupleSlot{
			Index: i,
			Child: fromType(name, *elem, false),
		})
	}
	return Tuple{Children: children}
}

// Flatten walks param depth first, left to right, and returns its leaves
func Flatten(param NestedEventParam) []FlattenedEventParam {
	var out []FlattenedEventParam
	walk(param, nil, &out)
	return out
}

func walk(param NestedEventParam, path []int, out *[]FlattenedEventParam) {
	switch p := param.(type) {
	case Leaf:
		var accessor []int
		if len(path) > 0 {
			accessor = append([]int(nil), path...)
		}
		*out = append(*out, FlattenedEventParam{Leaf: p.Param, AccessorPath: accessor})
	case TupleSlot:
		next := make([]int, len(path), len(path)+1)
		copy(next, path)
		walk(p.Child, append(next, p.Index), out)
	case Tuple:
		for _, child := range p.Children {
			walk(child, path, out)
		}
	default:
		panic(fmt.Sprintf("flatten: unhandled parameter %T", param))
	}
}

// FlattenInputs flattens every input of an event and concatenates the
// results in declaration order.
func FlattenInputs(inputs abi.Arguments) []FlattenedEventParam {
	out := make([]FlattenedEventParam, 0, len(inputs))
	for _, input := range inputs {
		out = append(out, Flatten(FromArgument(input))...)
	}
	return out
}

// Depth returns the number of nested tuple levels below param
func Depth(param NestedEventParam) int {
	switch p := param.(type) {
	case Leaf:
		return 0
	case TupleSlot:
		return Depth(p.Child)
	case Tuple:
		depth := 0
		for _, child := range p.Children {
			if d := Depth(child); d > depth {
				depth = d
			}
		}
		return depth + 1
	default:
		panic(fmt.Sprintf("flatten: unhandled parameter %T", param))
	}
}
