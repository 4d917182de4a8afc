package model

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Scalar is a scalar type of the generated entity schema
type Scalar string

// Supported scalars
const (
	ScalarString  Scalar = "String"
	ScalarInt     Scalar = "Int"
	ScalarBigInt  Scalar = "BigInt"
	ScalarBoolean Scalar = "Boolean"
)

// FieldType is a non-null scalar wrapped in ListDepth non-null lists, e.g.
// [[Int!]!]! for a ListDepth of 2.
type FieldType struct {
	Scalar    Scalar
	ListDepth int
}

// String renders the type in GraphQL notation
func (t FieldType) String() string {
	s := string(t.Scalar) + "!"
	for i := 0; i < t.ListDepth; i++ {
		s = "[" + s + "]!"
	}
	return s
}

// MarshalText implements encoding.TextMarshaler.
func (t FieldType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *FieldType) UnmarshalText(text []byte) error {
	s := string(text)
	depth := 0
	for strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]!") {
		s = s[1 : len(s)-2]
		depth++
	}
	if !strings.HasSuffix(s, "!") {
		return fmt.Errorf("invalid field type %q", text)
	}
	switch scalar := Scalar(strings.TrimSuffix(s, "!")); scalar {
	case ScalarString, ScalarInt, ScalarBigInt, ScalarBoolean:
		*t = FieldType{Scalar: scalar, ListDepth: depth}
		return nil
	default:
		return fmt.Errorf("invalid field type %q", text)
	}
}

// FieldTypeFromABI maps an ABI type to its entity field type. Integers that
// do not fit a signed 32-bit GraphQL Int become BigInt.
func FieldTypeFromABI(t abi.Type) (FieldType, error) {
	ft, ok := fieldType(t)
	if !ok {
		return FieldType{}, fmt.Errorf("unsupported parameter type %s", t.String())
	}
	return ft, nil
}

func fieldType(t abi.Type) (FieldType, bool) {
	switch t.T {
	case abi.AddressTy, abi.StringTy, abi.BytesTy, abi.FixedBytesTy, abi.HashTy:
		return FieldType{Scalar: ScalarString}, true
	case abi.BoolTy:
		return FieldType{Scalar: ScalarBoolean}, true
	case abi.IntTy:
		if t.Size <= 32 {
			return FieldType{Scalar: ScalarInt}, true
		}
		return FieldType{Scalar: ScalarBigInt}, true
	case abi.UintTy:
		if t.Size < 32 {
			return FieldType{Scalar: ScalarInt}, true
		}
		return FieldType{Scalar: ScalarBigInt}, true
	case abi.SliceTy, abi.ArrayTy:
		if t.Elem == nil {
			return FieldType{}, false
		}
		elem, ok := fieldType(*t.Elem)
		if !ok {
			return FieldType{}, false
		}
		elem.ListDepth++
		return elem, true
	default:
		return FieldType{}, false
	}
}
