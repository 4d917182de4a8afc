// Package jsonschema reflects Go configuration types into draft-07 JSON Schema
// documents. Property names come from yaml struct tags and descriptions from
// description tags, so the schema always describes the document the yaml
// decoder accepts.
package jsonschema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Draft07 is the meta-schema every reflected document declares
const Draft07 = "http://json-schema.org/draft-07/schema#"

// Schema is a JSON Schema node. Maps marshal with sorted keys, which keeps
// the encoded document stable.
type Schema map[string]interface{}

// Describer is implemented by types that provide their own schema
type Describer interface {
	JSONSchema(r *Reflector) Schema
}

var describerType = reflect.TypeOf((*Describer)(nil)).Elem()

// Reflector builds schemas and collects the struct definitions they refer to
type Reflector struct {
	definitions map[string]Schema
}

// NewReflector creates a reflector with no definitions
func NewReflector() *Reflector {
	return &Reflector{definitions: make(map[string]Schema)}
}

// Reflect returns the root schema for v. The root struct is described in
// place; every other struct becomes a definition.
func Reflect(v interface{}) Schema {
	r := NewReflector()

	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("jsonschema: root type %s is not a struct", t))
	}

	root := r.structSchema(t)
	root["$schema"] = Draft07
	root["title"] = DefinitionName(t)
	if len(r.definitions) > 0 {
		root["definitions"] = r.definitions
	}
	return root
}

// Marshal encodes s indented by two spaces, with a trailing newline
func Marshal(s Schema) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return append(data, '\n'), nil
}

// Ref returns a reference to the named definition
func Ref(name string) Schema {
	return Schema{"$ref": "#/definitions/" + name}
}

// DefinitionName is the name a struct is stored under. Type arguments of
// generic types are dropped.
func DefinitionName(t reflect.Type) string {
	name := t.Name()
	if i := strings.Index(name, "["); i >= 0 {
		name = name[:i]
	}
	return name
}

// For returns the schema of t, registering struct definitions on the way
func (r *Reflector) For(t reflect.Type) Schema {
	if reflect.PointerTo(t).Implements(describerType) {
		return reflect.New(t).Interface().(Describer).JSONSchema(r)
	}

	switch t.Kind() {
	case reflect.Ptr:
		return r.For(t.Elem())
	case reflect.Struct:
		name := DefinitionName(t)
		if _, ok := r.definitions[name]; !ok {
			// placeholder for recursive types
			r.definitions[name] = Schema{}
			r.definitions[name] = r.structSchema(t)
		}
		return Ref(name)
	case reflect.String:
		return Schema{"type": "string"}
	case reflect.Bool:
		return Schema{"type": "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Schema{"type": "integer"}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Schema{"type": "integer", "minimum": 0}
	case reflect.Float32, reflect.Float64:
		return Schema{"type": "number"}
	case reflect.Slice, reflect.Array:
		return Schema{"type": "array", "items": r.For(t.Elem())}
	default:
		panic(fmt.Sprintf("jsonschema: unsupported type %s", t))
	}
}

func (r *Reflector) structSchema(t reflect.Type) Schema {
	properties := Schema{}
	var required []string
	r.collectFields(t, properties, &required)

	s := Schema{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func (r *Reflector) collectFields(t reflect.Type, properties Schema, required *[]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		tag := f.Tag.Get("yaml")
		if tag == "-" {
			continue
		}
		name, opts := parseTag(tag)

		if opts["inline"] {
			ft := f.Type
			if ft.Kind() == reflect.Ptr {
				// an optional inline struct contributes its properties but
				// none of them is required
				var ignored []string
				r.collectFields(ft.Elem(), properties, &ignored)
				continue
			}
			r.collectFields(ft, properties, required)
			continue
		}

		if name == "" {
			name = strings.ToLower(f.Name)
		}

		fs := r.For(f.Type)
		if desc := f.Tag.Get("description"); desc != "" {
			described := make(Schema, len(fs)+1)
			for k, v := range fs {
				described[k] = v
			}
			described["description"] = desc
			fs = described
		}
		properties[name] = fs

		if !opts["omitempty"] && f.Type.Kind() != reflect.Ptr {
			*required = append(*required, name)
		}
	}
}

func parseTag(tag string) (string, map[string]bool) {
	parts := strings.Split(tag, ",")
	opts := make(map[string]bool, len(parts)-1)
	for _, opt := range parts[1:] {
		opts[opt] = true
	}
	return parts[0], opts
}
