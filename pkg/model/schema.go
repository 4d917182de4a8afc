package model

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/kinds"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"

	"github.com/0xmhha/indexer-codegen/pkg/errdefs"
)

// IDField is the id field every entity starts with
const IDField = "id"

// Field is a field of a generated entity
type Field struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// Entity is the generated entity of one event
type Entity struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Schema is the generated entity schema
type Schema struct {
	Entities []Entity `json:"entities"`
}

// EntityName names the entity of an event: contract and event in pascal case
// joined by an underscore.
func EntityName(c Contract, e Event) string {
	return c.Name.Pascal + "_" + e.Name.Pascal
}

// Schema derives one entity per event. Two events with the same entity name
// fail the build.
func (m *Model) Schema() (Schema, error) {
	var s Schema
	owners := make(map[string]string)

	for _, c := range m.Contracts {
		for _, e := range c.Events {
			name := EntityName(c, e)
			owner := c.Name.Original + "." + e.Signature
			if prev, ok := owners[name]; ok {
				return Schema{}, errdefs.New(errdefs.ErrModelBuild,
					"duplicate entity %q, produced by both %s and %s", name, prev, owner).
					WithContract(c.Name.Original).
					WithEvent(e.Name.Original)
			}
			owners[name] = owner

			entity := Entity{Name: name, Fields: make([]Field, 0, len(e.Params))}
			for _, p := range e.Params {
				entity.Fields = append(entity.Fields, Field{Name: p.EntityKey.Original, Type: p.GraphQLType})
			}
			s.Entities = append(s.Entities, entity)
		}
	}
	return s, nil
}

// UsesBigInt reports whether any field needs the BigInt scalar
func (s Schema) UsesBigInt() bool {
	for _, e := range s.Entities {
		for _, f := range e.Fields {
			if f.Type.Scalar == ScalarBigInt {
				return true
			}
		}
	}
	return false
}

// SDL renders the schema in GraphQL schema definition language
func (s Schema) SDL() string {
	var b strings.Builder
	if s.UsesBigInt() {
		b.WriteString("scalar BigInt\n\n")
	}
	for i, e := range s.Entities {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "type %s {\n", e.Name)
		fmt.Fprintf(&b, "  %s: ID!\n", IDField)
		for _, f := range e.Fields {
			fmt.Fprintf(&b, "  %s: %s\n", f.Name, f.Type)
		}
		b.WriteString("}\n")
	}
	return b.String()
}

// Validate parses the rendered SDL and checks that every type it names is
// declared.
func (s Schema) Validate() error {
	if len(s.Entities) == 0 {
		return nil
	}

	doc, err := parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{
			Body: []byte(s.SDL()),
			Name: "schema.graphql",
		}),
	})
	if err != nil {
		return errdefs.Wrap(errdefs.ErrModelBuild, fmt.Errorf("generated schema does not parse: %w", err))
	}

	declared := map[string]bool{"ID": true, "String": true, "Int": true, "Boolean": true, "Float": true}
	for _, def := range doc.Definitions {
		switch d := def.(type) {
		case *ast.ScalarDefinition:
			declared[d.Name.Value] = true
		case *ast.ObjectDefinition:
			declared[d.Name.Value] = true
		}
	}

	for _, def := range doc.Definitions {
		obj, ok := def.(*ast.ObjectDefinition)
		if !ok {
			continue
		}
		for _, field := range obj.Fields {
			if name := namedType(field.Type); !declared[name] {
				return errdefs.New(errdefs.ErrModelBuild, "field %s.%s has undeclared type %s",
					obj.Name.Value, field.Name.Value, name)
			}
		}
	}
	return nil
}

func namedType(t ast.Type) string {
	switch t.GetKind() {
	case kinds.NonNull:
		return namedType(t.(*ast.NonNull).Type)
	case kinds.List:
		return namedType(t.(*ast.List).Type)
	default:
		return t.(*ast.Named).Name.Value
	}
}

var bigIntScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        string(ScalarBigInt),
	Description: "Arbitrary precision integer, serialized as a decimal string",
	Serialize: func(value interface{}) interface{} {
		return fmt.Sprint(value)
	},
	ParseValue: func(value interface{}) interface{} {
		return fmt.Sprint(value)
	},
	ParseLiteral: func(valueAST ast.Value) interface{} {
		switch v := valueAST.(type) {
		case *ast.StringValue:
			return v.Value
		case *ast.IntValue:
			return v.Value
		}
		return nil
	},
})

func outputType(t FieldType) graphql.Output {
	var scalar graphql.Type
	switch t.Scalar {
	case ScalarInt:
		scalar = graphql.Int
	case ScalarBigInt:
		scalar = bigIntScalar
	case ScalarBoolean:
		scalar = graphql.Boolean
	default:
		scalar = graphql.String
	}

	out := graphql.NewNonNull(scalar)
	for i := 0; i < t.ListDepth; i++ {
		out = graphql.NewNonNull(graphql.NewList(out))
	}
	return out
}

// Executable builds a graphql-go schema with a query field listing each
// entity. It checks the entity and field names against the GraphQL naming
// rules.
func (s Schema) Executable() (graphql.Schema, error) {
	queries := graphql.Fields{}
	for _, e := range s.Entities {
		fields := graphql.Fields{
			IDField: &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		}
		for _, f := range e.Fields {
			fields[f.Name] = &graphql.Field{Type: outputType(f.Type)}
		}

		object := graphql.NewObject(graphql.ObjectConfig{
			Name:   e.Name,
			Fields: fields,
		})
		queries[e.Name] = &graphql.Field{
			Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(object))),
		}
	}

	if len(queries) == 0 {
		queries["_empty"] = &graphql.Field{Type: graphql.Boolean}
	}

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: queries,
		}),
	})
	if err != nil {
		return graphql.Schema{}, errdefs.Wrap(errdefs.ErrModelBuild, fmt.Errorf("invalid entity schema: %w", err))
	}
	return schema, nil
}
