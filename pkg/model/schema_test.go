package model

import (
	"errors"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/indexer-codegen/pkg/errdefs"
	"github.com/0xmhha/indexer-codegen/pkg/systemconfig"
)

func buildSchema(t *testing.T) Schema {
	t.Helper()
	m, err := Build(project(t,
		systemconfig.Contract{
			Name:   "ERC20",
			Events: []systemconfig.Event{event(t, "Transfer(address indexed from, address indexed to, uint256 value)")},
		},
		systemconfig.Contract{
			Name: "Greeter",
			Events: []systemconfig.Event{
				event(t, "TupleEvent(address user, (uint256,bool) myTupleParam)"),
				event(t, "Scores(uint8[] scores)"),
			},
		},
	))
	require.NoError(t, err)

	s, err := m.Schema()
	require.NoError(t, err)
	return s
}

func TestSchema_SDL(t *testing.T) {
	s := buildSchema(t)

	const want = `scalar BigInt

type ERC20_Transfer {
  id: ID!
  from: String!
  to: String!
  value: BigInt!
}

type Greeter_TupleEvent {
  id: ID!
  user: String!
  myTupleParam_0: BigInt!
  myTupleParam_1: Boolean!
}

type Greeter_Scores {
  id: ID!
  scores: [Int!]!
}
`
	assert.Equal(t, want, s.SDL())
	assert.True(t, s.UsesBigInt())
	assert.NoError(t, s.Validate())
}

func TestSchema_SDLWithoutBigInt(t *testing.T) {
	s := Schema{Entities: []Entity{{
		Name:   "Greeter_Ping",
		Fields: []Field{{Name: "ok", Type: FieldType{Scalar: ScalarBoolean}}},
	}}}

	assert.False(t, s.UsesBigInt())
	assert.Equal(t, "type Greeter_Ping {\n  id: ID!\n  ok: Boolean!\n}\n", s.SDL())
	assert.NoError(t, s.Validate())
}

func TestSchema_ValidateRejectsBrokenSDL(t *testing.T) {
	s := Schema{Entities: []Entity{{
		Name:   "broken name",
		Fields: []Field{{Name: "ok", Type: FieldType{Scalar: ScalarBoolean}}},
	}}}

	err := s.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrModelBuild))
}

func TestSchema_Executable(t *testing.T) {
	s := buildSchema(t)

	schema, err := s.Executable()
	require.NoError(t, err)

	queries := schema.QueryType().Fields()
	for _, e := range s.Entities {
		require.Contains(t, queries, e.Name)

		object, ok := schema.Type(e.Name).(*graphql.Object)
		require.True(t, ok, e.Name)

		fields := object.Fields()
		assert.Equal(t, "ID!", fields[IDField].Type.String())
		for _, f := range e.Fields {
			require.Contains(t, fields, f.Name)
			assert.Equal(t, f.Type.String(), fields[f.Name].Type.String(), "%s.%s", e.Name, f.Name)
		}
	}
}

func TestSchema_ExecutableEmpty(t *testing.T) {
	schema, err := Schema{}.Executable()
	require.NoError(t, err)
	assert.Contains(t, schema.QueryType().Fields(), "_empty")
}

func TestSchema_ExecutableRejectsInvalidNames(t *testing.T) {
	s := Schema{Entities: []Entity{{
		Name:   "Bad-Entity",
		Fields: []Field{{Name: "ok", Type: FieldType{Scalar: ScalarBoolean}}},
	}}}

	_, err := s.Executable()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrModelBuild))
}
