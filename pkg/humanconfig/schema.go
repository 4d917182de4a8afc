package humanconfig

import (
	"github.com/0xmhha/indexer-codegen/pkg/jsonschema"
)

const (
	schemaTitle       = "Indexer Config Schema"
	schemaDescription = "Schema for a YAML config for an indexer"
)

// JSONSchema returns the JSON Schema of config.yaml for the evm ecosystem
func JSONSchema() jsonschema.Schema {
	s := jsonschema.Reflect(HumanConfig{})
	s["title"] = schemaTitle
	s["description"] = schemaDescription
	return s
}

// JSONSchemaDocument returns the encoded schema as published for editors
func JSONSchemaDocument() ([]byte, error) {
	return jsonschema.Marshal(JSONSchema())
}
