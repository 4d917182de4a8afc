package humanconfig

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/0xmhha/indexer-codegen/pkg/normalized"
	"github.com/0xmhha/indexer-codegen/pkg/resolver"
)

// GlobalContract is a contract template shared by every network that refers
// to it by name. Its config keys sit next to name in the document.
type GlobalContract[T any] struct {
	Name   string `yaml:"name" description:"A unique project-wide name for this contract (no spaces)"`
	Config T      `yaml:",inline"`
}

// NetworkContract is a contract declared on a network. Config is nil when
// the entry only has name and address, in which case the global definition
// with the same name supplies it.
type NetworkContract[T any] struct {
	Name    string                  `yaml:"name" description:"The name of the contract. Refers to a global contract definition when no other config is given"`
	Address normalized.List[string] `yaml:"address,omitempty" description:"A single address or a list of addresses to be indexed. This can be left as null in the case where this contracts addresses will be registered dynamically."`
	Config  *T                      `yaml:",inline"`
}

var networkContractKeys = map[string]bool{"name": true, "address": true}

// UnmarshalYAML implements yaml.Unmarshaler. Any key besides name and
// address makes the entry carry its own config.
func (c *NetworkContract[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: contract entry must be a mapping", node.Line)
	}

	var base struct {
		Name    string                  `yaml:"name"`
		Address normalized.List[string] `yaml:"address"`
	}
	if err := node.Decode(&base); err != nil {
		return err
	}

	rest := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Line: node.Line, Column: node.Column}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if !networkContractKeys[node.Content[i].Value] {
			rest.Content = append(rest.Content, node.Content[i], node.Content[i+1])
		}
	}

	c.Name = base.Name
	c.Address = base.Address
	c.Config = nil
	if len(rest.Content) > 0 {
		config, err := decodeStrict[T](rest)
		if err != nil {
			return err
		}
		c.Config = config
	}
	return nil
}

// decodeStrict decodes a mapping node into T rejecting unknown keys.
// node.Decode drops the KnownFields setting of the outer decoder.
func decodeStrict[T any](node *yaml.Node) (*T, error) {
	data, err := yaml.Marshal(node)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	config := new(T)
	if err := dec.Decode(config); err != nil {
		return nil, fmt.Errorf("line %d: %w", node.Line, err)
	}
	return config, nil
}

// MarshalYAML implements yaml.Marshaler.
func (c NetworkContract[T]) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{}
	if err := node.Encode(struct {
		Name    string                  `yaml:"name"`
		Address normalized.List[string] `yaml:"address,omitempty"`
	}{c.Name, c.Address}); err != nil {
		return nil, err
	}

	if c.Config != nil {
		var config yaml.Node
		if err := config.Encode(c.Config); err != nil {
			return nil, err
		}
		if config.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("contract %q: config must encode as a mapping", c.Name)
		}
		node.Content = append(node.Content, config.Content...)
	}
	return node, nil
}

// GlobalDefinitions converts the global contracts for resolution
func (c *HumanConfig) GlobalDefinitions() []resolver.Global[ContractConfig] {
	globals := make([]resolver.Global[ContractConfig], 0, len(c.Contracts))
	for _, g := range c.Contracts {
		globals = append(globals, resolver.Global[ContractConfig]{Name: g.Name, Config: g.Config})
	}
	return globals
}

// NetworkEntries converts the network contract entries for resolution
func (c *HumanConfig) NetworkEntries() []resolver.Network[ContractConfig] {
	networks := make([]resolver.Network[ContractConfig], 0, len(c.Networks))
	for _, n := range c.Networks {
		entries := make([]resolver.Entry[ContractConfig], 0, len(n.Contracts))
		for _, contract := range n.Contracts {
			entries = append(entries, resolver.Entry[ContractConfig]{
				Name:      contract.Name,
				Addresses: contract.Address.Items(),
				Config:    contract.Config,
			})
		}
		networks = append(networks, resolver.Network[ContractConfig]{ID: n.ID, Contracts: entries})
	}
	return networks
}

// Resolve merges the global contracts into every network
func (c *HumanConfig) Resolve() ([]resolver.ResolvedNetwork[ContractConfig], error) {
	return resolver.Resolve(c.GlobalDefinitions(), c.NetworkEntries())
}
