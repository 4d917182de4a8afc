// Package model maps resolved contracts and their flattened event parameters
// into the structures handed to template expansion.
package model

import (
	"strconv"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/0xmhha/indexer-codegen/pkg/errdefs"
	"github.com/0xmhha/indexer-codegen/pkg/flatten"
	"github.com/0xmhha/indexer-codegen/pkg/naming"
	"github.com/0xmhha/indexer-codegen/pkg/systemconfig"
)

// Model is everything the templates need for one project
type Model struct {
	ProjectName             string     `json:"projectName"`
	Description             string     `json:"description,omitempty"`
	// SchemaPath is the user's entity schema, passed through for the
	// templates. The derived event schema is written to the generated dir.
	SchemaPath              string     `json:"schemaPath"`
	EventDecoder            string     `json:"eventDecoder"`
	UnorderedMultichainMode bool       `json:"unorderedMultichainMode"`
	RollbackOnReorg         bool       `json:"rollbackOnReorg"`
	SaveFullHistory         bool       `json:"saveFullHistory"`
	Networks                []Network  `json:"networks"`
	Contracts               []Contract `json:"contracts"`
}

// Network lists the contracts deployed on one network
type Network struct {
	ID         uint64            `json:"id"`
	StartBlock int64             `json:"startBlock"`
	EndBlock   *int64            `json:"endBlock,omitempty"`
	Contracts  []NetworkContract `json:"contracts"`
}

// NetworkContract places a contract on a network
type NetworkContract struct {
	Name      naming.Variants `json:"name"`
	Addresses []string        `json:"addresses"`
}

// Contract is a contract with its events
type Contract struct {
	Name    naming.Variants `json:"name"`
	Handler string          `json:"handler"`
	Events  []Event         `json:"events"`
}

// Event is an event with its flattened parameters in access order
type Event struct {
	Name      naming.Variants `json:"name"`
	Signature string          `json:"signature"`
	Topic0    string          `json:"topic0"`
	Anonymous bool            `json:"anonymous"`
	Params    []Param         `json:"params"`
}

// Param is one flattened event parameter.
//
// EntityKey names the field on the generated entity. EventKey names the raw
// event parameter the value is read from; AccessorPath, when set, indexes into
// that parameter's tuple from the outermost level inwards.
type Param struct {
	EntityKey    naming.Variants `json:"entityKey"`
	EventKey     naming.Variants `json:"eventKey"`
	AccessorPath []int           `json:"accessorPath,omitempty"`
	ABIType      string          `json:"abiType"`
	GraphQLType  FieldType       `json:"graphqlType"`
	IsAddress    bool            `json:"isAddress"`
	Indexed      bool            `json:"indexed"`
}

// Builder builds models. Names are derived once per builder and reused for
// every entity and field that refers to them.
type Builder struct {
	names *naming.Cache
}

// NewBuilder creates a builder with an empty name cache
func NewBuilder() *Builder {
	return &Builder{names: naming.NewCache()}
}

// Build builds the model of sc with a fresh builder
func Build(sc *systemconfig.SystemConfig) (*Model, error) {
	return NewBuilder().Build(sc)
}

// Build maps every contract and network of sc. The first unsupported
// parameter aborts the whole build.
func (b *Builder) Build(sc *systemconfig.SystemConfig) (*Model, error) {
	m := &Model{
		ProjectName:             sc.Name,
		Description:             sc.Description,
		SchemaPath:              sc.SchemaPath,
		EventDecoder:            string(sc.EventDecoder),
		UnorderedMultichainMode: sc.UnorderedMultichainMode,
		RollbackOnReorg:         sc.RollbackOnReorg,
		SaveFullHistory:         sc.SaveFullHistory,
		Networks:                make([]Network, 0, len(sc.Networks)),
		Contracts:               make([]Contract, 0, len(sc.Contracts)),
	}

	for _, c := range sc.Contracts {
		contract, err := b.Contract(c)
		if err != nil {
			return nil, err
		}
		m.Contracts = append(m.Contracts, contract)
	}

	for _, n := range sc.Networks {
		network := Network{
			ID:         n.ID,
			StartBlock: n.StartBlock,
			EndBlock:   n.EndBlock,
			Contracts:  make([]NetworkContract, 0, len(n.Contracts)),
		}
		for _, nc := range n.Contracts {
			network.Contracts = append(network.Contracts, NetworkContract{
				Name:      b.names.Get(nc.Name),
				Addresses: append([]string{}, nc.Addresses...),
			})
		}
		m.Networks = append(m.Networks, network)
	}

	if _, err := m.Schema(); err != nil {
		return nil, err
	}
	return m, nil
}

// Contract maps a single contract and its events
func (b *Builder) Contract(c systemconfig.Contract) (Contract, error) {
	contract := Contract{
		Name:    b.names.Get(c.Name),
		Handler: c.Handler,
		Events:  make([]Event, 0, len(c.Events)),
	}

	for _, e := range c.Events {
		event, err := b.Event(c.Name, e)
		if err != nil {
			return Contract{}, err
		}
		contract.Events = append(contract.Events, event)
	}
	return contract, nil
}

// Event flattens the inputs of e and maps each leaf to a Param
func (b *Builder) Event(contractName string, e systemconfig.Event) (Event, error) {
	event := Event{
		Name:      b.names.Get(e.Name),
		Signature: e.Signature,
		Anonymous: e.ABI.Anonymous,
	}
	if !e.ABI.Anonymous {
		event.Topic0 = e.ABI.ID.Hex()
	}

	flattened := flatten.FlattenInputs(e.ABI.Inputs)
	event.Params = make([]Param, 0, len(flattened))
	seen := make(map[string]string, len(flattened))

	for _, fp := range flattened {
		entityKey := fp.EntityKeyName()
		fail := func(format string, args ...interface{}) error {
			return errdefs.New(errdefs.ErrModelBuild, format, args...).
				WithContract(contractName).
				WithEvent(e.Name).
				WithParam(entityKey)
		}

		if entityKey == IDField {
			return Event{}, fail("parameter name %q is reserved for the entity id, rename it in the event signature", IDField)
		}
		if prev, ok := seen[entityKey]; ok {
			return Event{}, fail("duplicate field %q, produced by both %s and %s",
				entityKey, prev, describe(fp))
		}
		seen[entityKey] = describe(fp)

		fieldType, err := FieldTypeFromABI(fp.Leaf.Type)
		if err != nil {
			return Event{}, fail("%v", err)
		}

		event.Params = append(event.Params, Param{
			EntityKey:    b.names.Get(entityKey),
			EventKey:     b.names.Get(fp.EventKeyName()),
			AccessorPath: fp.AccessorPath,
			ABIType:      fp.Leaf.Type.String(),
			GraphQLType:  fieldType,
			IsAddress:    isAddress(fp.Leaf),
			Indexed:      fp.Leaf.Indexed,
		})
	}
	return event, nil
}

func isAddress(p flatten.EventParam) bool {
	return p.Type.T == abi.AddressTy
}

func describe(fp flatten.FlattenedEventParam) string {
	if fp.AccessorPath == nil {
		return fp.Leaf.Name
	}
	s := fp.Leaf.Name
	for _, i := range fp.AccessorPath {
		s += "[" + strconv.Itoa(i) + "]"
	}
	return s
}
