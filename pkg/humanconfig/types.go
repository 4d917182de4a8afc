// Package humanconfig defines the hand-written project configuration
// (config.yaml) and loads it into a validated, typed tree.
package humanconfig

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/0xmhha/indexer-codegen/pkg/jsonschema"
)

// HumanConfig is the project configuration as written by the user
type HumanConfig struct {
	Name                    string                           `yaml:"name" description:"Name of the project"`
	Description             string                           `yaml:"description,omitempty" description:"Description of the project"`
	Ecosystem               *Ecosystem                       `yaml:"ecosystem,omitempty" description:"Ecosystem of the project."`
	Schema                  string                           `yaml:"schema,omitempty" description:"Custom path to the schema.graphql file"`
	Contracts               []GlobalContract[ContractConfig] `yaml:"contracts,omitempty" description:"Global contract definitions that must contain all definitions except addresses. You can share a single handler/abi/event definitions for contracts across multiple chains."`
	Networks                []Network                        `yaml:"networks" description:"Configuration of the blockchain networks that the project is deployed on."`
	UnorderedMultichainMode *bool                            `yaml:"unordered_multichain_mode,omitempty" description:"A flag to indicate if the indexer should use a single queue for all chains or a queue per chain (default: false)"`
	EventDecoder            *EventDecoder                    `yaml:"event_decoder,omitempty" description:"The event decoder to use for the indexer (default: hypersync-client)"`
	RollbackOnReorg         *bool                            `yaml:"rollback_on_reorg,omitempty" description:"A flag to indicate if the indexer should rollback to the last known valid block on a reorg (default: false)"`
	SaveFullHistory         *bool                            `yaml:"save_full_history,omitempty" description:"A flag to indicate if the indexer should save the full history of events. This is useful for debugging but will increase the size of the database (default: false)"`
}

// Network is a blockchain network the project indexes
type Network struct {
	ID                      uint64                            `yaml:"id" description:"The public blockchain network ID."`
	RPCConfig               *RPCConfig                        `yaml:"rpc_config,omitempty" description:"RPC configuration for utilizing as the network's data-source. Typically optional for chains with HyperSync support."`
	HypersyncConfig         *HypersyncConfig                  `yaml:"hypersync_config,omitempty" description:"Optional HyperSync configuration; when omitted the default endpoint for the network is used."`
	ConfirmedBlockThreshold *int32                            `yaml:"confirmed_block_threshold,omitempty" description:"The number of blocks from the head that the indexer should account for in case of reorgs."`
	StartBlock              int64                             `yaml:"start_block" description:"The block at which the indexer should start ingesting data"`
	EndBlock                *int64                            `yaml:"end_block,omitempty" description:"The block at which the indexer should terminate."`
	Contracts               []NetworkContract[ContractConfig] `yaml:"contracts" description:"All the contracts that should be indexed on the given network"`
}

// RPCConfig configures an RPC endpoint as a data source
type RPCConfig struct {
	URL        string      `yaml:"url" description:"The RPC endpoint URL."`
	SyncConfig *SyncConfig `yaml:"unstable__sync_config,omitempty" description:"Fine-tunes how blocks are requested from the RPC. Subject to change."`
}

// SyncConfig tunes the block interval requested from an RPC endpoint
type SyncConfig struct {
	InitialBlockInterval  *uint32  `yaml:"initial_block_interval,omitempty"`
	BackoffMultiplicative *float64 `yaml:"backoff_multiplicative,omitempty"`
	AccelerationAdditive  *uint32  `yaml:"acceleration_additive,omitempty"`
	IntervalCeiling       *uint32  `yaml:"interval_ceiling,omitempty"`
	BackoffMillis         *uint32  `yaml:"backoff_millis,omitempty"`
	QueryTimeoutMillis    *uint32  `yaml:"query_timeout_millis,omitempty"`
}

// HypersyncConfig overrides the HyperSync endpoint of a network
type HypersyncConfig struct {
	URL string `yaml:"url" description:"URL of the HyperSync endpoint"`
}

// ContractConfig is the network independent part of a contract definition
type ContractConfig struct {
	AbiFilePath string        `yaml:"abi_file_path,omitempty" description:"Relative path (from config) to a json abi. If this is used then each configured event should simply be referenced by its name"`
	Handler     string        `yaml:"handler" description:"The relative path to a file where handlers are registered for the given contract"`
	Events      []EventConfig `yaml:"events" description:"A list of events that should be indexed on this contract"`
}

// EventConfig selects an event by name or by human-readable signature
type EventConfig struct {
	Event string `yaml:"event" description:"The human readable signature of an event 'eg. Transfer(address indexed from, address indexed to, uint256 value)' OR a reference to the name of an event in a json ABI file defined in your contract config. A provided signature will take precedence over what is defined in the json ABI"`
}

// Ecosystem identifies the chain family of the project
type Ecosystem string

// Supported ecosystems
const (
	EcosystemEVM Ecosystem = "evm"
)

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Ecosystem) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	switch Ecosystem(s) {
	case EcosystemEVM:
		*e = Ecosystem(s)
		return nil
	default:
		return fmt.Errorf("line %d: unknown ecosystem %q, expected %q", node.Line, s, EcosystemEVM)
	}
}

// JSONSchema implements jsonschema.Describer.
func (Ecosystem) JSONSchema(*jsonschema.Reflector) jsonschema.Schema {
	return jsonschema.Schema{"type": "string", "enum": []string{string(EcosystemEVM)}}
}

// EventDecoder selects the library the indexer decodes events with
type EventDecoder string

// Event decoders
const (
	EventDecoderViem            EventDecoder = "viem"
	EventDecoderHypersyncClient EventDecoder = "hypersync-client"
)

// DefaultEventDecoder is used when the config does not name one
const DefaultEventDecoder = EventDecoderHypersyncClient

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *EventDecoder) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	switch EventDecoder(s) {
	case EventDecoderViem, EventDecoderHypersyncClient:
		*d = EventDecoder(s)
		return nil
	default:
		return fmt.Errorf("line %d: unknown event decoder %q, expected %q or %q",
			node.Line, s, EventDecoderViem, EventDecoderHypersyncClient)
	}
}

// JSONSchema implements jsonschema.Describer.
func (EventDecoder) JSONSchema(*jsonschema.Reflector) jsonschema.Schema {
	return jsonschema.Schema{
		"type": "string",
		"enum": []string{string(EventDecoderViem), string(EventDecoderHypersyncClient)},
	}
}

// Decoder returns the configured event decoder or the default
func (c *HumanConfig) Decoder() EventDecoder {
	if c.EventDecoder == nil {
		return DefaultEventDecoder
	}
	return *c.EventDecoder
}

// IsUnorderedMultichainMode returns the unordered_multichain_mode flag, false when unset
func (c *HumanConfig) IsUnorderedMultichainMode() bool {
	return c.UnorderedMultichainMode != nil && *c.UnorderedMultichainMode
}

// ShouldRollbackOnReorg returns the rollback_on_reorg flag, false when unset
func (c *HumanConfig) ShouldRollbackOnReorg() bool {
	return c.RollbackOnReorg != nil && *c.RollbackOnReorg
}

// ShouldSaveFullHistory returns the save_full_history flag, false when unset
func (c *HumanConfig) ShouldSaveFullHistory() bool {
	return c.SaveFullHistory != nil && *c.SaveFullHistory
}
