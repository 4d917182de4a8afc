// Package resolver merges global contract templates into per-network contract
// entries.
//
// Resolution runs in two passes. The first builds a name-keyed set of global
// definitions and rejects duplicates. The second resolves each network entry
// against that set: an inline config always wins, and an entry without one
// takes the config of the global definition with the same name.
package resolver

import (
	"strconv"

	"github.com/0xmhha/indexer-codegen/pkg/errdefs"
)

// Global is a network independent contract template
type Global[T any] struct {
	Name   string
	Config T
}

// Entry is a contract declared on a network. Config is nil when the entry
// refers to a global definition.
type Entry[T any] struct {
	Name      string
	Addresses []string
	Config    *T
}

// Network groups the contract entries of one network
type Network[T any] struct {
	ID        uint64
	Contracts []Entry[T]
}

// Contract is a contract after resolution. Whether its config came from a
// global definition is no longer visible.
type Contract[T any] struct {
	Name      string
	Addresses []string
	Config    T
}

// ResolvedNetwork holds the resolved contracts of one network in declared order
type ResolvedNetwork[T any] struct {
	ID        uint64
	Contracts []Contract[T]
}

// GlobalSet is the name-keyed set of global definitions
type GlobalSet[T any] struct {
	defs  map[string]T
	names []string
}

// NewGlobalSet builds the global set, failing on the first duplicate name
func NewGlobalSet[T any](globals []Global[T]) (*GlobalSet[T], error) {
	set := &GlobalSet[T]{
		defs:  make(map[string]T, len(globals)),
		names: make([]string, 0, len(globals)),
	}
	for _, g := range globals {
		if _, exists := set.defs[g.Name]; exists {
			return nil, errdefs.New(errdefs.ErrConfigValidation, "duplicate global contract definition").
				WithContract(g.Name)
		}
		set.defs[g.Name] = g.Config
		set.names = append(set.names, g.Name)
	}
	return set, nil
}

// Lookup returns the config of the named global definition
func (s *GlobalSet[T]) Lookup(name string) (T, bool) {
	if s == nil {
		var zero T
		return zero, false
	}
	config, ok := s.defs[name]
	return config, ok
}

// Names returns the global definition names in declared order
func (s *GlobalSet[T]) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}

// Len returns the number of global definitions
func (s *GlobalSet[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.defs)
}

// ResolveNetwork resolves the entries of a single network against set. A nil
// set behaves like an empty one.
func ResolveNetwork[T any](set *GlobalSet[T], networkID uint64, entries []Entry[T]) ([]Contract[T], error) {
	contracts := make([]Contract[T], 0, len(entries))
	for _, entry := range entries {
		var config T
		if entry.Config != nil {
			config = *entry.Config
		} else {
			global, ok := set.Lookup(entry.Name)
			if !ok {
				return nil, errdefs.New(errdefs.ErrConfigValidation,
					"missing global contract definition: contract %q has no inline config and no global definition with that name", entry.Name).
					WithNetwork(strconv.FormatUint(networkID, 10)).
					WithContract(entry.Name)
			}
			config = global
		}

		contracts = append(contracts, Contract[T]{
			Name:      entry.Name,
			Addresses: append([]string{}, entry.Addresses...),
			Config:    config,
		})
	}
	return contracts, nil
}

// Resolve runs both passes over every network, preserving declared order
func Resolve[T any](globals []Global[T], networks []Network[T]) ([]ResolvedNetwork[T], error) {
	set, err := NewGlobalSet(globals)
	if err != nil {
		return nil, err
	}

	resolved := make([]ResolvedNetwork[T], 0, len(networks))
	for _, network := range networks {
		contracts, err := ResolveNetwork(set, network.ID, network.Contracts)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, ResolvedNetwork[T]{ID: network.ID, Contracts: contracts})
	}
	return resolved, nil
}
