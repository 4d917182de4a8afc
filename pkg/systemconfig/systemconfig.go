// Package systemconfig joins the resolved human config with the ABI events it
// selects, producing the typed view the model builder consumes.
package systemconfig

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"

	contractabi "github.com/0xmhha/indexer-codegen/pkg/abi"
	"github.com/0xmhha/indexer-codegen/pkg/errdefs"
	"github.com/0xmhha/indexer-codegen/pkg/humanconfig"
	"github.com/0xmhha/indexer-codegen/pkg/resolver"
)

// DefaultSchemaPath is the entity schema file used when the config names none
const DefaultSchemaPath = "schema.graphql"

// Event is a configured event with its parsed ABI definition
type Event struct {
	Name      string
	Signature string
	ABI       abi.Event
}

// Contract is a contract definition shared by every network it is deployed on
type Contract struct {
	Name        string
	Handler     string
	AbiFilePath string
	Events      []Event
}

// NetworkContract places a contract on a network
type NetworkContract struct {
	Name      string
	Addresses []string
}

// Network is a network with its resolved contract placements
type Network struct {
	ID                      uint64
	StartBlock              int64
	EndBlock                *int64
	ConfirmedBlockThreshold *int32
	RPC                     *humanconfig.RPCConfig
	Hypersync               *humanconfig.HypersyncConfig
	Contracts               []NetworkContract
}

// SystemConfig is the fully resolved project
type SystemConfig struct {
	Name                    string
	Description             string
	SchemaPath              string
	EventDecoder            humanconfig.EventDecoder
	UnorderedMultichainMode bool
	RollbackOnReorg         bool
	SaveFullHistory         bool
	Networks                []Network
	Contracts               []Contract
}

// Load reads the human config at path and resolves it. Relative paths in the
// config are taken from the directory of path.
func Load(path string) (*SystemConfig, error) {
	cfg, err := humanconfig.Load(path)
	if err != nil {
		return nil, err
	}
	return FromHumanConfig(cfg, filepath.Dir(path))
}

// FromHumanConfig resolves cfg. Contracts are listed once, in the order they
// are first declared across networks. A contract name must resolve to the same
// config on every network.
func FromHumanConfig(cfg *humanconfig.HumanConfig, configDir string) (*SystemConfig, error) {
	resolved, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}

	sc := &SystemConfig{
		Name:                    cfg.Name,
		Description:             cfg.Description,
		SchemaPath:              resolvePath(configDir, cfg.Schema, DefaultSchemaPath),
		EventDecoder:            cfg.Decoder(),
		UnorderedMultichainMode: cfg.IsUnorderedMultichainMode(),
		RollbackOnReorg:         cfg.ShouldRollbackOnReorg(),
		SaveFullHistory:         cfg.ShouldSaveFullHistory(),
		Networks:                make([]Network, 0, len(resolved)),
	}

	l := &loader{
		configDir: configDir,
		abis:      make(map[string]*contractabi.ContractABI),
		seen:      make(map[string]seenContract),
	}

	for i, rn := range resolved {
		hn := cfg.Networks[i]
		network := Network{
			ID:                      rn.ID,
			StartBlock:              hn.StartBlock,
			EndBlock:                hn.EndBlock,
			ConfirmedBlockThreshold: hn.ConfirmedBlockThreshold,
			RPC:                     hn.RPCConfig,
			Hypersync:               hn.HypersyncConfig,
			Contracts:               make([]NetworkContract, 0, len(rn.Contracts)),
		}

		for _, rc := range rn.Contracts {
			contract, isNew, err := l.contract(rn.ID, rc)
			if err != nil {
				return nil, err
			}
			if isNew {
				sc.Contracts = append(sc.Contracts, contract)
			}
			network.Contracts = append(network.Contracts, NetworkContract{
				Name:      rc.Name,
				Addresses: rc.Addresses,
			})
		}
		sc.Networks = append(sc.Networks, network)
	}

	return sc, nil
}

// Contract returns the named contract
func (s *SystemConfig) Contract(name string) (Contract, bool) {
	for _, c := range s.Contracts {
		if c.Name == name {
			return c, true
		}
	}
	return Contract{}, false
}

type seenContract struct {
	network uint64
	config  humanconfig.ContractConfig
}

type loader struct {
	configDir string
	abis      map[string]*contractabi.ContractABI
	seen      map[string]seenContract
}

func (l *loader) contract(networkID uint64, rc resolver.Contract[humanconfig.ContractConfig]) (Contract, bool, error) {
	if prev, ok := l.seen[rc.Name]; ok {
		if !reflect.DeepEqual(prev.config, rc.Config) {
			return Contract{}, false, errdefs.New(errdefs.ErrConfigValidation,
				"contract is configured differently on networks %d and %d, use a global contract definition to share it",
				prev.network, networkID).
				WithNetwork(fmt.Sprint(networkID)).
				WithContract(rc.Name)
		}
		return Contract{}, false, nil
	}
	l.seen[rc.Name] = seenContract{network: networkID, config: rc.Config}

	contract := Contract{
		Name:    rc.Name,
		Handler: rc.Config.Handler,
		Events:  make([]Event, 0, len(rc.Config.Events)),
	}

	var parsed *contractabi.ContractABI
	if rc.Config.AbiFilePath != "" {
		contract.AbiFilePath = resolvePath(l.configDir, rc.Config.AbiFilePath, "")
		var err error
		if parsed, err = l.abi(rc.Name, contract.AbiFilePath); err != nil {
			return Contract{}, false, err
		}
	}

	signatures := make(map[string]bool, len(rc.Config.Events))
	for _, ec := range rc.Config.Events {
		event, err := selectEvent(parsed, ec.Event)
		if err != nil {
			var e *errdefs.Error
			if errors.As(err, &e) {
				if e.Contract == "" {
					e.WithContract(rc.Name)
				}
				if e.Event == "" {
					e.WithEvent(ec.Event)
				}
			}
			return Contract{}, false, err
		}

		if signatures[event.Sig] {
			return Contract{}, false, errdefs.New(errdefs.ErrConfigValidation, "event %s is configured more than once", event.Sig).
				WithContract(rc.Name).
				WithEvent(event.RawName)
		}
		signatures[event.Sig] = true

		contract.Events = append(contract.Events, Event{
			Name:      event.RawName,
			Signature: contractabi.HumanReadableSignature(event),
			ABI:       event,
		})
	}

	return contract, true, nil
}

// abi loads each ABI file once, however many contracts share it
func (l *loader) abi(contract, path string) (*contractabi.ContractABI, error) {
	if parsed, ok := l.abis[path]; ok {
		shared := *parsed
		shared.Name = contract
		return &shared, nil
	}
	parsed, err := contractabi.LoadABIFile(contract, path)
	if err != nil {
		return nil, err
	}
	l.abis[path] = parsed
	return parsed, nil
}

// selectEvent parses a signature directly; a signature takes precedence over
// the ABI file. A bare name needs the ABI file.
func selectEvent(parsed *contractabi.ContractABI, selector string) (abi.Event, error) {
	if strings.Contains(selector, "(") {
		return contractabi.ParseEventSignature(selector)
	}
	if parsed == nil {
		return abi.Event{}, errdefs.New(errdefs.ErrConfigValidation,
			"event %q is referenced by name but the contract has no abi_file_path, use a full signature instead", selector)
	}
	return parsed.Event(selector)
}

func resolvePath(dir, path, fallback string) string {
	if path == "" {
		path = fallback
	}
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
