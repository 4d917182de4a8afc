package humanconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"unicode"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/0xmhha/indexer-codegen/pkg/errdefs"
	"github.com/0xmhha/indexer-codegen/pkg/resolver"
)

// Load reads, decodes and validates the config file at path
func Load(path string) (*HumanConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.ErrConfigRead,
			fmt.Errorf("failed to read config file, make sure it exists and you are in the project directory: %w", err)).
			WithPath(path)
	}

	cfg, err := Parse(data)
	if err != nil {
		var e *errdefs.Error
		if errors.As(err, &e) && e.Path == "" {
			e.WithPath(path)
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes and validates a config document. The project name is
// stripped to letters.
func Parse(data []byte) (*HumanConfig, error) {
	var cfg HumanConfig

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			err = fmt.Errorf("config document is empty")
		}
		return nil, errdefs.Wrap(errdefs.ErrConfigDeserialize, fmt.Errorf("failed to deserialize config: %w", err))
	}

	cfg.Name = StripToLetters(cfg.Name)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// StripToLetters drops every rune of s that is not a letter
func StripToLetters(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) {
			out = append(out, r)
		}
	}
	return string(out)
}

// Marshal encodes the config back to YAML
func (c *HumanConfig) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

func validationError(format string, args ...interface{}) *errdefs.Error {
	return errdefs.New(errdefs.ErrConfigValidation, format, args...)
}

// Validate checks the decoded config. Global contract names are checked for
// duplicates here so a duplicate fails even if no network refers to it.
func (c *HumanConfig) Validate() error {
	if c.Name == "" {
		return validationError("project name must contain at least one letter")
	}
	if len(c.Networks) == 0 {
		return validationError("at least one network is required")
	}

	if _, err := resolver.NewGlobalSet(c.GlobalDefinitions()); err != nil {
		return err
	}
	for _, g := range c.Contracts {
		if g.Name == "" {
			return validationError("global contract name is required")
		}
		if err := g.Config.Validate(); err != nil {
			return withContract(err, g.Name)
		}
	}

	seenNetworks := make(map[uint64]bool, len(c.Networks))
	for _, n := range c.Networks {
		network := strconv.FormatUint(n.ID, 10)
		if seenNetworks[n.ID] {
			return validationError("duplicate network id").WithNetwork(network)
		}
		seenNetworks[n.ID] = true

		if err := n.Validate(); err != nil {
			var e *errdefs.Error
			if errors.As(err, &e) {
				e.WithNetwork(network)
			}
			return err
		}
	}
	return nil
}

// Validate checks block ranges, endpoints and contract entries of a network
func (n *Network) Validate() error {
	if n.StartBlock < 0 {
		return validationError("start_block must not be negative, got %d", n.StartBlock)
	}
	if n.EndBlock != nil && *n.EndBlock < n.StartBlock {
		return validationError("end_block %d is before start_block %d", *n.EndBlock, n.StartBlock)
	}
	if n.ConfirmedBlockThreshold != nil && *n.ConfirmedBlockThreshold < 0 {
		return validationError("confirmed_block_threshold must not be negative, got %d", *n.ConfirmedBlockThreshold)
	}
	if n.RPCConfig != nil {
		if err := validateURL("rpc_config.url", n.RPCConfig.URL); err != nil {
			return err
		}
		if s := n.RPCConfig.SyncConfig; s != nil && s.BackoffMultiplicative != nil && *s.BackoffMultiplicative <= 0 {
			return validationError("rpc_config.unstable__sync_config.backoff_multiplicative must be positive")
		}
	}
	if n.HypersyncConfig != nil {
		if err := validateURL("hypersync_config.url", n.HypersyncConfig.URL); err != nil {
			return err
		}
	}

	seen := make(map[string]bool, len(n.Contracts))
	for _, contract := range n.Contracts {
		if contract.Name == "" {
			return validationError("contract name is required")
		}
		if seen[contract.Name] {
			return validationError("contract is declared more than once on the network").WithContract(contract.Name)
		}
		seen[contract.Name] = true

		for _, address := range contract.Address.Items() {
			if !common.IsHexAddress(address) {
				return validationError("invalid contract address %q", address).WithContract(contract.Name)
			}
		}
		if contract.Config != nil {
			if err := contract.Config.Validate(); err != nil {
				return withContract(err, contract.Name)
			}
		}
	}
	return nil
}

// Validate checks that the contract has a handler and selects its events
func (c *ContractConfig) Validate() error {
	if c.Handler == "" {
		return validationError("handler is required")
	}
	if len(c.Events) == 0 {
		return validationError("at least one event is required")
	}
	for i, e := range c.Events {
		if e.Event == "" {
			return validationError("events[%d].event is required", i)
		}
	}
	return nil
}

func withContract(err error, name string) error {
	var e *errdefs.Error
	if errors.As(err, &e) && e.Contract == "" {
		e.WithContract(name)
	}
	return err
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return validationError("%s is not a valid URL: %v", field, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return validationError("%s must be an absolute URL, got %q", field, raw)
	}
	return nil
}
