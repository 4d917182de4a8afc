package abi

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/0xmhha/indexer-codegen/pkg/errdefs"
)

// ContractABI wraps the go-ethereum ABI with the document it was read from
type ContractABI struct {
	Name   string
	Path   string
	parsed *abi.ABI
}

// ParseABI parses an ABI JSON document for the named contract
func ParseABI(name string, abiJSON string) (*ContractABI, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, errdefs.Wrap(errdefs.ErrAbiParse, fmt.Errorf("failed to parse ABI: %w", err)).
			WithContract(name)
	}

	return &ContractABI{
		Name:   name,
		parsed: &parsed,
	}, nil
}

// LoadABIFile reads and parses the ABI document at path
func LoadABIFile(name string, path string) (*ContractABI, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.ErrAbiParse, fmt.Errorf("failed to read ABI file: %w", err)).
			WithPath(path).
			WithContract(name)
	}

	contractABI, err := ParseABI(name, string(data))
	if err != nil {
		var e *errdefs.Error
		if errors.As(err, &e) {
			e.WithPath(path)
		}
		return nil, err
	}
	contractABI.Path = path
	return contractABI, nil
}

// ValidateABI validates an ABI JSON string
func ValidateABI(abiJSON string) error {
	_, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return errdefs.Wrap(errdefs.ErrAbiParse, fmt.Errorf("invalid ABI: %w", err))
	}
	return nil
}

// EventNames returns the declared names of all events in the ABI, sorted
func (c *ContractABI) EventNames() []string {
	seen := make(map[string]bool)
	names := make([]string, 0, len(c.parsed.Events))
	for _, event := range c.parsed.Events {
		if !seen[event.RawName] {
			seen[event.RawName] = true
			names = append(names, event.RawName)
		}
	}
	sort.Strings(names)
	return names
}

// Event selects an event by its declared name or by a human-readable
// signature. A bare name must be unambiguous; overloaded events have to be
// selected by signature.
func (c *ContractABI) Event(selector string) (abi.Event, error) {
	selector = strings.TrimSpace(selector)

	if strings.Contains(selector, "(") {
		wanted, err := ParseEventSignature(selector)
		if err != nil {
			return abi.Event{}, err
		}
		for _, event := range c.parsed.Events {
			if event.ID == wanted.ID {
				return event, nil
			}
		}
		return abi.Event{}, c.eventError("event %s not found in ABI", wanted.Sig).WithEvent(wanted.RawName)
	}

	var matches []abi.Event
	for _, event := range c.parsed.Events {
		if event.RawName == selector {
			matches = append(matches, event)
		}
	}

	switch len(matches) {
	case 0:
		return abi.Event{}, c.eventError("event not found in ABI (available: %s)", strings.Join(c.EventNames(), ", ")).
			WithEvent(selector)
	case 1:
		return matches[0], nil
	default:
		sigs := make([]string, 0, len(matches))
		for _, m := range matches {
			sigs = append(sigs, m.Sig)
		}
		sort.Strings(sigs)
		return abi.Event{}, c.eventError("event is overloaded, select one by signature: %s", strings.Join(sigs, ", ")).
			WithEvent(selector)
	}
}

func (c *ContractABI) eventError(format string, args ...interface{}) *errdefs.Error {
	err := errdefs.New(errdefs.ErrAbiParse, format, args...).WithContract(c.Name)
	if c.Path != "" {
		err = err.WithPath(c.Path)
	}
	return err
}

// HumanReadableSignature renders an event in the form accepted by
// ParseEventSignature, e.g. "Transfer(address indexed from, address indexed to, uint256 value)"
func HumanReadableSignature(event abi.Event) string {
	params := make([]string, 0, len(event.Inputs))
	for _, input := range event.Inputs {
		param := input.Type.String()
		if input.Indexed {
			param += " indexed"
		}
		if input.Name != "" {
			param += " " + input.Name
		}
		params = append(params, param)
	}

	sig := fmt.Sprintf("%s(%s)", event.RawName, strings.Join(params, ", "))
	if event.Anonymous {
		sig += " anonymous"
	}
	return sig
}
