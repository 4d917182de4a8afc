// Package errdefs defines the error kinds shared by every stage of code
// generation. A failure in any stage aborts the run, so each error carries
// enough location context (document, network, contract, event, parameter)
// to find the fault without re-running.
package errdefs

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds
var (
	// ErrConfigRead is returned when the configuration document cannot be read
	ErrConfigRead = errors.New("config read error")

	// ErrConfigDeserialize is returned when the configuration document is malformed
	ErrConfigDeserialize = errors.New("config deserialize error")

	// ErrConfigValidation is returned for duplicate or unresolved contract
	// definitions and invalid numeric ranges
	ErrConfigValidation = errors.New("config validation error")

	// ErrAbiParse is returned for malformed interface documents and signatures
	ErrAbiParse = errors.New("abi parse error")

	// ErrModelBuild is returned when flattened parameters cannot be mapped
	// into the generated model
	ErrModelBuild = errors.New("model build error")
)

// Error wraps a failure with its kind and location.
type Error struct {
	Kind     error
	Path     string
	Network  string
	Contract string
	Event    string
	Param    string
	Err      error
}

// New creates an error of the given kind.
func New(kind error, format string, args ...interface{}) *Error {
	return &Error{
		Kind: kind,
		Err:  fmt.Errorf(format, args...),
	}
}

// Wrap wraps err with the given kind. It returns nil when err is nil.
func Wrap(kind error, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// WithPath sets the document path.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithNetwork sets the network id.
func (e *Error) WithNetwork(network string) *Error {
	e.Network = network
	return e
}

// WithContract sets the contract name.
func (e *Error) WithContract(contract string) *Error {
	e.Contract = contract
	return e
}

// WithEvent sets the event name.
func (e *Error) WithEvent(event string) *Error {
	e.Event = event
	return e
}

// WithParam sets the parameter name.
func (e *Error) WithParam(param string) *Error {
	e.Param = param
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())

	var loc []string
	if e.Path != "" {
		loc = append(loc, "path "+e.Path)
	}
	if e.Network != "" {
		loc = append(loc, "network "+e.Network)
	}
	if e.Contract != "" {
		loc = append(loc, "contract "+e.Contract)
	}
	if e.Event != "" {
		loc = append(loc, "event "+e.Event)
	}
	if e.Param != "" {
		loc = append(loc, "param "+e.Param)
	}
	if len(loc) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(loc, ", "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the target error matches.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Kind, target) || errors.Is(e.Err, target)
}

// KindOf returns the kind of err, or nil if err carries none.
func KindOf(err error) error {
	for _, kind := range []error{ErrConfigRead, ErrConfigDeserialize, ErrConfigValidation, ErrAbiParse, ErrModelBuild} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
