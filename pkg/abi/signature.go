package abi

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/0xmhha/indexer-codegen/pkg/errdefs"
)

var (
	identifierRegex  = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
	arraySuffixRegex = regexp.MustCompile(`^(\[[0-9]*\])*$`)
)

// ParseEventSignature parses a human-readable event signature such as
//
//	event Transfer(address indexed from, address indexed to, uint256 value)
//	Update((uint256,(bool,address)) config, uint8[] flags) anonymous
//
// into a go-ethereum event. Tuple components may be named; unnamed
// components are called field0, field1, ... because go-ethereum requires
// named tuple fields. Unnamed top-level inputs are named _0, _1, ...
func ParseEventSignature(signature string) (abi.Event, error) {
	sig := strings.TrimSpace(signature)
	sig = strings.TrimSuffix(sig, ";")
	sig = strings.TrimPrefix(sig, "event ")
	sig = strings.TrimSpace(sig)

	open := strings.Index(sig, "(")
	if open <= 0 {
		return abi.Event{}, signatureError(signature, "missing event name or parameter list")
	}
	name := strings.TrimSpace(sig[:open])
	if !identifierRegex.MatchString(name) {
		return abi.Event{}, signatureError(signature, "invalid event name %q", name)
	}

	closing, err := matchingParen(sig, open)
	if err != nil {
		return abi.Event{}, signatureError(signature, "%v", err)
	}

	anonymous := false
	switch rest := strings.TrimSpace(sig[closing+1:]); rest {
	case "":
	case "anonymous":
		anonymous = true
	default:
		return abi.Event{}, signatureError(signature, "unexpected trailing input %q", rest)
	}

	params, err := parseParamList(sig[open+1 : closing])
	if err != nil {
		return abi.Event{}, signatureError(signature, "%v", err)
	}

	inputs := make(abi.Arguments, 0, len(params))
	for i, p := range params {
		typ, err := abi.NewType(p.Type, "", p.Components)
		if err != nil {
			return abi.Event{}, signatureError(signature, "parameter %d: %v", i, err)
		}
		inputs = append(inputs, abi.Argument{
			Name:    p.Name,
			Type:    typ,
			Indexed: p.Indexed,
		})
	}

	// unnamed inputs come back as arg0, arg1, ...
	return abi.NewEvent(name, name, anonymous, inputs), nil
}

func signatureError(signature string, format string, args ...interface{}) *errdefs.Error {
	return errdefs.New(errdefs.ErrAbiParse, "invalid event signature %q: %s", signature, fmt.Sprintf(format, args...))
}

// parseParamList parses the comma separated parameters between a pair of
// parentheses. Components of nested tuples are parsed recursively.
func parseParamList(list string) ([]abi.ArgumentMarshaling, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}

	parts, err := splitTopLevel(list)
	if err != nil {
		return nil, err
	}

	params := make([]abi.ArgumentMarshaling, 0, len(parts))
	for _, part := range parts {
		p, err := parseParam(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

func parseParam(param string) (abi.ArgumentMarshaling, error) {
	if param == "" {
		return abi.ArgumentMarshaling{}, fmt.Errorf("empty parameter")
	}

	var (
		out  abi.ArgumentMarshaling
		rest string
	)

	param = strings.TrimPrefix(param, "tuple")
	if strings.HasPrefix(param, "(") {
		closing, err := matchingParen(param, 0)
		if err != nil {
			return out, err
		}
		components, err := parseParamList(param[1:closing])
		if err != nil {
			return out, err
		}
		for i := range components {
			if components[i].Name == "" {
				components[i].Name = fmt.Sprintf("field%d", i)
			}
			if components[i].Indexed {
				return out, fmt.Errorf("tuple component %q cannot be indexed", components[i].Name)
			}
		}

		tail := param[closing+1:]
		suffixEnd := strings.IndexAny(tail, " \t")
		if suffixEnd == -1 {
			suffixEnd = len(tail)
		}
		suffix := tail[:suffixEnd]
		if !arraySuffixRegex.MatchString(suffix) {
			return out, fmt.Errorf("invalid tuple suffix %q", suffix)
		}
		out.Type = "tuple" + suffix
		out.Components = components
		rest = tail[suffixEnd:]
	} else {
		fields := strings.Fields(param)
		out.Type = normalizeElementaryType(fields[0])
		rest = strings.Join(fields[1:], " ")
	}

	fields := strings.Fields(rest)
	if len(fields) > 0 && fields[0] == "indexed" {
		out.Indexed = true
		fields = fields[1:]
	}
	switch len(fields) {
	case 0:
	case 1:
		if !identifierRegex.MatchString(fields[0]) {
			return out, fmt.Errorf("invalid parameter name %q", fields[0])
		}
		out.Name = fields[0]
	default:
		return out, fmt.Errorf("unexpected tokens %q", strings.Join(fields, " "))
	}

	return out, nil
}

// normalizeElementaryType expands the uint/int aliases, which go-ethereum
// does not accept without an explicit size.
func normalizeElementaryType(t string) string {
	base, suffix := t, ""
	if i := strings.Index(t, "["); i >= 0 {
		base, suffix = t[:i], t[i:]
	}
	switch base {
	case "uint":
		base = "uint256"
	case "int":
		base = "int256"
	}
	return base + suffix
}

// matchingParen returns the index of the parenthesis closing the one at open.
func matchingParen(s string, open int) (int, error) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("unbalanced parentheses")
}

// splitTopLevel splits s at commas that are not nested inside parentheses.
func splitTopLevel(s string) ([]string, error) {
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced parentheses")
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parentheses")
	}
	return append(parts, s[start:]), nil
}
