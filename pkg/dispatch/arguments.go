package dispatch

import (
	"fmt"
	"math"
	"strconv"
)

// Args is the ordered sequence of resolved argument values. Optional
// parameters that were omitted are simply absent, so len(Args) can be
// shorter than the parameter specification.
type Args []any

// Len returns the number of resolved values.
func (a Args) Len() int { return len(a) }

// String returns the value at i, or "" when absent or of another type.
func (a Args) String(i int) string {
	if v, ok := a.at(i).(string); ok {
		return v
	}
	return ""
}

// Int returns the value at i, or 0 when absent or of another type.
func (a Args) Int(i int) int64 {
	if v, ok := a.at(i).(int64); ok {
		return v
	}
	return 0
}

// Uint returns the value at i, or 0 when absent or of another type.
func (a Args) Uint(i int) uint64 {
	if v, ok := a.at(i).(uint64); ok {
		return v
	}
	return 0
}

// Float returns the value at i, or 0 when absent or of another type.
func (a Args) Float(i int) float64 {
	if v, ok := a.at(i).(float64); ok {
		return v
	}
	return 0
}

// Bool returns the value at i, or false when absent or of another type.
func (a Args) Bool(i int) bool {
	if v, ok := a.at(i).(bool); ok {
		return v
	}
	return false
}

func (a Args) at(i int) any {
	if i < 0 || i >= len(a) {
		return nil
	}
	return a[i]
}

// ResolveText resolves a token sequence from a prefix-text invocation against
// the command's parameter specification. It is pure: no I/O, no shared state.
func ResolveText(cmd *Command, tokens []string) (Args, error) {
	args := make(Args, 0, len(cmd.Params))
	for _, p := range cmd.Params {
		if len(tokens) == 0 {
			if p.Required {
				return nil, &ArgumentError{Command: cmd.Name, Parameter: p.Name, Reason: "required parameter is missing"}
			}
			continue
		}
		v, err := parseToken(cmd.Name, p, tokens[0])
		if err != nil {
			return nil, err
		}
		args = append(args, v)
		tokens = tokens[1:]
	}
	if len(tokens) > 0 {
		return nil, &ArgumentError{
			Command: cmd.Name,
			Reason:  fmt.Sprintf("unexpected trailing input %q", tokens[0]),
		}
	}
	return args, nil
}

// ResolveOptions resolves a structured key-value payload (a slash-style call
// with pre-typed fields) against the command's parameter specification.
// Unknown keys are ignored; the platform may attach fields the command does
// not declare.
func ResolveOptions(cmd *Command, opts map[string]any) (Args, error) {
	args := make(Args, 0, len(cmd.Params))
	for _, p := range cmd.Params {
		raw, ok := opts[p.Name]
		if !ok {
			if p.Required {
				return nil, &ArgumentError{Command: cmd.Name, Parameter: p.Name, Reason: "required parameter is missing"}
			}
			continue
		}
		v, err := coerceOption(cmd.Name, p, raw)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func parseToken(cmdName string, p Parameter, tok string) (any, error) {
	switch p.Type {
	case ParamString:
		return tok, nil
	case ParamInt:
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, mismatch(cmdName, p, tok)
		}
		return v, nil
	case ParamUint:
		v, err := strconv.ParseUint(tok, 10, 32)
		if err != nil {
			return nil, mismatch(cmdName, p, tok)
		}
		return v, nil
	case ParamFloat:
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, mismatch(cmdName, p, tok)
		}
		return v, nil
	case ParamBool:
		v, err := strconv.ParseBool(tok)
		if err != nil {
			return nil, mismatch(cmdName, p, tok)
		}
		return v, nil
	}
	return nil, &ArgumentError{Command: cmdName, Parameter: p.Name, Reason: "unsupported parameter type"}
}

func coerceOption(cmdName string, p Parameter, raw any) (any, error) {
	switch p.Type {
	case ParamString:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	case ParamInt:
		switch v := raw.(type) {
		case int64:
			return v, nil
		case float64:
			if v == math.Trunc(v) {
				return int64(v), nil
			}
		case string:
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				return n, nil
			}
		}
	case ParamUint:
		switch v := raw.(type) {
		case uint64:
			if v <= math.MaxUint32 {
				return v, nil
			}
		case int64:
			if v >= 0 && v <= math.MaxUint32 {
				return uint64(v), nil
			}
		case float64:
			if v >= 0 && v <= math.MaxUint32 && v == math.Trunc(v) {
				return uint64(v), nil
			}
		case string:
			if n, err := strconv.ParseUint(v, 10, 32); err == nil {
				return n, nil
			}
		}
	case ParamFloat:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case int64:
			return float64(v), nil
		}
	case ParamBool:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
	}
	return nil, mismatch(cmdName, p, raw)
}

func mismatch(cmdName string, p Parameter, got any) error {
	return &ArgumentError{
		Command:   cmdName,
		Parameter: p.Name,
		Reason:    fmt.Sprintf("expected %s, got %v", p.Type, got),
	}
}
