// Package dispatch provides a transport-agnostic chat command engine: a
// registry of commands, an argument resolver for prefix-text and structured
// payloads, a check pipeline, an edit tracker for re-running commands when
// their triggering message is edited, and a dispatcher tying it all together.
// How events arrive and replies leave (Discord, CLI, tests) is defined by a
// Gateway implementation supplied by the integrator.
package dispatch

import "context"

// InvokeKind is a bitmask of the invocation styles a command supports.
type InvokeKind uint8

const (
	// KindPrefix allows invocation via a leading text marker in a chat message.
	KindPrefix InvokeKind = 1 << iota
	// KindSlash allows invocation via a platform-native structured call.
	KindSlash
)

// ParamType tags the declared type of a command parameter.
type ParamType int

const (
	ParamString ParamType = iota
	ParamInt
	ParamUint
	ParamFloat
	ParamBool
)

// String returns the type tag as used in error messages.
func (t ParamType) String() string {
	switch t {
	case ParamString:
		return "string"
	case ParamInt:
		return "integer"
	case ParamUint:
		return "unsigned integer"
	case ParamFloat:
		return "number"
	case ParamBool:
		return "boolean"
	}
	return "unknown"
}

// Parameter describes one entry of a command's ordered parameter specification.
type Parameter struct {
	Name        string
	Description string
	Type        ParamType
	Required    bool
}

// RunFunc is the opaque execution body of a command. It receives the resolved
// arguments and a reply handle through the invocation.
type RunFunc func(ctx context.Context, inv *Invocation) error

// Command is supplied as data by the integrator and is immutable once it has
// been handed to NewRegistry.
type Command struct {
	Name        string
	Aliases     []string
	Description string
	Category    string
	Kinds       InvokeKind
	Params      []Parameter
	Check       CheckFunc // optional, evaluated after the global check
	Run         RunFunc
}

// Group is a named collection of commands sharing a category. Groups exist
// only at registration time; the registry flattens them.
type Group struct {
	Category string
	Commands []*Command
}
