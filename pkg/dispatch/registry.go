package dispatch

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDuplicateName is wrapped by the SetupError returned when two commands
// (including aliases) collide during registration.
var ErrDuplicateName = errors.New("duplicate command name")

// Registry maps canonical names and aliases to commands. It is built exactly
// once before the dispatcher starts accepting events and is read-only
// afterward, so lookups need no locking.
type Registry struct {
	byName map[string]*Command
	list   []*Command
}

// NewRegistry flattens the given groups into a registry. A command without a
// category inherits its group's. Registration fails with a *SetupError if a
// command has no name or body, or if any name or alias is already taken.
func NewRegistry(groups ...Group) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Command)}
	for _, g := range groups {
		for _, c := range g.Commands {
			if c.Category == "" {
				c.Category = g.Category
			}
			if err := r.add(c); err != nil {
				return nil, err
			}
		}
	}
	sort.Slice(r.list, func(i, j int) bool { return r.list[i].Name < r.list[j].Name })
	return r, nil
}

func (r *Registry) add(c *Command) error {
	if c.Name == "" {
		return &SetupError{Reason: "command with empty name"}
	}
	if c.Run == nil {
		return &SetupError{Reason: fmt.Sprintf("command %q has no body", c.Name)}
	}
	for _, name := range append([]string{c.Name}, c.Aliases...) {
		if prev, taken := r.byName[name]; taken {
			return &SetupError{
				Reason: fmt.Sprintf("name %q claimed by both %q and %q", name, prev.Name, c.Name),
				Cause:  ErrDuplicateName,
			}
		}
		r.byName[name] = c
	}
	r.list = append(r.list, c)
	return nil
}

// Lookup returns the command registered under the given name or alias.
func (r *Registry) Lookup(name string) (*Command, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Commands returns all registered commands sorted by canonical name.
func (r *Registry) Commands() []*Command {
	out := make([]*Command, len(r.list))
	copy(out, r.list)
	return out
}
