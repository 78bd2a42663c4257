package main

import (
	"context"
	"fmt"

	"github.com/keshon/dispatchkit/pkg/dispatch"
)

// greetingGroup has a single command saying hello to whoever invoked it.
func greetingGroup() dispatch.Group {
	return dispatch.Group{
		Category: "One",
		Commands: []*dispatch.Command{
			{
				Name:        "hello",
				Description: "Say hello",
				Kinds:       dispatch.KindPrefix | dispatch.KindSlash,
				Run: func(ctx context.Context, inv *dispatch.Invocation) error {
					return inv.Say(ctx, "Hello, "+inv.Event.AuthorName)
				},
			},
		},
	}
}

// arithmeticGroup holds plus and minus. Both operate on 32-bit unsigned
// values with wrapping semantics, so 4294967295 + 1 = 0.
func arithmeticGroup() dispatch.Group {
	number := dispatch.Parameter{
		Name:        "number",
		Description: "The number to adjust",
		Type:        dispatch.ParamUint,
		Required:    true,
	}
	return dispatch.Group{
		Category: "Multiple",
		Commands: []*dispatch.Command{
			{
				Name:        "plus",
				Description: "Add one to a number",
				Kinds:       dispatch.KindPrefix | dispatch.KindSlash,
				Params:      []dispatch.Parameter{number},
				Run: func(ctx context.Context, inv *dispatch.Invocation) error {
					n := uint32(inv.Args.Uint(0))
					return inv.Say(ctx, fmt.Sprintf("%d + 1 = %d", n, n+1))
				},
			},
			{
				Name:        "minus",
				Description: "Take one from a number",
				Kinds:       dispatch.KindPrefix | dispatch.KindSlash,
				Params:      []dispatch.Parameter{number},
				Run: func(ctx context.Context, inv *dispatch.Invocation) error {
					n := uint32(inv.Args.Uint(0))
					return inv.Say(ctx, fmt.Sprintf("%d - 1 = %d", n, n-1))
				},
			},
		},
	}
}
