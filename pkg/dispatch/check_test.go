package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func allowAll(ctx context.Context, inv *Invocation) CheckResult { return Allow() }

func TestCheckResultTriState(t *testing.T) {
	assert.True(t, Allow().Allowed())
	assert.False(t, Deny().Allowed())
	assert.Empty(t, Deny().Reason())

	denied := DenyReason("not here")
	assert.False(t, denied.Allowed())
	assert.Equal(t, "not here", denied.Reason())
}

func TestChecksShortCircuitOnFirstDeny(t *testing.T) {
	var calls []int
	check := func(i int, res CheckResult) CheckFunc {
		return func(ctx context.Context, inv *Invocation) CheckResult {
			calls = append(calls, i)
			return res
		}
	}

	combined := Checks(
		check(0, Allow()),
		check(1, DenyReason("stop")),
		check(2, Allow()),
	)
	res := combined(context.Background(), &Invocation{Event: &Event{}})

	assert.False(t, res.Allowed())
	assert.Equal(t, "stop", res.Reason())
	assert.Equal(t, []int{0, 1}, calls, "checks after the deny never run")
}

func TestPipelineGlobalDenyStopsCommandCheckAndBody(t *testing.T) {
	var commandCheckRan, bodyRan bool

	cmd := &Command{
		Name:  "guarded",
		Kinds: KindPrefix,
		Check: func(ctx context.Context, inv *Invocation) CheckResult {
			commandCheckRan = true
			return Allow()
		},
		Run: func(ctx context.Context, inv *Invocation) error {
			bodyRan = true
			return nil
		},
	}
	reg, err := NewRegistry(Group{Commands: []*Command{cmd}})
	require.NoError(t, err)

	var routed error
	d := New(reg, &fakeGateway{}, Options{
		Prefix:      "--",
		GlobalCheck: func(ctx context.Context, inv *Invocation) CheckResult { return Deny() },
		OnError:     func(ctx context.Context, inv *Invocation, err error) { routed = err },
	})
	defer d.Close()

	d.HandleEvent(context.Background(), &Event{
		Kind: EventMessageCreate, MessageID: "m1", AuthorID: "u1", Content: "--guarded",
	})

	assert.False(t, commandCheckRan)
	assert.False(t, bodyRan)
	var checkErr *CheckError
	require.ErrorAs(t, routed, &checkErr)
	assert.Equal(t, "guarded", checkErr.Command)
}

func TestPipelineOwnerBypass(t *testing.T) {
	var bodyRan bool
	cmd := &Command{
		Name:  "secret",
		Kinds: KindPrefix,
		Run: func(ctx context.Context, inv *Invocation) error {
			bodyRan = true
			return nil
		},
	}
	reg, err := NewRegistry(Group{Commands: []*Command{cmd}})
	require.NoError(t, err)

	deny := func(ctx context.Context, inv *Invocation) CheckResult { return Deny() }

	// Default: checks apply to everyone, owners included.
	d := New(reg, &fakeGateway{}, Options{Prefix: "--", OwnerIDs: []string{"boss"}, GlobalCheck: deny})
	d.HandleEvent(context.Background(), &Event{Kind: EventMessageCreate, MessageID: "m1", AuthorID: "boss", Content: "--secret"})
	d.Close()
	assert.False(t, bodyRan)

	// Opt-in bypass.
	d = New(reg, &fakeGateway{}, Options{
		Prefix: "--", OwnerIDs: []string{"boss"}, SkipChecksForOwners: true, GlobalCheck: deny,
	})
	defer d.Close()
	d.HandleEvent(context.Background(), &Event{Kind: EventMessageCreate, MessageID: "m2", AuthorID: "boss", Content: "--secret"})
	assert.True(t, bodyRan)
}

func TestRateLimitCheckPerCaller(t *testing.T) {
	check := RateLimitCheck(rate.Every(time.Hour), 2)
	ctx := context.Background()

	alice := &Invocation{Event: &Event{AuthorID: "alice"}}
	bob := &Invocation{Event: &Event{AuthorID: "bob"}}

	assert.True(t, check(ctx, alice).Allowed())
	assert.True(t, check(ctx, alice).Allowed())
	assert.False(t, check(ctx, alice).Allowed(), "burst exhausted")
	assert.True(t, check(ctx, bob).Allowed(), "callers are limited independently")
}
