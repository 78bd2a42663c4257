package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Hook is an observability side effect run around command execution. Hooks
// must not assume they run on any particular goroutine.
type Hook func(ctx context.Context, inv *Invocation)

// Options is the framework configuration. Every field may be omitted; zero
// values fall back to the documented defaults.
type Options struct {
	// Prefix is the leading text marker for prefix commands. Empty disables
	// prefix invocation entirely; structured invocations are unaffected.
	Prefix string

	// EditTimespan bounds how long an invocation stays re-runnable after its
	// triggering message is edited. Default: one hour.
	EditTimespan time.Duration

	// OwnerIDs lists privileged callers. SkipChecksForOwners lets them bypass
	// the check pipeline; by default checks apply to everyone, owners included.
	OwnerIDs            []string
	SkipChecksForOwners bool

	// GlobalCheck runs before every command's own check. Combine several with
	// Checks.
	GlobalCheck CheckFunc

	// PreCommand runs just before a command body, PostCommand after a body
	// that returned without error.
	PreCommand  Hook
	PostCommand Hook

	// OnError replaces DefaultErrorHandler for per-invocation failures.
	OnError ErrorHandler

	// OnEvent is a raw-event side channel, called for every gateway event the
	// adapter sees, independent of command dispatch.
	OnEvent func(name string, raw any)
}

// Dispatcher turns inbound gateway events into at most one command execution
// each. It is process-wide: create it once after the registry is built and
// share it across all event deliveries. Failures never cross invocation
// boundaries.
type Dispatcher struct {
	reg     *Registry
	gw      Gateway
	opts    Options
	tracker *EditTracker
}

// New wires a dispatcher from an immutable registry, a gateway, and options.
func New(reg *Registry, gw Gateway, opts Options) *Dispatcher {
	if opts.EditTimespan <= 0 {
		opts.EditTimespan = time.Hour
	}
	return &Dispatcher{
		reg:     reg,
		gw:      gw,
		opts:    opts,
		tracker: NewEditTracker(opts.EditTimespan),
	}
}

// Registry returns the command set the dispatcher serves.
func (d *Dispatcher) Registry() *Registry { return d.reg }

// Tracker exposes the edit tracker, mainly for tests and adapters.
func (d *Dispatcher) Tracker() *EditTracker { return d.tracker }

// Close stops the edit tracker's sweeper. In-flight invocations finish on
// their own.
func (d *Dispatcher) Close() {
	d.tracker.Close()
}

// EmitEvent feeds the raw-event side channel, if one is configured.
func (d *Dispatcher) EmitEvent(name string, raw any) {
	if d.opts.OnEvent != nil {
		d.opts.OnEvent(name, raw)
	}
}

// HandleEvent runs one dispatch attempt to completion. The adapter calls it
// from one goroutine per event, so unrelated invocations proceed fully in
// parallel; invocations for the same source message are serialized through
// the edit tracker's per-key lock.
func (d *Dispatcher) HandleEvent(ctx context.Context, ev *Event) {
	switch ev.Kind {
	case EventMessageCreate:
		d.handleMessage(ctx, ev)
	case EventMessageUpdate:
		d.handleEdit(ctx, ev)
	case EventInteractionCreate:
		d.handleInteraction(ctx, ev)
	}
}

// handleMessage matches a fresh chat message against the prefix and the
// registry. No match is not an error; the message simply is not for us.
func (d *Dispatcher) handleMessage(ctx context.Context, ev *Event) {
	cmd, tokens, ok := d.matchPrefix(ev.Content)
	if !ok {
		return
	}

	d.tracker.Lock(ev.MessageID)
	defer d.tracker.Unlock(ev.MessageID)

	// Track before resolving: an edit may fix a payload that fails below.
	d.tracker.Record(ev.MessageID, EntryState{
		CommandName: cmd.Name,
		ChannelID:   ev.ChannelID,
		AuthorID:    ev.AuthorID,
	})

	inv := &Invocation{Event: ev, Command: cmd, gw: d.gw, state: StateMatching}
	d.run(ctx, inv, func() (Args, error) { return ResolveText(cmd, tokens) })
	d.tracker.UpdateReply(ev.MessageID, inv.replyID)
}

// handleEdit re-enters the pipeline for an edited message with a live
// EditEntry, jumping straight to resolution with the stored command.
func (d *Dispatcher) handleEdit(ctx context.Context, ev *Event) {
	d.tracker.Lock(ev.MessageID)
	defer d.tracker.Unlock(ev.MessageID)

	st, ok := d.tracker.OnEdit(ev.MessageID)
	if !ok {
		return
	}
	cmd, ok := d.reg.Lookup(st.CommandName)
	if !ok {
		return
	}
	// Re-resolve from the edited text, keeping the stored command even if the
	// leading token changed. An edit that removed the invocation entirely
	// leaves the old reply alone.
	if d.opts.Prefix == "" || !strings.HasPrefix(ev.Content, d.opts.Prefix) {
		return
	}
	fields := strings.Fields(strings.TrimPrefix(ev.Content, d.opts.Prefix))
	if len(fields) == 0 {
		return
	}
	tokens := fields[1:]

	inv := &Invocation{
		Event:   ev,
		Command: cmd,
		gw:      d.gw,
		state:   StateMatching,
		replyID: st.ReplyID,
		edited:  true,
	}
	d.run(ctx, inv, func() (Args, error) { return ResolveText(cmd, tokens) })
	d.tracker.UpdateReply(ev.MessageID, inv.replyID)
}

// handleInteraction dispatches a structured command call. Structured calls
// are not edit-tracked; the platform gives each one a fresh identity.
func (d *Dispatcher) handleInteraction(ctx context.Context, ev *Event) {
	cmd, ok := d.reg.Lookup(ev.Command)
	if !ok || cmd.Kinds&KindSlash == 0 {
		return
	}
	inv := &Invocation{Event: ev, Command: cmd, gw: d.gw, state: StateMatching}
	d.run(ctx, inv, func() (Args, error) { return ResolveOptions(cmd, ev.Options) })
}

// matchPrefix resolves prefix text to a registered prefix command plus its
// raw argument tokens.
func (d *Dispatcher) matchPrefix(content string) (*Command, []string, bool) {
	if d.opts.Prefix == "" || !strings.HasPrefix(content, d.opts.Prefix) {
		return nil, nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(content, d.opts.Prefix))
	if len(fields) == 0 {
		return nil, nil, false
	}
	cmd, ok := d.reg.Lookup(fields[0])
	if !ok || cmd.Kinds&KindPrefix == 0 {
		return nil, nil, false
	}
	return cmd, fields[1:], true
}

// run advances one invocation through Resolving, Checking, and Executing.
// Every failure terminates in StateFailed and goes through the error router;
// success terminates in StateCompleted after the post-command hook.
func (d *Dispatcher) run(ctx context.Context, inv *Invocation, resolve func() (Args, error)) {
	inv.state = StateResolving
	args, err := resolve()
	if err != nil {
		inv.state = StateFailed
		d.route(ctx, inv, err)
		return
	}
	inv.Args = args

	inv.state = StateChecking
	if cerr := d.runChecks(ctx, inv); cerr != nil {
		inv.state = StateFailed
		d.route(ctx, inv, cerr)
		return
	}

	inv.state = StateExecuting
	if d.opts.PreCommand != nil {
		d.opts.PreCommand(ctx, inv)
	}
	if err := d.invoke(ctx, inv); err != nil {
		inv.state = StateFailed
		d.route(ctx, inv, &CommandError{Command: inv.Command.Name, Cause: err})
		return
	}
	inv.state = StateCompleted
	if d.opts.PostCommand != nil {
		d.opts.PostCommand(ctx, inv)
	}
}

// invoke runs the command body, converting panics into plain errors so one
// misbehaving body cannot take other invocations with it.
func (d *Dispatcher) invoke(ctx context.Context, inv *Invocation) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return inv.Command.Run(ctx, inv)
}
