package dispatch

import "context"

// State names the dispatcher's position in one invocation's pipeline. Each
// invocation moves Idle → Matching → Resolving → Checking → Executing and
// terminates in Completed or Failed; the dispatcher itself persists across
// invocations.
type State int

const (
	StateIdle State = iota
	StateMatching
	StateResolving
	StateChecking
	StateExecuting
	StateCompleted
	StateFailed
)

// String returns the state name for logs and hooks.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMatching:
		return "matching"
	case StateResolving:
		return "resolving"
	case StateChecking:
		return "checking"
	case StateExecuting:
		return "executing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Invocation is the transient context of one dispatch attempt: the triggering
// event, the resolved command and arguments, and the reply handle back to the
// gateway client. It is created per attempt and discarded when the attempt
// terminates.
type Invocation struct {
	Event   *Event
	Command *Command
	Args    Args

	gw      Gateway
	state   State
	replyID string
	edited  bool
}

// State returns the pipeline state the invocation is in. Hooks and error
// handlers may read it; Failed and Completed are terminal.
func (inv *Invocation) State() State { return inv.state }

// Edited reports whether this invocation was triggered by an edit of a
// tracked message rather than a fresh event.
func (inv *Invocation) Edited() bool { return inv.edited }

// ReplyID returns the identifier of the bot's reply, once one exists.
func (inv *Invocation) ReplyID() string { return inv.replyID }

// Gateway returns the outbound handle for callers needing more than Say.
func (inv *Invocation) Gateway() Gateway { return inv.gw }

// Say replies to the invocation. A re-invocation through the edit tracker
// edits the bot's earlier reply in place; otherwise a new reply is sent and
// remembered for exactly that purpose.
func (inv *Invocation) Say(ctx context.Context, content string) error {
	if inv.replyID != "" {
		return inv.gw.EditReply(ctx, inv.Event, inv.replyID, content)
	}
	id, err := inv.gw.Reply(ctx, inv.Event, content)
	if err != nil {
		return err
	}
	inv.replyID = id
	return nil
}
