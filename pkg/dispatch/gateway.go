package dispatch

import "context"

// EventKind identifies how an inbound event entered the system.
type EventKind int

const (
	// EventMessageCreate is a fresh chat message that may carry a prefix command.
	EventMessageCreate EventKind = iota
	// EventMessageUpdate is an edit of an earlier chat message.
	EventMessageUpdate
	// EventInteractionCreate is a platform-native structured command call.
	EventInteractionCreate
)

// Event is the normalized inbound event the gateway client delivers to the
// dispatcher. Prefix invocations carry Content; structured invocations carry
// Command and Options with pre-typed values. Raw holds the adapter's native
// payload for reply routing.
type Event struct {
	Kind       EventKind
	MessageID  string
	ChannelID  string
	AuthorID   string
	AuthorName string

	Content string

	Command string
	Options map[string]any

	Raw any
}

// Gateway is the outbound half of the external gateway client: command
// bodies and the error router reply through it. Reply returns the platform
// identifier of the sent message when the transport has one, so the edit
// tracker can update that reply in place later.
type Gateway interface {
	Reply(ctx context.Context, ev *Event, content string) (messageID string, err error)
	EditReply(ctx context.Context, ev *Event, messageID, content string) error
}
