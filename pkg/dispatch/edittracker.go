package dispatch

import (
	"sync"
	"time"

	"github.com/zekroTJA/timedmap"
)

// EntryState is the invocation state remembered per source message so the
// command can be re-run when the user edits that message within the
// configured timespan.
type EntryState struct {
	CommandName string
	ChannelID   string
	AuthorID    string
	// ReplyID is the bot's reply to the original invocation; re-executions
	// edit that reply in place instead of posting a new one.
	ReplyID string
}

// EditTracker remembers recent invocations keyed by source message ID for a
// sliding time window. Expired entries are dropped lazily on access and swept
// periodically, so nothing is retained indefinitely. It also serializes
// concurrent dispatch attempts per message ID.
type EditTracker struct {
	timespan time.Duration
	entries  *timedmap.TimedMap

	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewEditTracker creates a tracker whose entries live for the given timespan.
func NewEditTracker(timespan time.Duration) *EditTracker {
	sweep := timespan / 2
	if sweep < 10*time.Millisecond {
		sweep = 10 * time.Millisecond
	}
	return &EditTracker{
		timespan: timespan,
		entries:  timedmap.New(sweep),
		locks:    make(map[string]*keyLock),
	}
}

// Record stores the invocation state for a source message with the current
// time. A later Record for the same message restarts its window.
func (t *EditTracker) Record(messageID string, st EntryState) {
	t.entries.Set(messageID, st, t.timespan)
}

// OnEdit returns the stored state for a message only while its window is
// still open. Stale entries are evicted by the underlying map on access.
func (t *EditTracker) OnEdit(messageID string) (EntryState, bool) {
	v := t.entries.GetValue(messageID)
	if v == nil {
		return EntryState{}, false
	}
	st, ok := v.(EntryState)
	return st, ok
}

// UpdateReply attaches the bot's reply message to a live entry without
// restarting the entry's window.
func (t *EditTracker) UpdateReply(messageID, replyID string) {
	st, ok := t.OnEdit(messageID)
	if !ok || st.ReplyID == replyID {
		return
	}
	st.ReplyID = replyID
	remaining := t.timespan
	if exp, err := t.entries.GetExpires(messageID); err == nil {
		remaining = time.Until(exp)
	}
	if remaining <= 0 {
		return
	}
	t.entries.Set(messageID, st, remaining)
}

// Lock serializes invocations for one source message. The original dispatch
// and any edit-triggered re-dispatch of the same message take this lock for
// their whole pipeline, so concurrent edits can never race.
func (t *EditTracker) Lock(messageID string) {
	t.mu.Lock()
	l, ok := t.locks[messageID]
	if !ok {
		l = &keyLock{}
		t.locks[messageID] = l
	}
	l.refs++
	t.mu.Unlock()
	l.mu.Lock()
}

// Unlock releases the per-message lock, discarding it once no dispatch
// attempt holds or awaits it.
func (t *EditTracker) Unlock(messageID string) {
	t.mu.Lock()
	l := t.locks[messageID]
	l.refs--
	if l.refs == 0 {
		delete(t.locks, messageID)
	}
	t.mu.Unlock()
	l.mu.Unlock()
}

// Close stops the periodic sweeper and drops all entries.
func (t *EditTracker) Close() {
	t.entries.StopCleaner()
	t.entries.Flush()
}
