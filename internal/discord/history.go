package discord

import (
	"encoding/json"
	"log"
	"time"

	"github.com/keshon/dispatchkit/pkg/dispatch"
)

const (
	historyKey   = "cmd_history"
	historyLimit = 20
)

// InvocationRecord is one entry of the rolling command history kept in the
// datastore.
type InvocationRecord struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Edited    bool      `json:"edited"`
	Datetime  time.Time `json:"datetime"`
}

// LogInvocation appends a completed invocation to the rolling history.
// Intended as (part of) the PostCommand hook.
func (b *Bot) LogInvocation(inv *dispatch.Invocation) {
	if b.store == nil || inv == nil || inv.Command == nil {
		return
	}

	records := b.loadHistory()
	records = append(records, InvocationRecord{
		ChannelID: inv.Event.ChannelID,
		UserID:    inv.Event.AuthorID,
		Username:  inv.Event.AuthorName,
		Command:   inv.Command.Name,
		Edited:    inv.Edited(),
		Datetime:  time.Now().UTC(),
	})
	if len(records) > historyLimit {
		records = records[len(records)-historyLimit:]
	}
	b.store.Add(historyKey, records)
}

// History returns the rolling command history, newest last.
func (b *Bot) History() []InvocationRecord {
	return b.loadHistory()
}

func (b *Bot) loadHistory() []InvocationRecord {
	v, ok := b.store.Get(historyKey)
	if !ok {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[WARN] Failed to read command history: %v", err)
		return nil
	}
	var records []InvocationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("[WARN] Failed to decode command history: %v", err)
		return nil
	}
	return records
}
