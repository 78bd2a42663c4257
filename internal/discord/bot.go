// Package discord is the gateway client adapter: it feeds discordgo events
// into the dispatch engine and carries replies back out. The engine never
// touches the transport directly.
package discord

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/datastore"
	"golang.org/x/time/rate"

	"github.com/keshon/dispatchkit/pkg/dispatch"
)

// Bot owns the Discord session, the datastore-backed bot state, and the
// dispatcher.
type Bot struct {
	dg    *discordgo.Session
	store *datastore.DataStore
	d     *dispatch.Dispatcher

	// limiter paces command registration calls to stay under Discord's rate
	// limit for application command writes.
	limiter *rate.Limiter
}

// NewBot creates the Discord session. A bad token shape is a setup error.
func NewBot(token string, store *datastore.DataStore) (*Bot, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, &dispatch.SetupError{Reason: "failed to create Discord session", Cause: err}
	}
	return &Bot{
		dg:      dg,
		store:   store,
		limiter: rate.NewLimiter(rate.Every(50*time.Millisecond), 1),
	}, nil
}

// Start builds the dispatcher around this bot as gateway, opens the session,
// and blocks until the context is canceled. discordgo delivers each gateway
// event on its own goroutine, so unrelated invocations run fully in parallel.
func (b *Bot) Start(ctx context.Context, reg *dispatch.Registry, opts dispatch.Options) error {
	b.d = dispatch.New(reg, b, opts)
	defer b.d.Close()

	b.dg.Identify.Intents = discordgo.IntentsAllWithoutPrivileged | discordgo.IntentMessageContent
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onMessageCreate)
	b.dg.AddHandler(b.onMessageUpdate)
	b.dg.AddHandler(b.onInteractionCreate)
	b.dg.AddHandler(b.onEvent)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	log.Println("[INFO] Shutdown signal received. Cleaning up...")
	return nil
}

// Dispatcher returns the running dispatcher, nil before Start.
func (b *Bot) Dispatcher() *dispatch.Dispatcher { return b.d }

// onReady announces the session and publishes the command set globally.
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("[INFO] Logged in as %s", r.User.Username)
	if err := b.RegisterCommands(context.Background(), b.d.Registry()); err != nil {
		log.Printf("[ERR] Failed to register application commands: %v", err)
	}
	log.Printf("[INFO] ✅ Bot %s is running.", r.User.Username)
}

// onEvent is the raw-event side channel, independent of command dispatch.
func (b *Bot) onEvent(s *discordgo.Session, e *discordgo.Event) {
	if e.Type == "" {
		return
	}
	b.d.EmitEvent(strings.ToLower(e.Type), e)
}

// onMessageCreate forwards fresh messages as potential prefix invocations.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}
	b.d.HandleEvent(context.Background(), &dispatch.Event{
		Kind:       dispatch.EventMessageCreate,
		MessageID:  m.ID,
		ChannelID:  m.ChannelID,
		AuthorID:   m.Author.ID,
		AuthorName: m.Author.Username,
		Content:    m.Content,
		Raw:        m,
	})
}

// onMessageUpdate forwards edits. Discord also fires this for embed-only
// updates without content or author; those can never re-trigger a command.
func (b *Bot) onMessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Content == "" {
		return
	}
	b.d.HandleEvent(context.Background(), &dispatch.Event{
		Kind:       dispatch.EventMessageUpdate,
		MessageID:  m.ID,
		ChannelID:  m.ChannelID,
		AuthorID:   m.Author.ID,
		AuthorName: m.Author.Username,
		Content:    m.Content,
		Raw:        m,
	})
}

// onInteractionCreate forwards slash command calls with their pre-typed
// option values.
func (b *Bot) onInteractionCreate(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	if ic.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := ic.ApplicationCommandData()

	user := resolveUser(ic)
	opts := make(map[string]any, len(data.Options))
	for _, o := range data.Options {
		switch o.Type {
		case discordgo.ApplicationCommandOptionString:
			opts[o.Name] = o.StringValue()
		case discordgo.ApplicationCommandOptionInteger:
			opts[o.Name] = o.IntValue()
		case discordgo.ApplicationCommandOptionNumber:
			opts[o.Name] = o.FloatValue()
		case discordgo.ApplicationCommandOptionBoolean:
			opts[o.Name] = o.BoolValue()
		default:
			opts[o.Name] = o.Value
		}
	}

	b.d.HandleEvent(context.Background(), &dispatch.Event{
		Kind:       dispatch.EventInteractionCreate,
		MessageID:  ic.ID,
		ChannelID:  ic.ChannelID,
		AuthorID:   user.ID,
		AuthorName: user.Username,
		Command:    data.Name,
		Options:    opts,
		Raw:        ic,
	})
}

// resolveUser retrieves the invoking user from an interaction, which carries
// a Member in guilds but a bare User in DMs.
func resolveUser(ic *discordgo.InteractionCreate) *discordgo.User {
	if ic.Member != nil && ic.Member.User != nil {
		return ic.Member.User
	}
	if ic.User != nil {
		return ic.User
	}
	return &discordgo.User{ID: "unknown", Username: "Unknown"}
}
