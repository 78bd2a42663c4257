package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/dispatchkit/pkg/dispatch"
)

// The Bot is the dispatch.Gateway: command bodies and the error router reply
// through these two methods without ever importing discordgo.

// Reply answers an invocation. Slash calls get an interaction response (or a
// followup when the initial response was already used); prefix invocations
// get a channel message whose ID is returned so the edit tracker can update
// it in place later.
func (b *Bot) Reply(ctx context.Context, ev *dispatch.Event, content string) (string, error) {
	if ic, ok := ev.Raw.(*discordgo.InteractionCreate); ok {
		if err := respond(b.dg, ic, content); err != nil {
			return "", followup(b.dg, ic, content)
		}
		return "", nil
	}
	msg, err := b.dg.ChannelMessageSend(ev.ChannelID, content)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

// EditReply rewrites an earlier reply, used when a tracked message is edited
// and its command re-executed.
func (b *Bot) EditReply(ctx context.Context, ev *dispatch.Event, messageID, content string) error {
	_, err := b.dg.ChannelMessageEdit(ev.ChannelID, messageID, content)
	return err
}

// respond sends the initial message response to an interaction.
func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
}

// followup sends an additional message once the initial response is spent.
func followup(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{Content: content})
	return err
}
