package discord

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"log"
	"sort"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/dispatchkit/pkg/dispatch"
)

const commandHashKey = "command_hashes"

// RegisterCommands publishes the registry's slash-capable commands as global
// application commands. It is idempotent: a SHA-1 of each definition is
// cached in the datastore, unchanged commands are skipped, and remote
// commands no longer in the registry are deleted. Republishing the same set
// is a no-op in effect.
func (b *Bot) RegisterCommands(ctx context.Context, reg *dispatch.Registry) error {
	appID, err := b.appID()
	if err != nil {
		return err
	}

	remote, err := b.dg.ApplicationCommands(appID, "")
	if err != nil {
		return fmt.Errorf("failed to list remote commands: %w", err)
	}
	remoteByName := make(map[string]*discordgo.ApplicationCommand, len(remote))
	for _, c := range remote {
		remoteByName[c.Name] = c
	}

	local := buildDefinitions(reg)
	cached := b.loadCommandHashes()

	b.deleteObsolete(ctx, appID, remoteByName, local, cached)
	b.upsertChanged(ctx, appID, local, cached)
	b.saveCommandHashes(cached)

	return nil
}

// buildDefinitions maps every slash-capable command to its platform
// definition.
func buildDefinitions(reg *dispatch.Registry) []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, c := range reg.Commands() {
		if def := commandDefinition(c); def != nil {
			defs = append(defs, def)
		}
	}
	return defs
}

// deleteObsolete removes remote commands that are no longer registered
// locally.
func (b *Bot) deleteObsolete(ctx context.Context, appID string, remote map[string]*discordgo.ApplicationCommand, local []*discordgo.ApplicationCommand, hashes map[string]string) {
	localNames := make(map[string]struct{}, len(local))
	for _, d := range local {
		localNames[d.Name] = struct{}{}
	}

	for name, rc := range remote {
		if _, exists := localNames[name]; exists {
			continue
		}
		log.Printf("[INFO] Deleting obsolete command: %s", name)
		_ = b.limiter.Wait(ctx)
		if err := b.dg.ApplicationCommandDelete(appID, "", rc.ID); err != nil {
			log.Printf("[ERR] Failed to delete %s: %v", name, err)
		} else {
			delete(hashes, name)
		}
	}
}

// upsertChanged creates or updates commands whose hash differs from the
// cached value, pacing the calls through the registration limiter.
func (b *Bot) upsertChanged(ctx context.Context, appID string, defs []*discordgo.ApplicationCommand, hashes map[string]string) {
	var changed []*discordgo.ApplicationCommand
	for _, d := range defs {
		if hashes[d.Name] != hashCommand(d) {
			changed = append(changed, d)
		}
	}
	if len(changed) == 0 {
		log.Println("[INFO] All application commands up to date")
		return
	}

	log.Printf("[INFO] Registering %d changed command(s)...", len(changed))
	for _, d := range changed {
		_ = b.limiter.Wait(ctx)
		if _, err := b.dg.ApplicationCommandCreate(appID, "", d); err != nil {
			log.Printf("[ERR] Failed to register %s: %v", d.Name, err)
		} else {
			log.Printf("[DONE] Registered: %s", d.Name)
			hashes[d.Name] = hashCommand(d)
		}
	}
}

// commandDefinition converts a registered command into an application
// command definition, or nil when the command is prefix-only.
func commandDefinition(c *dispatch.Command) *discordgo.ApplicationCommand {
	if c.Kinds&dispatch.KindSlash == 0 {
		return nil
	}
	def := &discordgo.ApplicationCommand{
		Name:        c.Name,
		Description: c.Description,
		Type:        discordgo.ChatApplicationCommand,
	}
	if def.Description == "" {
		def.Description = c.Name // Discord rejects empty descriptions
	}
	for _, p := range c.Params {
		opt := &discordgo.ApplicationCommandOption{
			Name:        p.Name,
			Description: p.Description,
			Type:        optionType(p.Type),
			Required:    p.Required,
		}
		if opt.Description == "" {
			opt.Description = p.Name
		}
		if p.Type == dispatch.ParamUint {
			zero := float64(0)
			opt.MinValue = &zero
		}
		def.Options = append(def.Options, opt)
	}
	return def
}

func optionType(t dispatch.ParamType) discordgo.ApplicationCommandOptionType {
	switch t {
	case dispatch.ParamInt, dispatch.ParamUint:
		return discordgo.ApplicationCommandOptionInteger
	case dispatch.ParamFloat:
		return discordgo.ApplicationCommandOptionNumber
	case dispatch.ParamBool:
		return discordgo.ApplicationCommandOptionBoolean
	default:
		return discordgo.ApplicationCommandOptionString
	}
}

// appID returns the application ID, fetching the bot user when the session
// state has not seen Ready yet.
func (b *Bot) appID() (string, error) {
	if id := b.dg.State.User.ID; id != "" {
		return id, nil
	}
	u, err := b.dg.User("@me")
	if err != nil {
		return "", fmt.Errorf("failed to fetch bot user: %w", err)
	}
	return u.ID, nil
}

// --- Command hash cache ---

func (b *Bot) loadCommandHashes() map[string]string {
	out := make(map[string]string)
	if b.store == nil {
		return out
	}
	v, ok := b.store.Get(commandHashKey)
	if !ok {
		return out
	}
	// The datastore round-trips values through JSON; decode the same way.
	data, err := json.Marshal(v)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(data, &out)
	return out
}

func (b *Bot) saveCommandHashes(hashes map[string]string) {
	if b.store == nil {
		return
	}
	b.store.Add(commandHashKey, hashes)
}

// --- Command hashing ---

// hashCommand returns a deterministic SHA-1 of a definition's stable fields,
// used to skip re-registration when nothing changed.
func hashCommand(c *discordgo.ApplicationCommand) string {
	stable := map[string]any{
		"name":        c.Name,
		"description": c.Description,
		"type":        c.Type,
	}
	if len(c.Options) > 0 {
		stable["options"] = normalizeOptions(c.Options)
	}
	data, _ := json.Marshal(stable)
	sum := sha1.Sum(data)
	return fmt.Sprintf("%x", sum)
}

func normalizeOptions(opts []*discordgo.ApplicationCommandOption) []map[string]any {
	out := make([]map[string]any, len(opts))
	for i, o := range opts {
		out[i] = map[string]any{
			"name":        o.Name,
			"description": o.Description,
			"type":        o.Type,
			"required":    o.Required,
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i]["name"].(string) < out[j]["name"].(string)
	})
	return out
}
