package discord

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/dispatchkit/pkg/dispatch"
)

func run(ctx context.Context, inv *dispatch.Invocation) error { return nil }

func TestCommandDefinitionSkipsPrefixOnly(t *testing.T) {
	def := commandDefinition(&dispatch.Command{
		Name:  "local",
		Kinds: dispatch.KindPrefix,
		Run:   run,
	})
	assert.Nil(t, def)
}

func TestCommandDefinitionMapsParameters(t *testing.T) {
	def := commandDefinition(&dispatch.Command{
		Name:        "plus",
		Description: "Add one",
		Kinds:       dispatch.KindPrefix | dispatch.KindSlash,
		Params: []dispatch.Parameter{
			{Name: "number", Type: dispatch.ParamUint, Required: true},
			{Name: "note", Description: "Optional note", Type: dispatch.ParamString},
		},
		Run: run,
	})
	require.NotNil(t, def)
	assert.Equal(t, "plus", def.Name)
	assert.Equal(t, "Add one", def.Description)
	require.Len(t, def.Options, 2)

	number := def.Options[0]
	assert.Equal(t, discordgo.ApplicationCommandOptionInteger, number.Type)
	assert.True(t, number.Required)
	require.NotNil(t, number.MinValue, "unsigned parameters carry a floor of zero")
	assert.Equal(t, float64(0), *number.MinValue)

	note := def.Options[1]
	assert.Equal(t, discordgo.ApplicationCommandOptionString, note.Type)
	assert.False(t, note.Required)
	assert.Nil(t, note.MinValue)
}

func TestCommandDefinitionFallbackDescriptions(t *testing.T) {
	def := commandDefinition(&dispatch.Command{
		Name:   "hello",
		Kinds:  dispatch.KindSlash,
		Params: []dispatch.Parameter{{Name: "who", Type: dispatch.ParamString}},
		Run:    run,
	})
	require.NotNil(t, def)
	assert.Equal(t, "hello", def.Description)
	assert.Equal(t, "who", def.Options[0].Description)
}

func TestOptionTypeMapping(t *testing.T) {
	assert.Equal(t, discordgo.ApplicationCommandOptionString, optionType(dispatch.ParamString))
	assert.Equal(t, discordgo.ApplicationCommandOptionInteger, optionType(dispatch.ParamInt))
	assert.Equal(t, discordgo.ApplicationCommandOptionInteger, optionType(dispatch.ParamUint))
	assert.Equal(t, discordgo.ApplicationCommandOptionNumber, optionType(dispatch.ParamFloat))
	assert.Equal(t, discordgo.ApplicationCommandOptionBoolean, optionType(dispatch.ParamBool))
}

func TestHashCommandStability(t *testing.T) {
	def := func() *discordgo.ApplicationCommand {
		return &discordgo.ApplicationCommand{
			Name:        "plus",
			Description: "Add one",
			Type:        discordgo.ChatApplicationCommand,
			Options: []*discordgo.ApplicationCommandOption{
				{Name: "number", Description: "number", Type: discordgo.ApplicationCommandOptionInteger, Required: true},
			},
		}
	}

	assert.Equal(t, hashCommand(def()), hashCommand(def()), "same definition, same hash")

	changed := def()
	changed.Description = "Add two"
	assert.NotEqual(t, hashCommand(def()), hashCommand(changed))

	reordered := def()
	reordered.Options = append(reordered.Options, &discordgo.ApplicationCommandOption{
		Name: "alpha", Description: "alpha", Type: discordgo.ApplicationCommandOptionString,
	})
	sameSet := def()
	sameSet.Options = append([]*discordgo.ApplicationCommandOption{{
		Name: "alpha", Description: "alpha", Type: discordgo.ApplicationCommandOptionString,
	}}, sameSet.Options...)
	assert.Equal(t, hashCommand(reordered), hashCommand(sameSet), "option order does not matter")
}

func TestCommandHashCacheRoundTrip(t *testing.T) {
	ds, err := datastore.New(filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	defer ds.Close()

	b := &Bot{store: ds}

	assert.Empty(t, b.loadCommandHashes(), "fresh store has no hashes")

	b.saveCommandHashes(map[string]string{"plus": "abc123", "minus": "def456"})
	loaded := b.loadCommandHashes()
	assert.Equal(t, map[string]string{"plus": "abc123", "minus": "def456"}, loaded)
}
