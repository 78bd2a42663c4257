package config

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/dispatchkit/pkg/dispatch"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "test-token")
	for _, name := range []string{"COMMAND_PREFIX", "EDIT_TRACK_TIMESPAN", "STORAGE_PATH", "OWNER_IDS", "SKIP_CHECKS_FOR_OWNERS"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-token", cfg.DiscordToken)
	assert.Equal(t, "--", cfg.Prefix)
	assert.Equal(t, time.Hour, cfg.EditTimespan)
	assert.Equal(t, "datastore.json", cfg.StoragePath)
	assert.Empty(t, cfg.OwnerIDs)
	assert.False(t, cfg.SkipChecksForOwners)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "test-token")
	t.Setenv("COMMAND_PREFIX", "!")
	t.Setenv("EDIT_TRACK_TIMESPAN", "15m")
	t.Setenv("OWNER_IDS", "1,2,3")
	t.Setenv("SKIP_CHECKS_FOR_OWNERS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "!", cfg.Prefix)
	assert.Equal(t, 15*time.Minute, cfg.EditTimespan)
	assert.Equal(t, []string{"1", "2", "3"}, cfg.OwnerIDs)
	assert.True(t, cfg.SkipChecksForOwners)
}

func TestLoadMissingTokenIsSetupError(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "placeholder") // register restore, then drop it
	os.Unsetenv("DISCORD_TOKEN")

	_, err := Load()
	require.Error(t, err)

	var setupErr *dispatch.SetupError
	assert.True(t, errors.As(err, &setupErr))
}

func TestLoadBadDurationIsSetupError(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "test-token")
	t.Setenv("EDIT_TRACK_TIMESPAN", "soon")

	_, err := Load()
	require.Error(t, err)

	var setupErr *dispatch.SetupError
	assert.True(t, errors.As(err, &setupErr))
}
