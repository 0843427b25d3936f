package config

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/titwsync/pkg/sync"
)

func sampleConfig() *Config {
	return &Config{
		Todoist: Todoist{
			APIKey: "secret-key",
			ProjectMap: map[string]string{
				"Work Errands":            "errands",
				"Programming.Open Source": "oss",
				"Taxes":                   "",
			},
			TagMap: map[string]string{"books": "reading"},
		},
		Taskwarrior: Taskwarrior{
			ProjectSync:    map[string]bool{"errands": true, "oss": true},
			DefaultProject: "inbox",
		},
		OnRemoteDelete: "complete",
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := sampleConfig()

	require.NoError(t, SaveTo(cfg, path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("config round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Todoist.APIKey)
	assert.Empty(t, cfg.OnRemoteDelete)
}

func TestAPIKeyEnvOverride(t *testing.T) {
	cfg := sampleConfig()
	assert.Equal(t, "secret-key", cfg.APIKey())

	t.Setenv("TODOIST_API_KEY", "env-key")
	assert.Equal(t, "env-key", cfg.APIKey())
}

func TestRules(t *testing.T) {
	rules := sampleConfig().Rules()

	assert.Equal(t, "oss", rules.Projects["Programming.Open Source"])
	assert.Equal(t, "reading", rules.Tags["books"])
	assert.Equal(t, "inbox", rules.DefaultProject)
	assert.True(t, rules.Enabled("errands"))
}

func TestOrphanPolicy(t *testing.T) {
	cfg := &Config{}
	policy, err := cfg.OrphanPolicy()
	require.NoError(t, err)
	assert.Equal(t, sync.OrphanIgnore, policy)

	cfg.OnRemoteDelete = "complete"
	policy, err = cfg.OrphanPolicy()
	require.NoError(t, err)
	assert.Equal(t, sync.OrphanComplete, policy)

	cfg.OnRemoteDelete = "archive"
	_, err = cfg.OrphanPolicy()
	require.Error(t, err)
}
