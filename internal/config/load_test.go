package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// isolateEnv points the user config directory at an empty temp dir and
// clears every variable Load reads.
func isolateEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	for _, v := range []string{
		EnvConfigFile, "NETBOX_API_URL", "NETBOX_TOKEN",
		"NETBOX_DEFAULT_TENANT", "NETBOX_DEFAULT_SITE", "NETBOX_DEFAULT_CLUSTER", "NETBOX_DEFAULT_ROLE_ID",
		"NBCTL_MAC_ATTEMPTS", "NBCTL_UUID_ATTEMPTS", "NBCTL_SLOT_MIN", "NBCTL_SLOT_MAX", "NBCTL_MAC_PREFIX",
		"NBCTL_JOURNAL_BUCKET", "NBCTL_JOURNAL_PREFIX", "NBCTL_PUSHGATEWAY_URL",
	} {
		t.Setenv(v, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultMACAttempts, cfg.Allocation.MACAttempts)
	assert.Equal(t, DefaultIdentifierAttempts, cfg.Allocation.IdentifierAttempts)
	assert.Equal(t, 1, cfg.Allocation.SlotMin)
	assert.Equal(t, 500, cfg.Allocation.SlotMax)
	assert.Equal(t, "52:54:00", cfg.Allocation.MACPrefix)
	assert.Equal(t, DefaultJournalPrefix, cfg.Journal.Prefix)
	assert.False(t, cfg.Journal.Enabled())
	assert.False(t, cfg.Metrics.Enabled())
	require.NotNil(t, cfg.Timeouts)
}

func TestLoad_FileThenEnv(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, `
api_url: https://netbox.example.com
token: file-token
default_tenant: ops
default_site: dc1
allocation:
  mac_attempts: 4
  slot_max: 64
journal:
  bucket: journals
`)
	t.Setenv("NETBOX_TOKEN", "env-token")
	t.Setenv("NBCTL_SLOT_MIN", "10")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://netbox.example.com", cfg.APIURL)
	assert.Equal(t, "env-token", cfg.Token, "env must win over file")
	assert.Equal(t, "ops", cfg.DefaultTenant)
	assert.Equal(t, "dc1", cfg.DefaultSite)
	assert.Equal(t, 4, cfg.Allocation.MACAttempts)
	assert.Equal(t, DefaultIdentifierAttempts, cfg.Allocation.IdentifierAttempts, "unset keys keep defaults")
	assert.Equal(t, 10, cfg.Allocation.SlotMin)
	assert.Equal(t, 64, cfg.Allocation.SlotMax)
	assert.True(t, cfg.Journal.Enabled())
}

func TestLoad_PathFromEnv(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, "default_cluster: c1\n")
	t.Setenv(EnvConfigFile, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "c1", cfg.DefaultCluster)
}

func TestLoad_UserConfigDir(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nbctl"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("role_id: 9\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.RoleID)
}

func TestLoad_Errors(t *testing.T) {
	isolateEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	_, err = Load(writeConfig(t, "allocation: [not, a, map]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal yaml")
}

func TestLoadFile(t *testing.T) {
	isolateEnv(t)
	cfg, err := LoadFile(writeConfig(t, "api_url: https://nb.local\n"))
	require.NoError(t, err)
	assert.Equal(t, "https://nb.local", cfg.APIURL)
	assert.Equal(t, DefaultSlotMax, cfg.Allocation.SlotMax)
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	cfg.APIURL = "https://from-file"
	cfg.DefaultSite = "dc1"

	cfg.ApplyOverrides(Overrides{Token: "flag", Site: "dc2", RoleID: 3})

	assert.Equal(t, "https://from-file", cfg.APIURL)
	assert.Equal(t, "flag", cfg.Token)
	assert.Equal(t, "dc2", cfg.DefaultSite)
	assert.Equal(t, 3, cfg.RoleID)
}
