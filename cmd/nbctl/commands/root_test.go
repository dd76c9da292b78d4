package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "nbctl", cmd.Use)
	assert.Equal(t, "Provision VMs and maintain a NetBox inventory", cmd.Short)
}

func TestRoot_HasSubcommands(t *testing.T) {
	cmd := Root()

	expectedSubcommands := []string{
		"create-vm",
		"add-interface",
		"add-cable",
		"add-service",
		"find-device",
		"list-vms",
		"mark-upgraded",
		"update-vm-storage",
		"set-interface-vlans",
		"set-interface-vdc",
		"sync-interface-naming",
		"sync-primary-ip-dns",
		"sync-subnet-naming",
		"version",
		"completion",
	}

	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}

	for _, expected := range expectedSubcommands {
		assert.True(t, subcommands[expected], "Expected subcommand %s not found", expected)
	}
	assert.Len(t, cmd.Commands(), len(expectedSubcommands))
}

func TestRoot_PersistentFlags(t *testing.T) {
	cmd := Root()

	token := cmd.PersistentFlags().Lookup("token")
	require.NotNil(t, token)
	assert.Equal(t, "T", token.Shorthand)

	apiURL := cmd.PersistentFlags().Lookup("api-url")
	require.NotNil(t, apiURL)
	assert.Equal(t, "A", apiURL.Shorthand)

	format := cmd.PersistentFlags().Lookup("log-format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestRoot_PersistentFlagsBindGlobalOptions(t *testing.T) {
	cmd := Root()
	cmd.SetArgs([]string{"-T", "tok", "-A", "https://nb.example.net", "--timeout", "5s", "--log-format", "json", "version"})
	cmd.SetOut(&bytes.Buffer{})

	require.NoError(t, cmd.Execute())

	assert.Equal(t, "tok", global.Token)
	assert.Equal(t, "https://nb.example.net", global.APIURL)
	assert.Equal(t, 5*time.Second, global.Timeout)
	assert.Equal(t, "json", global.LogFormat)
}

func TestRoot_UnknownCommand(t *testing.T) {
	cmd := Root()
	cmd.SetArgs([]string{"create-cluster"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	assert.Error(t, cmd.Execute())
}
