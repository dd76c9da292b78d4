package handlers

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-logr/logr"

	"github.com/imamik/nbctl/internal/config"
	"github.com/imamik/nbctl/internal/platform/netbox"
	"github.com/imamik/nbctl/internal/provisioning"
	nbtesting "github.com/imamik/nbctl/internal/testing"
	"github.com/imamik/nbctl/internal/ui"
)

// stubEnv points the factory variables at an in-memory inventory and
// captures stdout. Everything is restored when the test ends.
type stubEnv struct {
	fx      *nbtesting.Standard
	cfg     *config.Config
	out     *bytes.Buffer
	answer  ui.Answer
	journal *nbtesting.MockJournalSink
	tty     bool
}

func stub(t *testing.T) *stubEnv {
	t.Helper()
	origLoad := loadConfig
	origInv := newInventory
	origArchive := newJournalArchive
	origConfirmer := newConfirmer
	origInteractive := interactive
	origStdout := stdout
	t.Cleanup(func() {
		loadConfig = origLoad
		newInventory = origInv
		newJournalArchive = origArchive
		newConfirmer = origConfirmer
		interactive = origInteractive
		stdout = origStdout
	})

	env := &stubEnv{fx: nbtesting.NewStandard(), out: &bytes.Buffer{}, journal: &nbtesting.MockJournalSink{}}
	env.cfg = config.Default()
	env.cfg.APIURL = "https://netbox.example.net"
	env.cfg.Token = "secret"
	env.cfg.DefaultTenant = "acme"
	env.cfg.DefaultSite = "dc1"
	env.cfg.DefaultCluster = "c1"
	env.cfg.Timeouts = nbtesting.FastTimeouts()

	loadConfig = func(string) (*config.Config, error) { return env.cfg, nil }
	newInventory = func(*config.Config, logr.Logger) (netbox.Inventory, error) { return env.fx.Inventory, nil }
	newJournalArchive = func(context.Context, config.Journal) (provisioning.JournalSink, error) {
		return env.journal, nil
	}
	newConfirmer = func() ui.Confirmer { return env.answer }
	interactive = func(batch bool) bool { return env.tty && !batch }
	stdout = env.out
	return env
}
