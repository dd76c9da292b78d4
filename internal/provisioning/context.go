package provisioning

import (
	"context"

	"github.com/imamik/nbctl/internal/config"
	"github.com/imamik/nbctl/internal/platform/netbox"
)

// JournalSink stores a finished transaction journal and returns its location.
type JournalSink interface {
	Store(ctx context.Context, id string, data []byte) (string, error)
}

// Context wraps all dependencies needed to run a transaction.
type Context struct {
	context.Context
	Config    *config.Config
	Inventory netbox.Inventory
	Observer  Observer
	Timeouts  *config.Timeouts
	Metrics   *Metrics
	Journal   JournalSink
}

// NewContext creates a new provisioning context with a console observer.
func NewContext(ctx context.Context, cfg *config.Config, inv netbox.Inventory) *Context {
	timeouts := cfg.Timeouts
	if timeouts == nil {
		timeouts = config.LoadTimeouts()
	}
	return &Context{
		Context:   ctx,
		Config:    cfg,
		Inventory: inv,
		Observer:  NewConsoleObserver(),
		Timeouts:  timeouts,
	}
}
