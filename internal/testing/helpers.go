package testing

import (
	"context"
	"testing"
	"time"

	"github.com/imamik/nbctl/internal/config"
	"github.com/imamik/nbctl/internal/platform/netbox"
	"github.com/imamik/nbctl/internal/provisioning"
)

// TestContext returns a context with a reasonable timeout for tests.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// FastTimeouts returns timeouts with millisecond retry delays.
func FastTimeouts() *config.Timeouts {
	return &config.Timeouts{
		Request:           5 * time.Second,
		Rollback:          10 * time.Second,
		RetryMaxAttempts:  3,
		RetryInitialDelay: time.Millisecond,
	}
}

// DiscardObserver drops everything it receives.
type DiscardObserver struct{}

func (DiscardObserver) Printf(string, ...interface{}) {}

func (DiscardObserver) Event(provisioning.Event) {}

func (d DiscardObserver) WithFields(map[string]string) provisioning.Observer { return d }

// NewProvisioningContext returns a quiet provisioning context backed by inv.
func NewProvisioningContext(ctx context.Context, inv netbox.Inventory) *provisioning.Context {
	cfg := config.Default()
	cfg.Timeouts = FastTimeouts()
	return &provisioning.Context{
		Context:   ctx,
		Config:    cfg,
		Inventory: inv,
		Observer:  DiscardObserver{},
		Timeouts:  cfg.Timeouts,
		Metrics:   provisioning.NewMetrics(),
	}
}
