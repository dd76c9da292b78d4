package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/nbctl/internal/inventory"
	"github.com/imamik/nbctl/internal/ui"
)

// SyncInterfaceNaming handles the sync-interface-naming command. Nothing
// is written unless apply is set.
func SyncInterfaceNaming(ctx context.Context, opts Options, device string, apply bool) error {
	return runSync(ctx, opts, apply, func(m *inventory.Manager) ([]ui.Change, error) {
		return m.SyncInterfaceNaming(ctx, device, apply)
	})
}

// SyncPrimaryIPDNS handles the sync-primary-ip-dns command.
func SyncPrimaryIPDNS(ctx context.Context, opts Options, apply bool) error {
	return runSync(ctx, opts, apply, func(m *inventory.Manager) ([]ui.Change, error) {
		return m.SyncPrimaryIPDNS(ctx, apply)
	})
}

// SyncSubnetNaming handles the sync-subnet-naming command.
func SyncSubnetNaming(ctx context.Context, opts Options, filter inventory.SubnetFilter, apply bool) error {
	return runSync(ctx, opts, apply, func(m *inventory.Manager) ([]ui.Change, error) {
		return m.SyncSubnetNaming(ctx, filter, apply)
	})
}

// runSync prints the changes of a sync task, including those made before
// a failure.
func runSync(ctx context.Context, opts Options, apply bool, task func(*inventory.Manager) ([]ui.Change, error)) error {
	s, err := newSession(ctx, opts)
	if err != nil {
		return err
	}
	changes, err := task(s.manager())
	fmt.Fprint(stdout, ui.Changes(changes, !apply))
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}
