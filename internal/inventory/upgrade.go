package inventory

import (
	"context"
	"time"

	"github.com/imamik/nbctl/internal/platform/netbox"
	"github.com/imamik/nbctl/internal/ui"
)

// Upgrade stamp custom fields.
const (
	FieldLastUpgrade    = "last_upgrade"
	FieldLastUpgradeFW  = "last_upgrade_fw"
	FieldLastUpgradeApp = "last_upgrade_app"
)

// UpgradeOptions selects which stamps MarkUpgraded sets. With none of OS,
// Firmware and App set the OS stamp is used.
type UpgradeOptions struct {
	OS       bool
	Firmware bool
	App      bool
	// DryRun reports the changes without saving them.
	DryRun bool
	// Today overrides the current date.
	Today time.Time
}

func (o UpgradeOptions) fields() []string {
	var out []string
	if o.App {
		out = append(out, FieldLastUpgradeApp)
	}
	if o.Firmware {
		out = append(out, FieldLastUpgradeFW)
	}
	if o.OS || !(o.App || o.Firmware) {
		out = append(out, FieldLastUpgrade)
	}
	return out
}

// MarkUpgraded stamps today's date into the upgrade fields of the VM or
// device called host. Fields already holding today's date are left alone.
func (m *Manager) MarkUpgraded(ctx context.Context, host string, opts UpgradeOptions) ([]ui.Change, error) {
	h, err := m.ResolveHost(ctx, host)
	if err != nil {
		return nil, err
	}
	today := opts.Today
	if today.IsZero() {
		today = time.Now()
	}
	date := today.Format("2006-01-02")

	current := h.CustomFields()
	update := netbox.CustomFields{}
	var changes []ui.Change
	for _, field := range opts.fields() {
		if old := current.String(field); old != date {
			changes = append(changes, ui.Change{Object: h.Name(), Field: field, Old: old, New: date})
			update[field] = date
		}
	}
	if len(changes) == 0 || opts.DryRun {
		return changes, nil
	}
	if err := m.updateCustomFields(ctx, h, update); err != nil {
		return nil, err
	}
	return changes, nil
}
