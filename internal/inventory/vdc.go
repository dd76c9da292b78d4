package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/nbctl/internal/platform/netbox"
	"github.com/imamik/nbctl/internal/ui"
)

// SetInterfaceVDC adds the virtual device context vdc to every interface of
// device named iface. An empty vdc removes all contexts instead.
func (m *Manager) SetInterfaceVDC(ctx context.Context, device, iface, vdc string) ([]ui.Change, error) {
	dev, err := m.device(ctx, netbox.DeviceFilter{Name: device})
	if err != nil {
		return nil, err
	}
	ifaces, err := m.inv.ListDeviceInterfaces(ctx, netbox.InterfaceFilter{ParentID: dev.ID, Name: iface})
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces of %s: %w", device, err)
	}
	if len(ifaces) == 0 {
		return nil, fmt.Errorf("%w: interface %s on %s", ErrNotFound, iface, device)
	}

	vdcID := 0
	if vdc != "" {
		contexts, err := m.inv.ListVirtualDeviceContexts(ctx, dev.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list VDCs of %s: %w", device, err)
		}
		for _, c := range contexts {
			if c.Name == vdc {
				vdcID = c.ID
			}
		}
		if vdcID == 0 {
			return nil, fmt.Errorf("%w: VDC %s on %s", ErrNotFound, vdc, device)
		}
	}

	var changes []ui.Change
	for _, i := range ifaces {
		names := make([]string, 0, len(i.VDCs))
		ids := make([]int, 0, len(i.VDCs)+1)
		has := false
		for _, c := range i.VDCs {
			names = append(names, c.Name)
			ids = append(ids, c.ID)
			has = has || c.ID == vdcID
		}

		var next []int
		switch {
		case vdc == "" && len(ids) > 0:
			next = []int{}
		case vdc != "" && !has:
			next = append(ids, vdcID)
		default:
			continue
		}

		if _, err := m.inv.UpdateDeviceInterface(ctx, i.ID, netbox.InterfaceUpdate{VDCs: &next}); err != nil {
			return changes, fmt.Errorf("failed to update %s:%s: %w", device, i.Name, err)
		}
		newNames := vdc
		if vdc != "" && len(names) > 0 {
			newNames = strings.Join(names, ",") + "," + vdc
		}
		changes = append(changes, ui.Change{
			Object: device + ":" + i.Name,
			Field:  "vdcs",
			Old:    strings.Join(names, ","),
			New:    newNames,
		})
	}
	return changes, nil
}
