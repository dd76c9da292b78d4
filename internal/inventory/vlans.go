package inventory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/imamik/nbctl/internal/platform/netbox"
	"github.com/imamik/nbctl/internal/util/ptr"
	"github.com/imamik/nbctl/internal/util/vlanlist"
)

// ModeTagged is the 802.1Q mode of trunk interfaces.
const ModeTagged = "tagged"

// SetInterfaceVLANs puts a device interface in tagged mode carrying exactly
// the site VLANs listed in vlans ("1,2,5-10"). Listed VIDs the site does not
// have are reported and skipped.
func (m *Manager) SetInterfaceVLANs(ctx context.Context, site, device, iface, vlans string) (*netbox.Interface, error) {
	vids, err := vlanlist.Parse(vlans)
	if err != nil {
		return nil, err
	}
	dev, err := m.device(ctx, netbox.DeviceFilter{Name: device, Site: site})
	if err != nil {
		return nil, err
	}
	target, err := m.Interface(ctx, &Host{Device: dev}, iface)
	if err != nil {
		return nil, err
	}

	siteVLANs, err := m.inv.ListVLANs(ctx, netbox.VLANFilter{Site: site})
	if err != nil {
		return nil, fmt.Errorf("failed to list VLANs of site %s: %w", site, err)
	}
	byVID := make(map[int]netbox.VLAN, len(siteVLANs))
	for _, v := range siteVLANs {
		byVID[v.VID] = v
	}

	ids := []int{}
	var missing []string
	for _, vid := range vids {
		v, ok := byVID[vid]
		if !ok {
			missing = append(missing, strconv.Itoa(vid))
			continue
		}
		ids = append(ids, v.ID)
	}
	if len(missing) > 0 {
		m.warn("vlans", "site %s has no VLAN %s, skipped", site, strings.Join(missing, ", "))
	}
	sort.Ints(ids)

	updated, err := m.inv.UpdateDeviceInterface(ctx, target.ID, netbox.InterfaceUpdate{
		Mode:        ptr.String(ModeTagged),
		TaggedVLANs: &ids,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update %s:%s: %w", device, iface, err)
	}
	return updated, nil
}
