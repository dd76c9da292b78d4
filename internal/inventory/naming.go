package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/nbctl/internal/platform/netbox"
	"github.com/imamik/nbctl/internal/ui"
	"github.com/imamik/nbctl/internal/util/ptr"
)

// SyncInterfaceNaming sets the description of each addressed interface of
// device to the description of the prefix on its untagged VLAN. Changes
// are only saved with apply set.
func (m *Manager) SyncInterfaceNaming(ctx context.Context, device string, apply bool) ([]ui.Change, error) {
	dev, err := m.device(ctx, netbox.DeviceFilter{Name: device})
	if err != nil {
		return nil, err
	}
	ifaces, err := m.inv.ListDeviceInterfaces(ctx, netbox.InterfaceFilter{ParentID: dev.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces of %s: %w", device, err)
	}

	var changes []ui.Change
	for _, iface := range ifaces {
		name := device + ":" + iface.Name
		if iface.CountIPAddresses == 0 {
			m.warn("interface", "%s has no addresses, skipped", name)
			continue
		}
		if iface.UntaggedVLAN == nil {
			m.warn("interface", "%s has no untagged VLAN, skipped", name)
			continue
		}
		prefixes, err := m.inv.ListPrefixes(ctx, netbox.PrefixFilter{VLANID: iface.UntaggedVLAN.ID})
		if err != nil {
			return changes, fmt.Errorf("failed to list prefixes of VLAN %d: %w", iface.UntaggedVLAN.VID, err)
		}
		if len(prefixes) == 0 {
			return changes, fmt.Errorf("%w: no prefix on VLAN %d of %s", ErrNotFound, iface.UntaggedVLAN.VID, name)
		}
		if len(prefixes) > 1 {
			m.warn("prefix", "VLAN %d has %d prefixes, using %s", iface.UntaggedVLAN.VID, len(prefixes), prefixes[len(prefixes)-1].Prefix)
		}
		want := prefixes[len(prefixes)-1].Description
		if iface.Description == want {
			continue
		}
		changes = append(changes, ui.Change{Object: name, Field: "description", Old: iface.Description, New: want})
		if apply {
			if _, err := m.inv.UpdateDeviceInterface(ctx, iface.ID, netbox.InterfaceUpdate{Description: ptr.String(want)}); err != nil {
				return changes, fmt.Errorf("failed to update %s: %w", name, err)
			}
		}
	}
	return changes, nil
}

// SyncPrimaryIPDNS sets the DNS name of every VM's primary IPv4 address to
// the VM name. Changes are only saved with apply set.
func (m *Manager) SyncPrimaryIPDNS(ctx context.Context, apply bool) ([]ui.Change, error) {
	vms, err := m.inv.ListVirtualMachines(ctx, netbox.VirtualMachineFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list virtual machines: %w", err)
	}

	var changes []ui.Change
	for _, vm := range vms {
		if vm.PrimaryIP4 == nil {
			continue
		}
		ip, err := m.inv.GetIPAddress(ctx, vm.PrimaryIP4.ID)
		if err != nil {
			return changes, fmt.Errorf("failed to load primary address of %s: %w", vm.Name, err)
		}
		if ip == nil || ip.DNSName == vm.Name {
			continue
		}
		changes = append(changes, ui.Change{Object: vm.Name + " " + ip.Address, Field: "dns_name", Old: ip.DNSName, New: vm.Name})
		if apply {
			if _, err := m.inv.UpdateIPAddress(ctx, ip.ID, netbox.IPAddressUpdate{DNSName: ptr.String(vm.Name)}); err != nil {
				return changes, fmt.Errorf("failed to update %s: %w", ip.Address, err)
			}
		}
	}
	return changes, nil
}

// SubnetFilter restricts SyncSubnetNaming to VLANs of a site or tenant slug.
type SubnetFilter struct {
	Site   string
	Tenant string
}

func (f SubnetFilter) match(m *Manager, v netbox.VLAN) bool {
	if f.Site != "" {
		if v.Site == nil {
			m.warn("vlan", "VLAN %d %s has no site", v.VID, v.Name)
			return false
		}
		if !strings.EqualFold(f.Site, v.Site.Slug) {
			return false
		}
	}
	if f.Tenant != "" {
		if v.Tenant == nil {
			m.warn("vlan", "VLAN %d %s has no tenant", v.VID, v.Name)
			return false
		}
		if !strings.EqualFold(f.Tenant, v.Tenant.Slug) {
			return false
		}
	}
	return true
}

// SyncSubnetNaming sets the description of each VLAN's prefix to the VLAN
// name. Changes are only saved with apply set.
func (m *Manager) SyncSubnetNaming(ctx context.Context, filter SubnetFilter, apply bool) ([]ui.Change, error) {
	prefixes, err := m.inv.ListPrefixes(ctx, netbox.PrefixFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list prefixes: %w", err)
	}
	byVLAN := map[int][]netbox.Prefix{}
	for _, p := range prefixes {
		if p.VLAN == nil {
			m.warn("prefix", "prefix %s has no VLAN", p.Prefix)
			continue
		}
		byVLAN[p.VLAN.ID] = append(byVLAN[p.VLAN.ID], p)
	}

	vlans, err := m.inv.ListVLANs(ctx, netbox.VLANFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list VLANs: %w", err)
	}

	var changes []ui.Change
	for _, v := range vlans {
		if !filter.match(m, v) {
			continue
		}
		nets := byVLAN[v.ID]
		switch {
		case len(nets) == 0:
			m.warn("vlan", "no prefix on VLAN %d %s", v.VID, v.Name)
			continue
		case len(nets) > 1:
			m.warn("vlan", "VLAN %d %s has %d prefixes, skipped", v.VID, v.Name, len(nets))
			continue
		}
		p := nets[0]
		if p.Description == v.Name {
			continue
		}
		changes = append(changes, ui.Change{Object: p.Prefix, Field: "description", Old: p.Description, New: v.Name})
		if apply {
			if _, err := m.inv.UpdatePrefix(ctx, p.ID, netbox.PrefixUpdate{Description: ptr.String(v.Name)}); err != nil {
				return changes, fmt.Errorf("failed to update %s: %w", p.Prefix, err)
			}
		}
	}
	return changes, nil
}
