package testing

import (
	"context"
	"fmt"

	"github.com/imamik/nbctl/internal/platform/netbox"
	"github.com/imamik/nbctl/internal/util/ipnet"
)

// ListPrefixes implements netbox.IPAMManager.
func (f *FakeInventory) ListPrefixes(_ context.Context, filter netbox.PrefixFilter) ([]netbox.Prefix, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListPrefixes"); err != nil {
		return nil, err
	}
	var out []netbox.Prefix
	for _, id := range sortedIDs(f.Prefixes) {
		p := f.Prefixes[id]
		switch {
		case filter.Prefix != "" && p.Prefix != filter.Prefix:
			continue
		case filter.VLANVID != 0 && (p.VLAN == nil || p.VLAN.VID != filter.VLANVID):
			continue
		case filter.VLANID != 0 && (p.VLAN == nil || p.VLAN.ID != filter.VLANID):
			continue
		case filter.SiteID != 0 && (p.Site == nil || p.Site.ID != filter.SiteID):
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

// UpdatePrefix implements netbox.IPAMManager.
func (f *FakeInventory) UpdatePrefix(_ context.Context, id int, req netbox.PrefixUpdate) (*netbox.Prefix, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdatePrefix"); err != nil {
		return nil, err
	}
	p, ok := f.Prefixes[id]
	if !ok {
		return nil, notFound(netbox.KindPrefix, id)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	out := *p
	return &out, nil
}

// firstAvailable returns the lowest host of the prefix without an address
// record, or "" when the prefix is full.
func (f *FakeInventory) firstAvailable(prefixID int) (string, error) {
	p, ok := f.Prefixes[prefixID]
	if !ok {
		return "", notFound(netbox.KindPrefix, prefixID)
	}
	prefix, err := ipnet.ParsePrefix(p.Prefix)
	if err != nil {
		return "", err
	}
	taken := map[string]bool{}
	for _, ip := range f.IPs {
		taken[hostOf(ip.Address)] = true
	}
	for n := 1; uint64(n) <= prefix.UsableHosts(); n++ {
		host, err := prefix.Host(n)
		if err != nil {
			return "", err
		}
		if !taken[host.String()] {
			return prefix.WithLength(host), nil
		}
	}
	return "", nil
}

// AllocateIP implements netbox.IPAMManager.
func (f *FakeInventory) AllocateIP(_ context.Context, prefixID int, req netbox.IPAddressCreate) (*netbox.IPAddress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("AllocateIP"); err != nil {
		return nil, err
	}
	free, err := f.firstAvailable(prefixID)
	if err != nil {
		return nil, err
	}
	if free == "" {
		return nil, &netbox.APIError{StatusCode: 409, Method: "POST", Path: fmt.Sprintf("/api/ipam/prefixes/%d/available-ips/", prefixID), Detail: "Insufficient space is available to accommodate the requested number of IPs."}
	}
	req.Address = free
	ip := f.newIP(req)
	out := *ip
	return &out, nil
}

// CreateIPAddress implements netbox.IPAMManager.
func (f *FakeInventory) CreateIPAddress(_ context.Context, req netbox.IPAddressCreate) (*netbox.IPAddress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateIPAddress"); err != nil {
		return nil, err
	}
	if _, err := ipnet.HostAddress(req.Address); err != nil {
		return nil, rejected(netbox.KindIPAddress, "address", err.Error())
	}
	ip := f.newIP(req)
	out := *ip
	return &out, nil
}

func (f *FakeInventory) newIP(req netbox.IPAddressCreate) *netbox.IPAddress {
	status := req.Status
	if status == "" {
		status = netbox.StatusActive
	}
	ip := &netbox.IPAddress{
		ID:          f.id(),
		Address:     req.Address,
		DNSName:     req.DNSName,
		Status:      netbox.Choice{Value: status},
		Description: req.Description,
	}
	if req.Tenant != nil {
		ip.Tenant = f.tenantRef(*req.Tenant)
	}
	f.IPs[ip.ID] = ip
	if req.AssignedObjectID != nil {
		f.assign(ip, req.AssignedObjectType, *req.AssignedObjectID)
	}
	return ip
}

// assign binds ip to an interface. It must be called with mu held.
func (f *FakeInventory) assign(ip *netbox.IPAddress, contentType string, id int) {
	ip.AssignedObjectType = contentType
	ip.AssignedObjectID = &id
	var iface *netbox.Interface
	switch contentType {
	case netbox.ContentTypeVMInterface:
		iface = f.VMInterfaces[id]
	case netbox.ContentTypeDeviceInterface:
		iface = f.DeviceInterfaces[id]
	}
	if iface == nil {
		ip.AssignedObject = nil
		return
	}
	ip.AssignedObject = &netbox.AssignedObject{ID: iface.ID, Name: iface.Name, VirtualMachine: iface.VirtualMachine, Device: iface.Device}
	iface.CountIPAddresses++
}

// GetIPAddress implements netbox.IPAMManager.
func (f *FakeInventory) GetIPAddress(_ context.Context, id int) (*netbox.IPAddress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetIPAddress"); err != nil {
		return nil, err
	}
	ip, ok := f.IPs[id]
	if !ok {
		return nil, nil
	}
	out := *ip
	return &out, nil
}

// ListIPAddresses implements netbox.IPAMManager.
func (f *FakeInventory) ListIPAddresses(_ context.Context, filter netbox.IPAddressFilter) ([]netbox.IPAddress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListIPAddresses"); err != nil {
		return nil, err
	}
	var out []netbox.IPAddress
	for _, id := range sortedIDs(f.IPs) {
		ip := f.IPs[id]
		assigned := 0
		if ip.AssignedObjectID != nil {
			assigned = *ip.AssignedObjectID
		}
		switch {
		case filter.Address != "" && hostOf(ip.Address) != hostOf(filter.Address):
			continue
		case filter.DNSName != "" && ip.DNSName != filter.DNSName:
			continue
		case filter.InterfaceID != 0 && (ip.AssignedObjectType != netbox.ContentTypeDeviceInterface || assigned != filter.InterfaceID):
			continue
		case filter.VMInterfaceID != 0 && (ip.AssignedObjectType != netbox.ContentTypeVMInterface || assigned != filter.VMInterfaceID):
			continue
		}
		out = append(out, *ip)
	}
	return out, nil
}

// UpdateIPAddress implements netbox.IPAMManager.
func (f *FakeInventory) UpdateIPAddress(_ context.Context, id int, req netbox.IPAddressUpdate) (*netbox.IPAddress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateIPAddress"); err != nil {
		return nil, err
	}
	ip, ok := f.IPs[id]
	if !ok {
		return nil, notFound(netbox.KindIPAddress, id)
	}
	if req.DNSName != nil {
		ip.DNSName = *req.DNSName
	}
	if req.AssignedObjectID != nil {
		contentType := ip.AssignedObjectType
		if req.AssignedObjectType != nil {
			contentType = *req.AssignedObjectType
		}
		f.assign(ip, contentType, *req.AssignedObjectID)
	}
	out := *ip
	return &out, nil
}

// ListVLANs implements netbox.IPAMManager.
func (f *FakeInventory) ListVLANs(_ context.Context, filter netbox.VLANFilter) ([]netbox.VLAN, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListVLANs"); err != nil {
		return nil, err
	}
	var out []netbox.VLAN
	for _, id := range sortedIDs(f.VLANs) {
		v := f.VLANs[id]
		if filter.VID != 0 && v.VID != filter.VID {
			continue
		}
		if filter.Site != "" && (v.Site == nil || v.Site.Slug != filter.Site) {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

// ListServices implements netbox.IPAMManager.
func (f *FakeInventory) ListServices(_ context.Context, filter netbox.ServiceFilter) ([]netbox.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListServices"); err != nil {
		return nil, err
	}
	var out []netbox.Service
	for _, id := range sortedIDs(f.Services) {
		s := f.Services[id]
		if filter.Name != "" && s.Name != filter.Name {
			continue
		}
		if filter.Protocol != "" && (s.Protocol == nil || s.Protocol.Value != filter.Protocol) {
			continue
		}
		if filter.Port != 0 && !containsInt(s.Ports, filter.Port) {
			continue
		}
		c := *s
		c.Ports = append([]int{}, s.Ports...)
		out = append(out, c)
	}
	return out, nil
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// CreateService implements netbox.IPAMManager.
func (f *FakeInventory) CreateService(_ context.Context, req netbox.ServiceCreate) (*netbox.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateService"); err != nil {
		return nil, err
	}
	s := &netbox.Service{ID: f.id(), Name: req.Name, Protocol: &netbox.Choice{Value: req.Protocol}, Ports: append([]int{}, req.Ports...)}
	switch {
	case req.VirtualMachine != nil:
		vm, ok := f.VMs[*req.VirtualMachine]
		if !ok {
			return nil, rejected(netbox.KindService, "virtual_machine", "Related object not found.")
		}
		s.VirtualMachine = &netbox.Ref{ID: vm.ID, Name: vm.Name}
	case req.Device != nil:
		d, ok := f.Devices[*req.Device]
		if !ok {
			return nil, rejected(netbox.KindService, "device", "Related object not found.")
		}
		s.Device = &netbox.Ref{ID: d.ID, Name: d.Name}
	default:
		return nil, rejected(netbox.KindService, "parent", "A service must be assigned to a device or virtual machine.")
	}
	f.Services[s.ID] = s
	out := *s
	return &out, nil
}
