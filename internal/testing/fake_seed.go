package testing

import "github.com/imamik/nbctl/internal/platform/netbox"

// AddTenant stores a tenant and returns it.
func (f *FakeInventory) AddTenant(name string) *netbox.Tenant {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &netbox.Tenant{ID: f.id(), Name: name, Slug: slug(name)}
	f.Tenants[t.ID] = t
	return t
}

// AddSite stores a site and returns it.
func (f *FakeInventory) AddSite(name string) *netbox.Site {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &netbox.Site{ID: f.id(), Name: name, Slug: slug(name)}
	f.Sites[s.ID] = s
	return s
}

// AddCluster stores a cluster and returns it.
func (f *FakeInventory) AddCluster(name string, site *netbox.Site) *netbox.Cluster {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &netbox.Cluster{ID: f.id(), Name: name}
	if site != nil {
		c.Site = &netbox.Ref{ID: site.ID, Name: site.Name, Slug: site.Slug}
	}
	f.Clusters[c.ID] = c
	return c
}

// AddPlatform stores a platform and returns it.
func (f *FakeInventory) AddPlatform(slugName string) *netbox.Platform {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &netbox.Platform{ID: f.id(), Name: slugName, Slug: slugName}
	f.Platforms[p.ID] = p
	return p
}

// AddVLAN stores a VLAN and returns it.
func (f *FakeInventory) AddVLAN(vid int, name string, site *netbox.Site, tenant *netbox.Tenant) *netbox.VLAN {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := &netbox.VLAN{ID: f.id(), VID: vid, Name: name}
	if site != nil {
		v.Site = &netbox.Ref{ID: site.ID, Name: site.Name, Slug: site.Slug}
	}
	if tenant != nil {
		v.Tenant = &netbox.Ref{ID: tenant.ID, Name: tenant.Name, Slug: tenant.Slug}
	}
	f.VLANs[v.ID] = v
	return v
}

// AddPrefix stores a prefix, optionally bound to a VLAN, and returns it.
func (f *FakeInventory) AddPrefix(cidr string, vlan *netbox.VLAN, description string) *netbox.Prefix {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &netbox.Prefix{ID: f.id(), Prefix: cidr, Description: description}
	if vlan != nil {
		p.VLAN = &netbox.NestedVLAN{ID: vlan.ID, VID: vlan.VID, Name: vlan.Name}
		p.Site = vlan.Site
		p.Tenant = vlan.Tenant
	}
	f.Prefixes[p.ID] = p
	return p
}

// AddIP stores an address record and returns it.
func (f *FakeInventory) AddIP(address, dnsName string) *netbox.IPAddress {
	f.mu.Lock()
	defer f.mu.Unlock()
	ip := &netbox.IPAddress{ID: f.id(), Address: address, DNSName: dnsName, Status: netbox.Choice{Value: netbox.StatusActive}}
	f.IPs[ip.ID] = ip
	return ip
}

// AddDevice stores a device with the given role and returns it.
func (f *FakeInventory) AddDevice(name, role string, site *netbox.Site) *netbox.Device {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := &netbox.Device{ID: f.id(), Name: name, CustomFields: netbox.CustomFields{}}
	if role != "" {
		d.Role = &netbox.Ref{ID: f.id(), Name: role, Slug: slug(role)}
	}
	if site != nil {
		d.Site = &netbox.Ref{ID: site.ID, Name: site.Name, Slug: site.Slug}
	}
	f.Devices[d.ID] = d
	return d
}

// AddVM stores a VM in cluster and returns it.
func (f *FakeInventory) AddVM(name string, cluster *netbox.Cluster, status string, fields netbox.CustomFields) *netbox.VirtualMachine {
	f.mu.Lock()
	defer f.mu.Unlock()
	vm := &netbox.VirtualMachine{ID: f.id(), Name: name, Status: netbox.Choice{Value: status}, CustomFields: copyFields(fields)}
	if cluster != nil {
		vm.Cluster = &netbox.Ref{ID: cluster.ID, Name: cluster.Name}
	}
	f.VMs[vm.ID] = vm
	return vm
}

// AddVMInterface stores an interface of vm and returns it.
func (f *FakeInventory) AddVMInterface(vm *netbox.VirtualMachine, name, mac string) *netbox.Interface {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := &netbox.Interface{ID: f.id(), Name: name, MACAddress: mac, VirtualMachine: &netbox.Ref{ID: vm.ID, Name: vm.Name}}
	f.VMInterfaces[i.ID] = i
	return i
}

// AddDeviceInterface stores an interface of d and returns it.
func (f *FakeInventory) AddDeviceInterface(d *netbox.Device, name string) *netbox.Interface {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := &netbox.Interface{ID: f.id(), Name: name, Device: &netbox.Ref{ID: d.ID, Name: d.Name}}
	f.DeviceInterfaces[i.ID] = i
	return i
}

// AddVDC stores a virtual device context of d and returns it.
func (f *FakeInventory) AddVDC(d *netbox.Device, name string) *netbox.VirtualDeviceContext {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := &netbox.VirtualDeviceContext{ID: f.id(), Name: name, Device: &netbox.Ref{ID: d.ID, Name: d.Name}}
	f.VDCs[v.ID] = v
	return v
}

// AddService stores a service and returns it. Exactly one of vm and device should be set.
func (f *FakeInventory) AddService(name, proto string, port int, vm *netbox.VirtualMachine, device *netbox.Device) *netbox.Service {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &netbox.Service{ID: f.id(), Name: name, Protocol: &netbox.Choice{Value: proto}, Ports: []int{port}}
	if vm != nil {
		s.VirtualMachine = &netbox.Ref{ID: vm.ID, Name: vm.Name}
	}
	if device != nil {
		s.Device = &netbox.Ref{ID: device.ID, Name: device.Name}
	}
	f.Services[s.ID] = s
	return s
}

// AssignIP binds ip to iface like an address edit in the UI would.
func (f *FakeInventory) AssignIP(ip *netbox.IPAddress, iface *netbox.Interface) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assign(f.IPs[ip.ID], iface.ContentType(), iface.ID)
}

// SetPrimaryIP4 marks ip as the primary address of vm.
func (f *FakeInventory) SetPrimaryIP4(vm *netbox.VirtualMachine, ip *netbox.IPAddress) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.VMs[vm.ID].PrimaryIP4 = &netbox.NestedIP{ID: ip.ID, Address: ip.Address}
}

func slug(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+'a'-'A')
		case r == ' ' || r == '_':
			out = append(out, '-')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
