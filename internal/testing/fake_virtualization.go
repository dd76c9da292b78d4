package testing

import (
	"context"
	"strings"

	"github.com/imamik/nbctl/internal/platform/netbox"
)

// GetVirtualMachine implements netbox.VirtualizationManager.
func (f *FakeInventory) GetVirtualMachine(_ context.Context, name string) (*netbox.VirtualMachine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetVirtualMachine"); err != nil {
		return nil, err
	}
	return single(f.filterVMs(netbox.VirtualMachineFilter{Name: name}))
}

// GetVirtualMachineByID implements netbox.VirtualizationManager.
func (f *FakeInventory) GetVirtualMachineByID(_ context.Context, id int) (*netbox.VirtualMachine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetVirtualMachineByID"); err != nil {
		return nil, err
	}
	vm, ok := f.VMs[id]
	if !ok {
		return nil, nil
	}
	c := copyVM(vm)
	return &c, nil
}

// ListVirtualMachines implements netbox.VirtualizationManager.
func (f *FakeInventory) ListVirtualMachines(_ context.Context, filter netbox.VirtualMachineFilter) ([]netbox.VirtualMachine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListVirtualMachines"); err != nil {
		return nil, err
	}
	return f.filterVMs(filter), nil
}

func (f *FakeInventory) filterVMs(filter netbox.VirtualMachineFilter) []netbox.VirtualMachine {
	var out []netbox.VirtualMachine
	for _, id := range sortedIDs(f.VMs) {
		vm := f.VMs[id]
		switch {
		case filter.Name != "" && vm.Name != filter.Name:
			continue
		case filter.ClusterID != 0 && (vm.Cluster == nil || vm.Cluster.ID != filter.ClusterID):
			continue
		case filter.Status != "" && vm.Status.Value != filter.Status:
			continue
		case filter.UUID != "" && vm.CustomFields.String("uuid") != filter.UUID:
			continue
		case filter.UUIDPrefix != "" && !strings.HasPrefix(vm.CustomFields.String("uuid"), filter.UUIDPrefix):
			continue
		}
		if filter.StorageID != 0 {
			if slot, ok := vm.CustomFields.Int("storage_id"); !ok || slot != filter.StorageID {
				continue
			}
		}
		out = append(out, copyVM(vm))
	}
	return out
}

// CreateVirtualMachine implements netbox.VirtualizationManager.
func (f *FakeInventory) CreateVirtualMachine(_ context.Context, req netbox.VirtualMachineCreate) (*netbox.VirtualMachine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateVirtualMachine"); err != nil {
		return nil, err
	}
	if len(f.filterVMs(netbox.VirtualMachineFilter{Name: req.Name})) > 0 {
		return nil, rejected(netbox.KindVirtualMachine, "name", "Virtual machine with this name already exists.")
	}
	cluster, ok := f.Clusters[req.Cluster]
	if !ok {
		return nil, rejected(netbox.KindVirtualMachine, "cluster", "Related object not found.")
	}
	vm := &netbox.VirtualMachine{
		ID:           f.id(),
		Name:         req.Name,
		Status:       netbox.Choice{Value: req.Status},
		Cluster:      &netbox.Ref{ID: cluster.ID, Name: cluster.Name},
		VCPUs:        float64(req.VCPUs),
		Memory:       req.Memory,
		Disk:         req.Disk,
		CustomFields: copyFields(req.CustomFields),
	}
	if req.Tenant != nil {
		vm.Tenant = f.tenantRef(*req.Tenant)
	}
	if req.Site != nil {
		if s, ok := f.Sites[*req.Site]; ok {
			vm.Site = &netbox.Ref{ID: s.ID, Name: s.Name, Slug: s.Slug}
		}
	}
	if req.Platform != nil {
		if p, ok := f.Platforms[*req.Platform]; ok {
			vm.Platform = &netbox.Ref{ID: p.ID, Name: p.Name, Slug: p.Slug}
		}
	}
	if req.Role != nil {
		vm.Role = &netbox.Ref{ID: *req.Role}
	}
	f.VMs[vm.ID] = vm
	c := copyVM(vm)
	return &c, nil
}

func (f *FakeInventory) tenantRef(id int) *netbox.Ref {
	if t, ok := f.Tenants[id]; ok {
		return &netbox.Ref{ID: t.ID, Name: t.Name, Slug: t.Slug}
	}
	return &netbox.Ref{ID: id}
}

// UpdateVirtualMachine implements netbox.VirtualizationManager.
func (f *FakeInventory) UpdateVirtualMachine(_ context.Context, id int, req netbox.VirtualMachineUpdate) (*netbox.VirtualMachine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateVirtualMachine"); err != nil {
		return nil, err
	}
	vm, ok := f.VMs[id]
	if !ok {
		return nil, notFound(netbox.KindVirtualMachine, id)
	}
	if req.Status != nil {
		vm.Status = netbox.Choice{Value: *req.Status}
	}
	if req.PrimaryIP4 != nil {
		ip, ok := f.IPs[*req.PrimaryIP4]
		if !ok {
			return nil, rejected(netbox.KindVirtualMachine, "primary_ip4", "Related object not found.")
		}
		vm.PrimaryIP4 = &netbox.NestedIP{ID: ip.ID, Address: ip.Address}
	}
	for k, v := range req.CustomFields {
		if vm.CustomFields == nil {
			vm.CustomFields = netbox.CustomFields{}
		}
		vm.CustomFields[k] = v
	}
	c := copyVM(vm)
	return &c, nil
}

// GetCluster implements netbox.VirtualizationManager.
func (f *FakeInventory) GetCluster(_ context.Context, name string) (*netbox.Cluster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetCluster"); err != nil {
		return nil, err
	}
	var out []netbox.Cluster
	for _, id := range sortedIDs(f.Clusters) {
		if c := f.Clusters[id]; c.Name == name {
			out = append(out, *c)
		}
	}
	return single(out)
}

// ListVMInterfaces implements netbox.VirtualizationManager.
func (f *FakeInventory) ListVMInterfaces(_ context.Context, filter netbox.InterfaceFilter) ([]netbox.Interface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListVMInterfaces"); err != nil {
		return nil, err
	}
	return filterInterfaces(f.VMInterfaces, filter), nil
}

func filterInterfaces(store map[int]*netbox.Interface, filter netbox.InterfaceFilter) []netbox.Interface {
	var out []netbox.Interface
	for _, id := range sortedIDs(store) {
		i := store[id]
		parent := i.VirtualMachine
		if parent == nil {
			parent = i.Device
		}
		switch {
		case filter.ParentID != 0 && (parent == nil || parent.ID != filter.ParentID):
			continue
		case filter.Name != "" && i.Name != filter.Name:
			continue
		case filter.MACAddress != "" && !strings.EqualFold(i.MACAddress, filter.MACAddress):
			continue
		}
		out = append(out, copyInterface(i))
	}
	return out
}

// CreateVMInterface implements netbox.VirtualizationManager.
func (f *FakeInventory) CreateVMInterface(_ context.Context, req netbox.InterfaceCreate) (*netbox.Interface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateVMInterface"); err != nil {
		return nil, err
	}
	if req.VirtualMachine == nil {
		return nil, rejected(netbox.KindVMInterface, "virtual_machine", "This field is required.")
	}
	vm, ok := f.VMs[*req.VirtualMachine]
	if !ok {
		return nil, rejected(netbox.KindVMInterface, "virtual_machine", "Related object not found.")
	}
	i := f.newInterface(req)
	i.VirtualMachine = &netbox.Ref{ID: vm.ID, Name: vm.Name}
	f.VMInterfaces[i.ID] = i
	c := copyInterface(i)
	return &c, nil
}

func (f *FakeInventory) newInterface(req netbox.InterfaceCreate) *netbox.Interface {
	i := &netbox.Interface{
		ID:          f.id(),
		Name:        req.Name,
		MACAddress:  strings.ToUpper(req.MACAddress),
		Description: req.Description,
	}
	if req.Type != "" {
		i.Type = &netbox.Choice{Value: req.Type}
	}
	if req.Mode != "" {
		i.Mode = &netbox.Choice{Value: req.Mode}
	}
	if req.UntaggedVLAN != nil {
		if v, ok := f.VLANs[*req.UntaggedVLAN]; ok {
			i.UntaggedVLAN = &netbox.NestedVLAN{ID: v.ID, VID: v.VID, Name: v.Name}
		}
	}
	return i
}
