package netbox

import "context"

// MockClient is a mock implementation of Inventory.
// Methods without a configured function return zero values and no error.
type MockClient struct {
	// Virtualization
	GetVirtualMachineFunc     func(ctx context.Context, name string) (*VirtualMachine, error)
	GetVirtualMachineByIDFunc func(ctx context.Context, id int) (*VirtualMachine, error)
	ListVirtualMachinesFunc   func(ctx context.Context, filter VirtualMachineFilter) ([]VirtualMachine, error)
	CreateVirtualMachineFunc  func(ctx context.Context, req VirtualMachineCreate) (*VirtualMachine, error)
	UpdateVirtualMachineFunc  func(ctx context.Context, id int, req VirtualMachineUpdate) (*VirtualMachine, error)
	GetClusterFunc            func(ctx context.Context, name string) (*Cluster, error)
	ListVMInterfacesFunc      func(ctx context.Context, filter InterfaceFilter) ([]Interface, error)
	CreateVMInterfaceFunc     func(ctx context.Context, req InterfaceCreate) (*Interface, error)

	// DCIM
	GetDeviceFunc                 func(ctx context.Context, filter DeviceFilter) (*Device, error)
	UpdateDeviceFunc              func(ctx context.Context, id int, req DeviceUpdate) (*Device, error)
	GetSiteFunc                   func(ctx context.Context, name string) (*Site, error)
	GetPlatformFunc               func(ctx context.Context, slug string) (*Platform, error)
	ListDeviceInterfacesFunc      func(ctx context.Context, filter InterfaceFilter) ([]Interface, error)
	CreateDeviceInterfaceFunc     func(ctx context.Context, req InterfaceCreate) (*Interface, error)
	UpdateDeviceInterfaceFunc     func(ctx context.Context, id int, req InterfaceUpdate) (*Interface, error)
	ListVirtualDeviceContextsFunc func(ctx context.Context, deviceID int) ([]VirtualDeviceContext, error)
	CreateCableFunc               func(ctx context.Context, req CableCreate) (*Cable, error)

	// IPAM
	ListPrefixesFunc    func(ctx context.Context, filter PrefixFilter) ([]Prefix, error)
	UpdatePrefixFunc    func(ctx context.Context, id int, req PrefixUpdate) (*Prefix, error)
	AllocateIPFunc      func(ctx context.Context, prefixID int, req IPAddressCreate) (*IPAddress, error)
	CreateIPAddressFunc func(ctx context.Context, req IPAddressCreate) (*IPAddress, error)
	GetIPAddressFunc    func(ctx context.Context, id int) (*IPAddress, error)
	ListIPAddressesFunc func(ctx context.Context, filter IPAddressFilter) ([]IPAddress, error)
	UpdateIPAddressFunc func(ctx context.Context, id int, req IPAddressUpdate) (*IPAddress, error)
	ListVLANsFunc       func(ctx context.Context, filter VLANFilter) ([]VLAN, error)
	ListServicesFunc    func(ctx context.Context, filter ServiceFilter) ([]Service, error)
	CreateServiceFunc   func(ctx context.Context, req ServiceCreate) (*Service, error)

	// Tenancy
	GetTenantFunc func(ctx context.Context, name string) (*Tenant, error)

	DeleteFunc func(ctx context.Context, ref ObjectRef) error
}

// Ensure interface compliance
var _ Inventory = (*MockClient)(nil)

// GetVirtualMachine mocks getting a VM by name.
func (m *MockClient) GetVirtualMachine(ctx context.Context, name string) (*VirtualMachine, error) {
	if m.GetVirtualMachineFunc != nil {
		return m.GetVirtualMachineFunc(ctx, name)
	}
	return nil, nil
}

// GetVirtualMachineByID mocks getting a VM by ID.
func (m *MockClient) GetVirtualMachineByID(ctx context.Context, id int) (*VirtualMachine, error) {
	if m.GetVirtualMachineByIDFunc != nil {
		return m.GetVirtualMachineByIDFunc(ctx, id)
	}
	return nil, nil
}

// ListVirtualMachines mocks listing VMs.
func (m *MockClient) ListVirtualMachines(ctx context.Context, filter VirtualMachineFilter) ([]VirtualMachine, error) {
	if m.ListVirtualMachinesFunc != nil {
		return m.ListVirtualMachinesFunc(ctx, filter)
	}
	return nil, nil
}

// CreateVirtualMachine mocks VM creation.
func (m *MockClient) CreateVirtualMachine(ctx context.Context, req VirtualMachineCreate) (*VirtualMachine, error) {
	if m.CreateVirtualMachineFunc != nil {
		return m.CreateVirtualMachineFunc(ctx, req)
	}
	return nil, nil
}

// UpdateVirtualMachine mocks updating a VM.
func (m *MockClient) UpdateVirtualMachine(ctx context.Context, id int, req VirtualMachineUpdate) (*VirtualMachine, error) {
	if m.UpdateVirtualMachineFunc != nil {
		return m.UpdateVirtualMachineFunc(ctx, id, req)
	}
	return nil, nil
}

// GetCluster mocks getting a cluster.
func (m *MockClient) GetCluster(ctx context.Context, name string) (*Cluster, error) {
	if m.GetClusterFunc != nil {
		return m.GetClusterFunc(ctx, name)
	}
	return nil, nil
}

// ListVMInterfaces mocks listing VM interfaces.
func (m *MockClient) ListVMInterfaces(ctx context.Context, filter InterfaceFilter) ([]Interface, error) {
	if m.ListVMInterfacesFunc != nil {
		return m.ListVMInterfacesFunc(ctx, filter)
	}
	return nil, nil
}

// CreateVMInterface mocks VM interface creation.
func (m *MockClient) CreateVMInterface(ctx context.Context, req InterfaceCreate) (*Interface, error) {
	if m.CreateVMInterfaceFunc != nil {
		return m.CreateVMInterfaceFunc(ctx, req)
	}
	return nil, nil
}

// GetDevice mocks getting a device.
func (m *MockClient) GetDevice(ctx context.Context, filter DeviceFilter) (*Device, error) {
	if m.GetDeviceFunc != nil {
		return m.GetDeviceFunc(ctx, filter)
	}
	return nil, nil
}

// UpdateDevice mocks updating a device.
func (m *MockClient) UpdateDevice(ctx context.Context, id int, req DeviceUpdate) (*Device, error) {
	if m.UpdateDeviceFunc != nil {
		return m.UpdateDeviceFunc(ctx, id, req)
	}
	return nil, nil
}

// GetSite mocks getting a site.
func (m *MockClient) GetSite(ctx context.Context, name string) (*Site, error) {
	if m.GetSiteFunc != nil {
		return m.GetSiteFunc(ctx, name)
	}
	return nil, nil
}

// GetPlatform mocks getting a platform.
func (m *MockClient) GetPlatform(ctx context.Context, slug string) (*Platform, error) {
	if m.GetPlatformFunc != nil {
		return m.GetPlatformFunc(ctx, slug)
	}
	return nil, nil
}

// ListDeviceInterfaces mocks listing device interfaces.
func (m *MockClient) ListDeviceInterfaces(ctx context.Context, filter InterfaceFilter) ([]Interface, error) {
	if m.ListDeviceInterfacesFunc != nil {
		return m.ListDeviceInterfacesFunc(ctx, filter)
	}
	return nil, nil
}

// CreateDeviceInterface mocks device interface creation.
func (m *MockClient) CreateDeviceInterface(ctx context.Context, req InterfaceCreate) (*Interface, error) {
	if m.CreateDeviceInterfaceFunc != nil {
		return m.CreateDeviceInterfaceFunc(ctx, req)
	}
	return nil, nil
}

// UpdateDeviceInterface mocks updating a device interface.
func (m *MockClient) UpdateDeviceInterface(ctx context.Context, id int, req InterfaceUpdate) (*Interface, error) {
	if m.UpdateDeviceInterfaceFunc != nil {
		return m.UpdateDeviceInterfaceFunc(ctx, id, req)
	}
	return nil, nil
}

// ListVirtualDeviceContexts mocks listing VDCs.
func (m *MockClient) ListVirtualDeviceContexts(ctx context.Context, deviceID int) ([]VirtualDeviceContext, error) {
	if m.ListVirtualDeviceContextsFunc != nil {
		return m.ListVirtualDeviceContextsFunc(ctx, deviceID)
	}
	return nil, nil
}

// CreateCable mocks cable creation.
func (m *MockClient) CreateCable(ctx context.Context, req CableCreate) (*Cable, error) {
	if m.CreateCableFunc != nil {
		return m.CreateCableFunc(ctx, req)
	}
	return nil, nil
}

// ListPrefixes mocks listing prefixes.
func (m *MockClient) ListPrefixes(ctx context.Context, filter PrefixFilter) ([]Prefix, error) {
	if m.ListPrefixesFunc != nil {
		return m.ListPrefixesFunc(ctx, filter)
	}
	return nil, nil
}

// UpdatePrefix mocks updating a prefix.
func (m *MockClient) UpdatePrefix(ctx context.Context, id int, req PrefixUpdate) (*Prefix, error) {
	if m.UpdatePrefixFunc != nil {
		return m.UpdatePrefixFunc(ctx, id, req)
	}
	return nil, nil
}

// AllocateIP mocks next-free address allocation.
func (m *MockClient) AllocateIP(ctx context.Context, prefixID int, req IPAddressCreate) (*IPAddress, error) {
	if m.AllocateIPFunc != nil {
		return m.AllocateIPFunc(ctx, prefixID, req)
	}
	return nil, nil
}

// CreateIPAddress mocks address creation.
func (m *MockClient) CreateIPAddress(ctx context.Context, req IPAddressCreate) (*IPAddress, error) {
	if m.CreateIPAddressFunc != nil {
		return m.CreateIPAddressFunc(ctx, req)
	}
	return nil, nil
}

// GetIPAddress mocks getting an address.
func (m *MockClient) GetIPAddress(ctx context.Context, id int) (*IPAddress, error) {
	if m.GetIPAddressFunc != nil {
		return m.GetIPAddressFunc(ctx, id)
	}
	return nil, nil
}

// ListIPAddresses mocks listing addresses.
func (m *MockClient) ListIPAddresses(ctx context.Context, filter IPAddressFilter) ([]IPAddress, error) {
	if m.ListIPAddressesFunc != nil {
		return m.ListIPAddressesFunc(ctx, filter)
	}
	return nil, nil
}

// UpdateIPAddress mocks updating an address.
func (m *MockClient) UpdateIPAddress(ctx context.Context, id int, req IPAddressUpdate) (*IPAddress, error) {
	if m.UpdateIPAddressFunc != nil {
		return m.UpdateIPAddressFunc(ctx, id, req)
	}
	return nil, nil
}

// ListVLANs mocks listing VLANs.
func (m *MockClient) ListVLANs(ctx context.Context, filter VLANFilter) ([]VLAN, error) {
	if m.ListVLANsFunc != nil {
		return m.ListVLANsFunc(ctx, filter)
	}
	return nil, nil
}

// ListServices mocks listing services.
func (m *MockClient) ListServices(ctx context.Context, filter ServiceFilter) ([]Service, error) {
	if m.ListServicesFunc != nil {
		return m.ListServicesFunc(ctx, filter)
	}
	return nil, nil
}

// CreateService mocks service creation.
func (m *MockClient) CreateService(ctx context.Context, req ServiceCreate) (*Service, error) {
	if m.CreateServiceFunc != nil {
		return m.CreateServiceFunc(ctx, req)
	}
	return nil, nil
}

// GetTenant mocks getting a tenant.
func (m *MockClient) GetTenant(ctx context.Context, name string) (*Tenant, error) {
	if m.GetTenantFunc != nil {
		return m.GetTenantFunc(ctx, name)
	}
	return nil, nil
}

// Delete mocks object deletion.
func (m *MockClient) Delete(ctx context.Context, ref ObjectRef) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ref)
	}
	return nil
}
