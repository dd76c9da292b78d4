package netbox

import "context"

// VirtualMachineFilter selects virtual machines. Zero fields are not sent.
type VirtualMachineFilter struct {
	Name       string
	ClusterID  int
	Status     string
	UUID       string // exact match on the uuid custom field
	UUIDPrefix string // prefix match on the uuid custom field
	StorageID  int    // exact match on the storage_id custom field
}

// InterfaceFilter selects VM or device interfaces.
type InterfaceFilter struct {
	ParentID   int // virtual_machine_id or device_id
	Name       string
	MACAddress string
}

// DeviceFilter selects devices.
type DeviceFilter struct {
	Name string
	Site string // site slug
}

// PrefixFilter selects prefixes.
type PrefixFilter struct {
	Prefix  string
	VLANVID int
	VLANID  int
	SiteID  int
}

// IPAddressFilter selects IP addresses.
type IPAddressFilter struct {
	Address       string
	DNSName       string
	InterfaceID   int
	VMInterfaceID int
}

// VLANFilter selects VLANs.
type VLANFilter struct {
	VID  int
	Site string // site slug
}

// ServiceFilter selects services.
type ServiceFilter struct {
	Name     string
	Protocol string
	Port     int
}

// VirtualMachineCreate is the body of a VM create request.
type VirtualMachineCreate struct {
	Name         string       `json:"name"`
	Status       string       `json:"status,omitempty"`
	Cluster      int          `json:"cluster"`
	Site         *int         `json:"site,omitempty"`
	Tenant       *int         `json:"tenant,omitempty"`
	Platform     *int         `json:"platform,omitempty"`
	Role         *int         `json:"role,omitempty"`
	VCPUs        int          `json:"vcpus,omitempty"`
	Memory       int          `json:"memory,omitempty"`
	Disk         int          `json:"disk,omitempty"`
	CustomFields CustomFields `json:"custom_fields,omitempty"`
}

// VirtualMachineUpdate is a partial VM update.
type VirtualMachineUpdate struct {
	Status       *string      `json:"status,omitempty"`
	PrimaryIP4   *int         `json:"primary_ip4,omitempty"`
	CustomFields CustomFields `json:"custom_fields,omitempty"`
}

// DeviceUpdate is a partial device update.
type DeviceUpdate struct {
	CustomFields CustomFields `json:"custom_fields,omitempty"`
}

// InterfaceCreate is the body of a VM or device interface create request.
// Exactly one of VirtualMachine and Device must be set.
type InterfaceCreate struct {
	VirtualMachine *int   `json:"virtual_machine,omitempty"`
	Device         *int   `json:"device,omitempty"`
	Name           string `json:"name"`
	Type           string `json:"type,omitempty"`
	Mode           string `json:"mode,omitempty"`
	MACAddress     string `json:"mac_address,omitempty"`
	UntaggedVLAN   *int   `json:"untagged_vlan,omitempty"`
	Description    string `json:"description,omitempty"`
}

// InterfaceUpdate is a partial interface update. A pointer to an empty
// slice clears the list on the server.
type InterfaceUpdate struct {
	Mode        *string `json:"mode,omitempty"`
	Description *string `json:"description,omitempty"`
	TaggedVLANs *[]int  `json:"tagged_vlans,omitempty"`
	VDCs        *[]int  `json:"vdcs,omitempty"`
}

// IPAddressCreate is the body of an address create or allocate request.
// Address is left empty when the server picks the next available address.
type IPAddressCreate struct {
	Address            string `json:"address,omitempty"`
	DNSName            string `json:"dns_name,omitempty"`
	Status             string `json:"status,omitempty"`
	Tenant             *int   `json:"tenant,omitempty"`
	Description        string `json:"description,omitempty"`
	AssignedObjectType string `json:"assigned_object_type,omitempty"`
	AssignedObjectID   *int   `json:"assigned_object_id,omitempty"`
}

// IPAddressUpdate is a partial address update.
type IPAddressUpdate struct {
	DNSName            *string `json:"dns_name,omitempty"`
	AssignedObjectType *string `json:"assigned_object_type,omitempty"`
	AssignedObjectID   *int    `json:"assigned_object_id,omitempty"`
}

// PrefixUpdate is a partial prefix update.
type PrefixUpdate struct {
	Description *string `json:"description,omitempty"`
}

// ServiceCreate is the body of a service create request.
type ServiceCreate struct {
	Name           string `json:"name"`
	Protocol       string `json:"protocol"`
	Ports          []int  `json:"ports"`
	VirtualMachine *int   `json:"virtual_machine,omitempty"`
	Device         *int   `json:"device,omitempty"`
}

// CableCreate is the body of a cable create request.
type CableCreate struct {
	ATerminations []Termination `json:"a_terminations"`
	BTerminations []Termination `json:"b_terminations"`
	Type          string        `json:"type,omitempty"`
	Label         string        `json:"label,omitempty"`
	Color         string        `json:"color,omitempty"`
	Description   string        `json:"description,omitempty"`
	Length        *float64      `json:"length,omitempty"`
	LengthUnit    string        `json:"length_unit,omitempty"`
}

// VirtualizationManager covers the virtualization application.
type VirtualizationManager interface {
	// GetVirtualMachine returns the VM with the given name, or nil if none exists.
	GetVirtualMachine(ctx context.Context, name string) (*VirtualMachine, error)
	GetVirtualMachineByID(ctx context.Context, id int) (*VirtualMachine, error)
	ListVirtualMachines(ctx context.Context, filter VirtualMachineFilter) ([]VirtualMachine, error)
	CreateVirtualMachine(ctx context.Context, req VirtualMachineCreate) (*VirtualMachine, error)
	UpdateVirtualMachine(ctx context.Context, id int, req VirtualMachineUpdate) (*VirtualMachine, error)
	GetCluster(ctx context.Context, name string) (*Cluster, error)
	ListVMInterfaces(ctx context.Context, filter InterfaceFilter) ([]Interface, error)
	CreateVMInterface(ctx context.Context, req InterfaceCreate) (*Interface, error)
}

// DCIMManager covers the dcim application.
type DCIMManager interface {
	// GetDevice returns the matching device, or nil if none exists.
	GetDevice(ctx context.Context, filter DeviceFilter) (*Device, error)
	UpdateDevice(ctx context.Context, id int, req DeviceUpdate) (*Device, error)
	GetSite(ctx context.Context, name string) (*Site, error)
	GetPlatform(ctx context.Context, slug string) (*Platform, error)
	ListDeviceInterfaces(ctx context.Context, filter InterfaceFilter) ([]Interface, error)
	CreateDeviceInterface(ctx context.Context, req InterfaceCreate) (*Interface, error)
	UpdateDeviceInterface(ctx context.Context, id int, req InterfaceUpdate) (*Interface, error)
	ListVirtualDeviceContexts(ctx context.Context, deviceID int) ([]VirtualDeviceContext, error)
	CreateCable(ctx context.Context, req CableCreate) (*Cable, error)
}

// IPAMManager covers the ipam application.
type IPAMManager interface {
	ListPrefixes(ctx context.Context, filter PrefixFilter) ([]Prefix, error)
	UpdatePrefix(ctx context.Context, id int, req PrefixUpdate) (*Prefix, error)
	// AllocateIP creates an address record for the next free address of a prefix.
	AllocateIP(ctx context.Context, prefixID int, req IPAddressCreate) (*IPAddress, error)
	CreateIPAddress(ctx context.Context, req IPAddressCreate) (*IPAddress, error)
	GetIPAddress(ctx context.Context, id int) (*IPAddress, error)
	ListIPAddresses(ctx context.Context, filter IPAddressFilter) ([]IPAddress, error)
	UpdateIPAddress(ctx context.Context, id int, req IPAddressUpdate) (*IPAddress, error)
	ListVLANs(ctx context.Context, filter VLANFilter) ([]VLAN, error)
	ListServices(ctx context.Context, filter ServiceFilter) ([]Service, error)
	CreateService(ctx context.Context, req ServiceCreate) (*Service, error)
}

// TenancyManager covers the tenancy application.
type TenancyManager interface {
	GetTenant(ctx context.Context, name string) (*Tenant, error)
}

// Deleter removes any object by reference.
type Deleter interface {
	Delete(ctx context.Context, ref ObjectRef) error
}

// Inventory is the full set of operations nbctl performs against NetBox.
type Inventory interface {
	VirtualizationManager
	DCIMManager
	IPAMManager
	TenancyManager
	Deleter
}
