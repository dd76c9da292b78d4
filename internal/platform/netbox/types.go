package netbox

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Object kinds, expressed as API paths relative to /api/.
const (
	KindVirtualMachine  = "virtualization/virtual-machines"
	KindVMInterface     = "virtualization/interfaces"
	KindCluster         = "virtualization/clusters"
	KindDevice          = "dcim/devices"
	KindDeviceInterface = "dcim/interfaces"
	KindSite            = "dcim/sites"
	KindPlatform        = "dcim/platforms"
	KindCable           = "dcim/cables"
	KindMACAddress      = "dcim/mac-addresses"
	KindVDC             = "dcim/virtual-device-contexts"
	KindIPAddress       = "ipam/ip-addresses"
	KindPrefix          = "ipam/prefixes"
	KindVLAN            = "ipam/vlans"
	KindService         = "ipam/services"
	KindTenant          = "tenancy/tenants"
)

// Content types used for IP, MAC and cable terminations and service parents.
const (
	ContentTypeVMInterface     = "virtualization.vminterface"
	ContentTypeDeviceInterface = "dcim.interface"
	ContentTypeVirtualMachine  = "virtualization.virtualmachine"
	ContentTypeDevice          = "dcim.device"
)

// Status values written by nbctl.
const (
	StatusActive  = "active"
	StatusPlanned = "planned"
)

// ObjectRef identifies a remote object well enough to delete it.
type ObjectRef struct {
	Kind    string `json:"kind"`
	ID      int    `json:"id"`
	Display string `json:"display,omitempty"`
}

func (r ObjectRef) String() string {
	if r.Display != "" {
		return fmt.Sprintf("%s/%d (%s)", r.Kind, r.ID, r.Display)
	}
	return fmt.Sprintf("%s/%d", r.Kind, r.ID)
}

// Ref is a nested reference to another object as returned by the API.
type Ref struct {
	ID      int    `json:"id"`
	Name    string `json:"name,omitempty"`
	Slug    string `json:"slug,omitempty"`
	Display string `json:"display,omitempty"`
}

// Choice is a NetBox choice field such as status or mode.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

// NestedVLAN is a VLAN reference as embedded in prefixes and interfaces.
type NestedVLAN struct {
	ID   int    `json:"id"`
	VID  int    `json:"vid"`
	Name string `json:"name,omitempty"`
}

// NestedIP is an IP address reference as embedded in VMs and devices.
type NestedIP struct {
	ID      int    `json:"id"`
	Address string `json:"address"`
}

// CustomFields holds the custom_fields map of a record.
type CustomFields map[string]any

// String returns the field as a string. Numbers are formatted, nil is empty.
func (cf CustomFields) String(key string) string {
	switch v := cf[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the field as an integer and whether it was set to a number.
// Object references ({"id": N, ...}) yield their ID.
func (cf CustomFields) Int(key string) (int, bool) {
	switch v := cf[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		i, err := v.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(v)
		return i, err == nil
	case map[string]any:
		if id, ok := v["id"].(float64); ok {
			return int(id), true
		}
	}
	return 0, false
}

// VirtualMachine is a virtualization/virtual-machines record.
type VirtualMachine struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Status       Choice       `json:"status"`
	Cluster      *Ref         `json:"cluster"`
	Site         *Ref         `json:"site"`
	Tenant       *Ref         `json:"tenant"`
	Platform     *Ref         `json:"platform"`
	Role         *Ref         `json:"role"`
	VCPUs        float64      `json:"vcpus"`
	Memory       int          `json:"memory"`
	Disk         int          `json:"disk"`
	PrimaryIP4   *NestedIP    `json:"primary_ip4"`
	CustomFields CustomFields `json:"custom_fields"`
}

// Ref returns the handle used to delete the VM.
func (vm *VirtualMachine) Ref() ObjectRef {
	return ObjectRef{Kind: KindVirtualMachine, ID: vm.ID, Display: vm.Name}
}

// Device is a dcim/devices record.
type Device struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Status       Choice       `json:"status"`
	Site         *Ref         `json:"site"`
	Tenant       *Ref         `json:"tenant"`
	Role         *Ref         `json:"role"`
	DeviceRole   *Ref         `json:"device_role"`
	PrimaryIP4   *NestedIP    `json:"primary_ip4"`
	CustomFields CustomFields `json:"custom_fields"`
}

// RoleName returns the device role name for both current and pre-4.0 API schemas.
func (d *Device) RoleName() string {
	if d.Role != nil {
		return d.Role.Name
	}
	if d.DeviceRole != nil {
		return d.DeviceRole.Name
	}
	return ""
}

// Interface is either a VM interface or a device interface.
type Interface struct {
	ID               int          `json:"id"`
	Name             string       `json:"name"`
	VirtualMachine   *Ref         `json:"virtual_machine,omitempty"`
	Device           *Ref         `json:"device,omitempty"`
	Type             *Choice      `json:"type,omitempty"`
	Mode             *Choice      `json:"mode"`
	MACAddress       string       `json:"mac_address"`
	Description      string       `json:"description"`
	UntaggedVLAN     *NestedVLAN  `json:"untagged_vlan"`
	TaggedVLANs      []NestedVLAN `json:"tagged_vlans"`
	VDCs             []Ref        `json:"vdcs,omitempty"`
	CountIPAddresses int          `json:"count_ipaddresses"`
}

// IsVM reports whether the interface belongs to a virtual machine.
func (i *Interface) IsVM() bool { return i.VirtualMachine != nil }

// Kind returns the API path of the interface collection.
func (i *Interface) Kind() string {
	if i.IsVM() {
		return KindVMInterface
	}
	return KindDeviceInterface
}

// ContentType returns the content type used in terminations and IP assignments.
func (i *Interface) ContentType() string {
	if i.IsVM() {
		return ContentTypeVMInterface
	}
	return ContentTypeDeviceInterface
}

// ParentName returns the name of the owning VM or device.
func (i *Interface) ParentName() string {
	switch {
	case i.VirtualMachine != nil:
		return i.VirtualMachine.Name
	case i.Device != nil:
		return i.Device.Name
	}
	return ""
}

// Ref returns the handle used to delete the interface.
func (i *Interface) Ref() ObjectRef {
	return ObjectRef{Kind: i.Kind(), ID: i.ID, Display: i.ParentName() + ":" + i.Name}
}

// AssignedObject is the interface an IP address is bound to.
type AssignedObject struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	VirtualMachine *Ref   `json:"virtual_machine,omitempty"`
	Device         *Ref   `json:"device,omitempty"`
}

// IPAddress is an ipam/ip-addresses record.
type IPAddress struct {
	ID                 int             `json:"id"`
	Address            string          `json:"address"`
	DNSName            string          `json:"dns_name"`
	Status             Choice          `json:"status"`
	Tenant             *Ref            `json:"tenant"`
	Description        string          `json:"description"`
	AssignedObjectType string          `json:"assigned_object_type"`
	AssignedObjectID   *int            `json:"assigned_object_id"`
	AssignedObject     *AssignedObject `json:"assigned_object"`
}

// Ref returns the handle used to delete the address.
func (ip *IPAddress) Ref() ObjectRef {
	return ObjectRef{Kind: KindIPAddress, ID: ip.ID, Display: ip.Address}
}

// Prefix is an ipam/prefixes record.
type Prefix struct {
	ID          int         `json:"id"`
	Prefix      string      `json:"prefix"`
	Description string      `json:"description"`
	VLAN        *NestedVLAN `json:"vlan"`
	Site        *Ref        `json:"site"`
	Tenant      *Ref        `json:"tenant"`
}

// VLAN is an ipam/vlans record.
type VLAN struct {
	ID     int    `json:"id"`
	VID    int    `json:"vid"`
	Name   string `json:"name"`
	Site   *Ref   `json:"site"`
	Tenant *Ref   `json:"tenant"`
}

// Tenant is a tenancy/tenants record.
type Tenant struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Site is a dcim/sites record.
type Site struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Cluster is a virtualization/clusters record.
type Cluster struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Site *Ref   `json:"site"`
}

// Platform is a dcim/platforms record.
type Platform struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Service is an ipam/services record. Servers from 4.3 on return the owner
// as parent_object_type and parent_object_id, older ones as virtual_machine or device.
type Service struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	Protocol         *Choice `json:"protocol"`
	Ports            []int   `json:"ports"`
	VirtualMachine   *Ref    `json:"virtual_machine"`
	Device           *Ref    `json:"device"`
	ParentObjectType string  `json:"parent_object_type,omitempty"`
	ParentObjectID   *int    `json:"parent_object_id,omitempty"`
	Parent           *Ref    `json:"parent,omitempty"`
}

// normalize fills VirtualMachine or Device from the parent object fields.
func (s *Service) normalize() {
	if s.ParentObjectID == nil || s.VirtualMachine != nil || s.Device != nil {
		return
	}
	ref := &Ref{ID: *s.ParentObjectID}
	if s.Parent != nil {
		ref.Name = s.Parent.Name
		ref.Display = s.Parent.Display
	}
	switch s.ParentObjectType {
	case ContentTypeVirtualMachine:
		s.VirtualMachine = ref
	case ContentTypeDevice:
		s.Device = ref
	}
}

// Ref returns the handle used to delete the service.
func (s *Service) Ref() ObjectRef {
	return ObjectRef{Kind: KindService, ID: s.ID, Display: s.Name}
}

// MACAddress is a dcim/mac-addresses record.
type MACAddress struct {
	ID                 int    `json:"id"`
	MACAddress         string `json:"mac_address"`
	AssignedObjectType string `json:"assigned_object_type"`
	AssignedObjectID   *int   `json:"assigned_object_id"`
}

// Ref returns the handle used to delete the MAC address.
func (m *MACAddress) Ref() ObjectRef {
	return ObjectRef{Kind: KindMACAddress, ID: m.ID, Display: m.MACAddress}
}

// Termination is one end of a cable.
type Termination struct {
	ObjectType string `json:"object_type"`
	ObjectID   int    `json:"object_id"`
}

// Cable is a dcim/cables record.
type Cable struct {
	ID            int           `json:"id"`
	Display       string        `json:"display"`
	Type          string        `json:"type"`
	Label         string        `json:"label"`
	Color         string        `json:"color"`
	Length        *float64      `json:"length"`
	LengthUnit    *Choice       `json:"length_unit"`
	ATerminations []Termination `json:"a_terminations"`
	BTerminations []Termination `json:"b_terminations"`
}

// VirtualDeviceContext is a dcim/virtual-device-contexts record.
type VirtualDeviceContext struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Device *Ref   `json:"device"`
}
