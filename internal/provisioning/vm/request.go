package vm

import (
	"strings"
)

// Spec holds the raw inputs of a VM request.
type Spec struct {
	Name     string
	FQDN     string
	Tenant   string
	Site     string
	Cluster  string
	Platform string // platform slug
	RoleID   int

	CPUs     int
	MemoryMB int
	DiskGB   int

	VLANID int
	Prefix string // explicit CIDR instead of the VLAN lookup

	StorageType    string
	StorageDevices []string
	StoragePool    string
	SlotID         *int

	Identifier      string
	ShortIdentifier bool
	MAC             string
	Address         string
}

// ProvisionRequest is the validated-to-be input of one create-vm run.
// It cannot be changed after NewRequest.
type ProvisionRequest struct {
	spec Spec
}

// NewRequest normalizes s and freezes it.
func NewRequest(s Spec) *ProvisionRequest {
	c := s
	c.Name = strings.TrimSpace(s.Name)
	c.FQDN = strings.TrimSuffix(strings.TrimSpace(s.FQDN), ".")
	c.Tenant = strings.TrimSpace(s.Tenant)
	c.Site = strings.TrimSpace(s.Site)
	c.Cluster = strings.TrimSpace(s.Cluster)
	c.Platform = strings.TrimSpace(s.Platform)
	c.Prefix = strings.TrimSpace(s.Prefix)
	c.StorageType = strings.ToLower(strings.TrimSpace(s.StorageType))
	c.StoragePool = strings.TrimSpace(s.StoragePool)
	c.Identifier = strings.ToLower(strings.TrimSpace(s.Identifier))
	c.MAC = strings.ToLower(strings.TrimSpace(s.MAC))
	c.Address = strings.TrimSpace(s.Address)

	c.StorageDevices = nil
	for _, d := range s.StorageDevices {
		if d = strings.TrimSpace(d); d != "" {
			c.StorageDevices = append(c.StorageDevices, d)
		}
	}
	if s.SlotID != nil {
		slot := *s.SlotID
		c.SlotID = &slot
	}
	if c.StoragePool == "" {
		if rule, ok := storageRules[StorageType(c.StorageType)]; ok {
			c.StoragePool = rule.pools[0]
		}
	}
	return &ProvisionRequest{spec: c}
}

func (r *ProvisionRequest) Name() string     { return r.spec.Name }
func (r *ProvisionRequest) FQDN() string     { return r.spec.FQDN }
func (r *ProvisionRequest) Tenant() string   { return r.spec.Tenant }
func (r *ProvisionRequest) Site() string     { return r.spec.Site }
func (r *ProvisionRequest) Cluster() string  { return r.spec.Cluster }
func (r *ProvisionRequest) Platform() string { return r.spec.Platform }
func (r *ProvisionRequest) RoleID() int      { return r.spec.RoleID }
func (r *ProvisionRequest) CPUs() int        { return r.spec.CPUs }
func (r *ProvisionRequest) MemoryMB() int    { return r.spec.MemoryMB }
func (r *ProvisionRequest) DiskGB() int      { return r.spec.DiskGB }
func (r *ProvisionRequest) VLANID() int      { return r.spec.VLANID }
func (r *ProvisionRequest) Prefix() string   { return r.spec.Prefix }

// StorageType returns the requested storage backend.
func (r *ProvisionRequest) StorageType() StorageType { return StorageType(r.spec.StorageType) }

// StorageDevices returns a copy of the storage device names.
func (r *ProvisionRequest) StorageDevices() []string {
	return append([]string(nil), r.spec.StorageDevices...)
}

func (r *ProvisionRequest) StoragePool() string { return r.spec.StoragePool }

// SlotID returns the requested storage slot, if any.
func (r *ProvisionRequest) SlotID() (int, bool) {
	if r.spec.SlotID == nil {
		return 0, false
	}
	return *r.spec.SlotID, true
}

func (r *ProvisionRequest) Identifier() string    { return r.spec.Identifier }
func (r *ProvisionRequest) ShortIdentifier() bool { return r.spec.ShortIdentifier }
func (r *ProvisionRequest) MAC() string           { return r.spec.MAC }
func (r *ProvisionRequest) Address() string       { return r.spec.Address }
