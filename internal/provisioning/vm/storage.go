package vm

import (
	"sort"

	"github.com/imamik/nbctl/internal/platform/netbox"
)

// StorageType names a storage backend.
type StorageType string

// Storage backends.
const (
	StorageLVM       StorageType = "lvm"
	StorageMultipath StorageType = "multipath"
	StorageDRBD      StorageType = "drbd"
)

// Device roles accepted as storage backends.
const (
	RoleStorage     = "Storage"
	RoleClusterNode = "Cluster Node"
)

// Custom field names written on VM records.
const (
	FieldUUID                   = "uuid"
	FieldStorageType            = "storage_type"
	FieldStoragePool            = "storage_pool"
	FieldStorageDevice          = "storage_device"
	FieldStorageDeviceSecondary = "storage_device_secondary"
	FieldStorageID              = "storage_id"
)

type storageRule struct {
	devices int
	role    string
	pools   []string
	slot    bool
}

var storageRules = map[StorageType]storageRule{
	StorageLVM:       {devices: 1, role: RoleClusterNode, pools: []string{"vg0", "vg1"}},
	StorageMultipath: {devices: 1, role: RoleStorage, pools: []string{"slow", "mixed", "fast"}, slot: true},
	StorageDRBD:      {devices: 2, role: RoleClusterNode, pools: []string{"vg0", "vg1"}, slot: true},
}

// StorageTypes lists the known storage backends.
func StorageTypes() []string {
	out := make([]string, 0, len(storageRules))
	for t := range storageRules {
		out = append(out, string(t))
	}
	sort.Strings(out)
	return out
}

// Known reports whether t is a known backend.
func (t StorageType) Known() bool {
	_, ok := storageRules[t]
	return ok
}

// Devices returns how many storage devices the backend needs.
func (t StorageType) Devices() int { return storageRules[t].devices }

// DeviceRole returns the device role a storage device must have.
func (t StorageType) DeviceRole() string { return storageRules[t].role }

// UsesSlot reports whether the backend needs a cluster-unique slot.
func (t StorageType) UsesSlot() bool { return storageRules[t].slot }

// Pools returns the pools valid for the backend.
func (t StorageType) Pools() []string {
	return append([]string(nil), storageRules[t].pools...)
}

// PoolAllowed reports whether pool belongs to the backend.
func (t StorageType) PoolAllowed(pool string) bool {
	for _, p := range storageRules[t].pools {
		if p == pool {
			return true
		}
	}
	return false
}

// AllPools lists every pool of every backend.
func AllPools() []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range StorageTypes() {
		for _, p := range storageRules[StorageType(t)].pools {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}

// StorageFields builds the storage custom fields of a VM. Device fields
// hold device IDs. Missing values are written as null so stale values are cleared.
func StorageFields(t StorageType, pool string, devices []netbox.Device, slot *int) netbox.CustomFields {
	cf := netbox.CustomFields{
		FieldStorageType:            string(t),
		FieldStoragePool:            pool,
		FieldStorageDevice:          nil,
		FieldStorageDeviceSecondary: nil,
		FieldStorageID:              nil,
	}
	if len(devices) > 0 {
		cf[FieldStorageDevice] = devices[0].ID
	}
	if len(devices) > 1 {
		cf[FieldStorageDeviceSecondary] = devices[1].ID
	}
	if slot != nil {
		cf[FieldStorageID] = *slot
	}
	return cf
}
