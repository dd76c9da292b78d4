package vm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/nbctl/internal/config"
	"github.com/imamik/nbctl/internal/platform/netbox"
	"github.com/imamik/nbctl/internal/provisioning"
	nbtesting "github.com/imamik/nbctl/internal/testing"
)

func validSpec() Spec {
	return Spec{
		Name:           "web-1",
		FQDN:           "web-1.example.net",
		Tenant:         "acme",
		Site:           "dc1",
		Cluster:        "c1",
		Platform:       "ubuntu22",
		CPUs:           2,
		MemoryMB:       2048,
		DiskGB:         20,
		VLANID:         100,
		StorageType:    "lvm",
		StorageDevices: []string{"node-a"},
	}
}

func fields(findings []provisioning.ValidationError) []string {
	var out []string
	for _, f := range findings {
		if f.IsError() {
			out = append(out, f.Field)
		}
	}
	return out
}

func TestCheckRequest(t *testing.T) {
	alloc := config.Default().Allocation
	slot := func(n int) *int { return &n }

	tests := []struct {
		name   string
		modify func(*Spec)
		want   []string
	}{
		{"valid", func(*Spec) {}, nil},
		{"missing name", func(s *Spec) { s.Name = "" }, []string{"name"}},
		{"missing tenant and cluster", func(s *Spec) { s.Tenant, s.Cluster = "", "" }, []string{"tenant", "cluster"}},
		{"memory at bound", func(s *Spec) { s.MemoryMB = 50 }, []string{"memory"}},
		{"memory above bound", func(s *Spec) { s.MemoryMB = 51 }, nil},
		{"disk at bound", func(s *Spec) { s.DiskGB = 1 }, []string{"disk"}},
		{"no cpus", func(s *Spec) { s.CPUs = 0 }, []string{"cpus"}},
		{"too many cpus", func(s *Spec) { s.CPUs = 40 }, []string{"cpus"}},
		{"max cpus", func(s *Spec) { s.CPUs = 39 }, nil},
		{"vlan 1", func(s *Spec) { s.VLANID = 1 }, []string{"vlan"}},
		{"vlan 4095", func(s *Spec) { s.VLANID = 4095 }, []string{"vlan"}},
		{"vlan 4094", func(s *Spec) { s.VLANID = 4094 }, nil},
		{"no network", func(s *Spec) { s.VLANID = 0 }, []string{"vlan"}},
		{"vlan and prefix", func(s *Spec) { s.Prefix = "10.0.0.0/24" }, []string{"vlan"}},
		{"bad prefix", func(s *Spec) { s.VLANID, s.Prefix = 0, "10.0.0.0/33" }, []string{"prefix"}},
		{"unknown storage", func(s *Spec) { s.StorageType = "zfs" }, []string{"storage-type"}},
		{"drbd with one device", func(s *Spec) { s.StorageType = "drbd" }, []string{"storage-device"}},
		{"multipath pool", func(s *Spec) { s.StorageType, s.StoragePool = "multipath", "vg0" }, []string{"storage-pool"}},
		{"slot on lvm", func(s *Spec) { s.SlotID = slot(3) }, []string{"storage-id"}},
		{"slot out of range", func(s *Spec) { s.StorageType, s.SlotID = "multipath", slot(alloc.SlotMax+1) }, []string{"storage-id"}},
		{"slot in range", func(s *Spec) { s.StorageType, s.SlotID = "multipath", slot(alloc.SlotMax) }, nil},
		{"bad mac", func(s *Spec) { s.MAC = "52:54:00:zz:00:01" }, []string{"mac"}},
		{"bad address", func(s *Spec) { s.Address = "10.0.0" }, []string{"ip"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSpec()
			tt.modify(&s)
			assert.Equal(t, tt.want, fields(CheckRequest(NewRequest(s), alloc)))
		})
	}
}

func TestCheckRequest_MissingFQDNIsWarning(t *testing.T) {
	s := validSpec()
	s.FQDN = ""

	findings := CheckRequest(NewRequest(s), config.Default().Allocation)
	require.Len(t, findings, 1)
	assert.Equal(t, "fqdn", findings[0].Field)
	assert.False(t, findings[0].IsError())
}

func validate(t *testing.T, inv netbox.Inventory, s Spec) (*References, error) {
	t.Helper()
	return Validate(context.Background(), inv, NewRequest(s), config.Default().Allocation, nbtesting.DiscardObserver{})
}

func TestValidate_ResolvesReferences(t *testing.T) {
	fx := nbtesting.NewStandard()

	refs, err := validate(t, fx.Inventory, validSpec())
	require.NoError(t, err)

	assert.Equal(t, fx.Tenant.ID, refs.Tenant.ID)
	assert.Equal(t, fx.Site.ID, refs.Site.ID)
	assert.Equal(t, fx.Cluster.ID, refs.Cluster.ID)
	assert.Equal(t, fx.Platform.ID, refs.Platform.ID)
	assert.Equal(t, fx.Prefix.ID, refs.Prefix.ID)
	assert.Equal(t, "10.0.0.0/24", refs.PrefixNet.String())
	require.Len(t, refs.Devices, 1)
	assert.Equal(t, fx.NodeA.ID, refs.Devices[0].ID)
	assert.Nil(t, refs.Address)
	assert.Empty(t, fx.Inventory.Mutations())
}

func TestValidate_PureFailureSkipsLookups(t *testing.T) {
	fx := nbtesting.NewStandard()
	s := validSpec()
	s.MemoryMB = 10

	_, err := validate(t, fx.Inventory, s)

	require.Error(t, err)
	assert.True(t, provisioning.IsValidation(err))
	assert.Empty(t, fx.Inventory.Calls())
}

func TestValidate_LookupFindings(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*nbtesting.Standard)
		modify func(*Spec)
		field  string
	}{
		{"existing vm", func(fx *nbtesting.Standard) { fx.Inventory.AddVM("web-1", fx.Cluster, "active", nil) }, func(*Spec) {}, "name"},
		{"unknown tenant", nil, func(s *Spec) { s.Tenant = "nobody" }, "tenant"},
		{"unknown site", nil, func(s *Spec) { s.Site = "dc9" }, "site"},
		{"unknown cluster", nil, func(s *Spec) { s.Cluster = "c9" }, "cluster"},
		{"unknown platform", nil, func(s *Spec) { s.Platform = "plan9" }, "platform"},
		{"unknown vlan", nil, func(s *Spec) { s.VLANID = 200 }, "vlan"},
		{"unknown prefix", nil, func(s *Spec) { s.VLANID, s.Prefix = 0, "10.9.0.0/24" }, "prefix"},
		{"unknown device", nil, func(s *Spec) { s.StorageDevices = []string{"node-z"} }, "storage-device"},
		{"wrong device role", nil, func(s *Spec) { s.StorageDevices = []string{"san-1"} }, "storage-device"},
		{"same drbd device twice", nil, func(s *Spec) {
			s.StorageType, s.StorageDevices = "drbd", []string{"node-a", "node-a"}
		}, "storage-device"},
		{"gateway address", nil, func(s *Spec) { s.Address = "10.0.0.1" }, "ip"},
		{"broadcast address", nil, func(s *Spec) { s.Address = "10.0.0.255/24" }, "ip"},
		{"address outside prefix", nil, func(s *Spec) { s.Address = "10.1.0.5" }, "ip"},
		{"address taken", nil, func(s *Spec) { s.Address = "10.0.0.2" }, "ip"},
		{"mac in use", func(fx *nbtesting.Standard) {
			vm := fx.Inventory.AddVM("db-1", fx.Cluster, "active", nil)
			fx.Inventory.AddVMInterface(vm, "eth0", "52:54:00:00:00:01")
		}, func(s *Spec) { s.MAC = "52:54:00:00:00:01" }, "mac"},
		{"identifier in use", func(fx *nbtesting.Standard) {
			fx.Inventory.AddVM("db-1", fx.Cluster, "active", netbox.CustomFields{"uuid": "0b7c4a4e-8d1e-4f43-9a55-1f2a3b4c5d6e"})
		}, func(s *Spec) { s.Identifier = "0b7c4a4e-8d1e-4f43-9a55-1f2a3b4c5d6e" }, "uuid"},
		{"slot in use", func(fx *nbtesting.Standard) {
			fx.Inventory.AddVM("db-1", fx.Cluster, "active", netbox.CustomFields{"storage_id": 5})
		}, func(s *Spec) {
			slot := 5
			s.StorageType, s.StorageDevices, s.SlotID = "multipath", []string{"san-1"}, &slot
		}, "storage-id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := nbtesting.NewStandard()
			if tt.setup != nil {
				tt.setup(fx)
			}
			s := validSpec()
			tt.modify(&s)

			_, err := validate(t, fx.Inventory, s)

			var vf *provisioning.ValidationFailedError
			require.ErrorAs(t, err, &vf)
			assert.Equal(t, tt.field, vf.Errors[0].Field)
			assert.Empty(t, fx.Inventory.Mutations())
		})
	}
}

func TestValidate_ExplicitAddress(t *testing.T) {
	fx := nbtesting.NewStandard()
	s := validSpec()
	s.Address = "10.0.0.7/24"

	refs, err := validate(t, fx.Inventory, s)

	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7", refs.Address.String())
}

func TestValidate_ExplicitAddressDeepInLargePrefix(t *testing.T) {
	fx := nbtesting.NewStandard()
	vlan := fx.Inventory.AddVLAN(300, "storage", fx.Site, fx.Tenant)
	fx.Inventory.AddPrefix("10.1.0.0/16", vlan, "Storage")
	fx.Inventory.AddIP("10.1.8.11/16", "")
	s := validSpec()
	s.VLANID = 300

	s.Address = "10.1.8.10/16"
	refs, err := validate(t, fx.Inventory, s)
	require.NoError(t, err)
	assert.Equal(t, "10.1.8.10", refs.Address.String())

	s.Address = "10.1.8.11/16"
	_, err = validate(t, fx.Inventory, s)
	var vf *provisioning.ValidationFailedError
	require.ErrorAs(t, err, &vf)
	assert.Equal(t, "ip", vf.Errors[0].Field)
	assert.Contains(t, vf.Error(), "10.1.8.11 is not available in 10.1.0.0/16")
}

func TestValidate_AddressLookupErrorIsRemote(t *testing.T) {
	fx := nbtesting.NewStandard()
	fx.Inventory.Fail("ListIPAddresses", errors.New("connection reset"))
	s := validSpec()
	s.Address = "10.0.0.7/24"

	_, err := validate(t, fx.Inventory, s)

	var remote *provisioning.RemoteOperationError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "check address", remote.Step)
}

func TestValidate_PrefixScopedToSite(t *testing.T) {
	fx := nbtesting.NewStandard()
	other := fx.Inventory.AddSite("dc2")
	vlan := fx.Inventory.AddVLAN(100, "servers-dc2", other, fx.Tenant)
	fx.Inventory.AddPrefix("10.2.0.0/24", vlan, "Servers DC2")

	refs, err := validate(t, fx.Inventory, validSpec())

	require.NoError(t, err)
	assert.Equal(t, fx.Prefix.ID, refs.Prefix.ID)
}

func TestValidate_LookupErrorIsRemote(t *testing.T) {
	fx := nbtesting.NewStandard()
	fx.Inventory.Fail("GetTenant", errors.New("connection refused"))

	_, err := validate(t, fx.Inventory, validSpec())

	var remote *provisioning.RemoteOperationError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "look up tenant", remote.Step)
}

func TestCheckAllocatedAddress(t *testing.T) {
	fx := nbtesting.NewStandard()
	refs, err := validate(t, fx.Inventory, validSpec())
	require.NoError(t, err)

	assert.NoError(t, checkAllocatedAddress(refs.PrefixNet, "10.0.0.3/24"))
	for _, addr := range []string{"10.0.0.1/24", "10.0.0.0/24", "10.0.0.255/24", "10.1.0.3/24"} {
		err := checkAllocatedAddress(refs.PrefixNet, addr)
		assert.Truef(t, provisioning.IsConsistency(err), "%s: %v", addr, err)
	}
}

func TestCheckSlotHolder(t *testing.T) {
	fx := nbtesting.NewStandard()
	vm := fx.Inventory.AddVM("web-1", fx.Cluster, "planned", netbox.CustomFields{"storage_id": 3})
	ctx := context.Background()

	assert.NoError(t, checkSlotHolder(ctx, fx.Inventory, fx.Cluster.ID, 3, vm.ID))

	fx.Inventory.AddVM("web-2", fx.Cluster, "active", netbox.CustomFields{"storage_id": 3})
	err := checkSlotHolder(ctx, fx.Inventory, fx.Cluster.ID, 3, vm.ID)
	assert.True(t, provisioning.IsConsistency(err))
	assert.Contains(t, err.Error(), "web-2")
}
