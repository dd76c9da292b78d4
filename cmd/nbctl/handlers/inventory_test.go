package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/nbctl/internal/inventory"
	"github.com/imamik/nbctl/internal/platform/netbox"
	"github.com/imamik/nbctl/internal/provisioning/nic"
)

func TestAddInterface(t *testing.T) {
	env := stub(t)
	env.fx.Inventory.AddVM("web-1", env.fx.Cluster, "active", nil)

	err := AddInterface(context.Background(), Options{}, nic.Request{Target: "web-1", Interface: "eth1", VLAN: 100, HostOffset: 5})
	require.NoError(t, err)

	assert.Contains(t, env.out.String(), "interface web-1:eth1")
	assert.Contains(t, env.out.String(), "10.0.0.5/24")
}

func TestFindDevice_PrintsBareName(t *testing.T) {
	env := stub(t)
	vm := env.fx.Inventory.AddVM("web-1", env.fx.Cluster, "active", nil)
	env.fx.Inventory.AddService("web-1.example.net", "tcp", 22, vm, nil)

	require.NoError(t, FindDevice(context.Background(), Options{}, "web-1.example.net", false))
	assert.Equal(t, "web-1\n", env.out.String())
}

func TestListVMs_OnePerLine(t *testing.T) {
	env := stub(t)
	env.fx.Inventory.AddVM("a", env.fx.Cluster, "active", netbox.CustomFields{"uuid": "1"})
	env.fx.Inventory.AddVM("b", env.fx.Cluster, "active", netbox.CustomFields{"uuid": "2"})

	require.NoError(t, ListVMs(context.Background(), Options{}, inventory.ListOptions{UUID: true}))
	assert.Equal(t, "vm-1\nvm-2\n", env.out.String())
}

func TestUpdateVMStorage_UsesConfiguredSlotRange(t *testing.T) {
	env := stub(t)
	env.cfg.Allocation.SlotMin = 7
	v := env.fx.Inventory.AddVM("web-1", env.fx.Cluster, "active", nil)

	err := UpdateVMStorage(context.Background(), Options{}, inventory.StorageUpdate{VM: "web-1", Type: "drbd", AllocateSlot: true})
	require.NoError(t, err)

	slot, ok := env.fx.Inventory.VMs[v.ID].CustomFields.Int("storage_id")
	require.True(t, ok)
	assert.Equal(t, 7, slot)
}

func TestSetInterfaceVLANs_DefaultSite(t *testing.T) {
	env := stub(t)
	env.fx.Inventory.AddDeviceInterface(env.fx.NodeA, "bond0")

	require.NoError(t, SetInterfaceVLANs(context.Background(), Options{}, "", "node-a", "bond0", "100"))
	assert.Contains(t, env.out.String(), "tagged with 1 VLAN(s)")
}

func TestSyncSubnetNaming_DryRunByDefault(t *testing.T) {
	env := stub(t)

	require.NoError(t, SyncSubnetNaming(context.Background(), Options{}, inventory.SubnetFilter{}, false))

	assert.Contains(t, env.out.String(), "rerun with --no-dry-run")
	assert.Equal(t, "Servers", env.fx.Inventory.Prefixes[env.fx.Prefix.ID].Description)
	assert.Empty(t, env.fx.Inventory.Mutations())
}

func TestSyncSubnetNaming_Apply(t *testing.T) {
	env := stub(t)

	require.NoError(t, SyncSubnetNaming(context.Background(), Options{}, inventory.SubnetFilter{}, true))
	assert.Equal(t, "servers", env.fx.Inventory.Prefixes[env.fx.Prefix.ID].Description)
}

func TestMarkUpgraded_UnknownHost(t *testing.T) {
	stub(t)

	err := MarkUpgraded(context.Background(), Options{}, "ghost", inventory.UpgradeOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}
