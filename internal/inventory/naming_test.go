package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/nbctl/internal/platform/netbox"
	"github.com/imamik/nbctl/internal/ui"
)

func TestSyncInterfaceNaming(t *testing.T) {
	m, fx, w := newManager(t)
	ctx := context.Background()
	addressed := fx.Inventory.AddDeviceInterface(fx.NodeA, "vlan100")
	addressed.UntaggedVLAN = &netbox.NestedVLAN{ID: fx.VLAN.ID, VID: fx.VLAN.VID, Name: fx.VLAN.Name}
	addressed.Description = "old"
	fx.Inventory.AssignIP(fx.Inventory.AddIP("10.0.0.20/24", ""), addressed)
	fx.Inventory.AddDeviceInterface(fx.NodeA, "unused")

	changes, err := m.SyncInterfaceNaming(ctx, "node-a", false)
	require.NoError(t, err)
	assert.Equal(t, []ui.Change{{Object: "node-a:vlan100", Field: "description", Old: "old", New: "Servers"}}, changes)
	assert.Equal(t, "old", fx.Inventory.DeviceInterfaces[addressed.ID].Description)
	assert.Len(t, w.all(), 1, "interface without addresses is reported")

	_, err = m.SyncInterfaceNaming(ctx, "node-a", true)
	require.NoError(t, err)
	assert.Equal(t, "Servers", fx.Inventory.DeviceInterfaces[addressed.ID].Description)
}

func TestSyncPrimaryIPDNS(t *testing.T) {
	m, fx, _ := newManager(t)
	ctx := context.Background()
	vm := fx.Inventory.AddVM("web-1.example.net", fx.Cluster, "active", nil)
	ip := fx.Inventory.AddIP("10.0.0.30/24", "stale.example.net")
	fx.Inventory.SetPrimaryIP4(vm, ip)
	consistent := fx.Inventory.AddVM("db-1.example.net", fx.Cluster, "active", nil)
	fx.Inventory.SetPrimaryIP4(consistent, fx.Inventory.AddIP("10.0.0.31/24", "db-1.example.net"))
	fx.Inventory.AddVM("bare", fx.Cluster, "active", nil)

	changes, err := m.SyncPrimaryIPDNS(ctx, false)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "stale.example.net", changes[0].Old)
	assert.Equal(t, "web-1.example.net", changes[0].New)
	assert.Equal(t, "stale.example.net", fx.Inventory.IPs[ip.ID].DNSName)

	_, err = m.SyncPrimaryIPDNS(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "web-1.example.net", fx.Inventory.IPs[ip.ID].DNSName)
	assert.Equal(t, []string{"UpdateIPAddress"}, fx.Inventory.Mutations())
}

func TestSyncSubnetNaming(t *testing.T) {
	m, fx, w := newManager(t)
	ctx := context.Background()
	other := fx.Inventory.AddSite("dc2")
	remote := fx.Inventory.AddVLAN(200, "remote", other, fx.Tenant)
	remoteNet := fx.Inventory.AddPrefix("10.2.0.0/24", remote, "")
	fx.Inventory.AddPrefix("192.168.0.0/24", nil, "loose")

	changes, err := m.SyncSubnetNaming(ctx, SubnetFilter{Site: "DC1"}, true)
	require.NoError(t, err)
	assert.Equal(t, []ui.Change{{Object: "10.0.0.0/24", Field: "description", Old: "Servers", New: "servers"}}, changes)
	assert.Equal(t, "servers", fx.Inventory.Prefixes[fx.Prefix.ID].Description)
	assert.Empty(t, fx.Inventory.Prefixes[remoteNet.ID].Description)
	assert.NotEmpty(t, w.all(), "prefix without VLAN is reported")

	changes, err = m.SyncSubnetNaming(ctx, SubnetFilter{Tenant: "acme"}, false)
	require.NoError(t, err)
	assert.Equal(t, []ui.Change{{Object: "10.2.0.0/24", Field: "description", Old: "", New: "remote"}}, changes)
	assert.Empty(t, fx.Inventory.Prefixes[remoteNet.ID].Description)
}
