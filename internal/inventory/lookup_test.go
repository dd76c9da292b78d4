package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/nbctl/internal/platform/netbox"
)

func TestFindDevice_ByService(t *testing.T) {
	m, fx, _ := newManager(t)
	ctx := context.Background()
	vm := fx.Inventory.AddVM("web-1", fx.Cluster, "active", netbox.CustomFields{"uuid": "5e0c6a1e"})
	fx.Inventory.AddService("web.example.net", "tcp", 22, vm, nil)
	fx.Inventory.AddService("sw.example.net", "tcp", 22, nil, fx.NodeA)

	name, err := m.FindDevice(ctx, "web.example.net", false)
	require.NoError(t, err)
	assert.Equal(t, "web-1", name)

	id, err := m.FindDevice(ctx, "web.example.net", true)
	require.NoError(t, err)
	assert.Equal(t, "5e0c6a1e", id)

	name, err = m.FindDevice(ctx, "sw.example.net", false)
	require.NoError(t, err)
	assert.Equal(t, "node-a", name)

	_, err = m.FindDevice(ctx, "sw.example.net", true)
	assert.ErrorContains(t, err, "devices have no uuid")
}

func TestFindDevice_ByAddress(t *testing.T) {
	m, fx, _ := newManager(t)
	ctx := context.Background()
	vm := fx.Inventory.AddVM("db-1", fx.Cluster, "active", nil)
	iface := fx.Inventory.AddVMInterface(vm, "eth0", "")
	ip := fx.Inventory.AddIP("10.0.0.9/24", "db.example.net")
	fx.Inventory.AssignIP(ip, iface)
	fx.Inventory.AddIP("10.0.0.10/24", "orphan.example.net")

	name, err := m.FindDevice(ctx, "db.example.net", false)
	require.NoError(t, err)
	assert.Equal(t, "db-1", name)

	_, err = m.FindDevice(ctx, "orphan.example.net", false)
	assert.ErrorContains(t, err, "not assigned")

	_, err = m.FindDevice(ctx, "nothing.example.net", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindDevice_AmbiguousService(t *testing.T) {
	m, fx, _ := newManager(t)
	fx.Inventory.AddService("x.example.net", "tcp", 22, nil, fx.NodeA)
	fx.Inventory.AddService("x.example.net", "tcp", 22, nil, fx.NodeB)

	_, err := m.FindDevice(context.Background(), "x.example.net", false)
	assert.ErrorIs(t, err, ErrAmbiguous)
}

func TestListVMs(t *testing.T) {
	m, fx, _ := newManager(t)
	ctx := context.Background()
	other := fx.Inventory.AddCluster("c2", fx.Site)
	fx.Inventory.AddVM("web-1", fx.Cluster, "active", netbox.CustomFields{"uuid": "aaa"})
	fx.Inventory.AddVM("web-2", other, "active", netbox.CustomFields{"uuid": "bbb"})
	fx.Inventory.AddVM("old-1", fx.Cluster, "decommissioning", nil)

	names, err := m.ListVMs(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"web-1", "web-2"}, names)

	names, err = m.ListVMs(ctx, ListOptions{Cluster: "c1", UUID: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"vm-aaa"}, names)

	names, err = m.ListVMs(ctx, ListOptions{Status: "decommissioning"})
	require.NoError(t, err)
	assert.Equal(t, []string{"old-1"}, names)

	_, err = m.ListVMs(ctx, ListOptions{Cluster: "c9"})
	assert.ErrorIs(t, err, ErrNotFound)
}
