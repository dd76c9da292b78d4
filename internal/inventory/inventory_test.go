package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/nbctl/internal/platform/netbox"
)

func TestResolveHost(t *testing.T) {
	m, fx, _ := newManager(t)
	ctx := context.Background()
	fx.Inventory.AddVM("web-1", fx.Cluster, "active", nil)

	h, err := m.ResolveHost(ctx, "web-1")
	require.NoError(t, err)
	assert.True(t, h.IsVM())
	assert.Equal(t, "web-1", h.Name())

	h, err = m.ResolveHost(ctx, "node-a")
	require.NoError(t, err)
	assert.False(t, h.IsVM())
	assert.Equal(t, fx.NodeA.ID, h.Device.ID)

	_, err = m.ResolveHost(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	fx.Inventory.AddVM("node-a", fx.Cluster, "active", nil)
	_, err = m.ResolveHost(ctx, "node-a")
	assert.ErrorIs(t, err, ErrAmbiguous)
}

func TestAddCable(t *testing.T) {
	m, fx, _ := newManager(t)
	ctx := context.Background()
	vm := fx.Inventory.AddVM("web-1", fx.Cluster, "active", nil)
	vmIface := fx.Inventory.AddVMInterface(vm, "eth0", "")
	devIface := fx.Inventory.AddDeviceInterface(fx.NodeA, "ens1")

	cable, err := m.AddCable(ctx, CableRequest{
		HostA: "web-1", PortA: "eth0",
		HostB: "node-a", PortB: "ens1",
		Color: "ff0000", Unit: "m",
	})
	require.NoError(t, err)

	assert.Equal(t, []netbox.Termination{{ObjectType: netbox.ContentTypeVMInterface, ObjectID: vmIface.ID}}, cable.ATerminations)
	assert.Equal(t, []netbox.Termination{{ObjectType: netbox.ContentTypeDeviceInterface, ObjectID: devIface.ID}}, cable.BTerminations)
	assert.Nil(t, cable.Length)
	assert.Nil(t, cable.LengthUnit, "unit is dropped without a length")

	_, err = m.AddCable(ctx, CableRequest{HostA: "web-1", PortA: "eth0", HostB: "node-a", PortB: "ens1"})
	assert.True(t, netbox.IsValidationRejected(err), "already cabled")
}

func TestAddCable_DefaultUnit(t *testing.T) {
	m, fx, _ := newManager(t)
	fx.Inventory.AddDeviceInterface(fx.NodeA, "ens1")
	fx.Inventory.AddDeviceInterface(fx.NodeB, "ens1")
	length := 2.5

	cable, err := m.AddCable(context.Background(), CableRequest{
		HostA: "node-a", PortA: "ens1", HostB: "node-b", PortB: "ens1", Length: &length,
	})
	require.NoError(t, err)
	require.NotNil(t, cable.LengthUnit)
	assert.Equal(t, DefaultLengthUnit, cable.LengthUnit.Value)
	assert.Equal(t, 2.5, *cable.Length)
}

func TestAddCable_MissingInterface(t *testing.T) {
	m, fx, _ := newManager(t)
	fx.Inventory.AddDeviceInterface(fx.NodeA, "ens1")

	_, err := m.AddCable(context.Background(), CableRequest{HostA: "node-a", PortA: "ens1", HostB: "node-b", PortB: "ens9"})

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "side B")
	assert.Empty(t, fx.Inventory.Mutations())
}

func TestParseProtoPort(t *testing.T) {
	tests := []struct {
		in      string
		proto   string
		port    int
		wantErr bool
	}{
		{"tcp/22", "tcp", 22, false},
		{"UDP/53", "udp", 53, false},
		{"tcp/1", "tcp", 1, false},
		{"tcp/65534", "tcp", 65534, false},
		{"tcp/65535", "", 0, true},
		{"tcp/0", "", 0, true},
		{"sctp/22", "", 0, true},
		{"tcp", "", 0, true},
		{"tcp/ssh", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			proto, port, err := ParseProtoPort(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.proto, proto)
			assert.Equal(t, tt.port, port)
		})
	}
}

func TestAddService(t *testing.T) {
	m, fx, _ := newManager(t)
	ctx := context.Background()
	vm := fx.Inventory.AddVM("web-1", fx.Cluster, "active", nil)

	svc, err := m.AddService(ctx, "web-1", "www.example.net", "TCP/443")
	require.NoError(t, err)
	require.NotNil(t, svc.VirtualMachine)
	assert.Equal(t, vm.ID, svc.VirtualMachine.ID)
	assert.Equal(t, []int{443}, svc.Ports)

	_, err = m.AddService(ctx, "web-1", "www.example.net", "tcp/443")
	assert.ErrorIs(t, err, ErrExists)

	_, err = m.AddService(ctx, "web-1", "www.example.net", "tcp/80")
	assert.NoError(t, err, "same name on the same VM is fine")

	_, err = m.AddService(ctx, "node-a", "www.example.net", "tcp/8080")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must reside on VM web-1")
}

func TestAddService_DeviceOwnedName(t *testing.T) {
	m, fx, _ := newManager(t)
	fx.Inventory.AddService("dns.example.net", "udp", 53, nil, fx.NodeA)

	_, err := m.AddService(context.Background(), "node-b", "dns.example.net", "tcp/53")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "must reside on device node-a")
}
