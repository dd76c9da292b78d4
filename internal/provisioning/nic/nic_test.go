package nic

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/nbctl/internal/platform/netbox"
	"github.com/imamik/nbctl/internal/provisioning"
	nbtesting "github.com/imamik/nbctl/internal/testing"
)

const target = "web-1.example.net"

func setup(t *testing.T) (*nbtesting.Standard, *netbox.VirtualMachine, *provisioning.Context) {
	t.Helper()
	fx := nbtesting.NewStandard()
	vm := fx.Inventory.AddVM(target, fx.Cluster, "active", nil)
	return fx, vm, nbtesting.NewProvisioningContext(context.Background(), fx.Inventory)
}

func TestAdd_VMInterfaceWithAddress(t *testing.T) {
	fx, vm, pctx := setup(t)

	res, err := Add(pctx, Request{Target: target, Interface: "eth1", VLAN: 100, HostOffset: 5})
	require.NoError(t, err)

	iface := fx.Inventory.VMInterfaces[res.Interface.ID]
	require.NotNil(t, iface)
	assert.Equal(t, vm.ID, iface.VirtualMachine.ID)
	assert.Equal(t, "servers", iface.Description)
	require.NotNil(t, iface.UntaggedVLAN)
	assert.Equal(t, fx.VLAN.ID, iface.UntaggedVLAN.ID)
	assert.True(t, strings.HasPrefix(strings.ToLower(iface.MACAddress), "52:54:00:"))

	require.NotNil(t, res.IP)
	assert.Equal(t, "10.0.0.5/24", res.IP.Address)
	assert.Equal(t, target, res.IP.DNSName)
	assert.Equal(t, netbox.ContentTypeVMInterface, res.IP.AssignedObjectType)
	assert.Equal(t, []string{"CreateVMInterface", "CreateIPAddress"}, fx.Inventory.Mutations())
	assert.Contains(t, res.String(), "address 10.0.0.5/24")
}

func TestAdd_DeviceBridgeWithoutMAC(t *testing.T) {
	fx, _, pctx := setup(t)

	res, err := Add(pctx, Request{Target: "node-a", Interface: "br0", MAC: "52:54:00:00:00:09"})
	require.NoError(t, err)

	assert.Empty(t, res.MAC)
	assert.Empty(t, fx.Inventory.DeviceInterfaces[res.Interface.ID].MACAddress)
	assert.Nil(t, res.IP)
	assert.Equal(t, []string{"CreateDeviceInterface"}, fx.Inventory.Mutations())
}

func TestAdd_ExplicitMAC(t *testing.T) {
	fx, _, pctx := setup(t)

	res, err := Add(pctx, Request{Target: target, Interface: "eth1", MAC: "52:54:00:AB:CD:EF"})
	require.NoError(t, err)

	assert.Equal(t, "52:54:00:ab:cd:ef", res.MAC)
	assert.True(t, strings.EqualFold("52:54:00:ab:cd:ef", fx.Inventory.VMInterfaces[res.Interface.ID].MACAddress))
}

func TestAdd_ExplicitMACNormalizedBeforeUse(t *testing.T) {
	t.Run("dashed form is stored colon separated", func(t *testing.T) {
		_, _, pctx := setup(t)

		res, err := Add(pctx, Request{Target: target, Interface: "eth1", MAC: "52-54-00-AB-CD-EF"})
		require.NoError(t, err)
		assert.Equal(t, "52:54:00:ab:cd:ef", res.MAC)
	})

	t.Run("dashed form still conflicts", func(t *testing.T) {
		fx, vm, pctx := setup(t)
		fx.Inventory.AddVMInterface(vm, "eth0", "52:54:00:00:00:01")

		_, err := Add(pctx, Request{Target: target, Interface: "eth1", MAC: "52-54-00-00-00-01"})

		var vf *provisioning.ValidationFailedError
		require.ErrorAs(t, err, &vf)
		assert.Equal(t, "mac", vf.Errors[0].Field)
		assert.Contains(t, vf.Errors[0].Message, "52:54:00:00:00:01")
		assert.Empty(t, fx.Inventory.Mutations())
	})
}

func TestAdd_DeviceMayTakeGateway(t *testing.T) {
	fx, _, pctx := setup(t)
	fx.FreeGateway()

	res, err := Add(pctx, Request{Target: "node-a", Interface: "vlan100", VLAN: 100, HostOffset: 1})
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1/24", res.IP.Address)
	assert.Equal(t, netbox.ContentTypeDeviceInterface, res.IP.AssignedObjectType)
}

func TestAdd_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*nbtesting.Standard, *netbox.VirtualMachine)
		req   Request
		field string
	}{
		{"no target", nil, Request{Interface: "eth1"}, "target"},
		{"unknown target", nil, Request{Target: "nope", Interface: "eth1"}, "target"},
		{"existing interface", func(fx *nbtesting.Standard, vm *netbox.VirtualMachine) {
			fx.Inventory.AddVMInterface(vm, "eth1", "")
		}, Request{Target: target, Interface: "eth1"}, "interface"},
		{"offset without vlan", nil, Request{Target: target, Interface: "eth1", HostOffset: 3}, "ip"},
		{"unknown vlan", nil, Request{Target: target, Interface: "eth1", VLAN: 300}, "vlan"},
		{"offset beyond prefix", nil, Request{Target: target, Interface: "eth1", VLAN: 100, HostOffset: 255}, "ip"},
		{"gateway on vm", func(fx *nbtesting.Standard, _ *netbox.VirtualMachine) { fx.FreeGateway() },
			Request{Target: target, Interface: "eth1", VLAN: 100, HostOffset: 1}, "ip"},
		{"address taken", nil, Request{Target: target, Interface: "eth1", VLAN: 100, HostOffset: 2}, "ip"},
		{"mac in use", func(fx *nbtesting.Standard, vm *netbox.VirtualMachine) {
			fx.Inventory.AddVMInterface(vm, "eth0", "52:54:00:00:00:01")
		}, Request{Target: target, Interface: "eth1", MAC: "52:54:00:00:00:01"}, "mac"},
		{"bad mac", nil, Request{Target: target, Interface: "eth1", MAC: "nonsense"}, "mac"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx, vm, pctx := setup(t)
			if tt.setup != nil {
				tt.setup(fx, vm)
			}

			_, err := Add(pctx, tt.req)

			var vf *provisioning.ValidationFailedError
			require.ErrorAs(t, err, &vf)
			assert.Equal(t, tt.field, vf.Errors[0].Field)
			assert.Empty(t, fx.Inventory.Mutations())
		})
	}
}

func TestAdd_AddressFailureRemovesInterface(t *testing.T) {
	fx, _, pctx := setup(t)
	fx.Inventory.Fail("CreateIPAddress", errors.New("service unavailable"))

	_, err := Add(pctx, Request{Target: target, Interface: "eth1", VLAN: 100, HostOffset: 5})

	var rb *provisioning.RolledBackError
	require.ErrorAs(t, err, &rb)
	assert.True(t, rb.Clean())
	assert.True(t, strings.HasPrefix(err.Error(), "ip: service unavailable"))
	deleted := fx.Inventory.Deleted()
	require.Len(t, deleted, 1)
	assert.Equal(t, netbox.KindVMInterface, deleted[0].Kind)
	assert.Empty(t, fx.Inventory.VMInterfaces)
}
