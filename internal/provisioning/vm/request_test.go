package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRequest_Normalizes(t *testing.T) {
	slot := 7
	devices := []string{" san-1 ", ""}
	req := NewRequest(Spec{
		Name:           " web-1 ",
		FQDN:           "web-1.example.net.",
		StorageType:    " Multipath ",
		StorageDevices: devices,
		SlotID:         &slot,
		MAC:            "52:54:00:AA:BB:CC",
		Identifier:     "ABCDEF12",
	})

	assert.Equal(t, "web-1", req.Name())
	assert.Equal(t, "web-1.example.net", req.FQDN())
	assert.Equal(t, StorageMultipath, req.StorageType())
	assert.Equal(t, []string{"san-1"}, req.StorageDevices())
	assert.Equal(t, "52:54:00:aa:bb:cc", req.MAC())
	assert.Equal(t, "abcdef12", req.Identifier())
	assert.Equal(t, "slow", req.StoragePool(), "first pool of the type is the default")

	got, ok := req.SlotID()
	assert.True(t, ok)
	assert.Equal(t, 7, got)
}

func TestNewRequest_IsDetachedFromInput(t *testing.T) {
	slot := 3
	devices := []string{"node-a", "node-b"}
	req := NewRequest(Spec{StorageType: "drbd", StorageDevices: devices, SlotID: &slot})

	devices[0] = "changed"
	slot = 99
	req.StorageDevices()[1] = "changed too"

	assert.Equal(t, []string{"node-a", "node-b"}, req.StorageDevices())
	got, _ := req.SlotID()
	assert.Equal(t, 3, got)
}

func TestNewRequest_NoSlot(t *testing.T) {
	req := NewRequest(Spec{StorageType: "lvm", StoragePool: "vg1"})

	_, ok := req.SlotID()
	assert.False(t, ok)
	assert.Equal(t, "vg1", req.StoragePool())
}
