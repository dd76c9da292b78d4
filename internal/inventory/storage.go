package inventory

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/imamik/nbctl/internal/platform/netbox"
	"github.com/imamik/nbctl/internal/provisioning/allocate"
	"github.com/imamik/nbctl/internal/provisioning/vm"
	"github.com/imamik/nbctl/internal/ui"
)

// NoDevice clears the storage device of a VM.
const NoDevice = "None"

// StorageUpdate describes new storage fields of an existing VM. Empty
// fields are left unchanged, except Type which is always written.
type StorageUpdate struct {
	VM     string
	Type   string
	Pool   string
	Device string
	SlotID *int
	// AllocateSlot picks the first free slot of the VM's cluster.
	AllocateSlot bool
	SlotMin      int
	SlotMax      int
}

// UpdateVMStorage rewrites the storage custom fields of a VM.
func (m *Manager) UpdateVMStorage(ctx context.Context, req StorageUpdate) ([]ui.Change, error) {
	typ := vm.StorageType(strings.ToLower(strings.TrimSpace(req.Type)))
	if !typ.Known() {
		return nil, fmt.Errorf("invalid storage type %q, expected one of %s", req.Type, strings.Join(vm.StorageTypes(), ", "))
	}
	if req.Pool != "" && !contains(vm.AllPools(), req.Pool) {
		return nil, fmt.Errorf("invalid storage pool %q, expected one of %s", req.Pool, strings.Join(vm.AllPools(), ", "))
	}
	if req.SlotID != nil && (*req.SlotID < req.SlotMin || *req.SlotID > req.SlotMax) {
		return nil, fmt.Errorf("invalid storage id %d, expected %d-%d", *req.SlotID, req.SlotMin, req.SlotMax)
	}
	if req.SlotID != nil && req.AllocateSlot {
		return nil, fmt.Errorf("storage id and slot allocation are mutually exclusive")
	}

	update := netbox.CustomFields{vm.FieldStorageType: string(typ)}
	switch req.Device {
	case "":
	case NoDevice:
		update[vm.FieldStorageDevice] = nil
	default:
		dev, err := m.device(ctx, netbox.DeviceFilter{Name: req.Device})
		if err != nil {
			return nil, err
		}
		if role := dev.RoleName(); role != vm.RoleStorage && role != vm.RoleClusterNode {
			return nil, fmt.Errorf("device %s has role %q and is not a storage device", dev.Name, role)
		}
		update[vm.FieldStorageDevice] = dev.ID
	}

	machine, err := m.inv.GetVirtualMachine(ctx, req.VM)
	if err != nil {
		return nil, fmt.Errorf("failed to look up virtual machine %s: %w", req.VM, err)
	}
	if machine == nil {
		return nil, fmt.Errorf("%w: virtual machine %s", ErrNotFound, req.VM)
	}

	if req.Pool != "" {
		update[vm.FieldStoragePool] = req.Pool
	}
	switch {
	case req.SlotID != nil:
		update[vm.FieldStorageID] = *req.SlotID
	case req.AllocateSlot:
		if machine.Cluster == nil {
			return nil, fmt.Errorf("virtual machine %s has no cluster to allocate a slot in", machine.Name)
		}
		slot, err := allocate.Slot(ctx, m.inv, machine.Cluster.ID, req.SlotMin, req.SlotMax)
		if err != nil {
			return nil, err
		}
		update[vm.FieldStorageID] = slot
	}

	changes := diffFields(machine.Name, machine.CustomFields, update)
	if len(changes) == 0 {
		return nil, nil
	}
	if _, err := m.inv.UpdateVirtualMachine(ctx, machine.ID, netbox.VirtualMachineUpdate{CustomFields: update}); err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", machine.Name, err)
	}
	return changes, nil
}

// diffFields lists the fields of update whose value differs from current,
// in a stable order.
func diffFields(object string, current, update netbox.CustomFields) []ui.Change {
	order := []string{vm.FieldStorageType, vm.FieldStoragePool, vm.FieldStorageDevice, vm.FieldStorageID}
	var out []ui.Change
	for _, field := range order {
		v, ok := update[field]
		if !ok {
			continue
		}
		if old, next := current.String(field), formatField(v); old != next {
			out = append(out, ui.Change{Object: object, Field: field, Old: old, New: next})
		}
	}
	return out
}

func formatField(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int:
		return strconv.Itoa(x)
	case string:
		return x
	}
	return fmt.Sprint(v)
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
