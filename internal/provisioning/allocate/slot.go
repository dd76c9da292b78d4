package allocate

import (
	"context"

	"github.com/imamik/nbctl/internal/platform/netbox"
	"github.com/imamik/nbctl/internal/provisioning"
)

// ResourceSlot is the resource label used for storage slot allocation.
const ResourceSlot = "storage slot"

// FreeSlot returns the lowest slot in min..max that is not in used.
func FreeSlot(used map[int]bool, min, max int) (int, error) {
	for slot := min; slot <= max; slot++ {
		if !used[slot] {
			return slot, nil
		}
	}
	attempts := max - min + 1
	if attempts < 0 {
		attempts = 0
	}
	return 0, &provisioning.AllocationExhaustedError{Resource: ResourceSlot, Attempts: attempts}
}

// UsedSlots collects the storage_id custom field of every VM in the cluster.
func UsedSlots(ctx context.Context, inv VMLister, clusterID int) (map[int]bool, error) {
	vms, err := inv.ListVirtualMachines(ctx, netbox.VirtualMachineFilter{ClusterID: clusterID})
	if err != nil {
		return nil, err
	}
	used := make(map[int]bool, len(vms))
	for _, vm := range vms {
		if id, ok := vm.CustomFields.Int("storage_id"); ok {
			used[id] = true
		}
	}
	return used, nil
}

// Slot allocates the lowest free storage slot in the cluster.
func Slot(ctx context.Context, inv VMLister, clusterID, min, max int) (int, error) {
	used, err := UsedSlots(ctx, inv, clusterID)
	if err != nil {
		return 0, &provisioning.RemoteOperationError{Step: "list storage slots", Err: err}
	}
	return FreeSlot(used, min, max)
}
